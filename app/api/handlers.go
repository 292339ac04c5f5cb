package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/podhoard/podhoard/app/database"
)

func NewHandler(stats database.StatsStore, crawlRunner CrawlRunner, sweepRunner SweepRunner, version string) *Handler {
	return &Handler{
		stats:    stats,
		crawler:  crawlRunner,
		cleaner:  sweepRunner,
		version:  version,
		crawling: make(chan struct{}, 1),
		sweeping: make(chan struct{}, 1),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	podcasts, err := h.stats.GetPodcastCount(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_podcast_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	episodes, err := h.stats.GetEpisodeCount(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_episode_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"podcasts": podcasts,
		"episodes": episodes,
	})
}

// TriggerCrawl kicks off a crawl run in the background. A run already
// in flight turns the request away.
func (h *Handler) TriggerCrawl(c *gin.Context) {
	select {
	case h.crawling <- struct{}{}:
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "crawl already running"})
		return
	}

	go func() {
		defer func() { <-h.crawling }()

		if _, err := h.crawler.Run(context.Background()); err != nil {
			slog.Error("Triggered crawl run failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "crawl started"})
}

// TriggerSweep kicks off a retention sweep in the background.
func (h *Handler) TriggerSweep(c *gin.Context) {
	select {
	case h.sweeping <- struct{}{}:
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "sweep already running"})
		return
	}

	go func() {
		defer func() { <-h.sweeping }()

		if _, err := h.cleaner.Sweep(context.Background()); err != nil {
			slog.Error("Triggered retention sweep failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "sweep started"})
}
