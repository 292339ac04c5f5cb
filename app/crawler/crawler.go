package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/podhoard/podhoard/app/database"
	"github.com/podhoard/podhoard/app/ingest"
)

// FeedUpdater refreshes a single feed.
type FeedUpdater interface {
	Update(ctx context.Context, feedURL string) (*ingest.Result, error)
}

// UpdaterFactory builds one updater per worker along with a release
// func for whatever resources it holds. Called once per worker at the
// start of a run, before any feed is touched.
type UpdaterFactory func(ctx context.Context) (FeedUpdater, func(), error)

// Report summarizes one crawl run.
type Report struct {
	RunID     uuid.UUID
	Processed int64
	Failed    int64
	Elapsed   time.Duration
}

// Crawler pages through podcasts due for a refresh and feeds them to a
// fixed pool of workers. A failing feed costs one Failed count, never
// the run.
type Crawler struct {
	store           database.CrawlStore
	factory         UpdaterFactory
	refreshInterval time.Duration
	pageSize        int
	workerCount     int
	queueSize       int
}

func NewCrawler(store database.CrawlStore, factory UpdaterFactory,
	refreshInterval time.Duration, pageSize int, workerCount int, queueSize int) *Crawler {
	return &Crawler{
		store:           store,
		factory:         factory,
		refreshInterval: refreshInterval,
		pageSize:        pageSize,
		workerCount:     workerCount,
		queueSize:       queueSize,
	}
}

func (c *Crawler) Run(ctx context.Context) (*Report, error) {
	runID := uuid.New()
	started := time.Now()
	cutoff := started.UTC().Add(-c.refreshInterval)

	slog.Debug("Crawl run starting", "run_id", runID, "cutoff", cutoff, "workers", c.workerCount)

	updaters := make([]FeedUpdater, 0, c.workerCount)
	releases := make([]func(), 0, c.workerCount)
	for i := 0; i < c.workerCount; i++ {
		updater, release, err := c.factory(ctx)
		if err != nil {
			for _, r := range releases {
				r()
			}
			return nil, fmt.Errorf("failed to build updater for worker %d: %w", i, err)
		}
		updaters = append(updaters, updater)
		releases = append(releases, release)
	}

	queue := make(chan database.DuePodcast, c.queueSize)
	var processed, failed atomic.Int64
	var wg sync.WaitGroup

	for i := range updaters {
		wg.Add(1)
		go func(workerID int, updater FeedUpdater, release func()) {
			defer wg.Done()
			defer release()

			for due := range queue {
				if _, err := updater.Update(ctx, due.FeedURL); err != nil {
					failed.Add(1)
					slog.Error("Feed update failed", "run_id", runID, "worker_id", workerID,
						"podcast_id", due.PodcastID, "url", due.FeedURL, "error", err)
					continue
				}
				processed.Add(1)
			}
		}(i, updaters[i], releases[i])
	}

	var pageErr error
	afterID := int64(0)
pagination:
	for {
		page, err := c.store.GetDuePodcasts(ctx, cutoff, afterID, c.pageSize)
		if err != nil {
			pageErr = fmt.Errorf("failed to list due podcasts after id %d: %w", afterID, err)
			break
		}

		for _, due := range page {
			select {
			case queue <- due:
			case <-ctx.Done():
				pageErr = ctx.Err()
				break pagination
			}
		}

		if len(page) < c.pageSize {
			break
		}
		afterID = page[len(page)-1].PodcastID
	}

	close(queue)
	wg.Wait()

	report := &Report{
		RunID:     runID,
		Processed: processed.Load(),
		Failed:    failed.Load(),
		Elapsed:   time.Since(started),
	}

	if pageErr != nil {
		return report, pageErr
	}

	slog.Info("Crawl run finished", "run_id", report.RunID,
		"processed", report.Processed, "failed", report.Failed,
		"elapsed", report.Elapsed.Round(time.Millisecond).String())

	return report, nil
}
