package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/podhoard/podhoard/app/api"
	"github.com/podhoard/podhoard/app/cfg"
	"github.com/podhoard/podhoard/app/cleaner"
	"github.com/podhoard/podhoard/app/crawler"
	"github.com/podhoard/podhoard/app/database"
	"github.com/podhoard/podhoard/app/fetch"
	"github.com/podhoard/podhoard/app/ingest"
)

const sweepInterval = 24 * time.Hour

func main() {
	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting podhoard", "version", c.Version)

	// Workers hold dedicated connections; keep headroom for the API and
	// the control routine.
	db, err := database.NewConnection(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
		c.CrawlWorkerCount+2)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	fetcher := fetch.NewClient(c.UserAgent, time.Duration(c.FetchTimeout)*time.Second)

	updaterFactory := func(ctx context.Context) (crawler.FeedUpdater, func(), error) {
		conn, err := acquireConn(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		updater := ingest.NewUpdater(fetcher, database.NewStore(conn), c.DisableShortcut)
		return updater, func() { conn.Close() }, nil
	}

	storeFactory := func(ctx context.Context) (database.CleanupStore, func(), error) {
		conn, err := acquireConn(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		return database.NewStore(conn), func() { conn.Close() }, nil
	}

	refreshInterval := time.Duration(c.RefreshIntervalHours) * time.Hour

	feedCrawler := crawler.NewCrawler(database.NewStore(db), updaterFactory,
		refreshInterval, c.CrawlPageSize, c.CrawlWorkerCount, c.CrawlQueueSize)

	sweeper := cleaner.NewCleaner(storeFactory, cleaner.Options{
		BatchLimit:       c.CleanBatchLimit,
		AccountRetention: time.Duration(c.AccountRetentionDays) * 24 * time.Hour,
		SearchRetention:  time.Duration(c.SearchRetentionHours) * time.Hour,
		StubRetention:    time.Duration(c.StubRetentionDays) * 24 * time.Hour,
		ContentKeep:      c.FeedContentKeep,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go ingestSeeds(ctx, c.SeedsFile, fetcher, db, c.DisableShortcut)
	go runScheduled(ctx, feedCrawler, sweeper, refreshInterval)

	handler := api.NewHandler(database.NewStore(db), feedCrawler, sweeper, c.Version)
	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// acquireConn checks a dedicated connection out of the pool, failing
// fast when the pool is exhausted.
func acquireConn(ctx context.Context, db *sql.DB) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.Conn(acquireCtx)
}

// ingestSeeds registers the feed URLs from the seeds file, if any.
// Failures are logged and skipped; the crawler picks stragglers up on
// its next pass.
func ingestSeeds(ctx context.Context, seedsFile string, fetcher fetch.Fetcher, db *sql.DB, disableShortcut bool) {
	urls, err := cfg.LoadSeeds(seedsFile)
	if err != nil {
		slog.Error("Failed to load seed feeds", "file", seedsFile, "error", err)
		return
	}
	if len(urls) == 0 {
		return
	}

	slog.Info("Ingesting seed feeds", "count", len(urls))

	updater := ingest.NewUpdater(fetcher, database.NewStore(db), disableShortcut)
	for _, url := range urls {
		if ctx.Err() != nil {
			return
		}
		if _, err := updater.Update(ctx, url); err != nil {
			slog.Warn("Failed to ingest seed feed", "url", url, "error", err)
		}
	}
}

// runScheduled crawls every refresh interval and sweeps daily, starting
// with an immediate crawl.
func runScheduled(ctx context.Context, feedCrawler *crawler.Crawler, sweeper *cleaner.Cleaner, refreshInterval time.Duration) {
	crawlTicker := time.NewTicker(refreshInterval)
	defer crawlTicker.Stop()
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

	if _, err := feedCrawler.Run(ctx); err != nil {
		slog.Error("Crawl run failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-crawlTicker.C:
			if _, err := feedCrawler.Run(ctx); err != nil {
				slog.Error("Crawl run failed", "error", err)
			}
		case <-sweepTicker.C:
			if _, err := sweeper.Sweep(ctx); err != nil {
				slog.Error("Retention sweep failed", "error", err)
			}
		}
	}
}
