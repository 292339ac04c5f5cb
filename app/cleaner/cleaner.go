package cleaner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/podhoard/podhoard/app/database"
)

// StoreFactory builds one store per task along with a release func for
// whatever resources it holds.
type StoreFactory func(ctx context.Context) (database.CleanupStore, func(), error)

// Options bounds each task's batches and sets the retention windows.
type Options struct {
	BatchLimit       int
	AccountRetention time.Duration
	SearchRetention  time.Duration
	StubRetention    time.Duration
	ContentKeep      int
}

// Report summarizes one sweep, with deleted row counts per task name.
type Report struct {
	RunID   uuid.UUID
	Deleted map[string]int64
	Elapsed time.Duration
}

// Cleaner removes expired rows in parallel named tasks. Deletes run in
// fixed-size batches so no single statement holds the table for long.
type Cleaner struct {
	factory StoreFactory
	opts    Options
}

func NewCleaner(factory StoreFactory, opts Options) *Cleaner {
	return &Cleaner{factory: factory, opts: opts}
}

type task struct {
	name string
	run  func(ctx context.Context, store database.CleanupStore, limit int) (int64, error)
}

func (c *Cleaner) tasks(now time.Time) []task {
	return []task{
		{"ephemeral_accounts", func(ctx context.Context, store database.CleanupStore, limit int) (int64, error) {
			return store.DeleteStaleEphemeralAccounts(ctx, now.Add(-c.opts.AccountRetention), limit)
		}},
		{"expired_keys", func(ctx context.Context, store database.CleanupStore, limit int) (int64, error) {
			return store.DeleteExpiredKeys(ctx, now, limit)
		}},
		{"expired_directory_searches", func(ctx context.Context, store database.CleanupStore, limit int) (int64, error) {
			return store.DeleteExpiredDirectorySearches(ctx, now.Add(-c.opts.SearchRetention), limit)
		}},
		{"dangling_directory_podcasts", func(ctx context.Context, store database.CleanupStore, limit int) (int64, error) {
			return store.DeleteDanglingDirectoryPodcasts(ctx, now.Add(-c.opts.StubRetention), limit)
		}},
		{"excess_feed_content", func(ctx context.Context, store database.CleanupStore, limit int) (int64, error) {
			return store.DeleteExcessFeedContent(ctx, c.opts.ContentKeep, limit)
		}},
	}
}

// Sweep runs every task to completion and reports per-task totals.
// Task errors and recovered panics fail the sweep as a whole; counts
// from tasks that finished are still reported.
func (c *Cleaner) Sweep(ctx context.Context) (*Report, error) {
	runID := uuid.New()
	started := time.Now()
	now := started.UTC()

	slog.Debug("Retention sweep starting", "run_id", runID)

	tasks := c.tasks(now)

	var mu sync.Mutex
	deleted := make(map[string]int64, len(tasks))
	var errs []error

	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()

			total, err := c.runTask(ctx, t)

			mu.Lock()
			defer mu.Unlock()
			deleted[t.name] = total
			if err != nil {
				errs = append(errs, fmt.Errorf("cleanup task %s: %w", t.name, err))
			}
		}(t)
	}
	wg.Wait()

	report := &Report{
		RunID:   runID,
		Deleted: deleted,
		Elapsed: time.Since(started),
	}

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}

	slog.Info("Retention sweep finished", "run_id", report.RunID,
		"deleted", report.Deleted, "elapsed", report.Elapsed.Round(time.Millisecond).String())

	return report, nil
}

func (c *Cleaner) runTask(ctx context.Context, t task) (total int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	store, release, err := c.factory(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire store: %w", err)
	}
	defer release()

	for {
		n, err := t.run(ctx, store, c.opts.BatchLimit)
		if err != nil {
			return total, err
		}
		total += n
		if n == 0 {
			return total, nil
		}
		slog.Debug("Cleanup batch deleted", "task", t.name, "rows", n)
	}
}
