package cleaner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/podhoard/podhoard/app/database"
)

// mockCleanupStore holds a row count per table and deletes up to limit
// rows per call, like the batched SQL it stands in for.
type mockCleanupStore struct {
	mu      sync.Mutex
	rows    map[string]int64
	calls   map[string]int
	failOn  string
	panicOn string
}

var _ database.CleanupStore = (*mockCleanupStore)(nil)

func newMockCleanupStore(rows map[string]int64) *mockCleanupStore {
	if rows == nil {
		rows = make(map[string]int64)
	}
	return &mockCleanupStore{rows: rows, calls: make(map[string]int)}
}

func (m *mockCleanupStore) deleteBatch(table string, limit int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[table]++
	if m.panicOn == table {
		panic("corrupted row in " + table)
	}
	if m.failOn == table {
		return 0, errors.New("delete failed")
	}

	n := m.rows[table]
	if n > int64(limit) {
		n = int64(limit)
	}
	m.rows[table] -= n
	return n, nil
}

func (m *mockCleanupStore) DeleteStaleEphemeralAccounts(_ context.Context, _ time.Time, limit int) (int64, error) {
	return m.deleteBatch("accounts", limit)
}

func (m *mockCleanupStore) DeleteExpiredKeys(_ context.Context, _ time.Time, limit int) (int64, error) {
	return m.deleteBatch("account_keys", limit)
}

func (m *mockCleanupStore) DeleteExpiredDirectorySearches(_ context.Context, _ time.Time, limit int) (int64, error) {
	return m.deleteBatch("directory_searches", limit)
}

func (m *mockCleanupStore) DeleteDanglingDirectoryPodcasts(_ context.Context, _ time.Time, limit int) (int64, error) {
	return m.deleteBatch("directory_podcasts", limit)
}

func (m *mockCleanupStore) DeleteExcessFeedContent(_ context.Context, _ int, limit int) (int64, error) {
	return m.deleteBatch("podcast_feed_contents", limit)
}

func (m *mockCleanupStore) callCount(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[table]
}

func factoryFor(store database.CleanupStore) StoreFactory {
	return func(_ context.Context) (database.CleanupStore, func(), error) {
		return store, func() {}, nil
	}
}

func defaultOptions() Options {
	return Options{
		BatchLimit:       1000,
		AccountRetention: 24 * time.Hour,
		SearchRetention:  time.Hour,
		StubRetention:    30 * 24 * time.Hour,
		ContentKeep:      10,
	}
}

func TestSweepDeletesEverythingInBatches(t *testing.T) {
	store := newMockCleanupStore(map[string]int64{
		"accounts":              2500,
		"account_keys":          3,
		"directory_searches":    1000,
		"directory_podcasts":    0,
		"podcast_feed_contents": 42,
	})

	cleaner := NewCleaner(factoryFor(store), defaultOptions())
	report, err := cleaner.Sweep(context.Background())

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := map[string]int64{
		"ephemeral_accounts":          2500,
		"expired_keys":                3,
		"expired_directory_searches":  1000,
		"dangling_directory_podcasts": 0,
		"excess_feed_content":         42,
	}
	for name, want := range expected {
		if got := report.Deleted[name]; got != want {
			t.Errorf("Expected %s to delete %d, got: %d", name, want, got)
		}
	}

	// 2500 rows at limit 1000: three deleting batches, one proving empty.
	if got := store.callCount("accounts"); got != 4 {
		t.Errorf("Expected 4 account batches, got: %d", got)
	}
	// An exact multiple still needs the trailing empty batch.
	if got := store.callCount("directory_searches"); got != 2 {
		t.Errorf("Expected 2 search batches, got: %d", got)
	}
	if got := store.callCount("directory_podcasts"); got != 1 {
		t.Errorf("Expected 1 stub batch, got: %d", got)
	}
}

func TestSweepReportsTaskError(t *testing.T) {
	store := newMockCleanupStore(map[string]int64{"accounts": 5})
	store.failOn = "account_keys"

	cleaner := NewCleaner(factoryFor(store), defaultOptions())
	report, err := cleaner.Sweep(context.Background())

	if err == nil {
		t.Fatal("Expected task error to fail the sweep")
	}
	if !strings.Contains(err.Error(), "expired_keys") {
		t.Errorf("Expected error to name the task, got: %v", err)
	}
	// Other tasks still ran to completion.
	if report.Deleted["ephemeral_accounts"] != 5 {
		t.Errorf("Expected account cleanup to finish, got: %d", report.Deleted["ephemeral_accounts"])
	}
}

func TestSweepTurnsPanicIntoError(t *testing.T) {
	store := newMockCleanupStore(map[string]int64{"accounts": 5})
	store.panicOn = "podcast_feed_contents"

	cleaner := NewCleaner(factoryFor(store), defaultOptions())
	report, err := cleaner.Sweep(context.Background())

	if err == nil {
		t.Fatal("Expected panicking task to fail the sweep")
	}
	if !strings.Contains(err.Error(), "excess_feed_content") || !strings.Contains(err.Error(), "panic") {
		t.Errorf("Expected error to name the panicking task, got: %v", err)
	}
	if report.Deleted["ephemeral_accounts"] != 5 {
		t.Errorf("Expected other tasks to finish, got: %d", report.Deleted["ephemeral_accounts"])
	}
}

func TestSweepFailsWhenStoreUnavailable(t *testing.T) {
	factory := func(_ context.Context) (database.CleanupStore, func(), error) {
		return nil, nil, errors.New("pool exhausted")
	}

	cleaner := NewCleaner(factory, defaultOptions())
	_, err := cleaner.Sweep(context.Background())

	if err == nil {
		t.Fatal("Expected sweep to fail when no store can be acquired")
	}
}
