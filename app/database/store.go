package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Conn.
// The crawl workers run each on a dedicated *sql.Conn; everything else
// goes through the pool.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Conn)(nil)
)

// Store implements the persistence interfaces over a Querier.
type Store struct {
	q Querier
}

var (
	_ IngestStore  = (*Store)(nil)
	_ CrawlStore   = (*Store)(nil)
	_ CleanupStore = (*Store)(nil)
	_ StatsStore   = (*Store)(nil)
)

func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// RunInTx runs fn inside one transaction. The transaction is rolled
// back when fn returns an error or panics; otherwise it commits.
func (s *Store) RunInTx(ctx context.Context, fn func(tx IngestTx) error) error {
	tx, err := s.q.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// txStore exposes the ingest queries bound to one open transaction.
type txStore struct {
	tx *sql.Tx
}

var _ IngestTx = (*txStore)(nil)
