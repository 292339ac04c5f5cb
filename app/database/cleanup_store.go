package database

import (
	"context"
	"fmt"
	"time"
)

// Batched deletes: Postgres DELETE has no LIMIT, so each statement
// selects at most limit ids first. Keeping batches small bounds
// transaction and lock duration; callers loop until a batch deletes
// nothing.

func (s *Store) DeleteStaleEphemeralAccounts(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	result, err := s.q.ExecContext(ctx, `
		DELETE FROM accounts
		WHERE id IN (
			SELECT id FROM accounts
			WHERE ephemeral AND created_at < $1
			ORDER BY id
			LIMIT $2
		)
	`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale ephemeral accounts: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) DeleteExpiredKeys(ctx context.Context, now time.Time, limit int) (int64, error) {
	result, err := s.q.ExecContext(ctx, `
		DELETE FROM account_keys
		WHERE id IN (
			SELECT id FROM account_keys
			WHERE expires_at < $1
			ORDER BY id
			LIMIT $2
		)
	`, now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired keys: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) DeleteExpiredDirectorySearches(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	result, err := s.q.ExecContext(ctx, `
		DELETE FROM directory_searches
		WHERE id IN (
			SELECT id FROM directory_searches
			WHERE created_at < $1
			ORDER BY id
			LIMIT $2
		)
	`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired directory searches: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) DeleteDanglingDirectoryPodcasts(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	result, err := s.q.ExecContext(ctx, `
		DELETE FROM directory_podcasts
		WHERE id IN (
			SELECT id FROM directory_podcasts
			WHERE podcast_id IS NULL AND created_at < $1
			ORDER BY id
			LIMIT $2
		)
	`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete dangling directory podcasts: %w", err)
	}
	return result.RowsAffected()
}

// DeleteExcessFeedContent prunes feed content history beyond the keep
// newest rows per podcast, oldest first.
func (s *Store) DeleteExcessFeedContent(ctx context.Context, keep int, limit int) (int64, error) {
	result, err := s.q.ExecContext(ctx, `
		DELETE FROM podcast_feed_contents
		WHERE id IN (
			SELECT id FROM (
				SELECT id,
				       ROW_NUMBER() OVER (
					       PARTITION BY podcast_id
					       ORDER BY retrieved_at DESC, id DESC
				       ) AS recency
				FROM podcast_feed_contents
			) ranked
			WHERE recency > $1
			ORDER BY id
			LIMIT $2
		)
	`, keep, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete excess feed content: %w", err)
	}
	return result.RowsAffected()
}
