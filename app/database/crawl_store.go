package database

import (
	"context"
	"fmt"
	"time"
)

// GetDuePodcasts returns one page of podcasts whose feed has not been
// retrieved since cutoff, paired with each podcast's most recently
// retrieved feed URL. Keyset pagination (id > afterID) stays stable
// under concurrent inserts, unlike offsets.
func (s *Store) GetDuePodcasts(ctx context.Context, cutoff time.Time, afterID int64, limit int) ([]DuePodcast, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT p.id, l.feed_url
		FROM podcasts p
		JOIN LATERAL (
			SELECT feed_url
			FROM podcast_feed_locations
			WHERE podcast_id = p.id
			ORDER BY last_retrieved_at DESC
			LIMIT 1
		) l ON TRUE
		WHERE p.id > $1
		  AND p.last_retrieved_at <= $2
		ORDER BY p.id
		LIMIT $3
	`, afterID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due podcasts: %w", err)
	}
	defer rows.Close()

	var due []DuePodcast
	for rows.Next() {
		var d DuePodcast
		if err := rows.Scan(&d.PodcastID, &d.FeedURL); err != nil {
			return nil, fmt.Errorf("failed to scan due podcast row: %w", err)
		}
		due = append(due, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due podcast rows: %w", err)
	}

	return due, nil
}

func (s *Store) GetPodcastCount(ctx context.Context) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM podcasts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get podcast count: %w", err)
	}
	return count, nil
}

func (s *Store) GetEpisodeCount(ctx context.Context) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM episodes").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get episode count: %w", err)
	}
	return count, nil
}
