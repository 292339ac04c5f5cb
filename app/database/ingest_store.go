package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetPodcastByFeedURL resolves a podcast through its feed location
// history. Any URL the podcast was ever retrieved from finds it, which
// keeps identity stable across redirects.
func (t *txStore) GetPodcastByFeedURL(ctx context.Context, feedURL string) (*Podcast, error) {
	var podcast Podcast
	err := t.tx.QueryRowContext(ctx, `
		SELECT p.id, p.title, COALESCE(p.image_url, ''), COALESCE(p.language, ''),
		       COALESCE(p.link_url, ''), p.last_retrieved_at, p.created_at, p.updated_at
		FROM podcasts p
		JOIN podcast_feed_locations l ON l.podcast_id = p.id
		WHERE l.feed_url = $1
		LIMIT 1
	`, feedURL).Scan(
		&podcast.ID, &podcast.Title, &podcast.ImageURL, &podcast.Language,
		&podcast.LinkURL, &podcast.LastRetrievedAt, &podcast.CreatedAt, &podcast.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get podcast by feed URL: %w", err)
	}

	return &podcast, nil
}

func (t *txStore) InsertPodcast(ctx context.Context, podcast *Podcast) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO podcasts (title, image_url, language, link_url, last_retrieved_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING id, created_at, updated_at
	`, podcast.Title, podcast.ImageURL, podcast.Language, podcast.LinkURL,
		podcast.LastRetrievedAt).Scan(&podcast.ID, &podcast.CreatedAt, &podcast.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert podcast: %w", err)
	}

	return nil
}

// UpdatePodcast overwrites the scalar fields wholesale, clearing ones
// the latest parse no longer carries.
func (t *txStore) UpdatePodcast(ctx context.Context, podcast *Podcast) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE podcasts
		SET title = $2, image_url = NULLIF($3, ''), language = NULLIF($4, ''),
		    link_url = NULLIF($5, ''), last_retrieved_at = $6, updated_at = NOW()
		WHERE id = $1
	`, podcast.ID, podcast.Title, podcast.ImageURL, podcast.Language,
		podcast.LinkURL, podcast.LastRetrievedAt)

	if err != nil {
		return fmt.Errorf("failed to update podcast: %w", err)
	}

	return nil
}

func (t *txStore) UpsertFeedLocation(ctx context.Context, podcastID int64, feedURL string, retrievedAt time.Time) (*PodcastFeedLocation, error) {
	location := PodcastFeedLocation{
		PodcastID: podcastID,
		FeedURL:   feedURL,
	}
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO podcast_feed_locations (podcast_id, feed_url, first_retrieved_at, last_retrieved_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (podcast_id, feed_url) DO UPDATE SET
			last_retrieved_at = EXCLUDED.last_retrieved_at
		RETURNING id, first_retrieved_at, last_retrieved_at
	`, podcastID, feedURL, retrievedAt).Scan(
		&location.ID, &location.FirstRetrievedAt, &location.LastRetrievedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert feed location: %w", err)
	}

	return &location, nil
}

func (t *txStore) HasFeedContent(ctx context.Context, podcastID int64, hash string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM podcast_feed_contents
			WHERE podcast_id = $1 AND sha256_hash = $2
		)
	`, podcastID, hash).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("failed to check feed content: %w", err)
	}

	return exists, nil
}

func (t *txStore) UpsertFeedContent(ctx context.Context, content *PodcastFeedContent) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO podcast_feed_contents (podcast_id, sha256_hash, body, retrieved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (podcast_id, sha256_hash) DO UPDATE SET
			retrieved_at = EXCLUDED.retrieved_at
		RETURNING id
	`, content.PodcastID, content.Sha256Hash, content.Body,
		content.RetrievedAt).Scan(&content.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert feed content: %w", err)
	}

	return nil
}

// UpsertEpisode overwrites the feed-owned fields from the freshest
// parse. Per-user state lives in other tables and is untouched.
func (t *txStore) UpsertEpisode(ctx context.Context, episode *Episode) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO episodes (podcast_id, guid, title, description, link_url,
		                      media_url, media_type, explicit, published_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), $8, $9)
		ON CONFLICT (podcast_id, guid) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			link_url = EXCLUDED.link_url,
			media_url = EXCLUDED.media_url,
			media_type = EXCLUDED.media_type,
			explicit = EXCLUDED.explicit,
			published_at = EXCLUDED.published_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, episode.PodcastID, episode.GUID, episode.Title, episode.Description,
		episode.LinkURL, episode.MediaURL, episode.MediaType, episode.Explicit,
		episode.PublishedAt).Scan(&episode.ID, &episode.CreatedAt, &episode.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert episode: %w", err)
	}

	return nil
}
