// Package ingest implements the per-feed unit of work: fetch a feed,
// parse and validate it, and persist the outcome inside one
// transaction.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/podhoard/podhoard/app/database"
	"github.com/podhoard/podhoard/app/feed"
	"github.com/podhoard/podhoard/app/fetch"
)

type Updater struct {
	fetcher         fetch.Fetcher
	parser          *feed.Parser
	store           database.IngestStore
	disableShortcut bool
}

// Result of one feed update. Episodes is nil when ingestion
// short-circuited on unchanged content.
type Result struct {
	Podcast        *database.Podcast
	Location       *database.PodcastFeedLocation
	Episodes       []database.Episode
	Invalid        []feed.Invalid
	ShortCircuited bool
}

func NewUpdater(fetcher fetch.Fetcher, store database.IngestStore, disableShortcut bool) *Updater {
	return &Updater{
		fetcher:         fetcher,
		parser:          feed.NewParser(),
		store:           store,
		disableShortcut: disableShortcut,
	}
}

// Update runs one feed through fetch, hash, parse, validate and
// persist. Failures before commit leave no trace; invalid episodes are
// skipped and reported in the result, never as an error.
func (u *Updater) Update(ctx context.Context, feedURL string) (*Result, error) {
	started := time.Now()

	fetched, err := u.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", feedURL, err)
	}
	if fetched.StatusCode < 200 || fetched.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d fetching %s", fetched.StatusCode, feedURL)
	}

	if !utf8.Valid(fetched.Body) {
		return nil, fmt.Errorf("feed body from %s is not valid UTF-8", fetched.FinalURL)
	}
	digest := feed.ContentHash(fetched.Body)

	rawFeed, rawEpisodes, err := u.parser.Run(fetched.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed from %s: %w", fetched.FinalURL, err)
	}

	podcastMeta, err := feed.ValidateFeed(rawFeed)
	if err != nil {
		return nil, fmt.Errorf("rejected feed from %s: %w", fetched.FinalURL, err)
	}

	episodes, invalid := feed.ValidateEpisodes(rawEpisodes)
	for _, inv := range invalid {
		slog.Warn("Skipping invalid episode",
			"feed_url", fetched.FinalURL, "guid", inv.GUID, "reason", inv.Reason)
	}

	now := time.Now().UTC()
	result := &Result{Invalid: invalid}

	err = u.store.RunInTx(ctx, func(tx database.IngestTx) error {
		podcast, err := u.resolvePodcast(ctx, tx, podcastMeta, fetched.FinalURL, now)
		if err != nil {
			return err
		}
		result.Podcast = podcast

		location, err := tx.UpsertFeedLocation(ctx, podcast.ID, fetched.FinalURL, now)
		if err != nil {
			return err
		}
		result.Location = location

		if !u.disableShortcut {
			seen, err := tx.HasFeedContent(ctx, podcast.ID, digest)
			if err != nil {
				return err
			}
			if seen {
				result.ShortCircuited = true
				return nil
			}
		}

		if err := tx.UpsertFeedContent(ctx, &database.PodcastFeedContent{
			PodcastID:   podcast.ID,
			Sha256Hash:  digest,
			Body:        fetched.Body,
			RetrievedAt: now,
		}); err != nil {
			return err
		}

		stored := make([]database.Episode, 0, len(episodes))
		for _, ep := range episodes {
			dbEpisode := database.Episode{
				PodcastID:   podcast.ID,
				GUID:        ep.GUID,
				Title:       ep.Title,
				Description: ep.Description,
				LinkURL:     ep.LinkURL,
				MediaURL:    ep.MediaURL,
				MediaType:   ep.MediaType,
				Explicit:    ep.Explicit,
				PublishedAt: ep.PublishedAt,
			}
			if err := tx.UpsertEpisode(ctx, &dbEpisode); err != nil {
				return err
			}
			stored = append(stored, dbEpisode)
		}
		result.Episodes = stored

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest feed from %s: %w", fetched.FinalURL, err)
	}

	slog.Info("Feed update completed",
		"feed_url", fetched.FinalURL,
		"podcast_id", result.Podcast.ID,
		"episodes", len(result.Episodes),
		"invalid", len(invalid),
		"short_circuited", result.ShortCircuited,
		"duration", time.Since(started))

	return result, nil
}

// resolvePodcast finds the podcast any known feed location ties to the
// final URL, or inserts a new one. Resolving against the post-redirect
// URL keeps identity stable when directories hand out stale URLs.
func (u *Updater) resolvePodcast(ctx context.Context, tx database.IngestTx, meta *feed.Podcast, finalURL string, now time.Time) (*database.Podcast, error) {
	podcast, err := tx.GetPodcastByFeedURL(ctx, finalURL)
	if err != nil {
		return nil, err
	}

	if podcast == nil {
		podcast = &database.Podcast{
			Title:           meta.Title,
			ImageURL:        meta.ImageURL,
			Language:        meta.Language,
			LinkURL:         meta.LinkURL,
			LastRetrievedAt: now,
		}
		if err := tx.InsertPodcast(ctx, podcast); err != nil {
			return nil, err
		}
		return podcast, nil
	}

	podcast.Title = meta.Title
	podcast.ImageURL = meta.ImageURL
	podcast.Language = meta.Language
	podcast.LinkURL = meta.LinkURL
	podcast.LastRetrievedAt = now
	if err := tx.UpdatePodcast(ctx, podcast); err != nil {
		return nil, err
	}

	return podcast, nil
}
