package database

import (
	"context"
	"time"
)

// IngestTx is the slice of the store a feed update uses inside its
// transaction.
type IngestTx interface {
	GetPodcastByFeedURL(ctx context.Context, feedURL string) (*Podcast, error)
	InsertPodcast(ctx context.Context, podcast *Podcast) error
	UpdatePodcast(ctx context.Context, podcast *Podcast) error
	UpsertFeedLocation(ctx context.Context, podcastID int64, feedURL string, retrievedAt time.Time) (*PodcastFeedLocation, error)
	HasFeedContent(ctx context.Context, podcastID int64, hash string) (bool, error)
	UpsertFeedContent(ctx context.Context, content *PodcastFeedContent) error
	UpsertEpisode(ctx context.Context, episode *Episode) error
}

// IngestStore scopes a feed update to one transaction: fn either commits
// as a whole or leaves no trace.
type IngestStore interface {
	RunInTx(ctx context.Context, fn func(tx IngestTx) error) error
}

// CrawlStore enumerates due podcasts with keyset pagination.
type CrawlStore interface {
	GetDuePodcasts(ctx context.Context, cutoff time.Time, afterID int64, limit int) ([]DuePodcast, error)
}

// CleanupStore deletes expired rows in bounded batches. Each call
// removes at most limit rows and reports how many went.
type CleanupStore interface {
	DeleteStaleEphemeralAccounts(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	DeleteExpiredKeys(ctx context.Context, now time.Time, limit int) (int64, error)
	DeleteExpiredDirectorySearches(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	DeleteDanglingDirectoryPodcasts(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	DeleteExcessFeedContent(ctx context.Context, keep int, limit int) (int64, error)
}

// StatsStore backs the operational endpoints.
type StatsStore interface {
	GetPodcastCount(ctx context.Context) (int, error)
	GetEpisodeCount(ctx context.Context) (int, error)
}
