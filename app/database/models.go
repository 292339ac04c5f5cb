package database

import (
	"time"
)

// Podcast is one show. Scalar fields are overwritten wholesale on every
// successful re-ingest.
type Podcast struct {
	ID              int64
	Title           string
	ImageURL        string
	Language        string
	LinkURL         string
	LastRetrievedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PodcastFeedLocation associates a feed URL with a podcast. A podcast
// accumulates locations over time as redirects change its final URL;
// lookup through this table keeps re-ingestion idempotent.
type PodcastFeedLocation struct {
	ID               int64
	PodcastID        int64
	FeedURL          string
	FirstRetrievedAt time.Time
	LastRetrievedAt  time.Time
}

// PodcastFeedContent stores one fetched feed body, addressed by its
// SHA-256 digest. Unique per (podcast_id, sha256_hash).
type PodcastFeedContent struct {
	ID          int64
	PodcastID   int64
	Sha256Hash  string
	Body        []byte
	RetrievedAt time.Time
}

// Episode is unique per (podcast_id, guid). Re-ingesting a feed updates
// episodes in place, never duplicates them.
type Episode struct {
	ID          int64
	PodcastID   int64
	GUID        string
	Title       string
	Description string
	LinkURL     string
	MediaURL    string
	MediaType   string
	Explicit    bool
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DuePodcast is one unit of crawl work: a podcast due for refresh and
// its most recently retrieved feed URL.
type DuePodcast struct {
	PodcastID int64
	FeedURL   string
}
