package feed

import "time"

// RawFeed holds channel-level fields exactly as they appear in the
// document. Every field is optional; absence is an empty string.
type RawFeed struct {
	Title    string
	Link     string
	Language string
	ImageURL string
}

// RawEpisode holds item-level fields exactly as they appear in the
// document, before validation and coercion.
type RawEpisode struct {
	GUID        string
	Title       string
	Link        string
	PubDate     string
	Description string
	Explicit    string
	MediaURL    string
	MediaType   string
}

// Podcast is a validated channel, ready for persistence.
type Podcast struct {
	Title    string
	LinkURL  string
	ImageURL string
	Language string
}

// Episode is a validated item, ready for persistence.
type Episode struct {
	GUID        string
	Title       string
	Description string
	LinkURL     string
	MediaURL    string
	MediaType   string
	Explicit    bool
	PublishedAt time.Time
}

// Invalid records an episode that failed validation and was skipped.
type Invalid struct {
	GUID   string
	Reason string
}
