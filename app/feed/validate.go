package feed

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ValidateFeed promotes a raw channel to a persistable podcast. A
// channel without a title is rejected, which fails ingestion of the
// whole feed.
func ValidateFeed(raw *RawFeed) (*Podcast, error) {
	if strings.TrimSpace(raw.Title) == "" {
		return nil, fmt.Errorf("feed has no title")
	}

	return &Podcast{
		Title:    strings.TrimSpace(raw.Title),
		LinkURL:  raw.Link,
		ImageURL: raw.ImageURL,
		Language: normalizeLanguage(raw.Language),
	}, nil
}

// ValidateEpisodes promotes raw items to persistable episodes. Items
// missing a required field are returned as Invalid and skipped; this is
// a routine outcome, not an error.
func ValidateEpisodes(raws []RawEpisode) ([]Episode, []Invalid) {
	var episodes []Episode
	var invalid []Invalid

	for _, raw := range raws {
		episode, inv := validateEpisode(raw)
		if inv != nil {
			invalid = append(invalid, *inv)
			continue
		}
		episodes = append(episodes, *episode)
	}

	return episodes, invalid
}

func validateEpisode(raw RawEpisode) (*Episode, *Invalid) {
	if raw.GUID == "" {
		return nil, &Invalid{Reason: "missing GUID"}
	}
	if raw.MediaURL == "" {
		return nil, &Invalid{GUID: raw.GUID, Reason: "missing media URL"}
	}
	if raw.PubDate == "" {
		return nil, &Invalid{GUID: raw.GUID, Reason: "missing publish date"}
	}
	if raw.Title == "" {
		return nil, &Invalid{GUID: raw.GUID, Reason: "missing title"}
	}

	publishedAt, err := ParsePubDate(raw.PubDate)
	if err != nil {
		return nil, &Invalid{GUID: raw.GUID, Reason: fmt.Sprintf("unparseable publish date: %v", err)}
	}

	return &Episode{
		GUID:        raw.GUID,
		Title:       raw.Title,
		Description: raw.Description,
		LinkURL:     raw.Link,
		MediaURL:    raw.MediaURL,
		MediaType:   raw.MediaType,
		Explicit:    strings.EqualFold(strings.TrimSpace(raw.Explicit), "yes"),
		PublishedAt: publishedAt,
	}, nil
}

// normalizeLanguage canonicalizes a BCP 47 style language field. Feeds
// carry values like "EN-us"; unparseable values pass through untouched.
func normalizeLanguage(value string) string {
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return value
	}
	return tag.String()
}
