package feed

import (
	"strings"
	"testing"
	"time"
)

func TestValidateFeed(t *testing.T) {
	podcast, err := ValidateFeed(&RawFeed{
		Title:    "  Test Podcast  ",
		Link:     "https://example.com",
		ImageURL: "https://example.com/cover.png",
		Language: "EN-us",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if podcast.Title != "Test Podcast" {
		t.Errorf("Expected trimmed title 'Test Podcast', got: %s", podcast.Title)
	}
	if podcast.Language != "en-US" {
		t.Errorf("Expected normalized language 'en-US', got: %s", podcast.Language)
	}
}

func TestValidateFeedWithoutTitle(t *testing.T) {
	if _, err := ValidateFeed(&RawFeed{Link: "https://example.com"}); err == nil {
		t.Fatal("Expected error for feed without title")
	}
}

func TestValidateFeedKeepsUnknownLanguage(t *testing.T) {
	podcast, err := ValidateFeed(&RawFeed{Title: "T", Language: "!!bogus!!"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if podcast.Language != "!!bogus!!" {
		t.Errorf("Expected unparseable language to pass through, got: %s", podcast.Language)
	}
}

func TestValidateEpisodes(t *testing.T) {
	raws := []RawEpisode{
		{
			GUID:        "ep-1",
			Title:       "Episode 1",
			Link:        "https://example.com/ep1",
			PubDate:     "Mon, 03 Jul 2023 10:00:00 GMT",
			Description: "First",
			Explicit:    "Yes",
			MediaURL:    "https://example.com/ep1.mp3",
			MediaType:   "audio/mpeg",
		},
		{
			// no GUID
			Title:    "Episode 2",
			PubDate:  "Mon, 10 Jul 2023 10:00:00 GMT",
			MediaURL: "https://example.com/ep2.mp3",
		},
	}

	episodes, invalid := ValidateEpisodes(raws)

	if len(episodes) != 1 {
		t.Fatalf("Expected 1 valid episode, got: %d", len(episodes))
	}
	if len(invalid) != 1 {
		t.Fatalf("Expected 1 invalid episode, got: %d", len(invalid))
	}

	ep := episodes[0]
	if ep.GUID != "ep-1" {
		t.Errorf("Expected GUID 'ep-1', got: %s", ep.GUID)
	}
	if !ep.Explicit {
		t.Error("Expected explicit flag to be true for 'Yes'")
	}
	want := time.Date(2023, time.July, 3, 10, 0, 0, 0, time.UTC)
	if !ep.PublishedAt.Equal(want) {
		t.Errorf("Expected published at %v, got %v", want, ep.PublishedAt)
	}

	if invalid[0].Reason != "missing GUID" {
		t.Errorf("Expected reason 'missing GUID', got: %s", invalid[0].Reason)
	}
}

func TestValidateEpisodeRequiredFields(t *testing.T) {
	base := RawEpisode{
		GUID:     "ep-1",
		Title:    "Episode",
		PubDate:  "Mon, 03 Jul 2023 10:00:00 GMT",
		MediaURL: "https://example.com/ep.mp3",
	}

	cases := map[string]struct {
		mutate func(*RawEpisode)
		reason string
	}{
		"guid":     {func(r *RawEpisode) { r.GUID = "" }, "missing GUID"},
		"mediaURL": {func(r *RawEpisode) { r.MediaURL = "" }, "missing media URL"},
		"pubDate":  {func(r *RawEpisode) { r.PubDate = "" }, "missing publish date"},
		"title":    {func(r *RawEpisode) { r.Title = "" }, "missing title"},
	}

	for name, tc := range cases {
		raw := base
		tc.mutate(&raw)

		episodes, invalid := ValidateEpisodes([]RawEpisode{raw})
		if len(episodes) != 0 {
			t.Errorf("%s: expected no valid episodes", name)
		}
		if len(invalid) != 1 || invalid[0].Reason != tc.reason {
			t.Errorf("%s: expected reason %q, got %+v", name, tc.reason, invalid)
		}
	}
}

func TestValidateEpisodeBadDate(t *testing.T) {
	episodes, invalid := ValidateEpisodes([]RawEpisode{{
		GUID:     "ep-1",
		Title:    "Episode",
		PubDate:  "sometime last week",
		MediaURL: "https://example.com/ep.mp3",
	}})

	if len(episodes) != 0 {
		t.Fatal("Expected no valid episodes")
	}
	if len(invalid) != 1 {
		t.Fatal("Expected 1 invalid episode")
	}
	if invalid[0].GUID != "ep-1" {
		t.Errorf("Expected GUID carried through, got: %s", invalid[0].GUID)
	}
	if !strings.Contains(invalid[0].Reason, "publish date") {
		t.Errorf("Expected date reason, got: %s", invalid[0].Reason)
	}
}

func TestValidateEpisodeExplicitVariants(t *testing.T) {
	for value, want := range map[string]bool{"yes": true, "Yes": true, "no": false, "true": false, "": false} {
		episodes, _ := ValidateEpisodes([]RawEpisode{{
			GUID:     "ep",
			Title:    "Episode",
			PubDate:  "Mon, 03 Jul 2023 10:00:00 GMT",
			MediaURL: "https://example.com/ep.mp3",
			Explicit: value,
		}})
		if len(episodes) != 1 {
			t.Fatalf("explicit %q: expected valid episode", value)
		}
		if episodes[0].Explicit != want {
			t.Errorf("explicit %q: expected %v", value, want)
		}
	}
}
