package feed

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RFC 2822 assigns fixed offsets to its obsolete zone names. time.Parse
// would otherwise attach a zero offset to an unrecognized abbreviation,
// shifting the instant.
var zoneOffsets = map[string]int{
	"UT":  0,
	"GMT": 0,
	"UTC": 0,
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
}

var pubDateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04 MST",
	time.RFC3339,
}

// Textual repairs applied once, in order, when strict parsing fails.
var pubDateRepairs = []struct {
	pattern *regexp.Regexp
	replace string
}{
	// A trailing -0000 means "offset unknown"; read it as UTC.
	{regexp.MustCompile(`-0000$`), "+0000"},
	// Zero-pad single-digit hour components (H:MM -> 0H:MM).
	{regexp.MustCompile(`\b(\d)(:\d{2})`), "0${1}${2}"},
}

// ParsePubDate parses an RFC 2822 publish date. Feeds in the wild get
// this wrong constantly, so a failed strict parse is retried once after
// the repair rules run. The error return marks the episode invalid; it
// is never fatal to the surrounding feed.
func ParsePubDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty publish date")
	}

	s = resolveZoneName(s)

	if t, ok := tryPubDateLayouts(s); ok {
		return t, nil
	}

	repaired := s
	for _, r := range pubDateRepairs {
		repaired = r.pattern.ReplaceAllString(repaired, r.replace)
	}
	if repaired != s {
		if t, ok := tryPubDateLayouts(repaired); ok {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable publish date: %q", value)
}

func tryPubDateLayouts(s string) (time.Time, bool) {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveZoneName replaces a known trailing zone abbreviation with its
// numeric offset.
func resolveZoneName(s string) string {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return s
	}

	offset, ok := zoneOffsets[s[i+1:]]
	if !ok {
		return s
	}

	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%s%02d%02d", s[:i+1], sign, offset/3600, (offset%3600)/60)
}
