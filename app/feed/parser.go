package feed

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses feed data into raw channel and item fields. It fails only
// when no feed structure can be found at all; missing fields on an
// otherwise well-formed document are left empty for the validation step.
func (p *Parser) Run(data []byte) (*RawFeed, []RawEpisode, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	raw := &RawFeed{
		Title:    parsed.Title,
		Link:     parsed.Link,
		Language: parsed.Language,
	}

	if parsed.Image != nil {
		raw.ImageURL = parsed.Image.URL
	}
	if raw.ImageURL == "" && parsed.ITunesExt != nil {
		raw.ImageURL = parsed.ITunesExt.Image
	}

	episodes := make([]RawEpisode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		episodes = append(episodes, p.rawEpisode(item))
	}

	return raw, episodes, nil
}

func (p *Parser) rawEpisode(item *gofeed.Item) RawEpisode {
	raw := RawEpisode{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       item.Title,
		Link:        item.Link,
		PubDate:     item.Published,
		Description: item.Description,
	}

	if item.ITunesExt != nil {
		raw.Explicit = item.ITunesExt.Explicit
	}

	// Media metadata comes from the first enclosure when present, falling
	// back to a media:content element.
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		raw.MediaURL = item.Enclosures[0].URL
		raw.MediaType = item.Enclosures[0].Type
	} else if media, ok := item.Extensions["media"]; ok {
		if contents, ok := media["content"]; ok && len(contents) > 0 {
			raw.MediaURL = contents[0].Attrs["url"]
			raw.MediaType = contents[0].Attrs["type"]
		}
	}

	return raw
}
