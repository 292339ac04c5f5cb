package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedsFile struct {
	Feeds []string `yaml:"feeds"`
}

// LoadSeeds reads a YAML file listing feed URLs to ingest at startup.
// A missing path returns an empty list; a missing file is an error.
func LoadSeeds(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds file: %w", err)
	}

	var seeds seedsFile
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds file: %w", err)
	}

	urls := make([]string, 0, len(seeds.Feeds))
	for _, url := range seeds.Feeds {
		if url == "" {
			continue
		}
		urls = append(urls, url)
	}

	return urls, nil
}
