package api

import (
	"context"

	"github.com/podhoard/podhoard/app/cleaner"
	"github.com/podhoard/podhoard/app/crawler"
	"github.com/podhoard/podhoard/app/database"
)

type CrawlRunner interface {
	Run(ctx context.Context) (*crawler.Report, error)
}

type SweepRunner interface {
	Sweep(ctx context.Context) (*cleaner.Report, error)
}

var (
	_ CrawlRunner = (*crawler.Crawler)(nil)
	_ SweepRunner = (*cleaner.Cleaner)(nil)
)

type Handler struct {
	stats    database.StatsStore
	crawler  CrawlRunner
	cleaner  SweepRunner
	version  string
	crawling chan struct{}
	sweeping chan struct{}
}
