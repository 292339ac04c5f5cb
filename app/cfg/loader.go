package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"podhoard" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"podhoard" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"podhoard" description:"Database name"`

	// Crawl configuration
	RefreshIntervalHours int  `long:"refresh-interval" env:"REFRESH_INTERVAL_HOURS" default:"1" description:"Re-crawl podcasts not retrieved within this many hours"`
	CrawlPageSize        int  `long:"crawl-page-size" env:"CRAWL_PAGE_SIZE" default:"100" description:"Podcasts fetched per page while enumerating due feeds"`
	CrawlWorkerCount     int  `long:"crawl-workers" env:"CRAWL_WORKERS" default:"10" description:"Number of concurrent feed update workers"`
	CrawlQueueSize       int  `long:"crawl-queue-size" env:"CRAWL_QUEUE_SIZE" default:"100" description:"Capacity of the crawl work queue"`
	FetchTimeout         int  `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	DisableShortcut      bool `long:"disable-shortcut" env:"DISABLE_SHORTCUT" description:"Disable the unchanged-content ingestion shortcut"`

	// Retention configuration
	CleanBatchLimit      int `long:"clean-batch-limit" env:"CLEAN_BATCH_LIMIT" default:"1000" description:"Maximum rows deleted per cleanup batch"`
	FeedContentKeep      int `long:"feed-content-keep" env:"FEED_CONTENT_KEEP" default:"10" description:"Historical feed content rows kept per podcast"`
	AccountRetentionDays int `long:"account-retention" env:"ACCOUNT_RETENTION_DAYS" default:"7" description:"Days before stale ephemeral accounts are removed"`
	KeyRetentionHours    int `long:"key-retention" env:"KEY_RETENTION_HOURS" default:"24" description:"Hours before expired keys are removed"`
	SearchRetentionHours int `long:"search-retention" env:"SEARCH_RETENTION_HOURS" default:"24" description:"Hours before expired directory searches are removed"`
	StubRetentionDays    int `long:"stub-retention" env:"STUB_RETENTION_DAYS" default:"30" description:"Days before dangling directory podcast stubs are removed"`

	// Application configuration
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SeedsFile string `long:"seeds-file" env:"SEEDS_FILE" description:"YAML file with feed URLs to ingest at startup (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"podhoard/1.0" description:"User agent string for feed requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:               raw.DBHost,
		DBPort:               raw.DBPort,
		DBUser:               raw.DBUser,
		DBPassword:           raw.DBPassword,
		DBName:               raw.DBName,
		RefreshIntervalHours: raw.RefreshIntervalHours,
		CrawlPageSize:        raw.CrawlPageSize,
		CrawlWorkerCount:     raw.CrawlWorkerCount,
		CrawlQueueSize:       raw.CrawlQueueSize,
		FetchTimeout:         raw.FetchTimeout,
		DisableShortcut:      raw.DisableShortcut,
		CleanBatchLimit:      raw.CleanBatchLimit,
		FeedContentKeep:      raw.FeedContentKeep,
		AccountRetentionDays: raw.AccountRetentionDays,
		KeyRetentionHours:    raw.KeyRetentionHours,
		SearchRetentionHours: raw.SearchRetentionHours,
		StubRetentionDays:    raw.StubRetentionDays,
		Port:                 raw.Port,
		SeedsFile:            raw.SeedsFile,
		UserAgent:            raw.UserAgent,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
