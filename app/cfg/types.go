package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Crawl configuration
	RefreshIntervalHours int
	CrawlPageSize        int
	CrawlWorkerCount     int
	CrawlQueueSize       int
	FetchTimeout         int
	DisableShortcut      bool

	// Retention configuration
	CleanBatchLimit      int
	FeedContentKeep      int
	AccountRetentionDays int
	KeyRetentionHours    int
	SearchRetentionHours int
	StubRetentionDays    int

	// Application configuration
	Port      string
	SeedsFile string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
