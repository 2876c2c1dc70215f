package model

import "time"

// Config is the complete runtime configuration. It is built once by the CLI
// (flags > env > config file > defaults) and passed explicitly to each
// component constructor; nothing reads ambient global state.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Discovery  DiscoveryConfig  `yaml:"error_discovery" mapstructure:"error_discovery"`
	Collection CollectionConfig `yaml:"collection" mapstructure:"collection"`
	Generation GenerationConfig `yaml:"content_generation" mapstructure:"content_generation"`
	Quality    QualityConfig    `yaml:"quality" mapstructure:"quality"`
	WordPress  WordPressConfig  `yaml:"wordpress" mapstructure:"wordpress"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound requests made by adapters and the collector
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// CacheConfig controls response caching for provider APIs and scrapes
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// DiscoveryConfig configures the source adapters and candidate selection
type DiscoveryConfig struct {
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Selection SelectionConfig `yaml:"selection_criteria" mapstructure:"selection_criteria"`
	// InterCallDelay paces sequential adapter queries to respect provider
	// rate limits.
	InterCallDelay time.Duration `yaml:"inter_call_delay" mapstructure:"inter_call_delay"`
}

// SourcesConfig enables and configures individual discovery providers
type SourcesConfig struct {
	StackOverflow StackOverflowConfig `yaml:"stackoverflow" mapstructure:"stackoverflow"`
	Reddit        RedditConfig        `yaml:"reddit" mapstructure:"reddit"`
	Trends        TrendsConfig        `yaml:"google_trends" mapstructure:"google_trends"`
}

// StackOverflowConfig configures the Stack Exchange API adapter
type StackOverflowConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	MinScore   int    `yaml:"min_score" mapstructure:"min_score"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
}

// RedditConfig configures the Reddit adapter. Without credentials the
// adapter falls back to public RSS feeds.
type RedditConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	MinUpvotes   int    `yaml:"min_upvotes" mapstructure:"min_upvotes"`
}

// TrendsConfig configures the synthetic trends adapter
type TrendsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// MaxCandidates caps how many catalog entries are emitted per run.
	MaxCandidates int `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// SelectionConfig controls candidate filtering
type SelectionConfig struct {
	MinConfidence   float64  `yaml:"min_confidence_score" mapstructure:"min_confidence_score"`
	ExcludeKeywords []string `yaml:"exclude_keywords" mapstructure:"exclude_keywords"`
}

// CollectionConfig controls solution collection and aggregation
type CollectionConfig struct {
	MaxSolutions      int      `yaml:"max_solutions" mapstructure:"max_solutions"`
	MaxCitations      int      `yaml:"max_sources" mapstructure:"max_sources"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int      `yaml:"burst" mapstructure:"burst"`
	OfficialDomains   []string `yaml:"official_domains" mapstructure:"official_domains"`
	ForumDomains      []string `yaml:"forum_domains" mapstructure:"forum_domains"`
}

// GenerationConfig configures the OpenAI article generator
type GenerationConfig struct {
	APIKey        string  `yaml:"api_key" mapstructure:"api_key"`
	Model         string  `yaml:"model" mapstructure:"model"`
	MaxTokens     int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature   float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelay    int     `yaml:"retry_delay" mapstructure:"retry_delay"` // seconds
	BackoffFactor int     `yaml:"backoff_factor" mapstructure:"backoff_factor"`
}

// QualityConfig configures the article quality gate
type QualityConfig struct {
	MinScore     float64 `yaml:"min_seo_score" mapstructure:"min_seo_score"`
	MinWordCount int     `yaml:"min_word_count" mapstructure:"min_word_count"`
	MaxWordCount int     `yaml:"max_word_count" mapstructure:"max_word_count"`
	// Connectives are the transition words counted by the readability check.
	// Defaults target Japanese articles, matching the generated content.
	Connectives     []string `yaml:"connectives" mapstructure:"connectives"`
	AllowLowQuality bool     `yaml:"allow_low_quality" mapstructure:"allow_low_quality"`
}

// WordPressConfig configures the publishing REST client
type WordPressConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	Username        string `yaml:"username" mapstructure:"username"`
	AppPassword     string `yaml:"app_password" mapstructure:"app_password"`
	AutoPublish     bool   `yaml:"auto_publish" mapstructure:"auto_publish"`
	Status          string `yaml:"status" mapstructure:"status"`
	DefaultCategory string `yaml:"default_category" mapstructure:"default_category"`
}

// StorageConfig configures on-disk article persistence
type StorageConfig struct {
	ArticlesDir string `yaml:"articles_dir" mapstructure:"articles_dir"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults, overridable by config file,
// environment, and flags.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "ErrorArticleGen/1.0 (+https://github.com/daishir0/AutoErrorArticleGen)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Discovery: DiscoveryConfig{
			Sources: SourcesConfig{
				StackOverflow: StackOverflowConfig{
					Enabled:    true,
					MinScore:   5,
					MaxResults: 50,
				},
				Reddit: RedditConfig{
					Enabled:    true,
					MinUpvotes: 5,
				},
				Trends: TrendsConfig{
					Enabled:       true,
					MaxCandidates: 20,
				},
			},
			Selection: SelectionConfig{
				MinConfidence:   0.5,
				ExcludeKeywords: []string{"test", "sample", "example", "dummy"},
			},
			InterCallDelay: time.Second,
		},
		Collection: CollectionConfig{
			MaxSolutions:      10,
			MaxCitations:      15,
			RequestsPerSecond: 2,
			Burst:             3,
			OfficialDomains: []string{
				"learn.microsoft.com",
				"docs.microsoft.com",
				"support.microsoft.com",
				"support.apple.com",
				"developer.apple.com",
			},
			ForumDomains: []string{
				"discussions.apple.com",
				"answers.microsoft.com",
			},
		},
		Generation: GenerationConfig{
			Model:         "gpt-4o-mini",
			MaxTokens:     6000,
			Temperature:   0.7,
			MaxRetries:    3,
			RetryDelay:    2,
			BackoffFactor: 2,
		},
		Quality: QualityConfig{
			MinScore:     70,
			MinWordCount: 2000,
			MaxWordCount: 8000,
			Connectives: []string{
				"しかし", "ただし", "また", "さらに", "そのため", "つまり", "なお",
			},
		},
		WordPress: WordPressConfig{
			AutoPublish: true,
			Status:      "publish",
		},
		Storage: StorageConfig{
			ArticlesDir: "articles",
		},
	}
}
