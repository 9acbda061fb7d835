package model

import "time"

// Config is the full configuration tree. Values merge from defaults, the
// config file (~/.scholarlytrust/config.yaml), SCHOLARLYTRUST_* environment
// variables, and CLI flags, in increasing priority.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	OpenAlex    OpenAlexConfig    `yaml:"openalex" mapstructure:"openalex"`
	Hijack      HijackConfig      `yaml:"hijack" mapstructure:"hijack"`
	Homepage    HomepageConfig    `yaml:"homepage" mapstructure:"homepage"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound HTTP behavior shared by all fetchers.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// OpenAlexConfig controls the metadata provider client.
type OpenAlexConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// MailTo joins the OpenAlex polite pool; optional but recommended.
	MailTo string `yaml:"mailto" mapstructure:"mailto"`
	// RequestsPerSecond caps the API request rate.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	// WorksSample is how many recent works feed retraction and ORCID stats.
	WorksSample int `yaml:"works_sample" mapstructure:"works_sample"`
	// CacheTTL bounds the session-scoped response cache. Responses are
	// never persisted across runs.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	NoCache  bool          `yaml:"no_cache" mapstructure:"no_cache"`
}

// HijackConfig locates the hijacked-journal registry.
type HijackConfig struct {
	ISSNFile  string `yaml:"issn_file" mapstructure:"issn_file"`
	TitleFile string `yaml:"title_file" mapstructure:"title_file"`
	// SnapshotURL optionally refreshes the registry from a remote list;
	// the download is cached on disk for SnapshotTTL.
	SnapshotURL string        `yaml:"snapshot_url" mapstructure:"snapshot_url"`
	SnapshotDir string        `yaml:"snapshot_dir" mapstructure:"snapshot_dir"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" mapstructure:"snapshot_ttl"`
}

// HomepageConfig controls the journal homepage probe.
type HomepageConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// ScoringConfig holds every tunable of the rule engine. Penalties are keyed
// by check name; unknown names are ignored, missing names fall back to the
// engine defaults.
type ScoringConfig struct {
	Baseline  int            `yaml:"baseline" mapstructure:"baseline"`
	Penalties map[string]int `yaml:"penalties" mapstructure:"penalties"`

	// Band thresholds: score >= TrustedMin is trusted, score >=
	// QuestionableMin is questionable, anything lower is predatory.
	TrustedMin      int `yaml:"trusted_min" mapstructure:"trusted_min"`
	QuestionableMin int `yaml:"questionable_min" mapstructure:"questionable_min"`

	// Check condition tunables.
	MaxRetractionRate float64 `yaml:"max_retraction_rate" mapstructure:"max_retraction_rate"`
	MaxRetractedCount int     `yaml:"max_retracted_count" mapstructure:"max_retracted_count"`
	MinAPCUSD         int     `yaml:"min_apc_usd" mapstructure:"min_apc_usd"`
	MaxAPCUSD         int     `yaml:"max_apc_usd" mapstructure:"max_apc_usd"`
	HighWorksCount    int     `yaml:"high_works_count" mapstructure:"high_works_count"`
	LowHIndex         int     `yaml:"low_h_index" mapstructure:"low_h_index"`
	MaxFields         int     `yaml:"max_fields" mapstructure:"max_fields"`
	MinORCIDShare     float64 `yaml:"min_orcid_share" mapstructure:"min_orcid_share"`
	StaleYears        int     `yaml:"stale_years" mapstructure:"stale_years"`
}

// LLMConfig configures the optional rationale helper.
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "" (disabled).
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"-"` // env only, never written to disk
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
	JSONPath string `yaml:"json_path" mapstructure:"json_path"`
	NoColor  bool   `yaml:"no_color" mapstructure:"no_color"`
}

// DefaultConfig returns the built-in defaults. Penalty values follow the
// deduction rules of the original assessment heuristics.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "ScholarlyTrust/1.0 (+https://github.com/scholarlytrust/scholarlytrust)",
			MaxBodyBytes: 2_000_000,
		},
		OpenAlex: OpenAlexConfig{
			BaseURL:           "https://api.openalex.org",
			RequestsPerSecond: 8,
			Burst:             4,
			WorksSample:       200,
			CacheTTL:          15 * time.Minute,
		},
		Hijack: HijackConfig{
			ISSNFile:    "docs/hijacked_issn.txt",
			TitleFile:   "docs/hijacked_journal_title.txt",
			SnapshotTTL: 24 * time.Hour,
		},
		Homepage: HomepageConfig{
			Enabled:           true,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Scoring: ScoringConfig{
			Baseline:          100,
			Penalties:         map[string]int{},
			TrustedMin:        80,
			QuestionableMin:   50,
			MaxRetractionRate: 0.01,
			MaxRetractedCount: 5,
			MinAPCUSD:         200,
			MaxAPCUSD:         3000,
			HighWorksCount:    500,
			LowHIndex:         10,
			MaxFields:         10,
			MinORCIDShare:     0.5,
			StaleYears:        5,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 500,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{},
	}
}
