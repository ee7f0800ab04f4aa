package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "seqatlas/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// APIConfig holds settings for the analysis-service client.
type APIConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the root of the analysis service API.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Key is the API key attached to every request. Usually loaded from
	// the secrets directory rather than the config file.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// JobConfig holds settings for job status polling.
type JobConfig struct {
	// PollInterval is the delay between consecutive status polls
	// (default 5s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// MaxAttempts is the poll budget before the job is declared timed out
	// (default 60).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// ResultCount is the number of similarity hits requested once a job
	// completes (default 50).
	ResultCount int `json:"result_count" yaml:"result_count"`
}

// CacheConfig holds settings for the reference-dataset cache.
type CacheConfig struct {
	// Dir is the directory holding the local sqlite snapshot
	// (default "cache").
	Dir string `json:"dir" yaml:"dir"`

	// SnapshotTTL is how long a local snapshot is served before the
	// dataset is refetched (default 24h). Zero disables the snapshot.
	SnapshotTTL time.Duration `json:"snapshot_ttl" yaml:"snapshot_ttl"`
}

// ResolverConfig holds settings for accession resolution.
type ResolverConfig struct {
	// StripPrefixes lists organizational accession prefixes removed from
	// query identifiers by the prefix-stripped strategy (default ["NZ_"]).
	StripPrefixes []string `json:"strip_prefixes" yaml:"strip_prefixes"`

	// AllowSubstring enables the low-confidence containment strategy.
	// Off by default: it can match unrelated identifiers.
	AllowSubstring bool `json:"allow_substring" yaml:"allow_substring"`
}

// PlayerConfig holds settings for the time-lapse player.
type PlayerConfig struct {
	// TickInterval is the delay between animation frames (default 1s).
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	API      APIConfig      `json:"api" yaml:"api"`
	Job      JobConfig      `json:"job" yaml:"job"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver"`
	Player   PlayerConfig   `json:"player" yaml:"player"`
}
