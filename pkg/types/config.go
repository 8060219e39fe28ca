package types

import "time"

// HTTPConfig holds shared HTTP settings used by the lookup parsers.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citation-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LookupConfig holds settings for the parsers that query bibliographic
// services (OpenAlex, Crossref).
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// RequestsPerSecond caps the request rate per service (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ParserName identifies a candidate producer.
type ParserName string

const (
	ParserReference ParserName = "reference"
	ParserOpenAlex  ParserName = "openalex"
	ParserCrossref  ParserName = "crossref"
)

// FusionConfig holds settings for the fusion stage.
type FusionConfig struct {
	// ScoreThreshold excludes candidates scoring below it (default 0, no filtering).
	ScoreThreshold int `json:"score_threshold" yaml:"score_threshold"`

	// Parsers lists the candidate producers to run, in order.
	Parsers []ParserName `json:"parsers" yaml:"parsers"`
}

// StoreConfig holds settings for the citation store.
type StoreConfig struct {
	// Dir is the directory holding citations.db and exports.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of listed citations (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LoggingConfig selects the log level, format, and optional log file.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format"`

	// FilePath, when set, also writes logs to a rotated file.
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`

	// FileMaxSizeMB is the size at which the log file rotates (default 10).
	FileMaxSizeMB int `json:"file_max_size_mb,omitempty" yaml:"file_max_size_mb,omitempty"`

	// FileMaxBackups is the number of rotated files kept (default 3).
	FileMaxBackups int `json:"file_max_backups,omitempty" yaml:"file_max_backups,omitempty"`
}

// Config groups all configuration for the engine.
type Config struct {
	Lookup  LookupConfig  `json:"lookup" yaml:"lookup"`
	Fusion  FusionConfig  `json:"fusion" yaml:"fusion"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}
