package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sloany/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the spectrum fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DestDir is the directory spectrum files are written to.
	DestDir string `json:"dest_dir" yaml:"dest_dir"`

	// Delay is the pause between consecutive downloads (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// ReduceConfig holds settings for the reduction stage.
type ReduceConfig struct {
	// DestDir is the directory reduced flux tables are written to.
	DestDir string `json:"dest_dir" yaml:"dest_dir"`
}

// HeliumConfig holds settings for helium-line detection.
type HeliumConfig struct {
	// Threshold is how many times above the background noise a dip must
	// rise to count as a line (default 1.0).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// VerboseLines prints each matched line with its signal-to-noise ratio.
	VerboseLines bool `json:"verbose_lines" yaml:"verbose_lines"`
}
