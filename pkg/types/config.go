// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "wiki-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceConfig holds settings for the content source client.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIBase is the MediaWiki action API endpoint.
	APIBase string `json:"api_base" yaml:"api_base" mapstructure:"api_base"`

	// RESTBase is the REST v1 root used for rich summaries.
	RESTBase string `json:"rest_base" yaml:"rest_base" mapstructure:"rest_base"`
}

// StoreConfig holds settings for the history and saved-article store.
type StoreConfig struct {
	// DataDir contains the SQLite database and export files.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// MaxHistory caps the number of history entries kept (default 30).
	MaxHistory int `json:"max_history" yaml:"max_history" mapstructure:"max_history"`
}

// ServeConfig holds settings for the HTTP API.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowOrigins lists the CORS origins allowed to call the API.
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Config groups all component configurations.
type Config struct {
	Source SourceConfig `json:"source" yaml:"source" mapstructure:"source"`
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Serve  ServeConfig  `json:"serve" yaml:"serve" mapstructure:"serve"`
}
