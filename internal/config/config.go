package config

import "time"

// Config holds the meshwatch application configuration.
type Config struct {
	// Endpoint is the backend URL that serves the node telemetry array.
	Endpoint string `mapstructure:"endpoint"`

	// RequestTimeout bounds a single poll request; the request is aborted
	// when it elapses.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// PollInterval is the cadence of automatic refreshes. It is independent
	// of request duration; a slow request does not delay the next tick.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}
