package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger while staying thin.
type Logger struct {
	*slog.Logger
	config Config
}

// Level represents the logging level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents the log output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds configuration for the logger.
type Config struct {
	Level      Level  `mapstructure:"level" yaml:"level" json:"level"`
	Format     Format `mapstructure:"format" yaml:"format" json:"format"`
	AddSource  bool   `mapstructure:"add_source" yaml:"add_source" json:"add_source"`
	Component  string `mapstructure:"component" yaml:"component" json:"component"`
	TimeFormat string `mapstructure:"time_format" yaml:"time_format" json:"time_format"`

	// Output defaults to stderr; stdout belongs to the rendered table.
	Output io.Writer `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatText,
		AddSource:  false,
		Component:  "meshwatch",
		TimeFormat: time.RFC3339,
	}
}

// New creates a new logger with the provided configuration.
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	level := parseLevel(config.Level)
	handler := createHandler(config, level)

	slogger := slog.New(handler)
	if config.Component != "" {
		slogger = slogger.With(slog.String("component", config.Component))
	}

	return &Logger{
		Logger: slogger,
		config: config,
	}
}

// NewDevelopment creates a logger optimized for development.
func NewDevelopment(component string) *Logger {
	return New(Config{
		Level:      LevelDebug,
		Format:     FormatText,
		AddSource:  true,
		Component:  component,
		TimeFormat: time.Kitchen,
	})
}

// NewNop creates a logger that discards everything. Used by tests and by
// callers that have no logger to pass.
func NewNop() *Logger {
	return New(Config{
		Level:  LevelError,
		Format: FormatJSON,
		Output: io.Discard,
	})
}

// With returns a new logger with additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		config: l.config,
	}
}

// WithComponent returns a logger scoped to a sub-component.
func (l *Logger) WithComponent(name string) *Logger {
	cfg := l.config
	cfg.Component = name
	return &Logger{
		Logger: l.Logger.With(slog.String("component", name)),
		config: cfg,
	}
}

// Unwrap returns the underlying slog.Logger for direct access.
func (l *Logger) Unwrap() *slog.Logger {
	return l.Logger
}

func parseLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func createHandler(config Config, level slog.Level) slog.Handler {
	switch config.Format {
	case FormatText:
		return tint.NewHandler(config.Output, &tint.Options{
			Level:      level,
			TimeFormat: config.TimeFormat,
			AddSource:  config.AddSource,
		})
	default:
		return slog.NewJSONHandler(config.Output, &slog.HandlerOptions{
			Level:     level,
			AddSource: config.AddSource,
		})
	}
}
