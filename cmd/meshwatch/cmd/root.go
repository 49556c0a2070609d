package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshwatch/meshwatch/internal/config"
	"github.com/meshwatch/meshwatch/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "meshwatch",
	Short: "Monitor mesh network node telemetry",
	Long: `meshwatch polls a mesh-networking backend for node telemetry and
renders it as a table: virtual address, public address, connection mode,
latency, and traffic counters.

The backend endpoint and poll cadence come from a .meshwatch.yaml config
file, MESHWATCH_* environment variables, or command line flags.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.PersistentFlags().String("endpoint", "", "backend telemetry endpoint URL")
	rootCmd.PersistentFlags().Duration("interval", 0, "poll interval (e.g. 10s)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request timeout (e.g. 5s)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadWithPath(path)
	} else {
		cfg, err = config.NewLoader().Load()
	}
	if err != nil {
		return nil, err
	}

	if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		cfg.PollInterval = interval
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.RequestTimeout = timeout
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if logFormat, _ := cmd.Flags().GetString("log-format"); logFormat != "" {
		cfg.LogFormat = logFormat
	}

	return cfg, nil
}

// newLogger builds the application logger from config.
func newLogger(cfg *config.Config, component string) *logger.Logger {
	return logger.New(logger.Config{
		Level:      logger.Level(cfg.LogLevel),
		Format:     logger.Format(cfg.LogFormat),
		Component:  component,
		TimeFormat: time.Kitchen,
	})
}
