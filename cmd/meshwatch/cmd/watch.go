package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshwatch/meshwatch/internal/client"
	"github.com/meshwatch/meshwatch/internal/poller"
	"github.com/meshwatch/meshwatch/internal/state"
	"github.com/meshwatch/meshwatch/internal/ui"
	"github.com/meshwatch/meshwatch/pkg/events"
	"github.com/meshwatch/meshwatch/pkg/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live node telemetry dashboard",
	Long: `Poll the backend on a fixed interval and render a live table of
mesh nodes. Press r to refresh immediately, q to quit.

Examples:
  # Watch with config file / env settings
  meshwatch watch

  # Watch a specific backend every 5 seconds
  meshwatch watch --endpoint http://10.0.0.1:15888/api/nodes --interval 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		// The terminal belongs to the dashboard; keep the logger quiet
		// unless it has somewhere else to go.
		logCfg := logger.Config{
			Level:     logger.Level(cfg.LogLevel),
			Format:    logger.Format(cfg.LogFormat),
			Component: "meshwatch",
			Output:    io.Discard,
		}
		if logPath, _ := cmd.Flags().GetString("log-file"); logPath != "" {
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			logCfg.Output = f
		}
		log := logger.New(logCfg)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		bus := events.NewGookitBus(log.WithComponent("events"))
		defer bus.Close()

		store := state.NewStore()
		c := client.New(cfg.Endpoint, cfg.RequestTimeout, log.WithComponent("client"))
		p := poller.New(c, store, bus, cfg.PollInterval, log.WithComponent("poller"))

		go p.Run(ctx)

		dash := ui.New(store, func() {
			p.RefreshNow(ctx)
		}, log.WithComponent("ui"))

		if err := dash.Run(ctx, bus); err != nil {
			return fmt.Errorf("dashboard failed: %w", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().String("log-file", "", "append logs to this file instead of discarding them")
	rootCmd.AddCommand(watchCmd)
}
