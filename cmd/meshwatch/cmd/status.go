package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meshwatch/meshwatch/internal/client"
	"github.com/meshwatch/meshwatch/internal/format"
)

// statusCmd performs a single fetch and prints a plain-text table.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch node telemetry once and print it",
	Long: `Fetch the node list once and print it as a table. Exits non-zero
when the backend is unreachable or reports an error.

Examples:
  # One-shot status against the configured backend
  meshwatch status

  # Against a specific backend
  meshwatch status --endpoint http://10.0.0.1:15888/api/nodes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		log := newLogger(cfg, "status")
		c := client.New(cfg.Endpoint, cfg.RequestTimeout, log)

		nodes, err := c.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		if len(nodes) == 0 {
			fmt.Println("No nodes reported by the backend.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VIRTUAL IP\tPUBLIC ADDR\tMODE\tLATENCY (MS)\tRX (MB)\tTX (MB)\tTUNNEL")

		var totalRx, totalTx uint64
		for _, node := range nodes {
			totalRx += node.RxBytes
			totalTx += node.TxBytes
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				format.VirtualIP(node.VirtualIP),
				format.PublicAddr(node.PublicAddr),
				format.CostBadge(node.Cost),
				format.Latency(node.LatencyMs),
				format.MB(node.RxBytes),
				format.MB(node.TxBytes),
				format.ConnType(node.ConnType),
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d nodes, %s received / %s sent since backend start\n",
			len(nodes), humanize.IBytes(totalRx), humanize.IBytes(totalTx))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
