package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ekats/mycelica-layout/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server runtime statistics",
	Long: `Show the layout server's in-memory statistics: per-stage timings and
the shape of the last computed layout. Resets on server restart.

Examples:
  mycelica stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	snap, err := apiClient().GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	uptime := time.Duration(snap.UptimeSeconds * float64(time.Second))
	fmt.Printf("Uptime: %s\n\n", uptime.Round(time.Second))

	printStage("Graph load", snap.LoadGraph)
	printStage("Compute", snap.Compute)
	printStage("Publish", snap.Publish)
	printStage("DB query", snap.DBQuery)

	if snap.LastLayout != nil {
		l := snap.LastLayout
		fmt.Println("Last layout:")
		fmt.Printf("  Mode:       %s\n", l.Mode)
		fmt.Printf("  Nodes:      %d\n", l.Nodes)
		fmt.Printf("  Edges:      %d\n", l.Edges)
		fmt.Printf("  Clusters:   %d\n", l.Clusters)
		if l.MergedIDs > 0 {
			fmt.Printf("  Merged:     %d\n", l.MergedIDs)
		}
		if l.Boundaries > 0 {
			fmt.Printf("  Boundaries: %d\n", l.Boundaries)
		}
	}
	return nil
}

func printStage(name string, s *metrics.StageSnapshot) {
	if s == nil {
		return
	}
	fmt.Printf("%-11s %d runs, avg %.1fms (min %dms, max %dms)\n",
		name+":", s.Count, s.AvgTimeMs, s.MinTimeMs, s.MaxTimeMs)
}
