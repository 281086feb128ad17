package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Trigger a layout recompute on the server",
	Long: `Ask the layout server for a fresh layout pass. Subscribers on the
WebSocket feed receive the result; this command prints a summary.

Examples:
  mycelica recompute
  mycelica recompute --server http://localhost:8487`,
	RunE: runRecompute,
}

func runRecompute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result, err := apiClient().Recompute(ctx)
	if err != nil {
		return fmt.Errorf("recompute: %w", err)
	}

	fmt.Printf("Mode:       %s\n", result.Mode)
	fmt.Printf("Positions:  %d\n", len(result.Positions))
	fmt.Printf("Clusters:   %d\n", len(result.Clusters))
	if len(result.MergeMap) > 0 {
		fmt.Printf("Merged:     %d messages into bursts\n", len(result.MergeMap))
	}
	if len(result.Boundaries) > 0 {
		fmt.Printf("Boundaries: %d\n", len(result.Boundaries))
	}
	return nil
}
