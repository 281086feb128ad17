package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Ekats/mycelica-layout/internal/models"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Inspect and edit saved node positions",
	Long: `Work with the server's position store. Saved positions pin nodes in
place across layout recomputes (generic mode only; conversation columns
always reflow).

Subcommands:
  list         List current positions (default)
  set ID X Y   Pin a node at coordinates
  clear ID     Unpin a node

Examples:
  mycelica positions
  mycelica positions set node-42 350 120
  mycelica positions clear node-42`,
	RunE: runPositionsList,
}

var positionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current positions",
	RunE:  runPositionsList,
}

var positionsSetCmd = &cobra.Command{
	Use:   "set ID X Y",
	Short: "Pin a node at coordinates",
	Args:  cobra.ExactArgs(3),
	RunE:  runPositionsSet,
}

var positionsClearCmd = &cobra.Command{
	Use:   "clear ID",
	Short: "Unpin a node",
	Args:  cobra.ExactArgs(1),
	RunE:  runPositionsClear,
}

func init() {
	positionsCmd.AddCommand(positionsListCmd)
	positionsCmd.AddCommand(positionsSetCmd)
	positionsCmd.AddCommand(positionsClearCmd)
}

func runPositionsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	positions, err := apiClient().GetPositions(ctx)
	if err != nil {
		return fmt.Errorf("get positions: %w", err)
	}

	if len(positions) == 0 {
		fmt.Println("No positions. Run 'mycelica recompute' first.")
		return nil
	}

	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := positions[id]
		if p.W > 0 || p.H > 0 {
			fmt.Printf("%-30s (%8.1f, %8.1f)  %gx%g\n", id, p.X, p.Y, p.W, p.H)
		} else {
			fmt.Printf("%-30s (%8.1f, %8.1f)\n", id, p.X, p.Y)
		}
	}
	fmt.Printf("\n%d positions\n", len(positions))
	return nil
}

func runPositionsSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id := args[0]
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[1], err)
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[2], err)
	}

	if err := apiClient().SavePosition(ctx, id, models.Position{X: x, Y: y}); err != nil {
		return fmt.Errorf("save position: %w", err)
	}

	fmt.Printf("Pinned %s at (%g, %g)\n", id, x, y)
	return nil
}

func runPositionsClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id := args[0]
	deleted, err := apiClient().DeletePosition(ctx, id)
	if err != nil {
		return fmt.Errorf("clear position: %w", err)
	}
	if !deleted {
		fmt.Printf("No saved position for %s\n", id)
		return nil
	}

	fmt.Printf("Unpinned %s\n", id)
	return nil
}
