package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Ekats/mycelica-layout/internal/db"
	"github.com/Ekats/mycelica-layout/internal/layout"
	"github.com/Ekats/mycelica-layout/internal/models"
)

var (
	computeInput  string
	computeOutput string
	computeWidth  float64
	computeHeight float64
	computeMode   string
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute a layout offline",
	Long: `Compute a layout without a running server, from a JSON graph file
or directly from the database.

The input file holds {"nodes": [...], "edges": [...]} in the display graph
shape. Without --input the graph is loaded from SurrealDB.

Examples:
  mycelica compute --input graph.json
  mycelica compute --input graph.json --output layout.json
  mycelica compute --mode conversation --width 1920 --height 1080
  mycelica compute`,
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().StringVarP(&computeInput, "input", "i", "", "JSON graph file (default: load from database)")
	computeCmd.Flags().StringVarP(&computeOutput, "output", "o", "", "write result JSON to file (default: stdout)")
	computeCmd.Flags().Float64Var(&computeWidth, "width", 0, "viewport width (default from config)")
	computeCmd.Flags().Float64Var(&computeHeight, "height", 0, "viewport height (default from config)")
	computeCmd.Flags().StringVarP(&computeMode, "mode", "m", "", "layout mode: generic or conversation (default: detect)")
}

// graphFile is the offline input shape.
type graphFile struct {
	Nodes []models.DisplayNode `json:"nodes"`
	Edges []models.DisplayEdge `json:"edges"`
}

func runCompute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var graph graphFile
	var saved map[string]models.Position

	if computeInput != "" {
		data, err := os.ReadFile(computeInput)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := json.Unmarshal(data, &graph); err != nil {
			return fmt.Errorf("parse input: %w", err)
		}
	} else {
		client, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Close(context.Background())
		}()

		if graph.Nodes, err = client.ListNodes(ctx); err != nil {
			return err
		}
		if graph.Edges, err = client.ListEdges(ctx); err != nil {
			return err
		}
		if saved, err = client.LoadPositions(ctx); err != nil {
			return err
		}
	}

	mode := models.DetectMode(graph.Nodes)
	switch computeMode {
	case "":
	case "generic":
		mode = models.ModeGeneric
	case "conversation":
		mode = models.ModeConversation
	default:
		return fmt.Errorf("unknown mode %q (want generic or conversation)", computeMode)
	}

	viewport := models.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}
	if computeWidth > 0 {
		viewport.Width = computeWidth
	}
	if computeHeight > 0 {
		viewport.Height = computeHeight
	}

	engine := layout.NewEngineWithConfig(cfg.Columns)

	start := time.Now()
	result := engine.Compute(layout.Input{
		Nodes:    graph.Nodes,
		Edges:    graph.Edges,
		Mode:     mode,
		Viewport: viewport,
		Saved:    saved,
	})
	elapsed := time.Since(start)

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if computeOutput != "" {
		if err := os.WriteFile(computeOutput, payload, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", computeOutput)
	} else {
		fmt.Println(string(payload))
	}

	// Summary on stderr when a human is watching, so piped stdout stays clean JSON
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintf(os.Stderr, "%d nodes, %d clusters, %d merged, mode %s, %s\n",
			len(graph.Nodes), len(result.Clusters), len(result.MergeMap), result.Mode, elapsed.Round(time.Millisecond))
	}
	return nil
}

// connectDB opens a SurrealDB client from the loaded config.
func connectDB(ctx context.Context) (*db.Client, error) {
	client, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return client, nil
}
