// Package cli provides the command-line interface for mycelica.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ekats/mycelica-layout/internal/client"
	"github.com/Ekats/mycelica-layout/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Global config, loaded in PersistentPreRunE
	cfg config.Config

	// Logger cleanup, runs in PersistentPostRun
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mycelica",
	Short: "Clustered graph layout for knowledge graphs",
	Long: `Mycelica computes spatial layouts for knowledge graphs: connected
components on golden-angle rings, Signal conversation threads as message
columns, with user-pinned positions preserved across recomputes.

Most commands talk to a running layout server (see layout-server); compute
can also run fully offline against a JSON graph file or the database.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		logCleanup = cleanup

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// apiClient creates a client for the layout server, honoring --server.
func apiClient() *client.Client {
	return client.New(serverURL)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "layout server URL (default from MYCELICA_SERVER_URL)")

	// Add subcommands
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}
