package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/timvw/muxboard/internal/mux"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagMux  string
	flagSort string
)

var rootCmd = &cobra.Command{
	Use:   "muxboard",
	Short: "Terminal dashboard for multiplexer sessions",
	Long: `muxboard is a terminal dashboard for browsing, filtering, and managing
terminal multiplexer sessions without memorizing command syntax.

Run without arguments to open the interactive dashboard. When a session is
selected, muxboard hands off to the multiplexer's own attach mechanism.

The multiplexer is the single source of truth: muxboard keeps no state of
its own and re-queries on every refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", envOrDefault("MUXBOARD_MUX", ""), "terminal multiplexer: tmux (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagSort, "sort", envOrDefault("MUXBOARD_DEFAULT_SORT", ""), "session sort order: name, date, attached")
}

// getMultiplexer returns the configured or auto-detected multiplexer.
func getMultiplexer() (mux.Multiplexer, error) {
	if flagMux != "" {
		return mux.FromName(flagMux)
	}
	return mux.Detect()
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
