package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/muxboard/internal/config"
	"github.com/timvw/muxboard/internal/dashboard"
	"github.com/timvw/muxboard/internal/model"
	"github.com/timvw/muxboard/internal/mux"
	telem "github.com/timvw/muxboard/internal/otel"
)

var flagTheme string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI to browse and manage sessions",
	Long: `Launch the interactive session dashboard.

The dashboard lists all sessions with a live pane preview, refreshed on a
timer. Sessions can be filtered, sorted, created, renamed, and killed.
Selecting a session (or a window via the drill-down) exits the dashboard
and replaces it with the multiplexer's attach or switch-client command.

Configuration is loaded from .muxboard.yaml or environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&flagTheme, "theme", "",
		"Color theme: dark, light (default from config)")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // cancels in-flight queries when the TUI exits

	// Load configuration: defaults -> config file -> env vars.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
	}
	if tel != nil {
		defer tel.Shutdown(ctx)
	}

	m, err := getMultiplexer()
	if err != nil {
		return fmt.Errorf("no supported terminal multiplexer found: %w", err)
	}
	if !m.Available() {
		return fmt.Errorf("%s is not installed or not found in PATH", m.Name())
	}

	var metrics *telem.Metrics
	var tracer trace.Tracer
	if tel != nil {
		metrics = tel.Metrics
		tracer = tel.Tracer
	}
	if t, ok := m.(*mux.Tmux); ok {
		t.Timeout = cfg.CommandTimeoutDuration
		t.Metrics = metrics
	}

	sortMode := model.SortModeFromName(cfg.DefaultSort)
	if flagSort != "" {
		sortMode = model.SortModeFromName(flagSort)
	}
	theme := cfg.Theme
	if flagTheme != "" {
		theme = flagTheme
	}

	tui := &dashboard.TUI{
		Mux:             m,
		RefreshInterval: cfg.RefreshDuration,
		DefaultSort:     sortMode,
		SkipKillConfirm: cfg.SkipKillConfirmation,
		ThemeName:       theme,
		Metrics:         metrics,
		Tracer:          tracer,
	}

	target, err := tui.Run(ctx)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	// Hand off: replace this process with the resolved attach/switch command
	// so the user lands inside the chosen session.
	return execAttach(m, target)
}

// execAttach replaces the current process with the multiplexer's attach or
// switch-client command for target. Only returns on failure.
func execAttach(m mux.Multiplexer, target string) error {
	argv := m.AttachArgs(target)
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", argv[0], err)
	}
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", argv[0], err)
	}
	return nil
}
