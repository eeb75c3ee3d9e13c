package mux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/timvw/muxboard/internal/model"
	telem "github.com/timvw/muxboard/internal/otel"
)

// DefaultTimeout bounds a single tmux invocation. Callers must not raise it
// past the dashboard refresh interval or a slow server blocks the UI loop.
const DefaultTimeout = 5 * time.Second

const (
	sessionFormat = "#{session_name}|#{session_windows}|#{session_created}|#{session_attached}"
	windowFormat  = "#{window_index}|#{window_name}|#{window_active}|#{window_panes}"
)

// Tmux implements the Multiplexer interface for tmux.
type Tmux struct {
	// Timeout bounds each invocation. DefaultTimeout when zero.
	Timeout time.Duration
	// Metrics receives invocation and parser counters; nil-safe.
	Metrics *telem.Metrics

	lookPath func(file string) (string, error)
	runCmd   func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewTmux creates a new tmux multiplexer.
func NewTmux() *Tmux {
	return &Tmux{
		Timeout:  DefaultTimeout,
		lookPath: exec.LookPath,
		runCmd: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// Available reports whether the tmux binary is on the search path.
func (t *Tmux) Available() bool {
	path, err := t.lookPath("tmux")
	return err == nil && path != ""
}

// ListSessions returns all tmux sessions ordered by sort.
// An empty slice is returned when tmux is unavailable, the invocation
// fails or times out, or tmux exits non-zero (e.g., no server running).
func (t *Tmux) ListSessions(ctx context.Context, sort model.SortMode) []model.Session {
	if !t.Available() {
		return nil
	}
	out, err := t.run(ctx, "list-sessions", "-F", sessionFormat)
	if err != nil {
		return nil
	}
	sessions, skipped := parseSessions(out)
	t.Metrics.RecordSkippedLines(ctx, skipped)
	model.SortSessions(sessions, sort)
	return sessions
}

// ListWindows returns the windows of a session in tmux's reported order.
// Window index order is meaningful as-is, so no re-sort happens here.
func (t *Tmux) ListWindows(ctx context.Context, session string) []model.Window {
	if !t.Available() {
		return nil
	}
	out, err := t.run(ctx, "list-windows", "-t", session, "-F", windowFormat)
	if err != nil {
		return nil
	}
	windows, skipped := parseWindows(out)
	t.Metrics.RecordSkippedLines(ctx, skipped)
	return windows
}

// NewSession creates a detached session named name.
func (t *Tmux) NewSession(ctx context.Context, name string) bool {
	if !t.Available() {
		return false
	}
	_, err := t.run(ctx, "new-session", "-d", "-s", name)
	return err == nil
}

// RenameSession renames session oldName to newName.
func (t *Tmux) RenameSession(ctx context.Context, oldName, newName string) bool {
	if !t.Available() {
		return false
	}
	_, err := t.run(ctx, "rename-session", "-t", oldName, newName)
	return err == nil
}

// KillSession terminates session name.
func (t *Tmux) KillSession(ctx context.Context, name string) bool {
	if !t.Available() {
		return false
	}
	_, err := t.run(ctx, "kill-session", "-t", name)
	return err == nil
}

// CapturePane returns the visible content of the first pane of target.
// Tries with ANSI escape codes first (-e), falls back to plain text,
// and returns an empty string on failure.
func (t *Tmux) CapturePane(ctx context.Context, target string) string {
	if !t.Available() {
		return ""
	}
	out, err := t.run(ctx, "capture-pane", "-t", target, "-p", "-e")
	if err == nil {
		return out
	}
	out, err = t.run(ctx, "capture-pane", "-t", target, "-p")
	if err != nil {
		return ""
	}
	return out
}

// AttachArgs returns the tmux command to connect the user's terminal to
// target. Inside an existing client ($TMUX set) the current client is
// switched; otherwise a new client attaches.
func (t *Tmux) AttachArgs(target string) []string {
	if os.Getenv("TMUX") != "" {
		return []string{"tmux", "switch-client", "-t", target}
	}
	return []string{"tmux", "attach-session", "-t", target}
}

// run executes a tmux command bounded by t.Timeout and returns its stdout.
// Exactly one child process is spawned per call; there is no retry; the
// timed refresh re-issues queries instead.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := t.runCmd(ctx, "tmux", args...)
	if len(args) > 0 {
		t.Metrics.RecordInvocation(ctx, args[0], err)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}

// parseSessions turns list-sessions output into Session records.
// Each record is 4 fields joined by '|'; lines with the wrong field count
// or an unparseable integer are skipped individually so one malformed line
// never hides the rest. Returns the records and the skipped-line count.
func parseSessions(raw string) ([]model.Session, int) {
	var sessions []model.Session
	skipped := 0
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			skipped++
			continue
		}
		windows, err := strconv.Atoi(parts[1])
		if err != nil {
			skipped++
			continue
		}
		sessions = append(sessions, model.Session{
			Name:     parts[0],
			Windows:  windows,
			Created:  formatTimestamp(parts[2]),
			Attached: parts[3] == "1",
		})
	}
	return sessions, skipped
}

// parseWindows turns list-windows output into Window records under the same
// skip-malformed-lines policy as parseSessions.
func parseWindows(raw string) ([]model.Window, int) {
	var windows []model.Window
	skipped := 0
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			skipped++
			continue
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			skipped++
			continue
		}
		panes, err := strconv.Atoi(parts[3])
		if err != nil {
			skipped++
			continue
		}
		windows = append(windows, model.Window{
			Index:  index,
			Name:   parts[1],
			Active: parts[2] == "1",
			Panes:  panes,
		})
	}
	return windows, skipped
}

// formatTimestamp converts integer epoch seconds to a local-time
// "2006-01-02 15:04" string. Non-numeric input is returned unchanged;
// a bad timestamp degrades the display, never the record.
func formatTimestamp(raw string) string {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}
	return time.Unix(secs, 0).Format("2006-01-02 15:04")
}
