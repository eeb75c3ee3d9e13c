// Package mux drives an external terminal multiplexer through its
// command-line control interface. It never implements multiplexer behavior
// itself: the external process is the single source of truth on every call,
// and every failure (missing binary, timeout, non-zero exit, malformed
// output) is absorbed here and surfaces as an empty result or false.
package mux

import (
	"context"

	"github.com/timvw/muxboard/internal/model"
)

// Multiplexer abstracts terminal multiplexer operations.
// Implementations exist for tmux and (future) zellij.
type Multiplexer interface {
	// Name returns the multiplexer name (e.g., "tmux").
	Name() string

	// Available reports whether the controlling binary is on the search
	// path. Every other operation short-circuits to its zero value when
	// this returns false.
	Available() bool

	// ListSessions returns all sessions ordered by the given sort mode.
	// Returns an empty slice on any failure.
	ListSessions(ctx context.Context, sort model.SortMode) []model.Session

	// ListWindows returns the windows of a session in the order reported
	// by the multiplexer. Returns an empty slice on any failure.
	ListWindows(ctx context.Context, session string) []model.Window

	// NewSession creates a detached session. Reports success.
	NewSession(ctx context.Context, name string) bool

	// RenameSession renames a session. Reports success.
	RenameSession(ctx context.Context, oldName, newName string) bool

	// KillSession terminates a session. Reports success.
	KillSession(ctx context.Context, name string) bool

	// CapturePane returns the visible content of the first pane of target,
	// or an empty string on failure.
	CapturePane(ctx context.Context, target string) string

	// AttachArgs returns the argv to attach the user's terminal to target:
	// a switch-client form when already inside a multiplexer client, an
	// attach form otherwise. target may be "session" or "session:window"
	// and is passed through unvalidated.
	AttachArgs(target string) []string
}
