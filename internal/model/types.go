package model

import (
	"sort"
	"strings"
)

// Session represents a terminal multiplexer session.
// Sessions are materialized fresh on every query; the multiplexer is the
// single source of truth and nothing here is cached across queries.
type Session struct {
	// Name is the session name, unique among currently listed sessions.
	Name string `json:"name"`
	// Windows is the number of windows in the session.
	Windows int `json:"windows"`
	// Created is the session creation time, formatted for display
	// ("2006-01-02 15:04"), or the raw timestamp string if formatting failed.
	Created string `json:"created"`
	// Attached indicates whether any client currently has the session open.
	Attached bool `json:"attached"`
}

// Window represents a window within a session.
type Window struct {
	// Index is the window index, unique within its session but not
	// necessarily contiguous.
	Index int `json:"index"`
	// Name is the window name.
	Name string `json:"name"`
	// Active indicates the currently active window of the session.
	Active bool `json:"active"`
	// Panes is the number of panes in the window.
	Panes int `json:"panes"`
}

// SortMode selects the ordering of a session list.
type SortMode int

const (
	// SortByName orders ascending, case-insensitive on name. Default.
	SortByName SortMode = iota
	// SortByCreated orders ascending on the formatted creation time.
	// The canonical "2006-01-02 15:04" format sorts correctly as a string.
	SortByCreated
	// SortByAttached puts attached sessions first, ties broken by name.
	SortByAttached
)

// String returns the config/CLI name of the sort mode.
func (m SortMode) String() string {
	switch m {
	case SortByCreated:
		return "date"
	case SortByAttached:
		return "attached"
	default:
		return "name"
	}
}

// Next advances through the fixed cycle name -> date -> attached -> name.
func (m SortMode) Next() SortMode {
	switch m {
	case SortByName:
		return SortByCreated
	case SortByCreated:
		return SortByAttached
	default:
		return SortByName
	}
}

// SortModeFromName parses a sort mode name. Unknown names map to SortByName.
func SortModeFromName(name string) SortMode {
	switch name {
	case "date":
		return SortByCreated
	case "attached":
		return SortByAttached
	default:
		return SortByName
	}
}

// SortSessions orders sessions in place according to mode.
func SortSessions(sessions []Session, mode SortMode) {
	switch mode {
	case SortByCreated:
		sort.SliceStable(sessions, func(i, j int) bool {
			return sessions[i].Created < sessions[j].Created
		})
	case SortByAttached:
		sort.SliceStable(sessions, func(i, j int) bool {
			if sessions[i].Attached != sessions[j].Attached {
				return sessions[i].Attached
			}
			return strings.ToLower(sessions[i].Name) < strings.ToLower(sessions[j].Name)
		})
	default:
		sort.SliceStable(sessions, func(i, j int) bool {
			return strings.ToLower(sessions[i].Name) < strings.ToLower(sessions[j].Name)
		})
	}
}
