package dashboard

import (
	"strings"

	"github.com/timvw/muxboard/internal/model"
)

// ViewState is the derived, filtered/sorted projection of the last-fetched
// session snapshot used for display and selection. It is mutated only by its
// transition methods, always from the single bubbletea update loop.
type ViewState struct {
	// All is the last fetched snapshot, replaced wholesale on refresh.
	All []model.Session
	// Filter is the active case-insensitive substring filter on name.
	Filter string
	// Visible is All filtered by Filter, relative order preserved.
	Visible []model.Session
	// Sort is the active sort mode (applied by the query, not here).
	Sort model.SortMode
	// Selected is the cursor position into Visible, clamped to
	// [0, len(Visible)); it is a safe no-op when Visible is empty.
	Selected int
}

// NewViewState returns an empty view with the given initial sort mode.
func NewViewState(sort model.SortMode) *ViewState {
	return &ViewState{Sort: sort}
}

// SetSessions replaces the snapshot, re-applies the filter, and clamps the
// cursor. The caller is responsible for having sorted the new snapshot.
func (v *ViewState) SetSessions(all []model.Session) {
	v.All = all
	v.applyFilter()
}

// SetFilter updates the filter text and recomputes the visible subset from
// the already-loaded snapshot. Pure local operation, no re-query.
func (v *ViewState) SetFilter(text string) {
	v.Filter = text
	v.applyFilter()
}

// CycleSort advances the sort mode through the fixed cycle and returns the
// new mode. The caller re-queries with it and calls SetSessions.
func (v *ViewState) CycleSort() model.SortMode {
	v.Sort = v.Sort.Next()
	return v.Sort
}

// MoveCursor shifts the selection by delta, clamped to the visible list.
func (v *ViewState) MoveCursor(delta int) {
	v.Selected += delta
	v.clamp()
}

// SelectedSession returns the session under the cursor, if any.
func (v *ViewState) SelectedSession() (model.Session, bool) {
	if v.Selected < 0 || v.Selected >= len(v.Visible) {
		return model.Session{}, false
	}
	return v.Visible[v.Selected], true
}

// applyFilter recomputes Visible. An empty filter matches everything.
func (v *ViewState) applyFilter() {
	if v.Filter == "" {
		v.Visible = append([]model.Session(nil), v.All...)
		v.clamp()
		return
	}
	needle := strings.ToLower(v.Filter)
	visible := make([]model.Session, 0, len(v.All))
	for _, s := range v.All {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			visible = append(visible, s)
		}
	}
	v.Visible = visible
	v.clamp()
}

func (v *ViewState) clamp() {
	if len(v.Visible) == 0 {
		v.Selected = 0
		return
	}
	if v.Selected >= len(v.Visible) {
		v.Selected = len(v.Visible) - 1
	}
	if v.Selected < 0 {
		v.Selected = 0
	}
}
