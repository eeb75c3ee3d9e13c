// Package dashboard provides the interactive session dashboard: a bubbletea
// loop over a filtered, sorted view of the multiplexer's session list, with
// modal prompts for create/rename/kill and a live pane preview.
//
// All state transitions happen inside Update; background work (queries,
// captures) runs in tea.Cmd closures and is applied only if its initiating
// request is still the latest one, so a slow refresh can never overwrite a
// fresher snapshot.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/muxboard/internal/model"
	"github.com/timvw/muxboard/internal/mux"
	telem "github.com/timvw/muxboard/internal/otel"
)

// view mode
type viewMode int

const (
	modeSessions viewMode = iota
	modeFilter
	modeNewSession
	modeRename
	modeKillConfirm
	modeWindows
	modeHelp
)

// messages
type sessionsMsg struct {
	seq      uint64
	sessions []model.Session
}

type windowsMsg struct {
	session string
	windows []model.Window
}

type previewMsg struct {
	seq     uint64
	target  string
	content string
}

type tickMsg struct{}

// TUI runs the interactive dashboard.
type TUI struct {
	Mux             mux.Multiplexer
	RefreshInterval time.Duration // 0 disables auto-refresh
	DefaultSort     model.SortMode
	SkipKillConfirm bool // kill without the y/n modal
	ThemeName       string
	Metrics         *telem.Metrics // nil-safe
	Tracer          trace.Tracer   // nil disables tracing
}

// model implements tea.Model
type tuiModel struct {
	muxer           mux.Multiplexer
	ctx             context.Context
	refreshInterval time.Duration
	metrics         *telem.Metrics
	tracer          trace.Tracer
	st              styles

	view *ViewState
	mode viewMode

	// Latest-wins bookkeeping: a result whose seq is older than the latest
	// issued request is discarded rather than applied.
	refreshSeq uint64
	previewSeq uint64

	// filter / prompt input
	input           textinput.Model
	renameFrom      string // session being renamed (modeRename)
	killTarget      string // session pending confirmation (modeKillConfirm)
	skipKillConfirm bool

	// window drill-down
	windowsSession string
	windows        []model.Window
	windowCursor   int

	// preview
	preview       string
	previewTarget string

	// dimensions
	width  int
	height int

	// status
	refreshing   bool
	refreshCount int
	message      string

	// result carries the attach target selected by the user; consumed by
	// TUI.Run after the program exits.
	result string
}

// Run starts the dashboard and blocks until the user quits or selects a
// target. It returns the selected attach target ("session" or
// "session:window"), or an empty string when the user just quit.
func (t *TUI) Run(ctx context.Context) (string, error) {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40

	m := &tuiModel{
		muxer:           t.Mux,
		ctx:             ctx,
		refreshInterval: t.RefreshInterval,
		metrics:         t.Metrics,
		tracer:          t.Tracer,
		st:              newStyles(ThemeByName(t.ThemeName)),
		view:            NewViewState(t.DefaultSort),
		input:           ti,
		skipKillConfirm: t.SkipKillConfirm,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if fm, ok := final.(*tuiModel); ok {
		return fm.result, nil
	}
	return "", nil
}

func (m *tuiModel) Init() tea.Cmd {
	m.refreshing = true
	return tea.Batch(m.doRefresh(), m.scheduleTick())
}

// scheduleTick returns a tea.Cmd that sends a tickMsg after the refresh
// interval. Returns nil if auto-refresh is disabled (interval <= 0).
func (m *tuiModel) scheduleTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// doRefresh issues a new session query carrying the current request seq.
// Each refresh runs under its own span so slow queries show up in traces.
func (m *tuiModel) doRefresh() tea.Cmd {
	m.refreshSeq++
	seq := m.refreshSeq
	muxer := m.muxer
	ctx := m.ctx
	sort := m.view.Sort
	tracer := m.tracer
	return func() tea.Msg {
		span := trace.SpanFromContext(ctx)
		if tracer != nil {
			ctx, span = tracer.Start(ctx, "dashboard.refresh",
				trace.WithAttributes(
					attribute.Int64("dashboard.refresh_seq", int64(seq)),
					attribute.String("dashboard.sort", sort.String()),
				))
			defer span.End()
		}
		sessions := muxer.ListSessions(ctx, sort)
		span.SetAttributes(attribute.Int("dashboard.sessions", len(sessions)))
		return sessionsMsg{seq: seq, sessions: sessions}
	}
}

// doPreview captures the selected session's visible pane content.
func (m *tuiModel) doPreview() tea.Cmd {
	selected, ok := m.view.SelectedSession()
	if !ok {
		m.preview = ""
		m.previewTarget = ""
		return nil
	}
	m.previewSeq++
	seq := m.previewSeq
	target := selected.Name
	muxer := m.muxer
	ctx := m.ctx
	return func() tea.Msg {
		return previewMsg{seq: seq, target: target, content: muxer.CapturePane(ctx, target)}
	}
}

// doLoadWindows queries the windows of a session for the drill-down screen.
func (m *tuiModel) doLoadWindows(session string) tea.Cmd {
	muxer := m.muxer
	ctx := m.ctx
	return func() tea.Msg {
		return windowsMsg{session: session, windows: muxer.ListWindows(ctx, session)}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionsMsg:
		if msg.seq != m.refreshSeq {
			// A newer refresh is in flight; this snapshot is stale.
			m.metrics.RecordStaleRefresh(m.ctx)
			return m, nil
		}
		m.refreshing = false
		m.refreshCount++
		m.view.SetSessions(msg.sessions)
		m.metrics.RecordRefresh(m.ctx)
		return m, m.doPreview()

	case previewMsg:
		if msg.seq != m.previewSeq {
			return m, nil
		}
		m.preview = msg.content
		m.previewTarget = msg.target
		return m, nil

	case windowsMsg:
		m.windowsSession = msg.session
		m.windows = msg.windows
		m.windowCursor = 0
		m.mode = modeWindows
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.scheduleTick()}
		// Skip the timed refresh while a modal owns the keyboard; the view
		// must not change under a prompt. The next tick picks it back up.
		if m.mode == modeSessions {
			m.refreshing = true
			cmds = append(cmds, m.doRefresh())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSessions:
		return m.handleSessionsKey(msg)
	case modeFilter:
		return m.handleFilterKey(msg)
	case modeNewSession:
		return m.handleNewSessionKey(msg)
	case modeRename:
		return m.handleRenameKey(msg)
	case modeKillConfirm:
		return m.handleKillConfirmKey(msg)
	case modeWindows:
		return m.handleWindowsKey(msg)
	case modeHelp:
		return m.handleHelpKey(msg)
	}
	return m, nil
}

func (m *tuiModel) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up":
		m.view.MoveCursor(-1)
		return m, m.doPreview()

	case "down":
		m.view.MoveCursor(1)
		return m, m.doPreview()

	case "enter":
		if selected, ok := m.view.SelectedSession(); ok {
			m.result = selected.Name
			return m, tea.Quit
		}
		return m, nil

	case "right":
		if selected, ok := m.view.SelectedSession(); ok {
			return m, m.doLoadWindows(selected.Name)
		}
		return m, nil

	case "/":
		m.mode = modeFilter
		m.input.Placeholder = "type to filter, Esc to cancel"
		m.input.SetValue(m.view.Filter)
		m.input.Focus()
		return m, textinput.Blink

	case "n":
		m.mode = modeNewSession
		m.input.Placeholder = "my-session"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "r":
		if selected, ok := m.view.SelectedSession(); ok {
			m.mode = modeRename
			m.renameFrom = selected.Name
			m.input.Placeholder = ""
			m.input.SetValue(selected.Name)
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case "k":
		if selected, ok := m.view.SelectedSession(); ok {
			if m.skipKillConfirm {
				return m, m.killSession(selected.Name)
			}
			m.mode = modeKillConfirm
			m.killTarget = selected.Name
		}
		return m, nil

	case "s":
		sort := m.view.CycleSort()
		m.message = fmt.Sprintf("sort: %s", sort)
		m.refreshing = true
		return m, m.doRefresh()

	case "?":
		m.mode = modeHelp
		return m, nil

	case "R":
		m.refreshing = true
		m.message = ""
		return m, m.doRefresh()
	}

	return m, nil
}

func (m *tuiModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape":
		// Cancel: drop the filter entirely.
		m.input.SetValue("")
		m.input.Blur()
		m.view.SetFilter("")
		m.mode = modeSessions
		return m, m.doPreview()

	case "enter":
		// Keep the filter, return focus to the list.
		m.input.Blur()
		m.mode = modeSessions
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.view.SetFilter(m.input.Value())
	return m, cmd
}

func (m *tuiModel) handleNewSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape":
		m.input.Blur()
		m.mode = modeSessions
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.mode = modeSessions
		if name == "" {
			return m, nil
		}
		if m.muxer.NewSession(m.ctx, name) {
			m.message = fmt.Sprintf("created session %q", name)
		} else {
			m.message = fmt.Sprintf("failed to create %q", name)
		}
		m.refreshing = true
		return m, m.doRefresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape":
		m.input.Blur()
		m.mode = modeSessions
		return m, nil

	case "enter":
		newName := strings.TrimSpace(m.input.Value())
		oldName := m.renameFrom
		m.input.Blur()
		m.mode = modeSessions
		if newName == "" || newName == oldName {
			return m, nil
		}
		if m.muxer.RenameSession(m.ctx, oldName, newName) {
			m.message = fmt.Sprintf("renamed to %q", newName)
		} else {
			m.message = "rename failed"
		}
		m.refreshing = true
		return m, m.doRefresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) handleKillConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		name := m.killTarget
		m.killTarget = ""
		m.mode = modeSessions
		return m, m.killSession(name)

	case "n", "esc", "escape":
		m.killTarget = ""
		m.mode = modeSessions
	}
	return m, nil
}

// killSession performs the kill synchronously (bounded by the invocation
// timeout) and triggers a refresh regardless of outcome.
func (m *tuiModel) killSession(name string) tea.Cmd {
	if m.muxer.KillSession(m.ctx, name) {
		m.message = fmt.Sprintf("killed session %q", name)
	} else {
		m.message = fmt.Sprintf("failed to kill %q", name)
	}
	m.refreshing = true
	return m.doRefresh()
}

func (m *tuiModel) handleWindowsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape", "q", "left":
		m.mode = modeSessions
		return m, nil

	case "up":
		if m.windowCursor > 0 {
			m.windowCursor--
		}

	case "down":
		if m.windowCursor < len(m.windows)-1 {
			m.windowCursor++
		}

	case "enter":
		if m.windowCursor >= 0 && m.windowCursor < len(m.windows) {
			m.result = fmt.Sprintf("%s:%d", m.windowsSession, m.windows[m.windowCursor].Index)
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *tuiModel) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape", "q", "?":
		m.mode = modeSessions
	}
	return m, nil
}

func (m *tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case modeNewSession:
		return m.viewPrompt("New session name:", "")
	case modeRename:
		return m.viewPrompt(fmt.Sprintf("Rename %q:", m.renameFrom), "")
	case modeKillConfirm:
		return m.viewKillConfirm()
	case modeWindows:
		return m.viewWindows()
	case modeHelp:
		return m.viewHelp()
	default:
		return m.viewSessions()
	}
}

func (m *tuiModel) viewSessions() string {
	var b strings.Builder

	// Header: title + keybindings
	b.WriteString(m.st.title.Render("muxboard"))
	b.WriteString("  ")
	b.WriteString(m.st.dim.Render(fmt.Sprintf(
		"Enter=attach  →=windows  n=new  r=rename  k=kill  /=filter  s=sort:%s  ?=help  q=quit",
		m.view.Sort)))
	if m.refreshing {
		b.WriteString("  ")
		b.WriteString(m.st.warning.Render("refreshing..."))
	}
	b.WriteString("\n")

	// Filter bar, shown while typing or while a filter is active.
	if m.mode == modeFilter {
		b.WriteString("  filter: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else if m.view.Filter != "" {
		b.WriteString(m.st.dim.Render(fmt.Sprintf("  filter: %s", m.view.Filter)))
		b.WriteString("\n")
	}

	if !m.muxer.Available() {
		b.WriteString(m.st.err.Render("  tmux not installed. Install tmux and restart."))
		b.WriteString("\n")
		return b.String()
	}

	// Layout: session table on the left, pane preview on the right.
	listWidth := m.width * 55 / 100
	if listWidth < 40 {
		listWidth = 40
	}
	sep := m.st.header.Render(" │ ")
	previewWidth := m.width - listWidth - 3
	if previewWidth < 10 {
		previewWidth = 10
	}

	nameWidth := listWidth - 10 - 4 - 17 - 6
	if nameWidth < 12 {
		nameWidth = 12
	}

	// Column headers
	headerRow := padRight("  Session", nameWidth+2) +
		padRight("Status", 10) + padRight("Win", 4) + padRight("Created", 17)
	b.WriteString(m.st.header.Render(padRight(headerRow, listWidth)))
	b.WriteString(sep)
	b.WriteString(m.st.header.Render("Preview"))
	b.WriteString("\n")

	panelHeight := m.height - 5
	if panelHeight < 3 {
		panelHeight = 3
	}

	// Scroll window that keeps the cursor visible.
	start := 0
	end := panelHeight
	if m.view.Selected >= end {
		end = m.view.Selected + 1
		start = end - panelHeight
	}
	if end > len(m.view.Visible) {
		end = len(m.view.Visible)
	}

	previewLines := strings.Split(strings.TrimRight(m.preview, "\n"), "\n")

	row := 0
	for i := start; i < end; i++ {
		s := m.view.Visible[i]
		status := m.st.dim.Render(padRight("detached", 10))
		if s.Attached {
			status = m.st.attached.Render(padRight("attached", 10))
		}
		line := padRight(truncate(s.Name, nameWidth), nameWidth+2) +
			status + padRight(fmt.Sprintf("%d", s.Windows), 4) + padRight(s.Created, 17)
		if i == m.view.Selected {
			b.WriteString(m.st.selected.Render(padRight("→ "+line, listWidth)))
		} else {
			b.WriteString(padRight("  "+line, listWidth))
		}
		b.WriteString(sep)
		if row < len(previewLines) {
			b.WriteString(truncate(previewLines[row], previewWidth))
		}
		b.WriteString("\n")
		row++
	}

	if len(m.view.Visible) == 0 {
		if len(m.view.All) > 0 {
			b.WriteString(m.st.dim.Render("  No sessions match."))
		} else {
			b.WriteString(m.st.dim.Render("  No sessions. Press n to create one."))
		}
		b.WriteString("\n")
		row++
	}

	// Spill remaining preview lines below short session lists.
	for row < panelHeight && row < len(previewLines) {
		b.WriteString(padRight("", listWidth))
		b.WriteString(sep)
		b.WriteString(truncate(previewLines[row], previewWidth))
		b.WriteString("\n")
		row++
	}

	// Summary + status message
	summary := fmt.Sprintf("  %d/%d sessions | sort: %s | refresh #%d",
		len(m.view.Visible), len(m.view.All), m.view.Sort, m.refreshCount)
	b.WriteString(m.st.dim.Render(summary))
	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(m.st.status.Render("  " + m.message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *tuiModel) viewPrompt(label, hint string) string {
	var b strings.Builder
	b.WriteString(m.st.title.Render("  " + label))
	b.WriteString("\n")
	b.WriteString(m.st.header.Render("  ─────────────────────────────────────────"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.input.View())
	b.WriteString("\n\n")
	if hint == "" {
		hint = "Enter=confirm  Esc=cancel"
	}
	b.WriteString(m.st.dim.Render("  " + hint))
	b.WriteString("\n")
	return b.String()
}

func (m *tuiModel) viewKillConfirm() string {
	var b strings.Builder
	b.WriteString(m.st.warning.Render(fmt.Sprintf("  Kill session %q?", m.killTarget)))
	b.WriteString("\n\n")
	b.WriteString(m.st.dim.Render("  y=yes  n=no  Esc=cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m *tuiModel) viewWindows() string {
	var b strings.Builder
	b.WriteString(m.st.title.Render(fmt.Sprintf("  Session %s · Windows", m.windowsSession)))
	b.WriteString("  ")
	b.WriteString(m.st.dim.Render("Enter=attach  Esc=back"))
	b.WriteString("\n")

	header := padRight("  #", 6) + padRight("Name", 24) + padRight("Active", 8) + "Panes"
	b.WriteString(m.st.header.Render(header))
	b.WriteString("\n")

	if len(m.windows) == 0 {
		b.WriteString(m.st.dim.Render("  No windows found"))
		b.WriteString("\n")
		return b.String()
	}

	for i, w := range m.windows {
		active := m.st.dim.Render(padRight("○", 8))
		if w.Active {
			active = m.st.attached.Render(padRight("●", 8))
		}
		index := padRight(fmt.Sprintf("%d", w.Index), 4)
		name := padRight(truncate(w.Name, 22), 24)
		if i == m.windowCursor {
			b.WriteString(m.st.selected.Render("→ " + index + name))
		} else {
			b.WriteString("  " + index + m.st.info.Render(name))
		}
		b.WriteString(active)
		b.WriteString(fmt.Sprintf("%d", w.Panes))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *tuiModel) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.st.title.Render("  Help"))
	b.WriteString("  ")
	b.WriteString(m.st.dim.Render("Esc/q=close"))
	b.WriteString("\n\n")
	for _, line := range strings.Split(helpContent, "\n") {
		b.WriteString("  ")
		b.WriteString(m.st.text.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate cuts a string to at most maxLen runes, never splitting a
// multibyte character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// padRight pads a string with spaces to reach the desired visible width.
func padRight(s string, width int) string {
	visible := visibleLen(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// visibleLen returns the visible length of a string, ignoring ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		n++
	}
	return n
}
