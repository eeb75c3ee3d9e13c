package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/timvw/muxboard/internal/model"
)

// fakeMux is an in-memory Multiplexer for exercising the update loop.
type fakeMux struct {
	available bool
	sessions  []model.Session
	windows   []model.Window
	capture   string

	mutationOK bool
	created    []string
	renamed    [][2]string
	killed     []string
}

func newFakeMux(sessions ...model.Session) *fakeMux {
	return &fakeMux{available: true, mutationOK: true, sessions: sessions}
}

func (f *fakeMux) Name() string    { return "fake" }
func (f *fakeMux) Available() bool { return f.available }

func (f *fakeMux) ListSessions(ctx context.Context, sort model.SortMode) []model.Session {
	out := append([]model.Session(nil), f.sessions...)
	model.SortSessions(out, sort)
	return out
}

func (f *fakeMux) ListWindows(ctx context.Context, session string) []model.Window {
	return f.windows
}

func (f *fakeMux) NewSession(ctx context.Context, name string) bool {
	f.created = append(f.created, name)
	return f.mutationOK
}

func (f *fakeMux) RenameSession(ctx context.Context, oldName, newName string) bool {
	f.renamed = append(f.renamed, [2]string{oldName, newName})
	return f.mutationOK
}

func (f *fakeMux) KillSession(ctx context.Context, name string) bool {
	f.killed = append(f.killed, name)
	return f.mutationOK
}

func (f *fakeMux) CapturePane(ctx context.Context, target string) string { return f.capture }

func (f *fakeMux) AttachArgs(target string) []string {
	return []string{"tmux", "attach-session", "-t", target}
}

func newTestModel(f *fakeMux) *tuiModel {
	ti := textinput.New()
	ti.CharLimit = 128
	return &tuiModel{
		muxer:  f,
		ctx:    context.Background(),
		st:     newStyles(ThemeByName("dark")),
		view:   NewViewState(model.SortByName),
		input:  ti,
		width:  120,
		height: 40,
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// isQuit reports whether cmd produces tea.QuitMsg.
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestStaleRefreshDiscarded(t *testing.T) {
	f := newFakeMux(model.Session{Name: "fresh"})
	m := newTestModel(f)

	// Two refreshes in flight: the first result is stale by the time it
	// arrives and must not overwrite anything.
	m.doRefresh()
	m.doRefresh()
	if m.refreshSeq != 2 {
		t.Fatalf("refreshSeq = %d, want 2", m.refreshSeq)
	}

	m.Update(sessionsMsg{seq: 1, sessions: []model.Session{{Name: "stale"}}})
	if len(m.view.All) != 0 {
		t.Fatalf("stale snapshot applied: %v", m.view.All)
	}

	m.Update(sessionsMsg{seq: 2, sessions: []model.Session{{Name: "fresh"}}})
	if len(m.view.All) != 1 || m.view.All[0].Name != "fresh" {
		t.Fatalf("latest snapshot not applied: %v", m.view.All)
	}
	if m.refreshCount != 1 {
		t.Errorf("refreshCount = %d, want 1", m.refreshCount)
	}
}

func TestStalePreviewDiscarded(t *testing.T) {
	f := newFakeMux(model.Session{Name: "alpha"}, model.Session{Name: "beta"})
	m := newTestModel(f)
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))

	m.doPreview() // seq 1, alpha
	m.view.MoveCursor(1)
	m.doPreview() // seq 2, beta

	m.Update(previewMsg{seq: 1, target: "alpha", content: "old content"})
	if m.preview != "" {
		t.Fatalf("stale preview applied: %q", m.preview)
	}

	m.Update(previewMsg{seq: 2, target: "beta", content: "new content"})
	if m.preview != "new content" || m.previewTarget != "beta" {
		t.Fatalf("preview = %q target = %q, want latest result", m.preview, m.previewTarget)
	}
}

func TestEnterSelectsSession(t *testing.T) {
	f := newFakeMux(model.Session{Name: "alpha"}, model.Session{Name: "beta"})
	m := newTestModel(f)
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))
	m.view.MoveCursor(1)

	_, cmd := m.Update(key("enter"))
	if m.result != "beta" {
		t.Errorf("result = %q, want beta", m.result)
	}
	if !isQuit(cmd) {
		t.Error("expected quit command after selection")
	}
}

func TestEnterWithoutSelectionDoesNothing(t *testing.T) {
	m := newTestModel(newFakeMux())
	_, cmd := m.Update(key("enter"))
	if m.result != "" || isQuit(cmd) {
		t.Error("empty list: enter must not select or quit")
	}
}

func TestFilterFlow(t *testing.T) {
	f := newFakeMux(model.Session{Name: "api"}, model.Session{Name: "blog"})
	m := newTestModel(f)
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))

	m.Update(key("/"))
	if m.mode != modeFilter {
		t.Fatalf("mode = %d, want modeFilter", m.mode)
	}

	m.Update(key("a"))
	m.Update(key("p"))
	if len(m.view.Visible) != 1 || m.view.Visible[0].Name != "api" {
		t.Fatalf("visible = %v, want [api]", m.view.Visible)
	}

	// Enter keeps the filter active and returns to the list.
	m.Update(key("enter"))
	if m.mode != modeSessions || m.view.Filter != "ap" {
		t.Errorf("mode = %d filter = %q, want modeSessions with filter kept", m.mode, m.view.Filter)
	}

	// Esc from the filter prompt drops it.
	m.Update(key("/"))
	m.Update(key("esc"))
	if m.view.Filter != "" || len(m.view.Visible) != 2 {
		t.Errorf("after esc: filter = %q visible = %d, want cleared", m.view.Filter, len(m.view.Visible))
	}
}

func TestNewSessionPrompt(t *testing.T) {
	f := newFakeMux()
	m := newTestModel(f)

	m.Update(key("n"))
	if m.mode != modeNewSession {
		t.Fatalf("mode = %d, want modeNewSession", m.mode)
	}
	for _, r := range "dev" {
		m.Update(key(string(r)))
	}
	m.Update(key("enter"))

	if len(f.created) != 1 || f.created[0] != "dev" {
		t.Errorf("created = %v, want [dev]", f.created)
	}
	if m.mode != modeSessions {
		t.Errorf("mode = %d, want modeSessions", m.mode)
	}
}

func TestNewSessionPrompt_EmptyNameIsNoop(t *testing.T) {
	f := newFakeMux()
	m := newTestModel(f)
	m.Update(key("n"))
	m.Update(key("enter"))
	if len(f.created) != 0 {
		t.Errorf("created = %v, want none", f.created)
	}
}

func TestRenamePrompt(t *testing.T) {
	f := newFakeMux(model.Session{Name: "old"})
	m := newTestModel(f)
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))

	m.Update(key("r"))
	if m.mode != modeRename || m.renameFrom != "old" {
		t.Fatalf("mode = %d renameFrom = %q, want rename of old", m.mode, m.renameFrom)
	}
	m.input.SetValue("new")
	m.Update(key("enter"))

	if len(f.renamed) != 1 || f.renamed[0] != [2]string{"old", "new"} {
		t.Errorf("renamed = %v, want [[old new]]", f.renamed)
	}
}

func TestRenamePrompt_UnchangedNameIsNoop(t *testing.T) {
	f := newFakeMux(model.Session{Name: "same"})
	m := newTestModel(f)
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))

	m.Update(key("r"))
	m.Update(key("enter"))
	if len(f.renamed) != 0 {
		t.Errorf("renamed = %v, want none", f.renamed)
	}
}

func TestKillConfirmFlow(t *testing.T) {
	f := newFakeMux(model.Session{Name: "doomed"})
	m := newTestModel(f)
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))

	// Declining leaves the session alone.
	m.Update(key("k"))
	if m.mode != modeKillConfirm || m.killTarget != "doomed" {
		t.Fatalf("mode = %d killTarget = %q, want confirmation for doomed", m.mode, m.killTarget)
	}
	m.Update(key("n"))
	if len(f.killed) != 0 {
		t.Fatalf("killed = %v after decline, want none", f.killed)
	}
	if m.mode != modeSessions {
		t.Fatalf("mode = %d, want modeSessions", m.mode)
	}

	// Confirming kills.
	m.Update(key("k"))
	m.Update(key("y"))
	if len(f.killed) != 1 || f.killed[0] != "doomed" {
		t.Errorf("killed = %v, want [doomed]", f.killed)
	}
}

func TestKillWithoutConfirmation(t *testing.T) {
	f := newFakeMux(model.Session{Name: "doomed"})
	m := newTestModel(f)
	m.skipKillConfirm = true
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))

	m.Update(key("k"))
	if m.mode != modeSessions {
		t.Errorf("mode = %d, want modeSessions (no modal)", m.mode)
	}
	if len(f.killed) != 1 || f.killed[0] != "doomed" {
		t.Errorf("killed = %v, want [doomed]", f.killed)
	}
}

func TestSortKeyCyclesAndRefreshes(t *testing.T) {
	f := newFakeMux(model.Session{Name: "a"})
	m := newTestModel(f)

	_, cmd := m.Update(key("s"))
	if m.view.Sort != model.SortByCreated {
		t.Errorf("Sort = %v, want SortByCreated", m.view.Sort)
	}
	if cmd == nil {
		t.Fatal("expected a refresh command")
	}
	produced := cmd()
	msg, ok := produced.(sessionsMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want sessionsMsg", produced)
	}
	if msg.seq != m.refreshSeq {
		t.Errorf("refresh seq = %d, want latest %d", msg.seq, m.refreshSeq)
	}
}

func TestWindowsDrilldown(t *testing.T) {
	f := newFakeMux(model.Session{Name: "dev"})
	f.windows = []model.Window{
		{Index: 0, Name: "shell", Active: true, Panes: 1},
		{Index: 3, Name: "editor", Panes: 2},
	}
	m := newTestModel(f)
	m.view.SetSessions(f.ListSessions(m.ctx, model.SortByName))

	_, cmd := m.Update(key("right"))
	if cmd == nil {
		t.Fatal("expected a window query command")
	}
	m.Update(cmd())
	if m.mode != modeWindows || len(m.windows) != 2 {
		t.Fatalf("mode = %d windows = %d, want drill-down with 2 windows", m.mode, len(m.windows))
	}

	m.Update(key("down"))
	_, cmd = m.Update(key("enter"))
	if m.result != "dev:3" {
		t.Errorf("result = %q, want dev:3 (window index, not list position)", m.result)
	}
	if !isQuit(cmd) {
		t.Error("expected quit command after window selection")
	}

	// Esc returns to the session list without selecting.
	m2 := newTestModel(f)
	m2.mode = modeWindows
	m2.Update(key("esc"))
	if m2.mode != modeSessions {
		t.Errorf("mode = %d, want modeSessions after esc", m2.mode)
	}
}

func TestTickSkipsRefreshWhileModalOpen(t *testing.T) {
	f := newFakeMux(model.Session{Name: "a"})
	m := newTestModel(f)
	m.refreshInterval = time.Minute

	m.mode = modeKillConfirm
	m.Update(tickMsg{})
	if m.refreshSeq != 0 {
		t.Errorf("refreshSeq = %d, want 0 (modal suppresses timed refresh)", m.refreshSeq)
	}

	m.mode = modeSessions
	m.Update(tickMsg{})
	if m.refreshSeq != 1 {
		t.Errorf("refreshSeq = %d, want 1", m.refreshSeq)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(newFakeMux())
	m.Update(key("?"))
	if m.mode != modeHelp {
		t.Fatalf("mode = %d, want modeHelp", m.mode)
	}
	m.Update(key("q"))
	if m.mode != modeSessions {
		t.Errorf("mode = %d, want modeSessions", m.mode)
	}
}

func TestRefreshEmitsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	f := newFakeMux(model.Session{Name: "a"}, model.Session{Name: "b"})
	m := newTestModel(f)
	m.tracer = tp.Tracer("test")

	cmd := m.doRefresh()
	if _, ok := cmd().(sessionsMsg); !ok {
		t.Fatal("expected a sessionsMsg")
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "dashboard.refresh" {
		t.Errorf("span name = %q, want dashboard.refresh", span.Name())
	}
	sawCount := false
	for _, attr := range span.Attributes() {
		if string(attr.Key) == "dashboard.sessions" {
			sawCount = true
			if attr.Value.AsInt64() != 2 {
				t.Errorf("dashboard.sessions = %d, want 2", attr.Value.AsInt64())
			}
		}
	}
	if !sawCount {
		t.Error("span is missing the dashboard.sessions attribute")
	}
}

func TestRefreshWithoutTracer(t *testing.T) {
	// No tracer configured: the refresh command still produces a result.
	f := newFakeMux(model.Session{Name: "a"})
	m := newTestModel(f)

	msg, ok := m.doRefresh()().(sessionsMsg)
	if !ok || len(msg.sessions) != 1 {
		t.Fatalf("refresh without tracer = %#v, want one session", msg)
	}
}

func TestViewWindowsShowsNames(t *testing.T) {
	f := newFakeMux(model.Session{Name: "dev"})
	m := newTestModel(f)
	m.mode = modeWindows
	m.windowsSession = "dev"
	m.windows = []model.Window{
		{Index: 0, Name: "shell", Active: true, Panes: 1},
		{Index: 1, Name: "editor", Panes: 2},
	}

	out := m.View()
	for _, name := range []string{"shell", "editor"} {
		if !strings.Contains(out, name) {
			t.Errorf("window list should show %q, got:\n%s", name, out)
		}
	}
}

func TestViewShowsInstallHintWhenUnavailable(t *testing.T) {
	f := newFakeMux()
	f.available = false
	m := newTestModel(f)
	out := m.View()
	if !strings.Contains(out, "tmux not installed") {
		t.Errorf("view should mention the missing binary, got:\n%s", out)
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := truncate("abcdef", 5); got != "ab..." {
		t.Errorf("truncate = %q, want ab...", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate = %q, want abc", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q, want %q", got, "ab  ")
	}
	// Truncation counts runes, so multibyte names are never cut mid-sequence.
	if got := truncate("héllo wörld", 8); got != "héllo..." {
		t.Errorf("truncate = %q, want héllo...", got)
	}
	if got := truncate("ééé", 2); got != "éé" || !utf8.ValidString(got) {
		t.Errorf("truncate = %q, want valid 2-rune prefix", got)
	}
	// ANSI sequences do not count toward the visible width.
	styled := "\x1b[1mab\x1b[0m"
	if got := visibleLen(styled); got != 2 {
		t.Errorf("visibleLen = %d, want 2", got)
	}
}
