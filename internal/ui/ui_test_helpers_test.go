package ui

import (
	"testing"
	"time"

	"skycryptplus/internal/host"
	"skycryptplus/internal/logging"
	"skycryptplus/internal/prefs"
	"skycryptplus/internal/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestStore(t *testing.T) *prefs.Store {
	t.Helper()
	return prefs.NewStore(
		prefs.WithDir(t.TempDir()),
		prefs.WithLegacyDirs(),
		prefs.WithAppVersion("1.0.5"),
		prefs.WithClock(func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }),
		prefs.WithLogger(logging.Discard()),
	)
}

func mustLoad(t *testing.T, store *prefs.Store) *prefs.Document {
	t.Helper()
	doc, ok := store.Load()
	if !ok {
		t.Fatal("expected a stored document")
	}
	return doc
}

func resetTheme(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { theme.SetTheme(prefs.DefaultTheme) })
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(runeKey(r))
	}
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

type testShell struct {
	model  *ShellModel
	store  *prefs.Store
	bridge *host.Bridge
	window *TerminalWindow
}

func newTestShell(t *testing.T, opts ShellOptions) *testShell {
	t.Helper()
	resetTheme(t)

	store := newTestStore(t)
	if err := store.Save(prefs.NewDocument("Alice", "Main")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	window := NewTerminalWindow("", logging.Discard())
	bridge := host.NewBridge(store, window,
		host.WithSiteURL("http://stats.local"),
		host.WithBridgeLogger(logging.Discard()),
	)
	if err := window.Load(bridge.CurrentURL()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &testShell{
		model:  NewShellModel(store, bridge, window, opts),
		store:  store,
		bridge: bridge,
		window: window,
	}
}

func (s *testShell) press(msg tea.KeyMsg) tea.Cmd {
	_, cmd := s.model.Update(msg)
	return cmd
}
