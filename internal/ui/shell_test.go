package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "skycryptplus/internal/errors"
	"skycryptplus/internal/logging"
	"skycryptplus/internal/prefs"
	"skycryptplus/internal/ui/theme"
	"skycryptplus/internal/update"

	tea "github.com/charmbracelet/bubbletea"
)

func stubClipboard(t *testing.T, err error) *[]string {
	t.Helper()
	var copied []string
	orig := copyToClipboard
	copyToClipboard = func(text string) error {
		if err != nil {
			return err
		}
		copied = append(copied, text)
		return nil
	}
	t.Cleanup(func() { copyToClipboard = orig })
	return &copied
}

func testUpdateInfo(t *testing.T) *update.UpdateInfo {
	t.Helper()
	current, err := update.ParseVersion("1.0.5")
	if err != nil {
		t.Fatal(err)
	}
	latest, err := update.ParseVersion("v1.0.6")
	if err != nil {
		t.Fatal(err)
	}
	return &update.UpdateInfo{
		CurrentVersion:  current,
		LatestVersion:   latest,
		UpdateAvailable: true,
		ReleaseURL:      "https://github.com/Balionelis/SkyCryptPlus/releases/tag/v1.0.6",
		ReleaseNotes:    "## Fixes\n\n- Profile switcher keeps its scroll position",
	}
}

func TestShellThemeKeyPersists(t *testing.T) {
	s := newTestShell(t, ShellOptions{})

	s.press(runeKey('t'))

	want := prefs.NextTheme(prefs.DefaultTheme)
	if got := mustLoad(t, s.store).SelectedTheme; got != want {
		t.Errorf("stored theme = %q, want %q", got, want)
	}
	if theme.CurrentName() != want {
		t.Errorf("active palette = %q, want %q", theme.CurrentName(), want)
	}
	if s.model.toast == nil || !strings.Contains(s.model.toast.text, prefs.ThemeName(want)) {
		t.Errorf("toast = %+v", s.model.toast)
	}
}

func TestShellAutoRefreshKeyCyclesAndReloads(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	gen := s.model.gen

	if cmd := s.press(runeKey('r')); cmd == nil {
		t.Fatal("expected tick and toast commands")
	}
	if got := mustLoad(t, s.store).AutoRefresh; got != 1 {
		t.Fatalf("stored interval = %v, want 1", got)
	}
	if s.model.interval != 1 || s.model.gen == gen {
		t.Fatalf("interval = %v, gen = %d", s.model.interval, s.model.gen)
	}

	s.model.Update(refreshTickMsg{generation: gen})
	if s.window.Reloads() != 0 {
		t.Error("a tick from the previous interval must be ignored")
	}
	_, cmd := s.model.Update(refreshTickMsg{generation: s.model.gen})
	if s.window.Reloads() != 1 {
		t.Errorf("Reloads() = %d, want 1", s.window.Reloads())
	}
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
}

func TestShellAutoRefreshOffStopsTicks(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	for i := 0; i < len(prefs.RefreshPresets); i++ {
		s.press(runeKey('r'))
	}
	if !s.model.interval.Off() {
		t.Fatalf("interval = %v, want off after a full cycle", s.model.interval)
	}
	if got := mustLoad(t, s.store).AutoRefresh; !got.Off() {
		t.Errorf("stored interval = %v, want off", got)
	}

	_, cmd := s.model.Update(refreshTickMsg{generation: s.model.gen})
	if cmd != nil || s.window.Reloads() != 0 {
		t.Error("no reload should happen while auto refresh is off")
	}
}

func TestShellProfileKey(t *testing.T) {
	s := newTestShell(t, ShellOptions{})

	s.press(runeKey('p'))
	if s.model.toast == nil || s.model.toast.text != "No other saved profiles." {
		t.Fatalf("toast = %+v", s.model.toast)
	}

	if !s.bridge.AddSavedProfile("Bob", "Kiwi", "") {
		t.Fatal("AddSavedProfile() = false")
	}
	s.press(runeKey('p'))

	doc := mustLoad(t, s.store)
	if doc.PlayerName != "Bob" || doc.DefaultProfile != "Kiwi" {
		t.Errorf("active = %s/%s", doc.PlayerName, doc.DefaultProfile)
	}
	if got := s.window.URL(); got != "http://stats.local/stats/Bob/Kiwi" {
		t.Errorf("window URL = %q", got)
	}
	if s.model.doc.PlayerName != "Bob" {
		t.Error("shell should show the new profile")
	}

	s.press(runeKey('p'))
	if got := mustLoad(t, s.store).PlayerName; got != "Alice" {
		t.Errorf("cycling should wrap back to Alice, got %q", got)
	}
}

func TestShellCopyURL(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	copied := stubClipboard(t, nil)

	s.press(runeKey('c'))
	if len(*copied) != 1 || (*copied)[0] != "http://stats.local/stats/Alice/Main" {
		t.Errorf("copied = %v", *copied)
	}
}

func TestShellCopyFailureShowsURL(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	stubClipboard(t, errors.New("no clipboard"))

	s.press(runeKey('c'))
	if s.model.toast == nil || s.model.toast.kind != toastError {
		t.Fatalf("toast = %+v", s.model.toast)
	}
	if !strings.Contains(s.model.toast.text, "http://stats.local/stats/Alice/Main") {
		t.Errorf("toast should carry the URL, got %q", s.model.toast.text)
	}
}

func TestShellReloadKey(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	s.press(tea.KeyMsg{Type: tea.KeyCtrlR})
	if s.window.Reloads() != 1 {
		t.Errorf("Reloads() = %d, want 1", s.window.Reloads())
	}
}

func TestShellUpdateAvailable(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	copied := stubClipboard(t, nil)
	info := testUpdateInfo(t)

	s.model.Update(updateAvailableMsg{info: info})

	scripts := s.window.Scripts()
	if len(scripts) != 1 || !strings.Contains(scripts[0], `"latestVersion":"1.0.6"`) {
		t.Fatalf("scripts = %v", scripts)
	}
	if s.model.checkState != update.StateUpdateFound || s.model.checking {
		t.Errorf("state = %v, checking = %v", s.model.checkState, s.model.checking)
	}
	if s.model.toast == nil || s.model.toast.kind != toastUpdate {
		t.Errorf("toast = %+v", s.model.toast)
	}
	if !strings.Contains(s.model.View(), "Update v1.0.6 available") {
		t.Errorf("header should announce the update:\n%s", s.model.View())
	}

	s.press(runeKey('o'))
	if len(*copied) != 1 || (*copied)[0] != info.ReleaseURL {
		t.Errorf("copied = %v", *copied)
	}

	s.press(runeKey('u'))
	if !s.model.showNotes {
		t.Fatal("release notes should open")
	}
	if view := s.model.View(); !strings.Contains(view, "Profile switcher keeps its scroll position") {
		t.Errorf("notes missing from view:\n%s", view)
	}
	s.press(tea.KeyMsg{Type: tea.KeyEsc})
	if s.model.showNotes {
		t.Error("Esc should close the notes")
	}
}

func TestShellNotesWithoutUpdate(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	copied := stubClipboard(t, nil)

	s.press(runeKey('u'))
	s.press(runeKey('o'))
	if s.model.showNotes || len(*copied) != 0 {
		t.Errorf("showNotes = %v, copied = %v", s.model.showNotes, *copied)
	}
	if s.model.toast == nil || s.model.toast.text != "No update available." {
		t.Errorf("toast = %+v", s.model.toast)
	}
}

func TestShellUpdateCheckDone(t *testing.T) {
	tests := []struct {
		state update.State
		want  string
	}{
		{update.StateNoUpdate, "Up to date"},
		{update.StateFailed, "Update check failed"},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			s := newTestShell(t, ShellOptions{})
			s.model.checking = true
			s.model.Update(updateCheckDoneMsg{state: tt.state})
			if s.model.checking {
				t.Error("checking should stop")
			}
			if !strings.Contains(s.model.View(), tt.want) {
				t.Errorf("view missing %q:\n%s", tt.want, s.model.View())
			}
			if len(s.window.Scripts()) != 0 {
				t.Error("no script should run without an update")
			}
		})
	}
}

func TestShellPrefsChangedOnDisk(t *testing.T) {
	s := newTestShell(t, ShellOptions{})

	changed := prefs.NewDocument("Alice", "Main")
	changed.SelectedTheme = "sunrise.json"
	changed.AutoRefresh = 2
	_, cmd := s.model.Update(prefsChangedMsg{doc: changed})

	if s.model.interval != 2 || cmd == nil {
		t.Errorf("interval = %v, cmd = %v", s.model.interval, cmd)
	}
	if theme.CurrentName() != "sunrise.json" {
		t.Errorf("active palette = %q", theme.CurrentName())
	}

	s.model.Update(prefsChangedMsg{doc: nil})
	if s.model.doc == nil || s.model.doc.SelectedTheme != "sunrise.json" {
		t.Error("a removed file should keep the current view")
	}
}

func TestShellToastExpires(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.model.now = func() time.Time { return now }

	s.press(tea.KeyMsg{Type: tea.KeyCtrlR})
	if s.model.toast == nil {
		t.Fatal("expected a toast")
	}

	now = now.Add(time.Second)
	if _, cmd := s.model.Update(toastTickMsg{}); cmd == nil || s.model.toast == nil {
		t.Fatal("toast should still be visible and ticking")
	}
	now = now.Add(toastDuration)
	s.model.Update(toastTickMsg{})
	if s.model.toast != nil {
		t.Error("toast should expire")
	}
}

func TestShellQuit(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	if !isQuit(s.press(runeKey('q'))) {
		t.Error("q should quit")
	}
}

func TestShellHelpToggle(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	s.press(runeKey('?'))
	if !s.model.help.ShowAll {
		t.Fatal("? should expand help")
	}
	if !strings.Contains(s.model.View(), "Copy release URL") {
		t.Errorf("full help missing:\n%s", s.model.View())
	}
	s.press(tea.KeyMsg{Type: tea.KeyEsc})
	if s.model.help.ShowAll {
		t.Error("Esc should collapse help")
	}
}

func TestShellView(t *testing.T) {
	s := newTestShell(t, ShellOptions{Version: "1.0.5"})
	view := s.model.View()
	for _, want := range []string{
		"SkyCrypt+ v1.0.5",
		"Alice",
		"Main",
		"http://stats.local/stats/Alice/Main",
		"Default Theme",
		"Off",
		"Alice - Main",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestShellChecksWithPending(t *testing.T) {
	checker := update.NewChecker("", "", update.WithLogger(logging.Discard()), update.WithDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pending := checker.CheckAsync(ctx, "1.0.5", nil)

	s := newTestShell(t, ShellOptions{Pending: pending})
	if !s.model.checking {
		t.Fatal("shell should show the check in progress")
	}
	if !strings.Contains(s.model.View(), "Checking for updates") {
		t.Errorf("view:\n%s", s.model.View())
	}

	cancel()
	msg := waitForUpdate(pending)()
	done, ok := msg.(updateCheckDoneMsg)
	if !ok || done.state != update.StateFailed {
		t.Fatalf("msg = %#v", msg)
	}
}

func TestRunShellWithoutDocument(t *testing.T) {
	store := newTestStore(t)
	err := RunShell(context.Background(), store, nil, NewTerminalWindow("", nil), ShellOptions{}, RunOptions{})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("RunShell() error = %v, want not_found", err)
	}
}

func TestRunShellForwardsFileChanges(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	var ran *ShellModel
	withProgram(t, func(model tea.Model, sent <-chan tea.Msg) (tea.Model, error) {
		ran, _ = model.(*ShellModel)
		deadline := time.After(5 * time.Second)
		for {
			// The watcher starts on its own goroutine; keep writing until it reports.
			if err := s.store.SetTheme("draconic.json"); err != nil {
				return model, err
			}
			select {
			case msg := <-sent:
				changed, ok := msg.(prefsChangedMsg)
				if !ok || changed.doc == nil || changed.doc.SelectedTheme != "draconic.json" {
					t.Errorf("sent %#v", msg)
				}
				return model, nil
			case <-time.After(300 * time.Millisecond):
			case <-deadline:
				t.Error("no change was forwarded to the program")
				return model, nil
			}
		}
	})

	if err := RunShell(context.Background(), s.store, s.bridge, s.window, ShellOptions{Logger: logging.Discard()}, RunOptions{}); err != nil {
		t.Fatalf("RunShell() error: %v", err)
	}
	if ran == nil {
		t.Fatal("RunShell() did not run a shell model")
	}
}

func TestRunShellProgramError(t *testing.T) {
	s := newTestShell(t, ShellOptions{})
	withProgram(t, func(model tea.Model, _ <-chan tea.Msg) (tea.Model, error) {
		return model, errors.New("no tty")
	})

	err := RunShell(context.Background(), s.store, s.bridge, s.window, ShellOptions{Logger: logging.Discard()}, RunOptions{})
	if !apperrors.IsCode(err, apperrors.CodeStartupFailed) {
		t.Fatalf("RunShell() error = %v, want startup_failed", err)
	}
}

func TestDisplayVersion(t *testing.T) {
	tests := map[string]string{
		"1.0.5":  "v1.0.5",
		"v1.0.5": "v1.0.5",
		"dev":    "dev",
		"":       "",
	}
	for in, want := range tests {
		if got := displayVersion(in); got != want {
			t.Errorf("displayVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
