package ui

import (
	"errors"
	"os"
	"strings"
	"testing"

	apperrors "skycryptplus/internal/errors"
	"skycryptplus/internal/prefs"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSetupSavesDocument(t *testing.T) {
	resetTheme(t)
	store := newTestStore(t)
	var m tea.Model = NewSetupModel(store, nil)

	m = typeText(m, "Alice")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Main")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !isQuit(cmd) {
		t.Fatal("expected the form to quit after saving")
	}
	setup := m.(*SetupModel)
	res := setup.Result()
	if res.Cancelled || res.Document == nil {
		t.Fatalf("Result() = %+v", res)
	}

	doc := mustLoad(t, store)
	if doc.PlayerName != "Alice" || doc.DefaultProfile != "Main" {
		t.Errorf("stored %s/%s", doc.PlayerName, doc.DefaultProfile)
	}
	if doc.SelectedTheme != prefs.DefaultTheme || !doc.AutoRefresh.Off() {
		t.Errorf("stored theme %q, interval %v", doc.SelectedTheme, doc.AutoRefresh)
	}
	if doc.SchemaVersion != "1.0.5" || doc.CreatedAt.IsZero() {
		t.Errorf("stored version %q, created_at %q", doc.SchemaVersion, doc.CreatedAt)
	}
}

func TestSetupRequiresBothFields(t *testing.T) {
	store := newTestStore(t)
	var m tea.Model = NewSetupModel(store, nil)

	m = typeText(m, "Alice")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if isQuit(cmd) {
		t.Fatal("form should stay open")
	}
	setup := m.(*SetupModel)
	if setup.Done() {
		t.Fatal("Done() = true")
	}
	if !strings.Contains(setup.View(), "Please enter both player name and profile name.") {
		t.Errorf("missing validation message:\n%s", setup.View())
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("nothing should be written, stat err = %v", err)
	}
}

func TestSetupCancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(msg.String(), func(t *testing.T) {
			store := newTestStore(t)
			var m tea.Model = NewSetupModel(store, nil)
			m = typeText(m, "Alice")

			m, cmd := m.Update(msg)
			if !isQuit(cmd) {
				t.Fatal("expected quit on cancel")
			}
			res := m.(*SetupModel).Result()
			if !res.Cancelled || res.Document != nil {
				t.Errorf("Result() = %+v", res)
			}
			if _, ok := store.Load(); ok {
				t.Error("cancel must not save")
			}
		})
	}
}

func TestSetupThemeSelection(t *testing.T) {
	resetTheme(t)
	store := newTestStore(t)
	var m tea.Model = NewSetupModel(store, nil)

	m = typeText(m, "Alice")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Main")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !isQuit(cmd) {
		t.Fatal("expected quit after saving")
	}
	if got := mustLoad(t, store).SelectedTheme; got != prefs.Themes[1].File {
		t.Errorf("SelectedTheme = %q, want %q", got, prefs.Themes[1].File)
	}
}

func TestSetupThemeWraps(t *testing.T) {
	m := NewSetupModel(newTestStore(t), nil)
	resetTheme(t)
	m.setFocus(focusTheme)
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.themeIdx != len(prefs.Themes)-1 {
		t.Errorf("themeIdx = %d, want last", m.themeIdx)
	}
}

func TestSetupFocusCycles(t *testing.T) {
	m := NewSetupModel(newTestStore(t), nil)
	steps := []struct {
		msg  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, focusProfile},
		{tea.KeyMsg{Type: tea.KeyTab}, focusTheme},
		{tea.KeyMsg{Type: tea.KeyTab}, focusPlayer},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, focusTheme},
	}
	for i, step := range steps {
		m.Update(step.msg)
		if m.focus != step.want {
			t.Fatalf("step %d: focus = %d, want %d", i, m.focus, step.want)
		}
	}
}

func TestSetupPrefillsExistingDocument(t *testing.T) {
	resetTheme(t)
	store := newTestStore(t)
	existing := prefs.NewDocument("Alice", "")
	existing.SelectedTheme = "light.json"
	existing.AutoRefresh = 3

	var m tea.Model = NewSetupModel(store, existing)
	setup := m.(*SetupModel)
	if got := setup.inputs[focusPlayer].Value(); got != "Alice" {
		t.Errorf("player prefill = %q", got)
	}
	if prefs.Themes[setup.themeIdx].File != "light.json" {
		t.Errorf("theme prefill = %q", prefs.Themes[setup.themeIdx].File)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Main")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !isQuit(cmd) {
		t.Fatal("expected quit after saving")
	}

	doc := mustLoad(t, store)
	if doc.PlayerName != "Alice" || doc.DefaultProfile != "Main" {
		t.Errorf("stored %s/%s", doc.PlayerName, doc.DefaultProfile)
	}
	if doc.AutoRefresh != 3 {
		t.Errorf("AutoRefresh = %v, want the existing 3", doc.AutoRefresh)
	}
	if existing.DefaultProfile != "" {
		t.Error("the caller's document must not be modified")
	}
}

func TestSetupErrorMessage(t *testing.T) {
	err := apperrors.Validation("invalid document", map[string]string{
		"player_name":     "is required",
		"default_profile": "must not exceed 64",
	})
	got := setupErrorMessage(err)
	want := "Could not save: player_name is required; default_profile must not exceed 64"
	if got != want {
		t.Errorf("setupErrorMessage() = %q, want %q", got, want)
	}
	if got := setupErrorMessage(errors.New("disk full")); got != "Could not save: disk full" {
		t.Errorf("setupErrorMessage() = %q", got)
	}
}

type fakeRunner struct {
	run  func() (tea.Model, error)
	sent chan tea.Msg
}

func (f fakeRunner) Run() (tea.Model, error) { return f.run() }

func (f fakeRunner) Send(msg tea.Msg) {
	select {
	case f.sent <- msg:
	default:
	}
}

// withProgram replaces the program constructor. fn receives the model and
// the channel Send delivers to.
func withProgram(t *testing.T, fn func(model tea.Model, sent <-chan tea.Msg) (tea.Model, error)) {
	t.Helper()
	orig := newProgram
	newProgram = func(model tea.Model, _ ...tea.ProgramOption) programRunner {
		sent := make(chan tea.Msg, 16)
		return fakeRunner{
			run:  func() (tea.Model, error) { return fn(model, sent) },
			sent: sent,
		}
	}
	t.Cleanup(func() { newProgram = orig })
}

func TestRunSetupReturnsResult(t *testing.T) {
	resetTheme(t)
	store := newTestStore(t)
	withProgram(t, func(model tea.Model, _ <-chan tea.Msg) (tea.Model, error) {
		model = typeText(model, "Alice")
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
		model = typeText(model, "Main")
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		return model, nil
	})

	res, err := RunSetup(store, RunOptions{})
	if err != nil {
		t.Fatalf("RunSetup() error: %v", err)
	}
	if res.Cancelled || res.Document == nil || res.Document.PlayerName != "Alice" {
		t.Errorf("RunSetup() = %+v", res)
	}
}

func TestRunSetupCancelled(t *testing.T) {
	store := newTestStore(t)
	withProgram(t, func(model tea.Model, _ <-chan tea.Msg) (tea.Model, error) {
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
		return model, nil
	})

	res, err := RunSetup(store, RunOptions{})
	if err != nil {
		t.Fatalf("RunSetup() error: %v", err)
	}
	if !res.Cancelled {
		t.Errorf("RunSetup() = %+v, want cancelled", res)
	}
}

func TestRunSetupProgramError(t *testing.T) {
	withProgram(t, func(model tea.Model, _ <-chan tea.Msg) (tea.Model, error) {
		return model, errors.New("no tty")
	})

	_, err := RunSetup(newTestStore(t), RunOptions{})
	if !apperrors.IsCode(err, apperrors.CodeStartupFailed) {
		t.Fatalf("RunSetup() error = %v, want startup_failed", err)
	}
}

func TestRunSetupKeepsHalfConfiguredFile(t *testing.T) {
	resetTheme(t)
	store := newTestStore(t)
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{
    "created_at": "2024-01-01T00:00:00Z",
    "player_name": "Alice",
    "selected_theme": "light.json",
    "auto_refresh_interval_minutes": 3,
    "saved_profiles": [
        {"player_name": "Alice", "profile_name": "Main"},
        {"player_name": "Bob", "profile_name": "Kiwi"}
    ],
    "window_bounds": [10, 20]
}`
	if err := os.WriteFile(store.Path(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	withProgram(t, func(model tea.Model, _ <-chan tea.Msg) (tea.Model, error) {
		setup := model.(*SetupModel)
		if got := setup.inputs[focusPlayer].Value(); got != "Alice" {
			t.Errorf("player prefill = %q", got)
		}
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
		model = typeText(model, "Main")
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		return model, nil
	})

	res, err := RunSetup(store, RunOptions{})
	if err != nil || res.Cancelled {
		t.Fatalf("RunSetup() = %+v, %v", res, err)
	}

	doc := mustLoad(t, store)
	if doc.DefaultProfile != "Main" || doc.SelectedTheme != "light.json" || doc.AutoRefresh != 3 {
		t.Errorf("stored %+v", doc)
	}
	if len(doc.SavedProfiles) != 2 {
		t.Errorf("SavedProfiles = %+v, want both kept", doc.SavedProfiles)
	}
	if doc.CreatedAt.String() != "2024-01-01T00:00:00Z" {
		t.Errorf("created_at = %q, want the original", doc.CreatedAt.String())
	}
	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"window_bounds"`) {
		t.Errorf("unknown member lost:\n%s", data)
	}
}
