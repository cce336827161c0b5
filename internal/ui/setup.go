package ui

import (
	"fmt"
	"strings"

	apperrors "skycryptplus/internal/errors"
	"skycryptplus/internal/prefs"
	"skycryptplus/internal/ui/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	focusPlayer = iota
	focusProfile
	focusTheme
	focusCount
)

const setupFieldLimit = 64

// SetupResult is the outcome of the first-run form.
type SetupResult struct {
	// Document is the saved document; nil when cancelled.
	Document *prefs.Document
	// Cancelled is true when the user closed the form without saving.
	Cancelled bool
}

// SetupModel is the first-run form asking for player, profile and theme.
type SetupModel struct {
	store  *prefs.Store
	base   *prefs.Document
	keys   SetupKeyMap
	help   help.Model
	inputs []textinput.Model

	focus    int
	themeIdx int
	errMsg   string
	width    int

	result SetupResult
	done   bool
}

// NewSetupModel creates the form. A partially configured document prefills
// the fields and keeps its other members when saved.
func NewSetupModel(store *prefs.Store, existing *prefs.Document) *SetupModel {
	player := textinput.New()
	player.Placeholder = "Minecraft username"
	player.CharLimit = setupFieldLimit
	player.Prompt = ""

	profile := textinput.New()
	profile.Placeholder = "e.g. Apple, Banana"
	profile.CharLimit = setupFieldLimit
	profile.Prompt = ""

	m := &SetupModel{
		store:  store,
		base:   existing.Clone(),
		keys:   DefaultSetupKeyMap(),
		help:   help.New(),
		inputs: []textinput.Model{player, profile},
	}
	if existing != nil {
		m.inputs[focusPlayer].SetValue(existing.PlayerName)
		m.inputs[focusProfile].SetValue(existing.DefaultProfile)
		m.themeIdx = themeIndex(existing.SelectedTheme)
	}
	m.setFocus(focusPlayer)
	return m
}

func themeIndex(id string) int {
	for i, t := range prefs.Themes {
		if t.File == id {
			return i
		}
	}
	return 0
}

// Result returns the outcome once the program has quit.
func (m *SetupModel) Result() SetupResult { return m.result }

// Done reports whether the form was submitted or cancelled.
func (m *SetupModel) Done() bool { return m.done }

func (m *SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.result = SetupResult{Cancelled: true}
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus(m.focus + 1)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus(m.focus - 1)
		case m.focus == focusTheme && key.Matches(msg, m.keys.ThemeUp):
			m.moveTheme(-1)
			return m, nil
		case m.focus == focusTheme && key.Matches(msg, m.keys.ThemeDown):
			m.moveTheme(1)
			return m, nil
		case key.Matches(msg, m.keys.ThemeUp):
			return m, m.setFocus(m.focus - 1)
		case key.Matches(msg, m.keys.ThemeDown):
			return m, m.setFocus(m.focus + 1)
		}
	}

	if m.focus < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *SetupModel) setFocus(i int) tea.Cmd {
	m.focus = (i + focusCount) % focusCount
	var cmd tea.Cmd
	for idx := range m.inputs {
		if idx == m.focus {
			cmd = m.inputs[idx].Focus()
			continue
		}
		m.inputs[idx].Blur()
	}
	return cmd
}

func (m *SetupModel) moveTheme(delta int) {
	n := len(prefs.Themes)
	m.themeIdx = (m.themeIdx + delta + n) % n
	theme.SetTheme(prefs.Themes[m.themeIdx].File)
}

func (m *SetupModel) submit() (tea.Model, tea.Cmd) {
	player := strings.TrimSpace(m.inputs[focusPlayer].Value())
	profile := strings.TrimSpace(m.inputs[focusProfile].Value())
	if player == "" || profile == "" {
		m.errMsg = "Please enter both player name and profile name."
		return m, nil
	}

	doc := m.base
	if doc == nil {
		doc = prefs.NewDocument(player, profile)
	}
	doc.PlayerName = player
	doc.DefaultProfile = profile
	doc.SelectedTheme = prefs.Themes[m.themeIdx].File

	if err := m.store.Save(doc); err != nil {
		m.errMsg = setupErrorMessage(err)
		return m, nil
	}
	m.errMsg = ""
	m.result = SetupResult{Document: doc}
	m.done = true
	return m, tea.Quit
}

func setupErrorMessage(err error) string {
	if fields := apperrors.FieldsOf(err); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, name := range []string{"player_name", "default_profile", "selected_theme"} {
			if msg, ok := fields[name]; ok {
				parts = append(parts, fmt.Sprintf("%s %s", name, msg))
			}
		}
		if len(parts) > 0 {
			return "Could not save: " + strings.Join(parts, "; ")
		}
	}
	return "Could not save: " + err.Error()
}

func (m *SetupModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleAppHeader().Render("SkyCrypt+ Setup"))
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("Enter the player and SkyBlock profile to open on start."))
	b.WriteString("\n\n")

	labels := []string{"Player name", "Profile name"}
	for i, in := range m.inputs {
		label := styleField().Render(labels[i])
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, " ", in.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleField().Render("Theme"))
	b.WriteString("\n")
	for i, t := range prefs.Themes {
		line := "  " + t.Name
		if i == m.themeIdx {
			line = "› " + t.Name
			if m.focus == focusTheme {
				line = styleSelected().Render(line)
			} else {
				line = styleName().Render(line)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styleErrorText().Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// RunSetup shows the first-run form and saves the answers through store.
// A file holding only one of player/profile prefills the form, and its other
// members are kept when the answers are saved.
func RunSetup(store *prefs.Store, opts RunOptions) (SetupResult, error) {
	existing := store.Draft()
	model := NewSetupModel(store, existing)
	final, err := newProgram(model, opts.programOptions()...).Run()
	if err != nil {
		return SetupResult{}, apperrors.New(apperrors.CodeStartupFailed, "run setup", err)
	}
	if m, ok := final.(*SetupModel); ok {
		return m.Result(), nil
	}
	return SetupResult{Cancelled: true}, nil
}
