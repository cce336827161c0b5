package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "skycryptplus/internal/errors"
	"skycryptplus/internal/host"
	"skycryptplus/internal/logging"
	"skycryptplus/internal/prefs"
	"skycryptplus/internal/ui/theme"
	"skycryptplus/internal/update"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// copyToClipboard is a function variable to allow overriding in tests.
var copyToClipboard = clipboard.WriteAll

type toastKind int

const (
	toastInfo toastKind = iota
	toastUpdate
	toastError
)

type toast struct {
	text  string
	kind  toastKind
	start time.Time
}

// prefsChangedMsg carries a document reloaded after the file changed on disk.
type prefsChangedMsg struct {
	doc *prefs.Document
}

// ShellOptions configures the shell.
type ShellOptions struct {
	// Version is the running application version shown in the header.
	Version string
	// Pending is the background update check, nil when skipped.
	Pending *update.Pending
	// Logger receives shell events. Nil uses the application log.
	Logger logging.Logger
}

// ShellModel is the main view: the stats page being shown and the
// preferences the page would otherwise change through its own controls.
type ShellModel struct {
	store  *prefs.Store
	bridge *host.Bridge
	window host.Window
	log    logging.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	version  string
	doc      *prefs.Document
	interval prefs.RefreshInterval
	gen      int

	pending    *update.Pending
	checking   bool
	updateInfo *update.UpdateInfo
	checkState update.State
	showNotes  bool

	toast *toast
	now   func() time.Time

	width  int
	height int
}

// NewShellModel creates the shell for a configured document.
func NewShellModel(store *prefs.Store, bridge *host.Bridge, window host.Window, opts ShellOptions) *ShellModel {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &ShellModel{
		store:   store,
		bridge:  bridge,
		window:  window,
		log:     log,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		version: opts.Version,
		pending: opts.Pending,
		now:     time.Now,
		width:   80,
	}
	if doc, ok := store.Load(); ok {
		m.doc = doc
		m.interval = doc.AutoRefresh
		theme.SetTheme(doc.SelectedTheme)
	}
	m.checkState = m.pending.State()
	m.checking = m.checkState == update.StateChecking
	return m
}

func (m *ShellModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForUpdate(m.pending),
		scheduleRefreshTick(m.interval.Duration(), m.gen),
	}
	if m.checking {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *ShellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshTickMsg:
		if msg.generation != m.gen || m.interval.Off() {
			return m, nil
		}
		if err := m.window.Reload(); err != nil {
			m.log.Warnf("Auto refresh failed: %v", err)
		}
		return m, scheduleRefreshTick(m.interval.Duration(), m.gen)

	case toastTickMsg:
		if m.toast == nil {
			return m, nil
		}
		if m.now().Sub(m.toast.start) >= toastDuration {
			m.toast = nil
			return m, nil
		}
		return m, scheduleToastTick()

	case updateAvailableMsg:
		m.checking = false
		m.checkState = update.StateUpdateFound
		m.updateInfo = msg.info
		if err := host.NotifyUpdate(m.window, msg.info); err != nil {
			m.log.Errorf("Error notifying page about update: %v", err)
		}
		return m, m.showToast(fmt.Sprintf("Update available: %s  (u: notes, o: copy link)", msg.info.LatestVersion), toastUpdate)

	case updateCheckDoneMsg:
		m.checking = false
		m.checkState = msg.state
		return m, nil

	case prefsChangedMsg:
		return m, m.applyDocument(msg.doc)

	case spinner.TickMsg:
		if !m.checking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ShellModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showNotes {
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Notes) {
			m.showNotes = false
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.help.ShowAll = false
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		return m, m.nextTheme()
	case key.Matches(msg, m.keys.AutoRefresh):
		return m, m.nextAutoRefresh()
	case key.Matches(msg, m.keys.Profile):
		return m, m.nextProfile()
	case key.Matches(msg, m.keys.Reload):
		if err := m.window.Reload(); err != nil {
			return m, m.showToast("Reload failed: "+err.Error(), toastError)
		}
		return m, m.showToast("Page reloaded", toastInfo)
	case key.Matches(msg, m.keys.Copy):
		return m, m.copy(m.bridge.CurrentURL(), "Copied stats URL to clipboard.")
	case key.Matches(msg, m.keys.Notes):
		if m.updateInfo == nil {
			return m, m.showToast("No update available.", toastInfo)
		}
		m.showNotes = true
		return m, nil
	case key.Matches(msg, m.keys.CopyRelease):
		if m.updateInfo == nil {
			return m, m.showToast("No update available.", toastInfo)
		}
		return m, m.copy(m.updateInfo.ReleaseURL, "Copied release link to clipboard.")
	}
	return m, nil
}

func (m *ShellModel) nextTheme() tea.Cmd {
	current := prefs.DefaultTheme
	if m.doc != nil {
		current = m.doc.SelectedTheme
	}
	next := prefs.NextTheme(current)
	if !m.bridge.PersistTheme(next) {
		return m.showToast("Could not save theme.", toastError)
	}
	m.reload()
	return m.showToast("Theme: "+prefs.ThemeName(next), toastInfo)
}

func (m *ShellModel) nextAutoRefresh() tea.Cmd {
	next := m.interval.Next()
	if !m.bridge.PersistAutoRefresh(next.String()) {
		return m.showToast("Could not save auto refresh interval.", toastError)
	}
	refresh := m.reload()
	return tea.Batch(refresh, m.showToast("Auto refresh: "+next.Label(), toastInfo))
}

func (m *ShellModel) nextProfile() tea.Cmd {
	list := m.bridge.SavedProfiles()
	if len(list.Profiles) < 2 {
		return m.showToast("No other saved profiles.", toastInfo)
	}
	idx := 0
	for i, p := range list.Profiles {
		if p.PlayerName == list.CurrentPlayer && p.ProfileName == list.CurrentProfile {
			idx = i
			break
		}
	}
	next := list.Profiles[(idx+1)%len(list.Profiles)]
	if !m.bridge.SwitchProfile(next.PlayerName, next.ProfileName) {
		return m.showToast("Could not switch profile.", toastError)
	}
	m.reload()
	return m.showToast("Switched to "+next.DisplayName, toastInfo)
}

func (m *ShellModel) copy(text, done string) tea.Cmd {
	if err := copyToClipboard(text); err != nil {
		m.log.Warnf("Clipboard copy failed: %v", err)
		return m.showToast("Clipboard unavailable: "+text, toastError)
	}
	return m.showToast(done, toastInfo)
}

// reload rereads the document after a change made through the bridge.
func (m *ShellModel) reload() tea.Cmd {
	doc, ok := m.store.Load()
	if !ok {
		return nil
	}
	return m.applyDocument(doc)
}

// applyDocument adopts doc and restarts auto-refresh when its interval
// changed. A nil doc (file removed) keeps the current view.
func (m *ShellModel) applyDocument(doc *prefs.Document) tea.Cmd {
	if doc == nil {
		return nil
	}
	m.doc = doc
	theme.SetTheme(doc.SelectedTheme)
	if doc.AutoRefresh == m.interval {
		return nil
	}
	m.interval = doc.AutoRefresh
	m.gen++
	return scheduleRefreshTick(m.interval.Duration(), m.gen)
}

func (m *ShellModel) showToast(text string, kind toastKind) tea.Cmd {
	m.toast = &toast{text: text, kind: kind, start: m.now()}
	return scheduleToastTick()
}

func (m *ShellModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	width := m.width - 2
	if width < 30 {
		width = 30
	}
	if m.showNotes && m.updateInfo != nil {
		style := prefs.DefaultTheme
		if m.doc != nil {
			style = m.doc.SelectedTheme
		}
		notes := renderReleaseNotes(m.updateInfo, width-4, markdownStyleFor(style))
		b.WriteString(stylePaneFocused().Width(width).Render(notes))
	} else {
		b.WriteString(stylePane().Width(width).Render(m.bodyView()))
	}
	b.WriteString("\n")

	if t := m.toastView(); t != "" {
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *ShellModel) headerView() string {
	title := styleAppHeader().Render("SkyCrypt+ " + displayVersion(m.version))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", m.statusView())
}

func (m *ShellModel) statusView() string {
	switch {
	case m.checking:
		return m.spinner.View() + styleMuted().Render(" Checking for updates…")
	case m.checkState == update.StateUpdateFound && m.updateInfo != nil:
		return styleName().Render("Update " + m.updateInfo.LatestVersion.String() + " available")
	case m.checkState == update.StateNoUpdate:
		return styleMuted().Render("Up to date")
	case m.checkState == update.StateFailed:
		return styleMuted().Render("Update check failed")
	default:
		return ""
	}
}

func (m *ShellModel) bodyView() string {
	if m.doc == nil {
		return styleErrorText().Render("No preferences found. Restart to run setup.")
	}
	rows := [][2]string{
		{"Player", styleName().Render(m.doc.PlayerName)},
		{"Profile", styleName().Render(m.doc.DefaultProfile)},
		{"Page", styleLink().Render(m.bridge.CurrentURL())},
		{"Theme", styleVal().Render(prefs.ThemeName(m.doc.SelectedTheme))},
		{"Auto refresh", styleVal().Render(m.interval.Label())},
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(styleField().Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleField().Render("Saved profiles"))
	b.WriteString("\n")
	for _, p := range m.doc.Profiles() {
		marker := "  "
		label := styleVal().Render(p.Label())
		if p.Matches(m.doc.PlayerName, m.doc.DefaultProfile) {
			marker = "› "
			label = styleName().Render(p.Label())
		}
		b.WriteString(marker + label + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *ShellModel) toastView() string {
	if m.toast == nil {
		return ""
	}
	switch m.toast.kind {
	case toastUpdate:
		return styleUpdateToast().Render(m.toast.text)
	case toastError:
		return styleErrorBox().Padding(0, 1).Render(m.toast.text)
	default:
		return styleSuccessToast().Render(m.toast.text)
	}
}

func displayVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if v[0] >= '0' && v[0] <= '9' {
		return "v" + v
	}
	return v
}

// RunShell runs the shell until the user quits. Changes to the preference
// file made outside the shell are picked up while it runs.
func RunShell(ctx context.Context, store *prefs.Store, bridge *host.Bridge, window host.Window, opts ShellOptions, run RunOptions) error {
	model := NewShellModel(store, bridge, window, opts)
	if model.doc == nil {
		return apperrors.New(apperrors.CodeNotFound, "start shell", fmt.Errorf("no preferences at %s", store.Path()))
	}

	prog := newProgram(model, run.programOptions()...)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := store.Watch(watchCtx, func(doc *prefs.Document) {
			prog.Send(prefsChangedMsg{doc: doc})
		})
		if err != nil {
			model.log.Warnf("Preference watcher stopped: %v", err)
		}
	}()

	if _, err := prog.Run(); err != nil {
		return apperrors.New(apperrors.CodeStartupFailed, "run shell", err)
	}
	return nil
}
