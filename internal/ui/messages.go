package ui

import (
	"time"

	"skycryptplus/internal/update"

	tea "github.com/charmbracelet/bubbletea"
)

const toastDuration = 4 * time.Second

// refreshTickMsg fires an auto-refresh. The generation discards ticks
// scheduled under an interval that has since changed.
type refreshTickMsg struct {
	generation int
}

func scheduleRefreshTick(interval time.Duration, generation int) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return refreshTickMsg{generation: generation}
	})
}

type toastTickMsg struct{}

func scheduleToastTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return toastTickMsg{}
	})
}

// updateAvailableMsg carries a background check result onto the UI loop.
type updateAvailableMsg struct {
	info *update.UpdateInfo
}

// updateCheckDoneMsg reports a check that finished without an update.
type updateCheckDoneMsg struct {
	state update.State
	err   error
}

// waitForUpdate blocks on the pending check's result channel. The worker
// never touches model state; its result only arrives through this command.
func waitForUpdate(p *update.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		info, ok := <-p.Updates()
		if !ok || info == nil {
			return updateCheckDoneMsg{state: p.State(), err: p.Err()}
		}
		return updateAvailableMsg{info: info}
	}
}
