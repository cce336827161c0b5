package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions controls how a bubbletea program is attached to the terminal.
type RunOptions struct {
	// Input overrides stdin.
	Input io.Reader
	// Output overrides stdout.
	Output io.Writer
	// AltScreen runs the program in the alternate screen buffer.
	AltScreen bool
}

func (o RunOptions) programOptions() []tea.ProgramOption {
	var opts []tea.ProgramOption
	if o.Input != nil {
		opts = append(opts, tea.WithInput(o.Input))
	}
	if o.Output != nil {
		opts = append(opts, tea.WithOutput(o.Output))
	}
	if o.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return opts
}

type programRunner interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// newProgram is a seam for tests.
var newProgram = func(model tea.Model, opts ...tea.ProgramOption) programRunner {
	return tea.NewProgram(model, opts...)
}
