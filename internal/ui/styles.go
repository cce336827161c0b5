package ui

import (
	"strings"

	"skycryptplus/internal/ui/theme"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Styles read the active site theme on every call so a theme change made in
// the shell recolors the next frame.

func styleAppHeader() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Foreground(t.Text()).
		Background(t.Primary()).
		Bold(true).
		Padding(0, 1)
}

func stylePane() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Current().BorderNormal()).
		Padding(0, 1)
}

func stylePaneFocused() lipgloss.Style {
	return stylePane().BorderForeground(theme.Current().BorderFocused())
}

func styleField() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Current().Secondary()).
		Bold(true).
		Width(14)
}

func styleVal() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Text())
}

func styleName() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Accent()).Bold(true)
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().TextMuted())
}

func styleLink() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Secondary()).Underline(true)
}

func styleSelected() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Foreground(t.Text()).
		Background(t.Primary()).
		Bold(true)
}

func styleErrorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Error()).Bold(true)
}

func styleSuccessToast() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Success()).
		Foreground(t.Text()).
		Padding(0, 1)
}

func styleUpdateToast() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Warning()).
		Foreground(t.Text()).
		Padding(0, 1)
}

func styleErrorBox() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Error()).
		Foreground(t.Text()).
		Padding(1, 2)
}

func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" || style == "dark" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}

// markdownStyleFor picks the glamour style matching a site theme.
func markdownStyleFor(themeID string) string {
	if themeID == "light.json" {
		return "light"
	}
	return "dark"
}
