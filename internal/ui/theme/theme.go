// Package theme maps the stats site's themes onto terminal colors so the
// shell's accents follow the theme the page is showing.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the semantic colors of the shell UI.
// All methods return AdaptiveColor for automatic light/dark terminal support.
type Theme interface {
	// Base colors
	Primary() lipgloss.AdaptiveColor   // Header background, focused borders
	Secondary() lipgloss.AdaptiveColor // Field labels, links
	Accent() lipgloss.AdaptiveColor    // Player and profile names

	// Status colors
	Error() lipgloss.AdaptiveColor
	Warning() lipgloss.AdaptiveColor
	Success() lipgloss.AdaptiveColor

	// Text colors
	Text() lipgloss.AdaptiveColor
	TextMuted() lipgloss.AdaptiveColor

	// Border colors
	BorderNormal() lipgloss.AdaptiveColor
	BorderFocused() lipgloss.AdaptiveColor
}

// palette is a Theme backed by plain color values.
type palette struct {
	primary, secondary, accent lipgloss.AdaptiveColor
	errorC, warning, success   lipgloss.AdaptiveColor
	text, textMuted            lipgloss.AdaptiveColor
	border, borderFocused      lipgloss.AdaptiveColor
}

func (p palette) Primary() lipgloss.AdaptiveColor       { return p.primary }
func (p palette) Secondary() lipgloss.AdaptiveColor     { return p.secondary }
func (p palette) Accent() lipgloss.AdaptiveColor        { return p.accent }
func (p palette) Error() lipgloss.AdaptiveColor         { return p.errorC }
func (p palette) Warning() lipgloss.AdaptiveColor       { return p.warning }
func (p palette) Success() lipgloss.AdaptiveColor       { return p.success }
func (p palette) Text() lipgloss.AdaptiveColor          { return p.text }
func (p palette) TextMuted() lipgloss.AdaptiveColor     { return p.textMuted }
func (p palette) BorderNormal() lipgloss.AdaptiveColor  { return p.border }
func (p palette) BorderFocused() lipgloss.AdaptiveColor { return p.borderFocused }

// newPalette derives a full palette from a site theme's accent colors.
// Status and text colors are shared so every theme stays readable.
func newPalette(primary, secondary, accent string) palette {
	return palette{
		primary:       lipgloss.AdaptiveColor{Light: primary, Dark: primary},
		secondary:     lipgloss.AdaptiveColor{Light: secondary, Dark: secondary},
		accent:        lipgloss.AdaptiveColor{Light: accent, Dark: accent},
		errorC:        lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ff5555"},
		warning:       lipgloss.AdaptiveColor{Light: "#ef6c00", Dark: "#ffb86c"},
		success:       lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#50fa7b"},
		text:          lipgloss.AdaptiveColor{Light: "#1f1f1f", Dark: "#f2f2f2"},
		textMuted:     lipgloss.AdaptiveColor{Light: "#6b6b6b", Dark: "#8a8a8a"},
		border:        lipgloss.AdaptiveColor{Light: "#c4c4c4", Dark: "#4a4a4a"},
		borderFocused: lipgloss.AdaptiveColor{Light: primary, Dark: primary},
	}
}
