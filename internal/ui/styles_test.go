package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"skycryptplus/internal/ui/theme"
)

// Styles are rebuilt from the active palette, so a theme switch must show up
// in the next style call.

func TestStylesFollowActiveTheme(t *testing.T) {
	resetTheme(t)

	for _, name := range []string{"draconic.json", "sunrise.json"} {
		if !theme.SetTheme(name) {
			t.Fatalf("SetTheme(%q) = false", name)
		}
		current := theme.Current()

		assertAdaptiveColor(t, styleAppHeader().GetBackground(), current.Primary(), name+" header background")
		assertAdaptiveColor(t, styleSuccessToast().GetBorderTopForeground(), current.Success(), name+" toast border")
		assertAdaptiveColor(t, styleErrorBox().GetBorderLeftForeground(), current.Error(), name+" error border")
		assertAdaptiveColor(t, stylePaneFocused().GetBorderTopForeground(), current.BorderFocused(), name+" focused pane")
	}
}

func TestBuildMarkdownRendererPlain(t *testing.T) {
	render := buildMarkdownRenderer("plain", 10)
	got := render("one two three")
	if !strings.Contains(got, "\n") || !strings.Contains(got, "three") {
		t.Errorf("plain render should wrap, got %q", got)
	}
}

func assertAdaptiveColor(t *testing.T, got lipgloss.TerminalColor, expected lipgloss.AdaptiveColor, label string) {
	t.Helper()

	adaptive, ok := got.(lipgloss.AdaptiveColor)
	if !ok {
		t.Fatalf("%s should be AdaptiveColor, got %T", label, got)
	}
	if adaptive != expected {
		t.Fatalf("%s mismatch: expected %+v, got %+v", label, expected, adaptive)
	}
}
