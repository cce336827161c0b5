package ui

import (
	"fmt"
	"strings"
	"time"

	"skycryptplus/internal/update"
)

const noReleaseNotes = "_This release has no notes._"

// renderReleaseNotes renders the header and markdown body of an update.
func renderReleaseNotes(info *update.UpdateInfo, width int, style string) string {
	if info == nil {
		return ""
	}
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	b.WriteString(styleName().Render(fmt.Sprintf("SkyCrypt+ %s is available", info.LatestVersion)))
	b.WriteString(styleMuted().Render(fmt.Sprintf("  (you have %s)", info.CurrentVersion)))
	b.WriteString("\n")
	if published := formatPublished(info.PublishedAt); published != "" {
		b.WriteString(styleMuted().Render("Published " + published))
		b.WriteString("\n")
	}
	if info.IsPrerelease {
		b.WriteString(styleErrorText().Render("Pre-release"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := strings.TrimSpace(info.ReleaseNotes)
	if body == "" {
		body = noReleaseNotes
	}
	b.WriteString(buildMarkdownRenderer(style, width)(body))
	b.WriteString("\n\n")
	b.WriteString(styleLink().Render(info.ReleaseURL))
	return b.String()
}

func formatPublished(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
