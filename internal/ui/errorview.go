package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	apperrors "skycryptplus/internal/errors"

	"github.com/muesli/reflow/wordwrap"
)

const errorBoxWidth = 72

// RenderError writes the startup error surface to w.
func RenderError(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintln(w, FormatError(err, errorBoxWidth))
}

// FormatError renders err as a bordered box with word-wrapped text. Coded
// errors show their code and any field details.
func FormatError(err error, width int) string {
	if err == nil {
		return ""
	}
	if width < 20 {
		width = 20
	}
	inner := width - 6

	var b strings.Builder
	b.WriteString(styleErrorText().Render("SkyCrypt+ could not start"))
	b.WriteString("\n\n")
	b.WriteString(wordwrap.String(err.Error(), inner))

	if code := apperrors.CodeOf(err); code != apperrors.CodeUnknown {
		b.WriteString("\n\n")
		b.WriteString(styleMuted().Render("code: " + string(code)))
	}
	if fields := apperrors.FieldsOf(err); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n")
		for _, name := range names {
			b.WriteString("\n")
			b.WriteString(wordwrap.String(fmt.Sprintf("• %s: %s", name, fields[name]), inner))
		}
	}
	return styleErrorBox().Width(width).Render(b.String())
}
