package styles

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numbers = message.NewPrinter(language.English)

// TruncateString truncates s to maxWidth cells, adding an ellipsis if
// needed. ANSI sequences are preserved and not counted.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return ansi.Truncate(s, maxWidth, "")
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// FitWidth truncates or right-pads plain text to exactly width cells.
// Wide runes (CJK names) count as two cells.
func FitWidth(s string, width int) string {
	if width < 1 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return numbers.Sprintf("%d", n)
}
