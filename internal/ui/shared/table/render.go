package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

var selectionBgStyle = lipgloss.NewStyle().Background(styles.SelectionBackgroundColor)

// filterVisibleColumns drops columns whose HideBelow threshold exceeds the
// table width.
func filterVisibleColumns(cols []ColumnConfig, tableWidth int) []ColumnConfig {
	out := make([]ColumnConfig, 0, len(cols))
	for _, c := range cols {
		if c.HideBelow > 0 && tableWidth < c.HideBelow {
			continue
		}
		out = append(out, c)
	}
	return out
}

// calculateColumnWidths assigns fixed widths first and splits what is left
// (after one-space separators) between flex columns, honoring MinWidth and
// MaxWidth. Slack left by capped columns goes to the last uncapped one.
func calculateColumnWidths(cols []ColumnConfig, innerWidth int) []int {
	widths := make([]int, len(cols))
	if len(cols) == 0 {
		return widths
	}

	remaining := innerWidth - (len(cols) - 1)
	var flex []int
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			remaining -= c.Width
			continue
		}
		flex = append(flex, i)
	}
	if len(flex) == 0 {
		return widths
	}

	share := max(remaining/len(flex), 0)
	used := 0
	lastUncapped := -1
	for _, i := range flex {
		w := max(share, cols[i].MinWidth, 3)
		if cols[i].MaxWidth > 0 && w > cols[i].MaxWidth {
			w = cols[i].MaxWidth
		} else {
			lastUncapped = i
		}
		widths[i] = w
		used += w
	}
	if lastUncapped >= 0 && used < remaining {
		widths[lastUncapped] += remaining - used
	}
	return widths
}

func renderHeader(cols []ColumnConfig, widths []int) string {
	parts := make([]string, 0, len(cols))
	for i, col := range cols {
		if i >= len(widths) {
			break
		}
		header := col.Header
		if lipgloss.Width(header) > widths[i] {
			header = styles.TruncateString(header, widths[i])
		}
		parts = append(parts, alignText(header, widths[i], col.Align))
	}
	return strings.Join(parts, " ")
}

// renderRow renders a single data row. Selected rows get the selection
// background on every segment and are padded to fullWidth.
func renderRow(row any, cols []ColumnConfig, widths []int, selected bool, fullWidth int) string {
	if len(cols) == 0 || len(widths) == 0 {
		return ""
	}

	var b strings.Builder
	for i, col := range cols {
		if i > 0 {
			if selected {
				b.WriteString(selectionBgStyle.Render(" "))
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(renderCell(row, col, widths[i], selected))
	}

	content := b.String()
	if selected {
		if w := lipgloss.Width(content); w < fullWidth {
			content += selectionBgStyle.Render(strings.Repeat(" ", fullWidth-w))
		}
	}
	return content
}

func renderCell(row any, col ColumnConfig, width int, selected bool) string {
	content := safeRenderCallback(row, col, width, selected)
	if lipgloss.Width(content) > width {
		content = styles.TruncateString(content, width)
	}
	if !selected {
		return alignText(content, width, col.Align)
	}

	pad := func(n int) string {
		if n <= 0 {
			return ""
		}
		return selectionBgStyle.Render(strings.Repeat(" ", n))
	}
	padding := width - lipgloss.Width(content)
	body := applyBackground(content)
	switch col.Align {
	case lipgloss.Right:
		return pad(padding) + body
	case lipgloss.Center:
		return pad(padding/2) + body + pad(padding-padding/2)
	default:
		return body + pad(padding)
	}
}

var selectionBgPrefix = strings.TrimSuffix(selectionBgStyle.Render(" "), " \x1b[0m")

// applyBackground puts the selection background under content that may
// already carry foreground styling. Full resets inside the content would
// clear the background, so each one is followed by the background prefix.
func applyBackground(content string) string {
	if !strings.Contains(content, "\x1b[") {
		return selectionBgStyle.Render(content)
	}
	withBg := strings.ReplaceAll(content, "\x1b[0m", "\x1b[0m"+selectionBgPrefix)
	return selectionBgPrefix + withBg + "\x1b[0m"
}

// safeRenderCallback invokes the column's Render callback, returning a
// placeholder when it panics.
func safeRenderCallback(row any, col ColumnConfig, width int, selected bool) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = styles.TruncateString(fmt.Sprintf("!ERR:%v", r), width)
		}
	}()

	if col.Render == nil {
		return ""
	}

	return col.Render(row, col.Key, width, selected)
}

// renderEmptyState centers msg in a width x height block.
func renderEmptyState(msg string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if lipgloss.Width(msg) > width {
		msg = styles.TruncateString(msg, width)
	}
	line := strings.Repeat(" ", max((width-lipgloss.Width(msg))/2, 0)) +
		lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(msg)

	lines := make([]string, height)
	lines[max((height-1)/2, 0)] = line
	return strings.Join(lines, "\n")
}

// alignText aligns text within the given width according to position.
func alignText(text string, width int, align lipgloss.Position) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}

	padding := width - textWidth

	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", padding) + text
	case lipgloss.Center:
		leftPad := padding / 2
		rightPad := padding - leftPad
		return strings.Repeat(" ", leftPad) + text + strings.Repeat(" ", rightPad)
	default: // lipgloss.Left or any other value
		return text + strings.Repeat(" ", padding)
	}
}
