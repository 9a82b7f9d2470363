// Package panes contains reusable bordered pane UI components.
package panes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// BorderConfig configures the appearance of a bordered panel.
type BorderConfig struct {
	Content string // The content to render inside the border
	Width   int    // Total width including borders
	Height  int    // Total height including borders

	TopLeft     string // Title on top border, left-aligned
	TopRight    string // Title on top border, right-aligned
	BottomLeft  string // Title on bottom border, left-aligned
	BottomRight string // Title on bottom border, right-aligned

	// PreWrapped skips width constraining for content whose lines already
	// fit, such as table rows carrying zone markers. Wider lines are still
	// truncated.
	PreWrapped bool

	Focused            bool
	TitleColor         lipgloss.TerminalColor
	BorderColor        lipgloss.TerminalColor // Border color when not focused
	FocusedBorderColor lipgloss.TerminalColor // Border color when focused
}

// BorderedPane renders content within a bordered panel with optional titles.
//
// Nil color fallback rules:
//   - Both BorderColor and FocusedBorderColor nil: BorderDefaultColor for both states
//   - FocusedBorderColor nil: focused inherits BorderColor
//   - BorderColor nil: unfocused uses BorderDefaultColor
func BorderedPane(cfg BorderConfig) string {
	borderColor := resolveBorderColor(cfg.BorderColor, cfg.FocusedBorderColor, cfg.Focused)
	titleColor := cfg.TitleColor
	if titleColor == nil {
		titleColor = styles.BorderDefaultColor
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor)

	innerWidth := max(cfg.Width-2, 1)
	contentHeight := max(cfg.Height-2, 1)

	top := buildEdge(borderTopLeft, borderTopRight, cfg.TopLeft, cfg.TopRight, innerWidth, borderStyle, titleStyle)
	bottom := buildEdge(borderBottomLeft, borderBottomRight, cfg.BottomLeft, cfg.BottomRight, innerWidth, borderStyle, titleStyle)

	var contentLines []string
	if cfg.PreWrapped {
		contentLines = strings.Split(cfg.Content, "\n")
	} else {
		// MaxHeight truncates; Height alone only pads.
		constrained := lipgloss.NewStyle().
			Width(innerWidth).
			Height(contentHeight).
			MaxHeight(contentHeight).
			Render(cfg.Content)
		contentLines = strings.Split(constrained, "\n")
	}

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	for i := range contentHeight {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		} else if w > innerWidth {
			line = ansi.Truncate(line, innerWidth, "")
		}
		b.WriteString(borderStyle.Render(borderVertical))
		b.WriteString(line)
		b.WriteString(borderStyle.Render(borderVertical))
		b.WriteString("\n")
	}
	b.WriteString(bottom)
	return b.String()
}

func resolveBorderColor(borderColor, focusedBorderColor lipgloss.TerminalColor, focused bool) lipgloss.TerminalColor {
	switch {
	case borderColor == nil && focusedBorderColor == nil:
		return styles.BorderDefaultColor
	case focusedBorderColor == nil:
		return borderColor
	case focused:
		return focusedBorderColor
	case borderColor == nil:
		return styles.BorderDefaultColor
	}
	return borderColor
}

// buildEdge renders one horizontal border line with optional titles:
//
//	╭─ Left ─────────── Right ─╮
//
// When both titles do not fit, the right title is dropped and the left one
// is truncated.
func buildEdge(leftCorner, rightCorner, left, right string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	plain := borderStyle.Render(leftCorner + strings.Repeat(borderHorizontal, innerWidth) + rightCorner)
	if left == "" && right == "" {
		return plain
	}

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)

	// "─ " + left + " " + dashes(>=1) + " " + right + " ─"
	required := 1
	if left != "" {
		required += leftWidth + 3
	}
	if right != "" {
		required += rightWidth + 3
	}

	if innerWidth < required {
		if left == "" {
			left = right
		}
		right = ""
		// "─ " + title + " " + dashes(>=0)
		avail := innerWidth - 4
		if avail < 1 {
			return plain
		}
		if lipgloss.Width(left) > avail {
			left = styles.TruncateString(left, avail)
		}
		leftWidth = lipgloss.Width(left)
		rightWidth = 0
	}

	dashes := innerWidth
	if left != "" {
		dashes -= leftWidth + 3
	}
	if right != "" {
		dashes -= rightWidth + 3
	}
	dashes = max(dashes, 0)

	var b strings.Builder
	b.WriteString(borderStyle.Render(leftCorner))
	if left != "" {
		b.WriteString(borderStyle.Render(borderHorizontal + " "))
		b.WriteString(titleStyle.Render(left))
		b.WriteString(borderStyle.Render(" "))
	}
	b.WriteString(borderStyle.Render(strings.Repeat(borderHorizontal, dashes)))
	if right != "" {
		b.WriteString(borderStyle.Render(" "))
		b.WriteString(titleStyle.Render(right))
		b.WriteString(borderStyle.Render(" " + borderHorizontal))
	}
	b.WriteString(borderStyle.Render(rightCorner))
	return b.String()
}
