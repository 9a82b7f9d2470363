// Package toaster provides a one-line notification shown in the status bar.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

// Style determines the visual appearance of the toast.
type Style int

const (
	// StyleSuccess shows ✓ in green.
	StyleSuccess Style = iota
	// StyleError shows ✗ in red.
	StyleError
	// StyleInfo shows i in the accent color.
	StyleInfo
	// StyleWarn shows ! in yellow.
	StyleWarn
)

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	// seq identifies the current toast so a stale dismissal is ignored.
	seq int
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// Show displays a toast and returns the command that dismisses it after d.
// A zero d keeps the toast until it is replaced or hidden.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.seq++
	if d <= 0 {
		return m, nil
	}
	return m, ScheduleDismiss(m.seq, d)
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the current toast.
func (m Model) Message() string {
	return m.message
}

// Update hides the toast when its own dismissal arrives.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.Seq == m.seq {
		return m.Hide()
	}
	return m
}

// View renders the toast as a single styled line.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	var icon string
	var color lipgloss.TerminalColor
	switch m.style {
	case StyleError:
		icon, color = "✗", styles.StatusErrorColor
	case StyleInfo:
		icon, color = "i", styles.BorderHighlightFocusColor
	case StyleWarn:
		icon, color = "!", styles.StatusWarningColor
	default:
		icon, color = "✓", styles.StatusSuccessColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(icon + " " + m.message)
}

// DismissMsg signals that the toast with sequence Seq should be dismissed.
type DismissMsg struct {
	Seq int
}

// ScheduleDismiss returns a command that dismisses toast seq after d.
func ScheduleDismiss(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return DismissMsg{Seq: seq}
	})
}
