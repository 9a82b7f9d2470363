// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // IANA ids, secondary info
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"} // Detail pane body

	BorderDefaultColor        = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#696969"}
	BorderHighlightFocusColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	SelectionBackgroundColor  = lipgloss.AdaptiveColor{Light: "#DCE6F2", Dark: "#2E3440"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#C98C00", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Provider kinds
	KindGatewayColor    = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	KindCandidateColor  = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}
	KindSelfHostedColor = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"}

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	LabelStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	ValueStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor)

	ActiveFilterStyle = lipgloss.NewStyle().Bold(true).Foreground(BorderHighlightFocusColor)

	PrimaryButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#1A5276"))
)

// KindColor returns the color used for a provider kind.
func KindColor(k registrar.Kind) lipgloss.TerminalColor {
	switch k {
	case registrar.KindGateway:
		return KindGatewayColor
	case registrar.KindCandidate:
		return KindCandidateColor
	case registrar.KindSelfHosted:
		return KindSelfHostedColor
	}
	return TextMutedColor
}

// KindLabel is the short label shown in the kind column.
func KindLabel(k registrar.Kind) string {
	switch k {
	case registrar.KindGateway:
		return "gateway"
	case registrar.KindCandidate:
		return "candidate"
	case registrar.KindSelfHosted:
		return "self"
	}
	return "-"
}
