// Package help renders the browser keybinding and filter reference.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/rdapgw/internal/browse"
	"github.com/zjrosen/rdapgw/internal/keys"
	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimaryColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.BorderDefaultColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimaryColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.BorderDefaultColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Model holds the help view state.
type Model struct {
	keys   keys.BrowserKeyMap
	width  int
	height int
}

// New creates a help view over the browser bindings.
func New() Model {
	return Model{keys: keys.Browser}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help box centered in the available space.
func (m Model) View() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderContent())
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	var navCol strings.Builder
	navCol.WriteString(sectionStyle.Render("Navigation"))
	navCol.WriteString("\n")
	for _, b := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.NextPage, m.keys.PrevPage, m.keys.Top, m.keys.Bottom} {
		navCol.WriteString(renderBinding(b))
	}

	var filterCol strings.Builder
	filterCol.WriteString(sectionStyle.Render("Filters"))
	filterCol.WriteString("\n")
	for _, b := range []key.Binding{m.keys.Search, m.keys.CycleProvider, m.keys.CycleKind, m.keys.CycleSize, m.keys.CycleCategory, m.keys.CycleSort, m.keys.ToggleOrder, m.keys.ClearFilters} {
		filterCol.WriteString(renderBinding(b))
	}

	var actionsCol strings.Builder
	actionsCol.WriteString(sectionStyle.Render("Actions"))
	actionsCol.WriteString("\n")
	for _, b := range []key.Binding{m.keys.Details, m.keys.Export, m.keys.Reload, m.keys.Logout, m.keys.Help, m.keys.Quit} {
		actionsCol.WriteString(renderBinding(b))
	}

	bindings := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(navCol.String()),
		columnStyle.Render(filterCol.String()),
		actionsCol.String(),
	)

	labelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	var sizeCol strings.Builder
	sizeCol.WriteString(sectionStyle.Render("Size buckets"))
	sizeCol.WriteString("\n")
	for _, b := range browse.SizeBuckets() {
		sizeCol.WriteString(labelStyle.Render(b.String()) + valueStyle.Render(b.Range()) + "\n")
	}

	var sortCol strings.Builder
	sortCol.WriteString(sectionStyle.Render("Sort fields"))
	sortCol.WriteString("\n")
	for _, f := range browse.SortFields() {
		sortCol.WriteString(valueStyle.Render(string(f)) + "\n")
	}

	reference := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(sizeCol.String()),
		sortCol.String(),
	)

	boxWidth := max(lipgloss.Width(bindings), lipgloss.Width(reference)) + 4
	body := contentStyle.Render(bindings + "\n" + reference + "\n" + footerStyle.Render("Press ? or Esc to close"))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(dividerStyle.Render(strings.Repeat("─", boxWidth)))
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n"
}
