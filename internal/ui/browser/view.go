package browser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	bhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/rdapgw/internal/keys"
	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/ui/shared/panes"
	"github.com/zjrosen/rdapgw/internal/ui/shared/table"
	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

func rowZoneID(i int) string {
	return "registrar-row-" + strconv.Itoa(i)
}

func record(row any) registrar.Record {
	return row.(registrar.Record)
}

func tableConfig() table.TableConfig {
	return table.TableConfig{
		ShowHeader: true,
		ShowBorder: true,
		Title:      "Registrars",
		Columns: []table.ColumnConfig{
			{Key: "iana_id", Header: "IANA", Width: 6, Align: lipgloss.Right, Render: func(row any, _ string, _ int, _ bool) string {
				return strconv.Itoa(record(row).IANAID)
			}},
			{Key: "name", Header: "Name", MinWidth: 16, Render: func(row any, _ string, w int, _ bool) string {
				return styles.FitWidth(record(row).Name, w)
			}},
			{Key: "domain_count", Header: "Domains", Width: 11, Align: lipgloss.Right, Render: func(row any, _ string, _ int, _ bool) string {
				return styles.FormatCount(record(row).DomainCount)
			}},
			{Key: "provider", Header: "Provider", MinWidth: 12, MaxWidth: 24, Render: func(row any, _ string, _ int, _ bool) string {
				return record(row).Provider.Name
			}},
			{Key: "provider_kind", Header: "Kind", Width: 9, Render: func(row any, _ string, _ int, _ bool) string {
				k := record(row).Provider.Kind
				return lipgloss.NewStyle().Foreground(styles.KindColor(k)).Render(styles.KindLabel(k))
			}},
			{Key: "category", Header: "Category", MinWidth: 10, MaxWidth: 18, HideBelow: 100, Render: func(row any, _ string, _ int, _ bool) string {
				return record(row).Category
			}},
			{Key: "website", Header: "Website", MinWidth: 14, HideBelow: 130, Render: func(row any, _ string, _ int, _ bool) string {
				return record(row).Website
			}},
		},
		RowZoneID: func(i int, _ any) string { return rowZoneID(i) },
	}
}

// View renders the browser.
func (m Model) View() string {
	width, height := m.width, m.height
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}

	if m.Locked() {
		return m.loginView(width, height)
	}
	if m.showHelp {
		return m.help.SetSize(width, height).View()
	}

	tbl := m.table
	if m.width <= 0 || m.height <= 0 {
		tbl = tbl.SetSize(width, m.tableHeight())
	}
	cfg := tbl.Config()
	cfg.Subtitle = fmt.Sprintf("page %d/%d", m.page.Page, m.page.TotalPages)
	cfg.Footer = m.positionText()
	cfg.EmptyMessage = "No registrars loaded"
	if m.query.Filtered() {
		cfg.EmptyMessage = "No registrars match the current filters"
	}
	tbl = tbl.SetConfig(cfg)

	parts := []string{
		m.headerView(width),
		m.filterView(width),
		tbl.ViewWithSelection(m.cursor),
	}
	if m.details {
		parts = append(parts, m.detailView(width))
	}
	parts = append(parts, m.statusView(width))
	return zone.Scan(strings.Join(parts, "\n"))
}

func (m Model) positionText() string {
	if m.page.Total == 0 {
		return "0 records"
	}
	return fmt.Sprintf("%s-%s of %s",
		styles.FormatCount(int64(m.page.First())),
		styles.FormatCount(int64(m.page.Last())),
		styles.FormatCount(int64(m.page.Total)))
}

func (m Model) headerView(width int) string {
	left := styles.TitleStyle.Render("rdapgw") + styles.LabelStyle.Render(fmt.Sprintf("  %s registrars", styles.FormatCount(int64(m.engine.Len()))))
	right := styles.LabelStyle.Render(m.sessionText())
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return styles.TruncateString(left+strings.Repeat(" ", gap)+right, width)
}

func (m Model) sessionText() string {
	if !m.cfg.RequireLogin || m.cfg.Sessions == nil {
		return ""
	}
	if m.session.ExpiresAt == nil {
		return "session: no expiry"
	}
	return "session: " + m.cfg.Sessions.Remaining(m.session).Round(time.Minute).String() + " left"
}

func (m Model) filterView(width int) string {
	var search string
	switch {
	case m.searching:
		search = m.search.View()
	case m.query.Search != "":
		search = styles.ActiveFilterStyle.Render("/ " + m.query.Search)
	default:
		search = styles.LabelStyle.Render("/ to search")
	}

	order := "↑"
	if m.query.Desc {
		order = "↓"
	}
	filters := []string{
		filterText("provider", m.query.Provider),
		filterText("kind", string(m.query.Kind)),
		filterText("size", string(m.query.Size)),
		filterText("category", m.query.Category),
		styles.LabelStyle.Render("sort: ") + styles.ValueStyle.Render(string(m.query.Sort)+" "+order),
	}
	return styles.TruncateString(search+"   "+strings.Join(filters, "  "), width)
}

func filterText(label, value string) string {
	if value == "" {
		return styles.LabelStyle.Render(label + ": all")
	}
	return styles.LabelStyle.Render(label+": ") + styles.ActiveFilterStyle.Render(value)
}

func (m Model) detailView(width int) string {
	r, ok := m.Selected()
	if !ok {
		return panes.BorderedPane(panes.BorderConfig{Content: "No registrar selected", Width: width, Height: detailHeight, TopLeft: "Details"})
	}

	inner := max(width-2, 10)
	field := func(label, value string) string {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		return styles.LabelStyle.Render(label+": ") + styles.ValueStyle.Render(value)
	}

	provider := r.Provider.Name
	if provider != "" {
		provider = fmt.Sprintf("%s (%s, %s)", provider, styles.KindLabel(r.Provider.Kind), r.Provider.Reason)
	}
	website := r.Website
	if website != "" && r.WebsiteSource != "" {
		website = fmt.Sprintf("%s (%s, %s confidence)", website, r.WebsiteSource, orDash(r.WebsiteConfidence))
	}

	lines := []string{
		field("Domains", styles.FormatCount(r.DomainCount)) + "   " + field("Category", r.Category) + "   " + field("Status", r.Status),
		field("Provider", provider),
		field("RDAP", r.RDAPURL),
		field("Website", website),
		field("WHOIS", r.WhoisServer),
		field("Notes", r.Notes),
	}
	body := wordwrap.String(strings.Join(lines, "\n"), inner)

	return panes.BorderedPane(panes.BorderConfig{
		Content:     body,
		Width:       width,
		Height:      detailHeight,
		TopLeft:     r.Name,
		TopRight:    "IANA " + strconv.Itoa(r.IANAID),
		Focused:     true,
		BorderColor: styles.BorderHighlightFocusColor,
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m Model) statusView(width int) string {
	if m.toaster.Visible() {
		return styles.TruncateString(" "+m.toaster.View(), width)
	}
	h := bhelp.New()
	h.Width = width
	return styles.TruncateString(" "+h.ShortHelpView(keys.Browser.ShortHelp()), width)
}

func (m Model) loginView(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("rdapgw registrar browser"))
	b.WriteString("\n\n")
	b.WriteString(styles.LabelStyle.Render("This browser is locked."))
	b.WriteString("\n\n")
	b.WriteString(styles.PrimaryButtonStyle.Render("Log in"))
	b.WriteString("\n\n")
	if d := m.cfg.Sessions.Duration(); d > 0 {
		b.WriteString(styles.LabelStyle.Render("Sessions last " + d.String()))
	} else {
		b.WriteString(styles.LabelStyle.Render("Sessions do not expire"))
	}
	b.WriteString("\n\n")
	h := bhelp.New()
	b.WriteString(h.ShortHelpView(keys.Login.ShortHelp()))
	if m.toaster.Visible() {
		b.WriteString("\n\n")
		b.WriteString(m.toaster.View())
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Padding(1, 4).
		Align(lipgloss.Center).
		Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
