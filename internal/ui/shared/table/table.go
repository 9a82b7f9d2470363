package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/rdapgw/internal/ui/shared/panes"
	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

// Model holds table rendering state. When there are more rows than fit,
// the table shows a window starting at Offset; EnsureVisible moves it.
type Model struct {
	config TableConfig
	rows   []any
	width  int
	height int
	offset int
}

// New creates a table with the given configuration.
// Panics if the configuration is invalid.
func New(cfg TableConfig) Model {
	if err := ValidateConfig(cfg); err != nil {
		panic(err)
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No data"
	}
	return Model{config: cfg}
}

// SetRows replaces the row data and resets the scroll window if it no
// longer fits.
func (m Model) SetRows(rows []any) Model {
	m.rows = rows
	m.offset = m.clampOffset(m.offset)
	return m
}

// SetConfig updates dynamic config values such as titles and focus.
func (m Model) SetConfig(cfg TableConfig) Model {
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No data"
	}
	m.config = cfg
	return m
}

// Config returns the current configuration.
func (m Model) Config() TableConfig {
	return m.config
}

// SetSize sets the available dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.offset = m.clampOffset(m.offset)
	return m
}

// RowCount returns the number of rows in the table.
func (m Model) RowCount() int {
	return len(m.rows)
}

// Offset returns the index of the first rendered row.
func (m Model) Offset() int {
	return m.offset
}

// VisibleRows returns how many data rows fit in the current size.
func (m Model) VisibleRows() int {
	h := m.height
	if m.config.ShowBorder {
		h -= 2
	}
	if m.config.ShowHeader {
		h--
	}
	return max(h, 0)
}

// EnsureVisible scrolls the window so the given row is shown.
func (m Model) EnsureVisible(index int) Model {
	if index < 0 || index >= len(m.rows) {
		return m
	}
	visible := m.VisibleRows()
	if index < m.offset {
		m.offset = index
	} else if visible > 0 && index >= m.offset+visible {
		m.offset = index - visible + 1
	}
	m.offset = m.clampOffset(m.offset)
	return m
}

func (m Model) clampOffset(offset int) int {
	maxOffset := max(len(m.rows)-m.VisibleRows(), 0)
	return min(max(offset, 0), maxOffset)
}

// View renders the table without selection highlighting.
func (m Model) View() string {
	return m.renderTable(-1)
}

// ViewWithSelection renders the table with the given row highlighted.
// An out-of-bounds index means no selection.
func (m Model) ViewWithSelection(selectedIndex int) string {
	return m.renderTable(selectedIndex)
}

func (m Model) renderTable(selectedIndex int) string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	innerWidth := m.width
	innerHeight := m.height
	if m.config.ShowBorder {
		innerWidth -= 2
		innerHeight -= 2
	}
	if innerWidth <= 0 || innerHeight <= 0 {
		return ""
	}

	var content string
	if len(m.rows) == 0 {
		content = renderEmptyState(m.config.EmptyMessage, innerWidth, innerHeight)
	} else {
		visibleColumns := filterVisibleColumns(m.config.Columns, m.width)
		widths := calculateColumnWidths(visibleColumns, innerWidth)
		content = m.renderContent(visibleColumns, widths, innerWidth, innerHeight, selectedIndex)
	}

	if !m.config.ShowBorder {
		return content
	}
	return panes.BorderedPane(panes.BorderConfig{
		Content:            content,
		Width:              m.width,
		Height:             m.height,
		TopLeft:            m.config.Title,
		TopRight:           m.config.Subtitle,
		BottomLeft:         m.config.Footer,
		BorderColor:        m.config.BorderColor,
		Focused:            m.config.Focused,
		FocusedBorderColor: m.config.FocusedBorderColor,
		PreWrapped:         true,
	})
}

func (m Model) renderContent(cols []ColumnConfig, widths []int, innerWidth, innerHeight, selectedIndex int) string {
	lines := make([]string, 0, innerHeight)
	if m.config.ShowHeader {
		header := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(renderHeader(cols, widths))
		lines = append(lines, header)
	}

	end := min(m.offset+m.VisibleRows(), len(m.rows))
	for i := m.offset; i < end; i++ {
		line := renderRow(m.rows[i], cols, widths, i == selectedIndex, innerWidth)
		if m.config.RowZoneID != nil {
			if id := m.config.RowZoneID(i, m.rows[i]); id != "" {
				line = zone.Mark(id, line)
			}
		}
		lines = append(lines, line)
	}

	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
