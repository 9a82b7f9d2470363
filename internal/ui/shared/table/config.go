// Package table provides a config-driven table component for rendering
// registrar rows.
//
// The table is a pure render component with external state management.
// Callers pass column configurations (with required Render callbacks), row
// data, and dimensions. The component handles bordered pane wrapping, header
// rendering, cell truncation, and selection highlighting.
//
//	cfg := table.TableConfig{
//	    Columns: []table.ColumnConfig{
//	        {Key: "id", Header: "IANA", Width: 6, Align: lipgloss.Right, Render: func(row any, _ string, w int, _ bool) string {
//	            return strconv.Itoa(row.(registrar.Record).IANAID)
//	        }},
//	        {Key: "name", Header: "Name", MinWidth: 10, Render: func(row any, _ string, w int, _ bool) string {
//	            return row.(registrar.Record).Name
//	        }},
//	    },
//	    ShowHeader: true,
//	    ShowBorder: true,
//	}
//	tbl := table.New(cfg).SetRows(rows).SetSize(80, 20)
//	view := tbl.ViewWithSelection(selectedIndex)
package table

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ColumnConfig defines a single table column.
//
// Width configuration:
//   - Width: Fixed width in characters (0 = flex)
//   - MinWidth: Minimum width for flex columns (never below 3)
//   - MaxWidth: Maximum width for flex columns (0 = no limit)
type ColumnConfig struct {
	Key      string
	Header   string
	Width    int
	MinWidth int
	MaxWidth int
	Align    lipgloss.Position

	// HideBelow hides this column when the total table width falls below
	// this threshold. 0 always shows the column.
	HideBelow int

	// Render returns the cell content. Output wider than width is truncated.
	Render func(row any, key string, width int, selected bool) string
}

// TableConfig defines the complete table configuration.
type TableConfig struct {
	Columns      []ColumnConfig
	ShowHeader   bool
	ShowBorder   bool
	Title        string // top-left border title
	Subtitle     string // top-right border title
	Footer       string // bottom-left border title
	EmptyMessage string // default: "No data"

	// RowZoneID returns a bubblezone zone ID for a row. When set, each row is
	// wrapped with zone.Mark() for mouse click detection.
	RowZoneID func(index int, row any) string

	BorderColor        lipgloss.TerminalColor
	Focused            bool
	FocusedBorderColor lipgloss.TerminalColor
}

// ValidateConfig returns an error when there are no columns or a column
// lacks a Render callback.
func ValidateConfig(cfg TableConfig) error {
	if len(cfg.Columns) == 0 {
		return fmt.Errorf("table config: at least one column is required")
	}
	for i, col := range cfg.Columns {
		if col.Render == nil {
			if col.Key != "" {
				return fmt.Errorf("table config: column %q has nil Render callback", col.Key)
			}
			return fmt.Errorf("table config: column %d has nil Render callback", i)
		}
	}
	return nil
}
