package browser

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/rdapgw/internal/presentation"
	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

type fileChangedMsg struct{}

type recordsLoadedMsg struct {
	records []registrar.Record
	err     error
}

type exportedMsg struct {
	path  string
	count int
	err   error
}

// waitForChange blocks on the watcher channel. It returns nil when there is
// nothing to watch.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// LoadRecords reads registrars.json back into domain records.
func LoadRecords(path string) ([]registrar.Record, error) {
	dtos, err := presentation.ReadRecords(path)
	if err != nil {
		return nil, err
	}
	return presentation.ToRecords(dtos), nil
}

func loadRecords(path string) tea.Cmd {
	return func() tea.Msg {
		records, err := LoadRecords(path)
		return recordsLoadedMsg{records: records, err: err}
	}
}

func exportRecords(path string, records []registrar.Record) tea.Cmd {
	return func() tea.Msg {
		return exportedMsg{path: path, count: len(records), err: writeCSVFile(path, records)}
	}
}

func writeCSVFile(path string, records []registrar.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return presentation.WriteCSV(f, presentation.FromRecords(records))
}

func exportMessage(count int, path string) string {
	return fmt.Sprintf("Exported %s records to %s", styles.FormatCount(int64(count)), path)
}

func reloadMessage(count int) string {
	return fmt.Sprintf("Reloaded %s records", styles.FormatCount(int64(count)))
}
