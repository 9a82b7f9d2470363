// Package testutil builds registrar workbooks for tests.
package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the ICANN workbook layout.
const (
	SheetList        = "List"
	SheetDomainCount = "Domain count"
)

var (
	listHeader  = []any{"Iana id", "Name", "rdap_url", "category"}
	countHeader = []any{"Registrar", "Domains"}
)

// Builder accumulates registrar rows and writes them as an .xlsx workbook.
type Builder struct {
	t          *testing.T
	registrars []registrarData
	orphans    [][]any
	noCounts   bool
}

// NewBuilder creates an empty workbook builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithRegistrar adds a List row and, unless NoCount is given, a matching
// Domain count row (0 domains by default).
func (b *Builder) WithRegistrar(id int, name, rdapURL string, opts ...RegistrarOption) *Builder {
	r := defaultRegistrar(id, name, rdapURL)
	for _, opt := range opts {
		opt(&r)
	}
	b.registrars = append(b.registrars, r)
	return b
}

// WithOrphanCount adds a Domain count row with no List row.
func (b *Builder) WithOrphanCount(id, count any) *Builder {
	b.orphans = append(b.orphans, []any{id, count})
	return b
}

// WithoutCountSheet omits the Domain count sheet entirely.
func (b *Builder) WithoutCountSheet() *Builder {
	b.noCounts = true
	return b
}

func (b *Builder) file() *excelize.File {
	b.t.Helper()
	f := excelize.NewFile()
	require.NoError(b.t, f.SetSheetName("Sheet1", SheetList))

	list := [][]any{listHeader}
	counts := [][]any{countHeader}
	for _, r := range b.registrars {
		list = append(list, []any{r.id, r.name, r.rdapURL, r.category})
		if r.noCount {
			continue
		}
		domains := r.domains
		if domains == nil {
			domains = 0
		}
		counts = append(counts, []any{r.id, domains})
	}
	counts = append(counts, b.orphans...)

	b.writeRows(f, SheetList, list)
	if !b.noCounts {
		_, err := f.NewSheet(SheetDomainCount)
		require.NoError(b.t, err)
		b.writeRows(f, SheetDomainCount, counts)
	}
	return f
}

func (b *Builder) writeRows(f *excelize.File, sheet string, rows [][]any) {
	b.t.Helper()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(b.t, err)
		r := row
		require.NoError(b.t, f.SetSheetRow(sheet, cell, &r))
	}
}

// Buffer renders the workbook in memory.
func (b *Builder) Buffer() *bytes.Buffer {
	b.t.Helper()
	f := b.file()
	defer func() { _ = f.Close() }()
	buf, err := f.WriteToBuffer()
	require.NoError(b.t, err)
	return buf
}

// Write saves the workbook as dir/registrars.xlsx and returns the path.
func (b *Builder) Write(dir string) string {
	b.t.Helper()
	f := b.file()
	defer func() { _ = f.Close() }()
	path := filepath.Join(dir, "registrars.xlsx")
	require.NoError(b.t, f.SaveAs(path))
	return path
}
