// Package loader reads the registrar workbook and the enrichment dataset into
// registrar records.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

// Sheet names expected in the workbook.
const (
	SheetList        = "List"
	SheetDomainCount = "Domain count"
)

// Column headers on the "List" sheet. Matching ignores case and surrounding space.
const (
	ColIANAID      = "Iana id"
	ColName        = "Name"
	ColRDAPURL     = "rdap_url"
	ColCategory    = "category"
	ColWebsite     = "website"
	ColWhoisServer = "whois_server"
	ColStatus      = "status"
	ColNotes       = "notes"
)

// Warning sources.
const (
	sourceList  = "List"
	sourceCount = "Domain count"
)

// Dataset is the parsed content of a workbook.
type Dataset struct {
	Records []registrar.Record
	// Counts is the id -> domain count lookup from the "Domain count" sheet.
	Counts map[int]int64
	Report registrar.Report
}

// LoadWorkbook opens the workbook at path and parses it.
func LoadWorkbook(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &registrar.FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &registrar.InputFormatError{Path: path, Reason: "not a readable workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	log.Debug(log.CatLoader, "opened workbook", "path", path, "sheets", len(f.GetSheetList()))
	ds, err := parse(f)
	if err != nil {
		var ife *registrar.InputFormatError
		if errors.As(err, &ife) && ife.Path == "" {
			ife.Path = path
		}
		return nil, err
	}
	return ds, nil
}

// ParseWorkbook parses a workbook from a reader.
func ParseWorkbook(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &registrar.InputFormatError{Reason: "not a readable workbook", Err: err}
	}
	defer func() { _ = f.Close() }()
	return parse(f)
}

func parse(f *excelize.File) (*Dataset, error) {
	listSheet, ok := findSheet(f.GetSheetList(), SheetList)
	if !ok {
		return nil, &registrar.InputFormatError{Sheet: SheetList}
	}
	countSheet, ok := findSheet(f.GetSheetList(), SheetDomainCount)
	if !ok {
		return nil, &registrar.InputFormatError{Sheet: SheetDomainCount}
	}

	listRows, err := f.GetRows(listSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &registrar.InputFormatError{Sheet: SheetList, Reason: "reading rows", Err: err}
	}
	countRows, err := f.GetRows(countSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &registrar.InputFormatError{Sheet: SheetDomainCount, Reason: "reading rows", Err: err}
	}

	ds := &Dataset{}
	ds.Counts = parseCounts(countRows, &ds.Report)
	records, err := parseList(listRows, &ds.Report)
	if err != nil {
		return nil, err
	}
	ds.Records = applyCounts(records, ds.Counts)

	log.Info(log.CatLoader, "workbook parsed",
		"records", len(ds.Records), "count_rows", len(ds.Counts),
		"skipped_rows", ds.Report.SkippedRows, "warnings", len(ds.Report.Warnings))
	return ds, nil
}

// findSheet looks a sheet up by name, ignoring case and surrounding space.
func findSheet(sheets []string, want string) (string, bool) {
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return s, true
		}
	}
	return "", false
}

// listColumns maps header names to column indices.
type listColumns struct {
	id, name, url                          int
	category, website, whois, status, note int
}

func locateColumns(header []string) (listColumns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := idx[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	cols := listColumns{
		id:       lookup(ColIANAID),
		name:     lookup(ColName),
		url:      lookup(ColRDAPURL),
		category: lookup(ColCategory),
		website:  lookup(ColWebsite),
		whois:    lookup(ColWhoisServer),
		status:   lookup(ColStatus),
		note:     lookup(ColNotes),
	}
	required := []struct {
		name string
		idx  int
	}{{ColIANAID, cols.id}, {ColName, cols.name}, {ColRDAPURL, cols.url}}
	for _, c := range required {
		if c.idx < 0 {
			return cols, &registrar.InputFormatError{Sheet: SheetList, Column: c.name}
		}
	}
	return cols, nil
}

func parseList(rows [][]string, report *registrar.Report) ([]registrar.Record, error) {
	if len(rows) == 0 {
		return nil, &registrar.InputFormatError{Sheet: SheetList, Reason: "sheet is empty"}
	}
	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]registrar.Record, 0, len(rows)-1)
	seen := make(map[int]int)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}

		rawID := cell(row, cols.id)
		id, ok := parseID(rawID)
		if !ok {
			report.SkippedRows++
			msg := "missing IANA id"
			if rawID != "" {
				msg = fmt.Sprintf("invalid IANA id %q", rawID)
			}
			report.Add(registrar.Warning{Kind: registrar.SkippedRowWarning, Source: sourceList, Row: rowNum, Message: msg})
			log.Warn(log.CatLoader, "row skipped", "sheet", SheetList, "row", rowNum, "reason", msg)
			continue
		}

		if first, dup := seen[id]; dup {
			report.Add(registrar.Warning{
				Kind:    registrar.DuplicateIDWarning,
				Source:  sourceList,
				Row:     rowNum,
				IANAID:  id,
				Message: fmt.Sprintf("IANA id also on row %d", first),
			})
			log.Warn(log.CatLoader, "duplicate IANA id", "id", id, "row", rowNum, "first_row", first)
		} else {
			seen[id] = rowNum
		}

		records = append(records, registrar.Record{
			IANAID:      id,
			Name:        cell(row, cols.name),
			RDAPURL:     cell(row, cols.url),
			Category:    cell(row, cols.category),
			Website:     cell(row, cols.website),
			WhoisServer: cell(row, cols.whois),
			Status:      cell(row, cols.status),
			Notes:       cell(row, cols.note),
			SourceRow:   rowNum,
		})
	}
	return records, nil
}

func parseCounts(rows [][]string, report *registrar.Report) map[int]int64 {
	counts := make(map[int]int64, len(rows))
	countRow := make(map[int]int, len(rows))
	for i, row := range rows {
		rowNum := i + 1
		if isBlank(row) {
			continue
		}

		rawID := cell(row, 0)
		id, ok := parseID(rawID)
		if !ok {
			if rowNum == 1 {
				// header row
				continue
			}
			report.Add(registrar.Warning{
				Kind:    registrar.SkippedRowWarning,
				Source:  sourceCount,
				Row:     rowNum,
				Message: fmt.Sprintf("invalid IANA id %q", rawID),
			})
			log.Warn(log.CatLoader, "row skipped", "sheet", SheetDomainCount, "row", rowNum, "id", rawID)
			continue
		}

		rawCount := cell(row, 1)
		count, ok := parseCount(rawCount)
		if !ok {
			report.Add(registrar.Warning{
				Kind:    registrar.SkippedRowWarning,
				Source:  sourceCount,
				Row:     rowNum,
				IANAID:  id,
				Message: fmt.Sprintf("malformed domain count %q, using 0", rawCount),
			})
			log.Warn(log.CatLoader, "malformed domain count", "id", id, "row", rowNum, "value", rawCount)
			count = 0
		}

		if prev, dup := countRow[id]; dup {
			report.Add(registrar.Warning{
				Kind:    registrar.DuplicateIDWarning,
				Source:  sourceCount,
				Row:     rowNum,
				IANAID:  id,
				Message: fmt.Sprintf("count also on row %d, last value wins", prev),
			})
		}
		countRow[id] = rowNum
		counts[id] = count
	}
	return counts
}

func applyCounts(records []registrar.Record, counts map[int]int64) []registrar.Record {
	for i := range records {
		records[i].DomainCount = counts[records[i].IANAID]
	}
	return records
}

// parseID accepts integer text and integral floats ("303", "303.0").
func parseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// parseCount accepts non-negative integers, optionally with thousands
// separators, and integral floats.
func parseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt64/2 {
		return 0, false
	}
	return int64(f), true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
