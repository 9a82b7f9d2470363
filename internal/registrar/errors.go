package registrar

import (
	"fmt"
	"sort"
)

// FileNotFoundError is returned when an input path does not resolve.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// InputFormatError is returned when an input exists but lacks an expected
// sheet or column, or cannot be decoded at all.
type InputFormatError struct {
	Path   string
	Sheet  string
	Column string
	Reason string
	Err    error
}

func (e *InputFormatError) Error() string {
	msg := "invalid input"
	if e.Path != "" {
		msg += " " + e.Path
	}
	switch {
	case e.Column != "":
		msg += fmt.Sprintf(": sheet %q is missing column %q", e.Sheet, e.Column)
	case e.Sheet != "":
		msg += fmt.Sprintf(": missing sheet %q", e.Sheet)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputFormatError) Unwrap() error {
	return e.Err
}

// WarningKind classifies a non-fatal data-quality finding.
type WarningKind string

const (
	SkippedRowWarning  WarningKind = "skipped_row"
	JoinOrphanWarning  WarningKind = "join_orphan"
	DuplicateIDWarning WarningKind = "duplicate_id"
)

// Warning is a non-fatal condition found while processing inputs.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Source  string      `json:"source"`
	Row     int         `json:"row,omitempty"`
	IANAID  int         `json:"iana_id,omitempty"`
	Message string      `json:"message"`
}

// Report accumulates warnings for a pipeline run.
type Report struct {
	Warnings []Warning
	// SkippedRows counts "List" rows dropped for lack of an IANA id.
	SkippedRows int
}

// Add appends warnings to the report.
func (r *Report) Add(ws ...Warning) {
	r.Warnings = append(r.Warnings, ws...)
}

// Count returns the number of warnings of the given kind.
func (r *Report) Count(kind WarningKind) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Counts returns the warning count per kind.
func (r *Report) Counts() map[WarningKind]int {
	out := make(map[WarningKind]int)
	for _, w := range r.Warnings {
		out[w.Kind]++
	}
	return out
}

// Sorted returns the warnings ordered by source, row, id and message so the
// report serializes identically across runs.
func (r *Report) Sorted() []Warning {
	out := make([]Warning, len(r.Warnings))
	copy(out, r.Warnings)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.IANAID != b.IANAID {
			return a.IANAID < b.IANAID
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
	return out
}
