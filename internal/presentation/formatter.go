package presentation

import (
	"encoding/json"
	"io"
)

// Formatter writes indented JSON documents.
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{writer: w}
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatRecords writes registrars.json.
func (f *Formatter) FormatRecords(records []RecordDTO) error {
	if records == nil {
		records = []RecordDTO{}
	}
	return f.encode(records)
}

// FormatAnalysis writes gateway_analysis.json.
func (f *Formatter) FormatAnalysis(a AnalysisDTO) error {
	return f.encode(a)
}

// FormatWarnings writes data_quality.json.
func (f *Formatter) FormatWarnings(w WarningsDTO) error {
	return f.encode(w)
}
