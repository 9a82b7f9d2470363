package presentation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/pipeline"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

// Artifact file names written into the output directory.
const (
	RecordsFile     = "registrars.json"
	AnalysisFile    = "gateway_analysis.json"
	DataQualityFile = "data_quality.json"
)

// Artifacts maps artifact file names to their rendered content.
type Artifacts map[string][]byte

// Names returns the artifact names in a stable order.
func (a Artifacts) Names() []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render renders all artifacts for a result. Identical results render to
// identical bytes.
func Render(res *pipeline.Result) (Artifacts, error) {
	out := make(Artifacts, 3)

	var buf bytes.Buffer
	if err := NewFormatter(&buf).FormatRecords(FromRecords(res.Records)); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", RecordsFile, err)
	}
	out[RecordsFile] = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := NewFormatter(&buf).FormatAnalysis(FromResult(res)); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", AnalysisFile, err)
	}
	out[AnalysisFile] = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := NewFormatter(&buf).FormatWarnings(FromReport(res.Report)); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", DataQualityFile, err)
	}
	out[DataQualityFile] = bytes.Clone(buf.Bytes())

	return out, nil
}

// Write stores artifacts in dir, creating it if needed. It returns the
// written paths in name order.
func (a Artifacts) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	paths := make([]string, 0, len(a))
	for _, name := range a.Names() {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, a[name], 0600); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		log.Debug(log.CatOutput, "artifact written", "path", path, "bytes", len(a[name]))
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadExisting loads the artifacts with the same names from dir. Missing
// files are returned as nil content.
func (a Artifacts) ReadExisting(dir string) (Artifacts, error) {
	out := make(Artifacts, len(a))
	for _, name := range a.Names() {
		data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // G304: fixed names under the output dir
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				out[name] = nil
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// ReadRecords loads registrars.json.
func ReadRecords(path string) ([]RecordDTO, error) {
	var dtos []RecordDTO
	if err := readJSON(path, &dtos); err != nil {
		return nil, err
	}
	return dtos, nil
}

// ReadAnalysis loads gateway_analysis.json.
func ReadAnalysis(path string) (*AnalysisDTO, error) {
	var dto AnalysisDTO
	if err := readJSON(path, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &registrar.FileNotFoundError{Path: path}
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &registrar.InputFormatError{Path: path, Reason: "invalid JSON", Err: err}
	}
	return nil
}
