package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

const sourceEnrichment = "enrichment"

// enrichmentEntry mirrors one object of the enrichment JSON array.
type enrichmentEntry struct {
	IANAID            json.RawMessage `json:"iana_id"`
	Website           *scalar         `json:"website"`
	WebsiteSource     *scalar         `json:"website_source"`
	WebsiteConfidence *scalar         `json:"website_confidence"`
	Notes             *scalar         `json:"notes"`
	WhoisServer       *scalar         `json:"whois_server"`
	Status            *scalar         `json:"status"`
}

// scalar decodes a JSON string, number or bool into its text form.
// null leaves the pointer nil.
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = scalar(v)
		return nil
	}
	switch string(data) {
	case "true", "false":
		*s = scalar(data)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a scalar value, got %s", data)
	}
	*s = scalar(n.String())
	return nil
}

func (s *scalar) ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// LoadEnrichment reads the enrichment dataset at path. Entries without a
// usable IANA id are dropped and reported.
func LoadEnrichment(path string) ([]registrar.Enrichment, []registrar.Warning, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line or config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &registrar.FileNotFoundError{Path: path}
		}
		return nil, nil, fmt.Errorf("opening enrichment: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, warnings, err := ParseEnrichment(f)
	if err != nil {
		var ife *registrar.InputFormatError
		if errors.As(err, &ife) {
			ife.Path = path
		}
		return nil, nil, err
	}
	log.Info(log.CatLoader, "enrichment loaded", "path", path, "entries", len(entries), "warnings", len(warnings))
	return entries, warnings, nil
}

// ParseEnrichment decodes an enrichment JSON array from r.
func ParseEnrichment(r io.Reader) ([]registrar.Enrichment, []registrar.Warning, error) {
	var raw []enrichmentEntry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, &registrar.InputFormatError{Reason: "enrichment must be a JSON array of objects", Err: err}
	}

	out := make([]registrar.Enrichment, 0, len(raw))
	var warnings []registrar.Warning
	for i, e := range raw {
		id, ok := parseEnrichmentID(e.IANAID)
		if !ok {
			w := registrar.Warning{
				Kind:    registrar.SkippedRowWarning,
				Source:  sourceEnrichment,
				Row:     i + 1,
				Message: fmt.Sprintf("entry has no usable iana_id (%s)", strings.TrimSpace(string(e.IANAID))),
			}
			warnings = append(warnings, w)
			log.Warn(log.CatLoader, "enrichment entry skipped", "index", i, "iana_id", string(e.IANAID))
			continue
		}
		out = append(out, registrar.Enrichment{
			IANAID:            id,
			Website:           e.Website.ptr(),
			WebsiteSource:     e.WebsiteSource.ptr(),
			WebsiteConfidence: e.WebsiteConfidence.ptr(),
			Notes:             e.Notes.ptr(),
			WhoisServer:       e.WhoisServer.ptr(),
			Status:            e.Status.ptr(),
		})
	}
	return out, warnings, nil
}

// parseEnrichmentID accepts a JSON number or a numeric string.
func parseEnrichmentID(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return 0, false
		}
		return parseID(s)
	}
	return parseID(string(raw))
}
