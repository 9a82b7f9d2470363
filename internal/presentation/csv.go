package presentation

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// CSVColumns is the export header. It mirrors the RecordDTO JSON fields.
var CSVColumns = []string{
	"iana_id", "name", "rdap_url", "domain_count", "category",
	"provider", "provider_kind", "classification_reason",
	"website", "website_source", "website_confidence",
	"notes", "whois_server", "status",
}

func (d RecordDTO) csvFields() []string {
	return []string{
		strconv.Itoa(d.IANAID), d.Name, d.RDAPURL, strconv.FormatInt(d.DomainCount, 10), d.Category,
		d.Provider, d.ProviderKind, d.ClassificationReason,
		d.Website, d.WebsiteSource, d.WebsiteConfidence,
		d.Notes, d.WhoisServer, d.Status,
	}
}

// WriteCSV writes a header line and one line per record. Every field is
// double-quoted and embedded quotes are doubled.
func WriteCSV(w io.Writer, records []RecordDTO) error {
	bw := bufio.NewWriter(w)
	if err := writeCSVLine(bw, CSVColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeCSVLine(bw, r.csvFields()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeCSVLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quoteCSV(f)); err != nil {
			return err
		}
	}
	err := w.WriteByte('\n')
	return err
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
