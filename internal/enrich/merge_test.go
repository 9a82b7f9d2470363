package enrich

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

var str = registrar.StringPtr

func TestMerge_FillsMissingWebsite(t *testing.T) {
	records := []registrar.Record{
		{IANAID: 2, Name: "Tucows Domains Inc.", RDAPURL: "rdap.tucows.com"},
	}
	entries := []registrar.Enrichment{
		{IANAID: 2, Website: str("https://tucows.com")},
	}

	out, warnings := Merge(records, entries)

	require.Empty(t, warnings)
	require.Equal(t, "https://tucows.com", out[0].Website)
	require.Empty(t, records[0].Website, "input must not be mutated")
}

func TestMerge_PrimaryValuesWin(t *testing.T) {
	records := []registrar.Record{{
		IANAID:      5,
		Website:     "https://primary.example",
		WhoisServer: "whois.primary.example",
		Status:      "Accredited",
	}}
	entries := []registrar.Enrichment{{
		IANAID:            5,
		Website:           str("https://secondary.example"),
		WebsiteSource:     str(registrar.WebsiteSourceKnownMapping),
		WebsiteConfidence: str("high"),
		WhoisServer:       str("whois.secondary.example"),
		Status:            str("Terminated"),
		Notes:             str("Reseller platform"),
	}}

	out, _ := Merge(records, entries)

	r := out[0]
	require.Equal(t, "https://primary.example", r.Website)
	require.Equal(t, "whois.primary.example", r.WhoisServer)
	require.Equal(t, "Accredited", r.Status)
	require.Equal(t, "Reseller platform", r.Notes)
	require.Equal(t, registrar.WebsiteSourceKnownMapping, r.WebsiteSource)
	require.Equal(t, "high", r.WebsiteConfidence)
}

func TestMerge_AbsentValuesIgnored(t *testing.T) {
	records := []registrar.Record{{IANAID: 1}}
	entries := []registrar.Enrichment{{IANAID: 1, Website: str("N/A"), Status: str("  "), Notes: nil}}

	out, _ := Merge(records, entries)

	require.Empty(t, out[0].Website)
	require.Empty(t, out[0].Status)
	require.Empty(t, out[0].Notes)
}

func TestMerge_OrphansAndDuplicates(t *testing.T) {
	records := []registrar.Record{{IANAID: 1}, {IANAID: 2}}
	entries := []registrar.Enrichment{
		{IANAID: 9, Website: str("https://orphan.example")},
		{IANAID: 1, Notes: str("first")},
		{IANAID: 1, Notes: str("second"), Website: str("https://one.example")},
		{IANAID: 4},
	}

	out, warnings := Merge(records, entries)

	require.Equal(t, "first", out[0].Notes)
	require.Equal(t, "https://one.example", out[0].Website)

	require.Len(t, warnings, 3)
	require.Equal(t, registrar.DuplicateIDWarning, warnings[0].Kind)
	require.Equal(t, 1, warnings[0].IANAID)
	require.Equal(t, registrar.JoinOrphanWarning, warnings[1].Kind)
	require.Equal(t, 4, warnings[1].IANAID)
	require.Equal(t, registrar.JoinOrphanWarning, warnings[2].Kind)
	require.Equal(t, 9, warnings[2].IANAID)
}

func TestMerge_DuplicateRecordsBothEnriched(t *testing.T) {
	records := []registrar.Record{{IANAID: 3, Name: "a"}, {IANAID: 3, Name: "b"}}
	out, warnings := Merge(records, []registrar.Enrichment{{IANAID: 3, WhoisServer: str("whois.example")}})

	require.Empty(t, warnings)
	require.Equal(t, "whois.example", out[0].WhoisServer)
	require.Equal(t, "whois.example", out[1].WhoisServer)
}

func TestMerge_StatusNeverOverwritten(t *testing.T) {
	optional := func(t *rapid.T, label string) *string {
		if rapid.Bool().Draw(t, label+"_present") {
			s := rapid.StringMatching(`[A-Za-z/ ]{0,12}`).Draw(t, label)
			return &s
		}
		return nil
	}

	rapid.Check(t, func(t *rapid.T) {
		status := rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(t, "status")
		whois := rapid.StringMatching(`[a-z.]{0,12}`).Draw(t, "whois")
		rec := registrar.Record{IANAID: 1, Status: status, WhoisServer: whois}

		entry := registrar.Enrichment{
			IANAID:      1,
			Status:      optional(t, "e_status"),
			WhoisServer: optional(t, "e_whois"),
			Website:     optional(t, "e_website"),
		}

		out, _ := Merge([]registrar.Record{rec}, []registrar.Enrichment{entry})
		if out[0].Status != status {
			t.Fatalf("status overwritten: %q -> %q", status, out[0].Status)
		}
		if whois != "" && out[0].WhoisServer != whois {
			t.Fatalf("whois overwritten: %q -> %q", whois, out[0].WhoisServer)
		}
	})
}

func TestSummarize(t *testing.T) {
	s := Summarize([]registrar.Record{
		{Website: "https://a.example", WebsiteSource: registrar.WebsiteSourceKnownMapping, Status: "ok"},
		{Website: "https://b.example"},
		{WhoisServer: "whois.c.example"},
	})
	require.Equal(t, 3, s.Records)
	require.Equal(t, 2, s.Website)
	require.Equal(t, 1, s.WhoisServer)
	require.Equal(t, 1, s.Status)
	require.Equal(t, map[string]int{"known_mapping": 1, "primary": 1}, s.BySource)
	require.Equal(t, "2/3 with website, 1 with whois server, 1 with status", s.String())
}
