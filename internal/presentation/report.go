package presentation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxReportRows bounds the candidate and URL tables in the report.
const maxReportRows = 15

var numbers = message.NewPrinter(language.English)

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Markdown renders the analysis as a markdown report.
func Markdown(a *AnalysisDTO) string {
	var b strings.Builder
	s := a.DatasetSummary

	b.WriteString("# RDAP Gateway Analysis\n\n")
	b.WriteString("## Dataset\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Registrars | %s |\n", numbers.Sprintf("%d", s.TotalRegistrars))
	fmt.Fprintf(&b, "| Domains | %s |\n", numbers.Sprintf("%d", s.GrandTotalDomains))
	fmt.Fprintf(&b, "| Providers | %s |\n", numbers.Sprintf("%d", s.DistinctProviders))
	fmt.Fprintf(&b, "| Unique RDAP URLs | %s |\n\n", numbers.Sprintf("%d", s.UniqueRDAPURLs))

	g := a.GatewayAnalysis
	b.WriteString("## Market split\n\n")
	b.WriteString("| Segment | Registrars | Domains | Share |\n|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Confirmed gateways | %s | %s | %.1f%% |\n", numbers.Sprintf("%d", g.GatewayRegistrars), numbers.Sprintf("%d", g.GatewayDomains), g.GatewayPercent)
	fmt.Fprintf(&b, "| Gateway candidates | %s | %s | %.1f%% |\n", numbers.Sprintf("%d", g.CandidateRegistrars), numbers.Sprintf("%d", g.CandidateDomains), g.CandidatePercent)
	fmt.Fprintf(&b, "| Self-hosted (inferred) | %s | %s | %.1f%% |\n\n", numbers.Sprintf("%d", g.SelfHostedRegistrars), numbers.Sprintf("%d", g.SelfHostedDomains), g.SelfHostedPercent)

	b.WriteString("## Confirmed gateways\n\n")
	writeProviders(&b, sortedProviders(a.GatewayProviders), len(a.GatewayProviders))

	if len(a.CandidateProviders) > 0 {
		b.WriteString("## Gateway candidates\n\n")
		b.WriteString("Unrecognized hosts, grouped by registrable domain. Not confirmed gateways.\n\n")
		writeProviders(&b, sortedProviders(a.CandidateProviders), maxReportRows)
	}

	if len(a.TopRDAPURLs) > 0 {
		b.WriteString("## Most used RDAP URLs\n\n")
		b.WriteString("| URL | Provider | Registrars | Domains |\n|---|---|---:|---:|\n")
		for i, u := range a.TopRDAPURLs {
			if i == maxReportRows {
				break
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", escapeCell(u.URL), escapeCell(u.Provider), u.RegistrarCount, numbers.Sprintf("%d", u.TotalDomains))
		}
		b.WriteString("\n")
	}

	if len(a.LargestSelfHosted) > 0 {
		b.WriteString("## Largest self-hosted registrars\n\n")
		b.WriteString("| IANA ID | Name | Domains |\n|---:|---|---:|\n")
		for _, r := range a.LargestSelfHosted {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", r.IANAID, escapeCell(r.Name), numbers.Sprintf("%d", r.DomainCount))
		}
		b.WriteString("\n")
	}

	if len(a.SharedRDAPHosts) > 0 {
		b.WriteString("## Shared RDAP hosts\n\n")
		b.WriteString("Non-gateway domains serving several registrars.\n\n")
		b.WriteString("| Domain | Registrars | Domains | Self-hosted |\n|---|---:|---:|---:|\n")
		for _, h := range a.SharedRDAPHosts {
			fmt.Fprintf(&b, "| %s | %d | %s | %d |\n", escapeCell(h.Domain), h.RegistrarCount,
				numbers.Sprintf("%d", h.TotalDomains), len(h.SelfHostedIANAIDs))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Data quality\n\n")
	fmt.Fprintf(&b, "- Skipped rows: %d\n", a.DataQuality.SkippedRows)
	kinds := make([]string, 0, len(a.DataQuality.Warnings))
	for k := range a.DataQuality.Warnings {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "- %s: %d\n", k, a.DataQuality.Warnings[k])
	}
	return b.String()
}

func writeProviders(b *strings.Builder, ps []ProviderDTO, limit int) {
	if len(ps) == 0 {
		b.WriteString("_None found._\n\n")
		return
	}
	b.WriteString("| Provider | Registrars | Domains | Share | Largest registrar |\n|---|---:|---:|---:|---|\n")
	for i, p := range ps {
		if i == limit {
			break
		}
		largest := "-"
		if len(p.TopRegistrars) > 0 {
			largest = escapeCell(p.TopRegistrars[0].Name)
		}
		fmt.Fprintf(b, "| %s | %d | %s | %.1f%% | %s |\n",
			escapeCell(p.Provider), p.RegistrarCount, numbers.Sprintf("%d", p.TotalDomains), p.MarketSharePercent, largest)
	}
	b.WriteString("\n")
}

// sortedProviders orders a provider map by registrar count, then domains,
// then name.
func sortedProviders(m map[string]ProviderDTO) []ProviderDTO {
	out := make([]ProviderDTO, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegistrarCount != out[j].RegistrarCount {
			return out[i].RegistrarCount > out[j].RegistrarCount
		}
		if out[i].TotalDomains != out[j].TotalDomains {
			return out[i].TotalDomains > out[j].TotalDomains
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown styles markdown for the terminal. style is "dark", "light"
// or "notty"; empty means dark.
func RenderMarkdown(md string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	return r.Render(md)
}
