// Package registrar defines the registrar record, provider identity, enrichment
// and data-quality types shared by every stage of the analysis pipeline.
package registrar

import "strings"

// Kind says how a provider identity was established.
type Kind string

const (
	// KindGateway is a confirmed shared RDAP gateway from the known-provider table.
	KindGateway Kind = "gateway"
	// KindCandidate is an unrecognized host that may be a gateway. Inferred, not confirmed.
	KindCandidate Kind = "candidate"
	// KindSelfHosted means the RDAP host appears to belong to the registrar itself.
	KindSelfHosted Kind = "self_hosted"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindGateway, KindCandidate, KindSelfHosted:
		return true
	}
	return false
}

// SelfHostedName is the sentinel provider name shared by all self-hosted registrars.
const SelfHostedName = "Self-hosted"

// NoHostName is the candidate name used when a record has no parseable RDAP host.
const NoHostName = "(none)"

// Reason records which rule produced a classification.
type Reason string

const (
	ReasonExactHost     Reason = "exact_host"
	ReasonHostSuffix    Reason = "host_suffix"
	ReasonNameHeuristic Reason = "name_heuristic"
	ReasonUnrecognized  Reason = "unrecognized"
)

// Provider identifies who operates a registrar's RDAP endpoint.
type Provider struct {
	Name   string
	Kind   Kind
	Reason Reason
}

// IsZero reports whether the provider has not been assigned.
func (p Provider) IsZero() bool {
	return p.Name == "" && p.Kind == ""
}

// Key is the grouping key used by aggregation. Kind is part of the key so a
// candidate can never be merged into a confirmed gateway of the same name.
func (p Provider) Key() string {
	return string(p.Kind) + "|" + p.Name
}

// SelfHosted returns the self-hosted provider for the given reason.
func SelfHosted(reason Reason) Provider {
	return Provider{Name: SelfHostedName, Kind: KindSelfHosted, Reason: reason}
}

// Record is one registrar row after loading, classification and enrichment.
type Record struct {
	IANAID      int
	Name        string
	RDAPURL     string
	DomainCount int64
	Category    string
	Provider    Provider

	Website           string
	WebsiteSource     string
	WebsiteConfidence string
	Notes             string
	WhoisServer       string
	Status            string

	// SourceRow is the 1-based worksheet row the record came from (0 when unknown).
	SourceRow int
}

// Website provenance values.
const (
	WebsiteSourceKnownMapping = "known_mapping"
	WebsiteSourceNamePattern  = "name_pattern"
)

// Enrichment is one entry of the secondary dataset. A nil field is absent.
type Enrichment struct {
	IANAID            int
	Website           *string
	WebsiteSource     *string
	WebsiteConfidence *string
	Notes             *string
	WhoisServer       *string
	Status            *string
}

// Present reports whether an optional value carries usable content.
// Empty strings and the "N/A" placeholder used by older exports are absent.
func Present(v *string) bool {
	if v == nil {
		return false
	}
	s := strings.TrimSpace(*v)
	return s != "" && !strings.EqualFold(s, "n/a")
}

// Value returns the trimmed content of v, or "" when absent.
func Value(v *string) string {
	if !Present(v) {
		return ""
	}
	return strings.TrimSpace(*v)
}

// StringPtr returns a pointer to s. Handy for building enrichment entries.
func StringPtr(s string) *string {
	return &s
}
