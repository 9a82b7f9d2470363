package presentation

import (
	"github.com/zjrosen/rdapgw/internal/aggregate"
	"github.com/zjrosen/rdapgw/internal/enrich"
	"github.com/zjrosen/rdapgw/internal/pipeline"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

// RecordDTO is one entry of registrars.json.
type RecordDTO struct {
	IANAID               int    `json:"iana_id"`
	Name                 string `json:"name"`
	RDAPURL              string `json:"rdap_url"`
	DomainCount          int64  `json:"domain_count"`
	Category             string `json:"category"`
	Provider             string `json:"provider"`
	ProviderKind         string `json:"provider_kind"`
	ClassificationReason string `json:"classification_reason"`
	Website              string `json:"website"`
	WebsiteSource        string `json:"website_source"`
	WebsiteConfidence    string `json:"website_confidence"`
	Notes                string `json:"notes"`
	WhoisServer          string `json:"whois_server"`
	Status               string `json:"status"`
}

// FromRecord converts a domain record to its output form.
func FromRecord(r registrar.Record) RecordDTO {
	return RecordDTO{
		IANAID:               r.IANAID,
		Name:                 r.Name,
		RDAPURL:              r.RDAPURL,
		DomainCount:          r.DomainCount,
		Category:             r.Category,
		Provider:             r.Provider.Name,
		ProviderKind:         string(r.Provider.Kind),
		ClassificationReason: string(r.Provider.Reason),
		Website:              r.Website,
		WebsiteSource:        r.WebsiteSource,
		WebsiteConfidence:    r.WebsiteConfidence,
		Notes:                r.Notes,
		WhoisServer:          r.WhoisServer,
		Status:               r.Status,
	}
}

// FromRecords converts records in order.
func FromRecords(records []registrar.Record) []RecordDTO {
	out := make([]RecordDTO, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}

// ToRecord converts a record read back from registrars.json.
func (d RecordDTO) ToRecord() registrar.Record {
	return registrar.Record{
		IANAID:      d.IANAID,
		Name:        d.Name,
		RDAPURL:     d.RDAPURL,
		DomainCount: d.DomainCount,
		Category:    d.Category,
		Provider: registrar.Provider{
			Name:   d.Provider,
			Kind:   registrar.Kind(d.ProviderKind),
			Reason: registrar.Reason(d.ClassificationReason),
		},
		Website:           d.Website,
		WebsiteSource:     d.WebsiteSource,
		WebsiteConfidence: d.WebsiteConfidence,
		Notes:             d.Notes,
		WhoisServer:       d.WhoisServer,
		Status:            d.Status,
	}
}

// ToRecords converts DTOs back to domain records.
func ToRecords(dtos []RecordDTO) []registrar.Record {
	out := make([]registrar.Record, len(dtos))
	for i, d := range dtos {
		out[i] = d.ToRecord()
	}
	return out
}

// RegistrarDTO is a registrar inside a top-N list.
type RegistrarDTO struct {
	IANAID      int    `json:"iana_id"`
	Name        string `json:"name"`
	DomainCount int64  `json:"domain_count"`
	RDAPURL     string `json:"rdap_url"`
}

// ProviderDTO is one provider aggregate.
type ProviderDTO struct {
	Provider           string         `json:"provider"`
	Kind               string         `json:"kind"`
	RegistrarCount     int            `json:"registrar_count"`
	TotalDomains       int64          `json:"total_domains"`
	MarketSharePercent float64        `json:"market_share_percent"`
	AverageDomains     float64        `json:"average_domains"`
	MedianDomains      float64        `json:"median_domains"`
	TopRegistrars      []RegistrarDTO `json:"top_registrars"`
	RDAPURLs           []string       `json:"rdap_urls"`
}

// RankingDTO is one row of a provider ranking.
type RankingDTO struct {
	Rank               int     `json:"rank"`
	Provider           string  `json:"provider"`
	Kind               string  `json:"kind"`
	RegistrarCount     int     `json:"registrar_count"`
	TotalDomains       int64   `json:"total_domains"`
	MarketSharePercent float64 `json:"market_share_percent"`
}

// SummaryDTO holds dataset totals.
type SummaryDTO struct {
	GrandTotalDomains int64 `json:"grand_total_domains"`
	TotalRegistrars   int   `json:"total_registrars"`
	DistinctProviders int   `json:"distinct_providers"`
	UniqueRDAPURLs    int   `json:"unique_rdap_urls"`
}

// GatewayAnalysisDTO splits the market by provider kind.
type GatewayAnalysisDTO struct {
	GatewayDomains       int64   `json:"gateway_domains"`
	GatewayRegistrars    int     `json:"gateway_registrars"`
	GatewayPercent       float64 `json:"gateway_market_share_percent"`
	CandidateDomains     int64   `json:"candidate_domains"`
	CandidateRegistrars  int     `json:"candidate_registrars"`
	CandidatePercent     float64 `json:"candidate_market_share_percent"`
	SelfHostedDomains    int64   `json:"self_hosted_domains"`
	SelfHostedRegistrars int     `json:"self_hosted_registrars"`
	SelfHostedPercent    float64 `json:"self_hosted_market_share_percent"`
}

// URLDTO is one entry of the RDAP URL ranking.
type URLDTO struct {
	URL            string `json:"rdap_url"`
	Provider       string `json:"provider"`
	Kind           string `json:"kind"`
	RegistrarCount int    `json:"registrar_count"`
	TotalDomains   int64  `json:"total_domains"`
}

// SharedHostDTO is a non-gateway domain serving several registrars.
type SharedHostDTO struct {
	Domain            string `json:"domain"`
	RegistrarCount    int    `json:"registrar_count"`
	TotalDomains      int64  `json:"total_domains"`
	IANAIDs           []int  `json:"iana_ids"`
	SelfHostedIANAIDs []int  `json:"self_hosted_iana_ids,omitempty"`
	SplitProviders    bool   `json:"split_providers,omitempty"`
}

// DataQualityDTO counts warnings by kind.
type DataQualityDTO struct {
	SkippedRows int            `json:"skipped_rows"`
	Warnings    map[string]int `json:"warnings"`
}

// EnrichmentDTO reports field coverage after the merge.
type EnrichmentDTO struct {
	WithWebsite     int            `json:"with_website"`
	WithWhoisServer int            `json:"with_whois_server"`
	WithStatus      int            `json:"with_status"`
	WithNotes       int            `json:"with_notes"`
	WebsiteSources  map[string]int `json:"website_sources"`
}

// AnalysisDTO is gateway_analysis.json.
type AnalysisDTO struct {
	DatasetSummary     SummaryDTO             `json:"dataset_summary"`
	GatewayProviders   map[string]ProviderDTO `json:"gateway_providers"`
	CandidateProviders map[string]ProviderDTO `json:"candidate_providers"`
	SelfHosted         *ProviderDTO           `json:"self_hosted"`
	ProviderRanking    []RankingDTO           `json:"provider_ranking"`
	MarketShareRanking []RankingDTO           `json:"market_share_ranking"`
	GatewayAnalysis    GatewayAnalysisDTO     `json:"gateway_analysis"`
	TopRDAPURLs        []URLDTO               `json:"top_rdap_urls"`
	LargestSelfHosted  []RegistrarDTO         `json:"largest_self_hosted"`
	SharedRDAPHosts    []SharedHostDTO        `json:"shared_rdap_hosts"`
	Enrichment         EnrichmentDTO          `json:"enrichment"`
	DataQuality        DataQualityDTO         `json:"data_quality"`
}

func fromRegistrars(rs []aggregate.RegistrarSummary) []RegistrarDTO {
	out := make([]RegistrarDTO, len(rs))
	for i, r := range rs {
		out[i] = RegistrarDTO{IANAID: r.IANAID, Name: r.Name, DomainCount: r.DomainCount, RDAPURL: r.RDAPURL}
	}
	return out
}

// FromProvider converts a provider aggregate.
func FromProvider(p aggregate.ProviderAggregate) ProviderDTO {
	urls := p.RDAPURLs
	if urls == nil {
		urls = []string{}
	}
	return ProviderDTO{
		Provider:           p.Provider,
		Kind:               string(p.Kind),
		RegistrarCount:     p.RegistrarCount,
		TotalDomains:       p.TotalDomains,
		MarketSharePercent: p.MarketSharePercent,
		AverageDomains:     p.AverageDomains,
		MedianDomains:      p.MedianDomains,
		TopRegistrars:      fromRegistrars(p.TopRegistrars),
		RDAPURLs:           urls,
	}
}

func ranking(ps []aggregate.ProviderAggregate) []RankingDTO {
	out := make([]RankingDTO, len(ps))
	for i, p := range ps {
		out[i] = RankingDTO{
			Rank:               i + 1,
			Provider:           p.Provider,
			Kind:               string(p.Kind),
			RegistrarCount:     p.RegistrarCount,
			TotalDomains:       p.TotalDomains,
			MarketSharePercent: p.MarketSharePercent,
		}
	}
	return out
}

// FromResult builds the analysis document for a pipeline result.
func FromResult(res *pipeline.Result) AnalysisDTO {
	a := res.Analysis
	dto := AnalysisDTO{
		DatasetSummary: SummaryDTO{
			GrandTotalDomains: a.Summary.GrandTotalDomains,
			TotalRegistrars:   a.Summary.TotalRegistrars,
			DistinctProviders: a.Summary.DistinctProviders,
			UniqueRDAPURLs:    a.Summary.UniqueRDAPURLs,
		},
		GatewayProviders:   make(map[string]ProviderDTO),
		CandidateProviders: make(map[string]ProviderDTO),
		ProviderRanking:    ranking(a.Providers),
		MarketShareRanking: ranking(a.ByMarketShare()),
		GatewayAnalysis: GatewayAnalysisDTO{
			GatewayDomains:       a.Gateways.GatewayDomains,
			GatewayRegistrars:    a.Gateways.GatewayRegistrars,
			GatewayPercent:       a.Gateways.GatewayPercent,
			CandidateDomains:     a.Gateways.CandidateDomains,
			CandidateRegistrars:  a.Gateways.CandidateRegistrars,
			CandidatePercent:     a.Gateways.CandidatePercent,
			SelfHostedDomains:    a.Gateways.SelfHostedDomains,
			SelfHostedRegistrars: a.Gateways.SelfHostedRegistrars,
			SelfHostedPercent:    a.Gateways.SelfHostedPercent,
		},
		TopRDAPURLs:       make([]URLDTO, 0, len(a.TopRDAPURLs)),
		LargestSelfHosted: fromRegistrars(a.LargestSelfHosted),
		SharedRDAPHosts:   make([]SharedHostDTO, 0, len(a.SharedHosts)),
		Enrichment:        fromEnrichment(res.Enrichment),
		DataQuality:       fromReport(res.Report),
	}

	for _, p := range a.Providers {
		switch p.Kind {
		case registrar.KindGateway:
			dto.GatewayProviders[p.Provider] = FromProvider(p)
		case registrar.KindSelfHosted:
			sh := FromProvider(p)
			dto.SelfHosted = &sh
		default:
			dto.CandidateProviders[p.Provider] = FromProvider(p)
		}
	}
	for _, u := range a.TopRDAPURLs {
		dto.TopRDAPURLs = append(dto.TopRDAPURLs, URLDTO{
			URL: u.URL, Provider: u.Provider, Kind: string(u.Kind),
			RegistrarCount: u.RegistrarCount, TotalDomains: u.TotalDomains,
		})
	}
	for _, h := range a.SharedHosts {
		dto.SharedRDAPHosts = append(dto.SharedRDAPHosts, SharedHostDTO{
			Domain: h.Domain, RegistrarCount: h.RegistrarCount, TotalDomains: h.TotalDomains, IANAIDs: h.IANAIDs,
			SelfHostedIANAIDs: h.SelfHostedIANAIDs, SplitProviders: h.Split(),
		})
	}
	return dto
}

func fromEnrichment(s enrich.Summary) EnrichmentDTO {
	sources := make(map[string]int, len(s.BySource))
	for k, v := range s.BySource {
		sources[k] = v
	}
	return EnrichmentDTO{
		WithWebsite:     s.Website,
		WithWhoisServer: s.WhoisServer,
		WithStatus:      s.Status,
		WithNotes:       s.Notes,
		WebsiteSources:  sources,
	}
}

func fromReport(r registrar.Report) DataQualityDTO {
	counts := map[string]int{
		string(registrar.SkippedRowWarning):  0,
		string(registrar.JoinOrphanWarning):  0,
		string(registrar.DuplicateIDWarning): 0,
	}
	for k, v := range r.Counts() {
		counts[string(k)] = v
	}
	return DataQualityDTO{SkippedRows: r.SkippedRows, Warnings: counts}
}

// WarningsDTO is data_quality.json.
type WarningsDTO struct {
	SkippedRows int                 `json:"skipped_rows"`
	Warnings    []registrar.Warning `json:"warnings"`
}

// FromReport converts the full warning list.
func FromReport(r registrar.Report) WarningsDTO {
	ws := r.Sorted()
	if ws == nil {
		ws = []registrar.Warning{}
	}
	return WarningsDTO{SkippedRows: r.SkippedRows, Warnings: ws}
}
