package sqlite

import (
	"time"

	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/snapshot"
)

// RunModel is a row of the runs table. Times are Unix milliseconds.
type RunModel struct {
	ID                string
	CreatedAt         int64
	WorkbookPath      string
	EnrichmentPath    *string // nullable
	Records           int
	GrandTotalDomains int64
	Providers         int
	GatewayPercent    float64
	CandidatePercent  float64
	SelfHostedPercent float64
	Warnings          int
}

// ShareModel is a row of the provider_shares table.
type ShareModel struct {
	RunID              string
	Position           int
	Provider           string
	Kind               string
	RegistrarCount     int
	TotalDomains       int64
	MarketSharePercent float64
}

func toRunModel(r *snapshot.Run) *RunModel {
	m := &RunModel{
		ID:                r.ID,
		CreatedAt:         r.CreatedAt.UnixMilli(),
		WorkbookPath:      r.WorkbookPath,
		Records:           r.Records,
		GrandTotalDomains: r.GrandTotalDomains,
		Providers:         r.Providers,
		GatewayPercent:    r.GatewayPercent,
		CandidatePercent:  r.CandidatePercent,
		SelfHostedPercent: r.SelfHostedPercent,
		Warnings:          r.Warnings,
	}
	if r.EnrichmentPath != "" {
		p := r.EnrichmentPath
		m.EnrichmentPath = &p
	}
	return m
}

func (m *RunModel) toDomain() *snapshot.Run {
	r := &snapshot.Run{
		ID:                m.ID,
		CreatedAt:         time.UnixMilli(m.CreatedAt).UTC(),
		WorkbookPath:      m.WorkbookPath,
		Records:           m.Records,
		GrandTotalDomains: m.GrandTotalDomains,
		Providers:         m.Providers,
		GatewayPercent:    m.GatewayPercent,
		CandidatePercent:  m.CandidatePercent,
		SelfHostedPercent: m.SelfHostedPercent,
		Warnings:          m.Warnings,
	}
	if m.EnrichmentPath != nil {
		r.EnrichmentPath = *m.EnrichmentPath
	}
	return r
}

func toShareModels(r *snapshot.Run) []ShareModel {
	out := make([]ShareModel, len(r.Shares))
	for i, s := range r.Shares {
		out[i] = ShareModel{
			RunID:              r.ID,
			Position:           i,
			Provider:           s.Provider,
			Kind:               string(s.Kind),
			RegistrarCount:     s.RegistrarCount,
			TotalDomains:       s.TotalDomains,
			MarketSharePercent: s.MarketSharePercent,
		}
	}
	return out
}

func (m ShareModel) toDomain() snapshot.ProviderShare {
	return snapshot.ProviderShare{
		Provider:           m.Provider,
		Kind:               registrar.Kind(m.Kind),
		RegistrarCount:     m.RegistrarCount,
		TotalDomains:       m.TotalDomains,
		MarketSharePercent: m.MarketSharePercent,
	}
}
