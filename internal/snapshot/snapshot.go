// Package snapshot records the headline numbers of each analyze run so market
// share can be compared over time.
package snapshot

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/zjrosen/rdapgw/internal/aggregate"
	"github.com/zjrosen/rdapgw/internal/pipeline"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

// Run is one stored analyze run.
type Run struct {
	ID             string
	CreatedAt      time.Time
	WorkbookPath   string
	EnrichmentPath string

	Records           int
	GrandTotalDomains int64
	Providers         int
	GatewayPercent    float64
	CandidatePercent  float64
	SelfHostedPercent float64
	Warnings          int

	Shares []ProviderShare
}

// ProviderShare is one provider's position in a run.
type ProviderShare struct {
	Provider           string
	Kind               registrar.Kind
	RegistrarCount     int
	TotalDomains       int64
	MarketSharePercent float64
}

// Repository stores runs.
type Repository interface {
	Save(ctx context.Context, run *Run) error
	FindByID(ctx context.Context, id string) (*Run, error)
	// List returns runs newest first without their shares. limit <= 0
	// returns every run.
	List(ctx context.Context, limit int) ([]*Run, error)
	Latest(ctx context.Context) (*Run, error)
}

// RunNotFoundError is returned when no run matches.
type RunNotFoundError struct {
	ID string
}

func (e *RunNotFoundError) Error() string {
	if e.ID == "" {
		return "no snapshot runs recorded"
	}
	return fmt.Sprintf("snapshot run %s not found", e.ID)
}

// NewRun captures a pipeline result.
func NewRun(id string, at time.Time, in pipeline.Input, res *pipeline.Result) *Run {
	a := res.Analysis
	run := &Run{
		ID:                id,
		CreatedAt:         at.UTC(),
		WorkbookPath:      in.WorkbookPath,
		EnrichmentPath:    in.EnrichmentPath,
		Records:           len(res.Records),
		GrandTotalDomains: a.Summary.GrandTotalDomains,
		Providers:         a.Summary.DistinctProviders,
		GatewayPercent:    a.Gateways.GatewayPercent,
		CandidatePercent:  a.Gateways.CandidatePercent,
		SelfHostedPercent: a.Gateways.SelfHostedPercent,
		Warnings:          len(res.Report.Warnings),
	}
	for _, p := range a.ByMarketShare() {
		run.Shares = append(run.Shares, shareOf(p))
	}
	return run
}

func shareOf(p aggregate.ProviderAggregate) ProviderShare {
	return ProviderShare{
		Provider:           p.Provider,
		Kind:               p.Kind,
		RegistrarCount:     p.RegistrarCount,
		TotalDomains:       p.TotalDomains,
		MarketSharePercent: p.MarketSharePercent,
	}
}

// ShareDelta is the change in one provider's share between two runs.
type ShareDelta struct {
	Provider string
	Kind     registrar.Kind
	Before   float64
	After    float64
	// DomainsChange is After minus Before in domains.
	DomainsChange int64
}

// Change is the percentage-point movement.
func (d ShareDelta) Change() float64 {
	return math.Round((d.After-d.Before)*10) / 10
}

// Compare lists every provider present in either run, largest absolute
// movement first. Providers absent from a run count as 0%.
func Compare(before, after *Run) []ShareDelta {
	type key struct {
		name string
		kind registrar.Kind
	}
	deltas := make(map[key]*ShareDelta)
	get := func(s ProviderShare) *ShareDelta {
		k := key{s.Provider, s.Kind}
		d, ok := deltas[k]
		if !ok {
			d = &ShareDelta{Provider: s.Provider, Kind: s.Kind}
			deltas[k] = d
		}
		return d
	}
	for _, s := range before.Shares {
		d := get(s)
		d.Before = s.MarketSharePercent
		d.DomainsChange -= s.TotalDomains
	}
	for _, s := range after.Shares {
		d := get(s)
		d.After = s.MarketSharePercent
		d.DomainsChange += s.TotalDomains
	}

	out := make([]ShareDelta, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := abs(out[i].Change()), abs(out[j].Change())
		if ci != cj {
			return ci > cj
		}
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
