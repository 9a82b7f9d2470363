// Package aggregate computes per-provider market statistics over classified
// registrar records.
package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/zjrosen/rdapgw/internal/classifier"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

// Options bounds the lists in an Analysis.
type Options struct {
	// TopN is the number of top registrars kept per provider.
	TopN int
	// TopURLs limits the RDAP URL ranking.
	TopURLs int
	// LargestSelfHosted limits the largest self-hosted registrar list.
	LargestSelfHosted int
	// SharedHostMin is the registrar count at which a non-gateway
	// registrable domain is reported as a shared host.
	SharedHostMin int
}

// DefaultOptions returns the limits used by the analyze command.
func DefaultOptions() Options {
	return Options{TopN: 10, TopURLs: 20, LargestSelfHosted: 10, SharedHostMin: 3}
}

// ProviderAggregate holds the statistics for one provider.
type ProviderAggregate struct {
	Provider           string
	Kind               registrar.Kind
	RegistrarCount     int
	TotalDomains       int64
	MarketSharePercent float64
	AverageDomains     float64
	MedianDomains      float64
	TopRegistrars      []RegistrarSummary
	RDAPURLs           []string
}

// Summary holds dataset-wide totals.
type Summary struct {
	GrandTotalDomains int64
	TotalRegistrars   int
	DistinctProviders int
	UniqueRDAPURLs    int
}

// GatewayAnalysis splits the market between confirmed gateways, candidates
// and self-hosted registrars. Candidates are kept apart from both.
type GatewayAnalysis struct {
	GatewayDomains       int64
	CandidateDomains     int64
	SelfHostedDomains    int64
	GatewayRegistrars    int
	CandidateRegistrars  int
	SelfHostedRegistrars int
	GatewayPercent       float64
	CandidatePercent     float64
	SelfHostedPercent    float64
}

// URLStat ranks an RDAP base URL by how many registrars publish it.
type URLStat struct {
	URL            string
	Provider       string
	Kind           registrar.Kind
	RegistrarCount int
	TotalDomains   int64
}

// SharedHost is a registrable domain used by several registrars that is not a
// confirmed gateway. SelfHostedIANAIDs lists the registrars on the host that
// the name heuristic classified as self-hosted; the rest are counted under
// the candidate provider for the domain.
type SharedHost struct {
	Domain            string
	RegistrarCount    int
	TotalDomains      int64
	IANAIDs           []int
	SelfHostedIANAIDs []int
}

// Split reports whether the host's registrars landed under more than one
// provider.
func (h SharedHost) Split() bool {
	return len(h.SelfHostedIANAIDs) > 0 && len(h.SelfHostedIANAIDs) < h.RegistrarCount
}

// Analysis is the complete aggregation result.
type Analysis struct {
	Summary           Summary
	Providers         []ProviderAggregate
	Gateways          GatewayAnalysis
	TopRDAPURLs       []URLStat
	LargestSelfHosted []RegistrarSummary
	SharedHosts       []SharedHost
}

type accumulator struct {
	agg    ProviderAggregate
	top    *topN
	counts []int64
	urls   map[string]struct{}
}

// Aggregate groups records by provider. Records must already be classified;
// an unclassified record is counted as an unrecognized candidate.
func Aggregate(records []registrar.Record, opts Options) *Analysis {
	accs := make(map[string]*accumulator)
	urls := make(map[string]*URLStat)
	hosts := make(map[string]*SharedHost)
	selfTop := newTopN(opts.LargestSelfHosted)
	a := &Analysis{}

	for _, r := range records {
		p := r.Provider
		if p.IsZero() {
			p = registrar.Provider{Name: registrar.NoHostName, Kind: registrar.KindCandidate, Reason: registrar.ReasonUnrecognized}
		}

		acc, ok := accs[p.Key()]
		if !ok {
			acc = &accumulator{
				agg:  ProviderAggregate{Provider: p.Name, Kind: p.Kind},
				top:  newTopN(opts.TopN),
				urls: make(map[string]struct{}),
			}
			accs[p.Key()] = acc
		}
		acc.agg.RegistrarCount++
		acc.agg.TotalDomains += r.DomainCount
		acc.counts = append(acc.counts, r.DomainCount)
		acc.top.offer(summarize(r))

		a.Summary.TotalRegistrars++
		a.Summary.GrandTotalDomains += r.DomainCount

		switch p.Kind {
		case registrar.KindGateway:
			a.Gateways.GatewayDomains += r.DomainCount
			a.Gateways.GatewayRegistrars++
		case registrar.KindSelfHosted:
			a.Gateways.SelfHostedDomains += r.DomainCount
			a.Gateways.SelfHostedRegistrars++
			selfTop.offer(summarize(r))
		default:
			a.Gateways.CandidateDomains += r.DomainCount
			a.Gateways.CandidateRegistrars++
		}

		url := strings.TrimSpace(r.RDAPURL)
		if url == "" {
			continue
		}
		acc.urls[url] = struct{}{}

		us, ok := urls[url]
		if !ok {
			us = &URLStat{URL: url, Provider: p.Name, Kind: p.Kind}
			urls[url] = us
		}
		us.RegistrarCount++
		us.TotalDomains += r.DomainCount

		if p.Kind != registrar.KindGateway {
			if d := classifier.RegistrableDomain(classifier.ParseHost(url)); d != "" {
				sh, ok := hosts[d]
				if !ok {
					sh = &SharedHost{Domain: d}
					hosts[d] = sh
				}
				sh.RegistrarCount++
				sh.TotalDomains += r.DomainCount
				sh.IANAIDs = append(sh.IANAIDs, r.IANAID)
				if p.Kind == registrar.KindSelfHosted {
					sh.SelfHostedIANAIDs = append(sh.SelfHostedIANAIDs, r.IANAID)
				}
			}
		}
	}

	// Shares need the grand total, so they are computed after accumulation.
	grand := a.Summary.GrandTotalDomains
	a.Providers = make([]ProviderAggregate, 0, len(accs))
	for _, acc := range accs {
		agg := acc.agg
		agg.MarketSharePercent = Percent(agg.TotalDomains, grand)
		agg.AverageDomains = round1(float64(agg.TotalDomains) / float64(agg.RegistrarCount))
		agg.MedianDomains = median(acc.counts)
		agg.TopRegistrars = acc.top.sorted()
		agg.RDAPURLs = sortedKeys(acc.urls)
		a.Providers = append(a.Providers, agg)
	}
	sort.Slice(a.Providers, func(i, j int) bool { return byRegistrarCount(a.Providers[i], a.Providers[j]) })

	a.Summary.DistinctProviders = len(a.Providers)
	a.Summary.UniqueRDAPURLs = len(urls)

	a.Gateways.GatewayPercent = Percent(a.Gateways.GatewayDomains, grand)
	a.Gateways.CandidatePercent = Percent(a.Gateways.CandidateDomains, grand)
	a.Gateways.SelfHostedPercent = Percent(a.Gateways.SelfHostedDomains, grand)

	a.TopRDAPURLs = rankURLs(urls, opts.TopURLs)
	a.LargestSelfHosted = selfTop.sorted()
	a.SharedHosts = sharedHosts(hosts, opts.SharedHostMin)

	log.Info(log.CatAggregate, "aggregation complete",
		"providers", a.Summary.DistinctProviders,
		"registrars", a.Summary.TotalRegistrars,
		"domains", grand,
		"shared_hosts", len(a.SharedHosts))
	return a
}

func byRegistrarCount(a, b ProviderAggregate) bool {
	if a.RegistrarCount != b.RegistrarCount {
		return a.RegistrarCount > b.RegistrarCount
	}
	if a.TotalDomains != b.TotalDomains {
		return a.TotalDomains > b.TotalDomains
	}
	if a.Provider != b.Provider {
		return a.Provider < b.Provider
	}
	return a.Kind < b.Kind
}

func byMarketShare(a, b ProviderAggregate) bool {
	if a.MarketSharePercent != b.MarketSharePercent {
		return a.MarketSharePercent > b.MarketSharePercent
	}
	if a.TotalDomains != b.TotalDomains {
		return a.TotalDomains > b.TotalDomains
	}
	if a.Provider != b.Provider {
		return a.Provider < b.Provider
	}
	return a.Kind < b.Kind
}

// ByMarketShare returns the providers ordered by market share descending.
func (a *Analysis) ByMarketShare() []ProviderAggregate {
	out := make([]ProviderAggregate, len(a.Providers))
	copy(out, a.Providers)
	sort.SliceStable(out, func(i, j int) bool { return byMarketShare(out[i], out[j]) })
	return out
}

// ByKind returns the providers of one kind in registrar-count order.
func (a *Analysis) ByKind(kind registrar.Kind) []ProviderAggregate {
	var out []ProviderAggregate
	for _, p := range a.Providers {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Provider looks up an aggregate by kind and name.
func (a *Analysis) Provider(kind registrar.Kind, name string) (ProviderAggregate, bool) {
	for _, p := range a.Providers {
		if p.Kind == kind && p.Provider == name {
			return p, true
		}
	}
	return ProviderAggregate{}, false
}

func rankURLs(urls map[string]*URLStat, limit int) []URLStat {
	out := make([]URLStat, 0, len(urls))
	for _, u := range urls {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegistrarCount != out[j].RegistrarCount {
			return out[i].RegistrarCount > out[j].RegistrarCount
		}
		if out[i].TotalDomains != out[j].TotalDomains {
			return out[i].TotalDomains > out[j].TotalDomains
		}
		return out[i].URL < out[j].URL
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sharedHosts(hosts map[string]*SharedHost, minCount int) []SharedHost {
	if minCount < 2 {
		minCount = 2
	}
	var out []SharedHost
	for _, h := range hosts {
		if h.RegistrarCount < minCount {
			continue
		}
		sh := *h
		sh.IANAIDs = append([]int(nil), h.IANAIDs...)
		sort.Ints(sh.IANAIDs)
		sh.SelfHostedIANAIDs = append([]int(nil), h.SelfHostedIANAIDs...)
		sort.Ints(sh.SelfHostedIANAIDs)
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegistrarCount != out[j].RegistrarCount {
			return out[i].RegistrarCount > out[j].RegistrarCount
		}
		if out[i].TotalDomains != out[j].TotalDomains {
			return out[i].TotalDomains > out[j].TotalDomains
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// Percent returns part/total*100 rounded to one decimal, or 0 when total is 0.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func median(counts []int64) float64 {
	if len(counts) == 0 {
		return 0
	}
	s := append([]int64(nil), counts...)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return float64(s[mid])
	}
	return round1(float64(s[mid-1]+s[mid]) / 2)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
