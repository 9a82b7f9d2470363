package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/rdapgw/internal/classifier"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

func tucows() registrar.Provider {
	return registrar.Provider{Name: "Tucows", Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost}
}

func TestAggregate_ThreeRecordScenario(t *testing.T) {
	records := classifier.Default().ClassifyAll([]registrar.Record{
		{IANAID: 1, Name: "Example Registrar", RDAPURL: "rdap.example-registrar.com", DomainCount: 100},
		{IANAID: 2, Name: "Tucows Domains Inc.", RDAPURL: "rdap.tucows.com", DomainCount: 50},
		{IANAID: 3, Name: "Ascio Technologies", RDAPURL: "rdap.tucows.com", DomainCount: 30},
	})

	a := Aggregate(records, DefaultOptions())

	require.Equal(t, Summary{GrandTotalDomains: 180, TotalRegistrars: 3, DistinctProviders: 2, UniqueRDAPURLs: 2}, a.Summary)

	tc, ok := a.Provider(registrar.KindGateway, "Tucows")
	require.True(t, ok)
	require.Equal(t, 2, tc.RegistrarCount)
	require.Equal(t, int64(80), tc.TotalDomains)
	require.Equal(t, 44.4, tc.MarketSharePercent)
	require.Equal(t, 40.0, tc.AverageDomains)
	require.Equal(t, 40.0, tc.MedianDomains)
	require.Equal(t, []string{"rdap.tucows.com"}, tc.RDAPURLs)
	require.Equal(t, []int{2, 3}, ids(tc.TopRegistrars))

	self, ok := a.Provider(registrar.KindSelfHosted, registrar.SelfHostedName)
	require.True(t, ok)
	require.Equal(t, 55.6, self.MarketSharePercent)

	require.Equal(t, int64(80), a.Gateways.GatewayDomains)
	require.Equal(t, int64(100), a.Gateways.SelfHostedDomains)
	require.Equal(t, 44.4, a.Gateways.GatewayPercent)
	require.Equal(t, 55.6, a.Gateways.SelfHostedPercent)
	require.Equal(t, 0.0, a.Gateways.CandidatePercent)

	// Tucows has more registrars, self-hosted has the larger share
	require.Equal(t, "Tucows", a.Providers[0].Provider)
	require.Equal(t, registrar.SelfHostedName, a.ByMarketShare()[0].Provider)
}

func TestAggregate_TopNTiesBreakByID(t *testing.T) {
	p := tucows()
	records := []registrar.Record{
		{IANAID: 9, DomainCount: 10, Provider: p},
		{IANAID: 4, DomainCount: 10, Provider: p},
		{IANAID: 7, DomainCount: 50, Provider: p},
		{IANAID: 1, DomainCount: 5, Provider: p},
		{IANAID: 2, DomainCount: 10, Provider: p},
	}

	a := Aggregate(records, Options{TopN: 3})

	require.Equal(t, []int{7, 2, 4}, ids(a.Providers[0].TopRegistrars))
	require.Equal(t, 10.0, a.Providers[0].MedianDomains)
}

func TestAggregate_CandidatesStaySeparate(t *testing.T) {
	records := []registrar.Record{
		{IANAID: 1, DomainCount: 10, Provider: registrar.Provider{Name: "Tucows", Kind: registrar.KindGateway}},
		{IANAID: 2, DomainCount: 20, Provider: registrar.Provider{Name: "Tucows", Kind: registrar.KindCandidate}},
		{IANAID: 3, DomainCount: 30},
	}

	a := Aggregate(records, DefaultOptions())

	require.Len(t, a.Providers, 3)
	require.Len(t, a.ByKind(registrar.KindGateway), 1)
	require.Len(t, a.ByKind(registrar.KindCandidate), 2)
	require.Equal(t, int64(50), a.Gateways.CandidateDomains)
	require.Equal(t, 2, a.Gateways.CandidateRegistrars)

	none, ok := a.Provider(registrar.KindCandidate, registrar.NoHostName)
	require.True(t, ok)
	require.Equal(t, int64(30), none.TotalDomains)
}

func TestAggregate_ZeroTotal(t *testing.T) {
	a := Aggregate([]registrar.Record{{IANAID: 1, Provider: tucows()}}, DefaultOptions())
	require.Equal(t, 0.0, a.Providers[0].MarketSharePercent)
	require.Equal(t, 0.0, a.Gateways.GatewayPercent)

	empty := Aggregate(nil, DefaultOptions())
	require.Empty(t, empty.Providers)
	require.Equal(t, Summary{}, empty.Summary)
}

func TestAggregate_URLRankingAndSharedHosts(t *testing.T) {
	candidate := func(name string) registrar.Provider {
		return registrar.Provider{Name: name, Kind: registrar.KindCandidate, Reason: registrar.ReasonUnrecognized}
	}
	records := []registrar.Record{
		{IANAID: 10, RDAPURL: "https://rdap.hostco.net/a", DomainCount: 5, Provider: candidate("hostco.net")},
		{IANAID: 11, RDAPURL: "https://rdap.hostco.net/b", DomainCount: 7, Provider: candidate("hostco.net")},
		{IANAID: 12, RDAPURL: "https://rdap2.hostco.net/", DomainCount: 1, Provider: candidate("hostco.net")},
		{IANAID: 20, RDAPURL: "rdap.tucows.com", DomainCount: 100, Provider: tucows()},
		{IANAID: 21, RDAPURL: "rdap.tucows.com", DomainCount: 1, Provider: tucows()},
		{IANAID: 22, RDAPURL: "rdap.tucows.com", DomainCount: 1, Provider: tucows()},
		{IANAID: 30, RDAPURL: "rdap.solo.org", DomainCount: 3, Provider: registrar.SelfHosted(registrar.ReasonNameHeuristic)},
	}

	a := Aggregate(records, Options{TopN: 5, TopURLs: 2, LargestSelfHosted: 5, SharedHostMin: 3})

	require.Len(t, a.TopRDAPURLs, 2)
	require.Equal(t, "rdap.tucows.com", a.TopRDAPURLs[0].URL)
	require.Equal(t, 3, a.TopRDAPURLs[0].RegistrarCount)
	require.Equal(t, "https://rdap.hostco.net/b", a.TopRDAPURLs[1].URL)
	require.Equal(t, 5, a.Summary.UniqueRDAPURLs)

	require.Len(t, a.SharedHosts, 1)
	require.Equal(t, SharedHost{Domain: "hostco.net", RegistrarCount: 3, TotalDomains: 13, IANAIDs: []int{10, 11, 12}}, a.SharedHosts[0])

	require.Equal(t, []int{30}, ids(a.LargestSelfHosted))
}

func TestAggregate_SharedHostSplitAcrossProviders(t *testing.T) {
	records := classifier.Default().ClassifyAll([]registrar.Record{
		{IANAID: 40, Name: "NameBright.com", RDAPURL: "https://rdap.namebright.com/rdap/", DomainCount: 900},
		{IANAID: 41, Name: "Reseller One LLC", RDAPURL: "https://rdap.namebright.com/rdap/", DomainCount: 20},
		{IANAID: 42, Name: "Reseller Two Corp", RDAPURL: "https://rdap.namebright.com/rdap/", DomainCount: 10},
	})
	require.Equal(t, registrar.KindSelfHosted, records[0].Provider.Kind)
	require.Equal(t, registrar.KindCandidate, records[1].Provider.Kind)

	a := Aggregate(records, DefaultOptions())

	require.Len(t, a.SharedHosts, 1)
	sh := a.SharedHosts[0]
	require.Equal(t, "namebright.com", sh.Domain)
	require.Equal(t, []int{40, 41, 42}, sh.IANAIDs)
	require.Equal(t, []int{40}, sh.SelfHostedIANAIDs)
	require.True(t, sh.Split())
}

func TestPercent(t *testing.T) {
	require.Equal(t, 44.4, Percent(80, 180))
	require.Equal(t, 33.3, Percent(1, 3))
	require.Equal(t, 66.7, Percent(2, 3))
	require.Equal(t, 100.0, Percent(5, 5))
	require.Equal(t, 0.0, Percent(5, 0))
}

func genRecords(t *rapid.T) []registrar.Record {
	providers := []registrar.Provider{
		tucows(),
		{Name: "LogicBoxes", Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost},
		{Name: "example.net", Kind: registrar.KindCandidate, Reason: registrar.ReasonUnrecognized},
		registrar.SelfHosted(registrar.ReasonNameHeuristic),
	}
	n := rapid.IntRange(0, 60).Draw(t, "n")
	records := make([]registrar.Record, n)
	for i := range records {
		records[i] = registrar.Record{
			IANAID:      rapid.IntRange(1, 40).Draw(t, fmt.Sprintf("id%d", i)),
			RDAPURL:     rapid.SampledFrom([]string{"", "rdap.a.example", "rdap.b.example", "rdap.c.example"}).Draw(t, fmt.Sprintf("url%d", i)),
			DomainCount: rapid.Int64Range(0, 1_000_000).Draw(t, fmt.Sprintf("count%d", i)),
			Provider:    rapid.SampledFrom(providers).Draw(t, fmt.Sprintf("provider%d", i)),
		}
	}
	return records
}

func TestAggregate_SumProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		a := Aggregate(records, DefaultOptions())

		var fromRecords, fromProviders int64
		registrars := 0
		for _, r := range records {
			fromRecords += r.DomainCount
		}
		for _, p := range a.Providers {
			fromProviders += p.TotalDomains
			registrars += p.RegistrarCount
			if p.MarketSharePercent < 0 || p.MarketSharePercent > 100 {
				t.Fatalf("share out of range: %v", p.MarketSharePercent)
			}
			if len(p.TopRegistrars) > 10 {
				t.Fatalf("top list too long: %d", len(p.TopRegistrars))
			}
		}
		if fromProviders != a.Summary.GrandTotalDomains || fromRecords != a.Summary.GrandTotalDomains {
			t.Fatalf("sums differ: providers=%d grand=%d records=%d", fromProviders, a.Summary.GrandTotalDomains, fromRecords)
		}
		if registrars != len(records) {
			t.Fatalf("registrar count %d, want %d", registrars, len(records))
		}
		g := a.Gateways
		if g.GatewayDomains+g.CandidateDomains+g.SelfHostedDomains != a.Summary.GrandTotalDomains {
			t.Fatalf("gateway split does not add up")
		}
	})
}

func TestAggregate_TopRegistrarsMatchFullSort(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		topN := rapid.IntRange(0, 8).Draw(t, "topN")
		a := Aggregate(records, Options{TopN: topN})

		for _, p := range a.Providers {
			var all []RegistrarSummary
			for _, r := range records {
				if r.Provider.Key() == (registrar.Provider{Name: p.Provider, Kind: p.Kind}).Key() {
					all = append(all, summarize(r))
				}
			}
			want := newTopN(len(all))
			for _, s := range all {
				want.offer(s)
			}
			expected := want.sorted()
			if len(expected) > topN {
				expected = expected[:topN]
			}
			if fmt.Sprint(ids(expected)) != fmt.Sprint(ids(p.TopRegistrars)) {
				t.Fatalf("%s: top %v, want %v", p.Provider, ids(p.TopRegistrars), ids(expected))
			}
		}
	})
}

func ids(rs []RegistrarSummary) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.IANAID
	}
	return out
}
