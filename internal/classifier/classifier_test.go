package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

func TestParseHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rdap.tucows.com", "rdap.tucows.com"},
		{"https://RDAP.Tucows.com/rdap/", "rdap.tucows.com"},
		{"  http://rdapserver.net:8443/  ", "rdapserver.net"},
		{"//rdap.example.org", "rdap.example.org"},
		{"rdap.example.org.", "rdap.example.org"},
		{"", ""},
		{"   ", ""},
		{"not a url", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseHost(tt.in), tt.in)
	}
}

func TestRegistrableDomain(t *testing.T) {
	require.Equal(t, "tucows.com", RegistrableDomain("rdap.tucows.com"))
	require.Equal(t, "example.co.uk", RegistrableDomain("rdap.example.co.uk"))
	require.Equal(t, "10.0.0.1", RegistrableDomain("10.0.0.1"))
	require.Equal(t, "", RegistrableDomain(""))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example Registrar, Inc.", "exampleregistrar"},
		{"Sav.com, LLC", "savcom"},
		{"Key-Systems GmbH", "keysystems"},
		{"Dómäin Ñame S.A.", "domainname"},
		{"Beget LLC", "beget"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
}

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		name      string
		url       string
		registrar string
		want      registrar.Provider
	}{
		{
			name: "exact host",
			url:  "https://rdap.tucows.com/",
			want: registrar.Provider{Name: "Tucows", Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost},
		},
		{
			name: "ascio host",
			url:  "rdap.ascio.com",
			want: registrar.Provider{Name: "Tucows", Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost},
		},
		{
			name: "tucows subdomain",
			url:  "https://epag.rdap.tucows.com",
			want: registrar.Provider{Name: "Tucows", Kind: registrar.KindGateway, Reason: registrar.ReasonHostSuffix},
		},
		{
			name: "logicboxes",
			url:  "https://rdapserver.net/",
			want: registrar.Provider{Name: "LogicBoxes", Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost},
		},
		{
			name: "centralnic domain",
			url:  "https://rdap.centralnic.com/",
			want: registrar.Provider{Name: "RRPProxy/CentralNic", Kind: registrar.KindGateway, Reason: registrar.ReasonHostSuffix},
		},
		{
			name:      "gateway beats name heuristic",
			url:       "https://rdap.key-systems.net/",
			registrar: "Key-Systems GmbH",
			want:      registrar.Provider{Name: "RRPProxy/CentralNic", Kind: registrar.KindGateway, Reason: registrar.ReasonHostSuffix},
		},
		{
			name:      "self hosted",
			url:       "rdap.example-registrar.com",
			registrar: "Example Registrar, Inc.",
			want:      registrar.SelfHosted(registrar.ReasonNameHeuristic),
		},
		{
			name:      "candidate",
			url:       "https://rdap.sharedhost.example.net/v1",
			registrar: "Unrelated Names Ltd",
			want:      registrar.Provider{Name: "example.net", Kind: registrar.KindCandidate, Reason: registrar.ReasonUnrecognized},
		},
		{
			name: "no host",
			url:  "",
			want: registrar.Provider{Name: registrar.NoHostName, Kind: registrar.KindCandidate, Reason: registrar.ReasonUnrecognized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Classify(tt.url, tt.registrar))
		})
	}
}

func TestClassify_ShortLabelsNeverSelfHosted(t *testing.T) {
	c := Default()
	p := c.Classify("https://rdap.ab.com", "AB Domains")
	require.Equal(t, registrar.KindCandidate, p.Kind)
}

func TestDefault_ExtraGateways(t *testing.T) {
	c := Default(Gateway{Name: "GoDaddy", Hosts: []string{"rdap.godaddy.com"}, Suffixes: []string{"registry.godaddy"}})

	p := c.Classify("https://rdap.godaddy.com/v1", "GoDaddy.com, LLC")
	require.Equal(t, registrar.Provider{Name: "GoDaddy", Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost}, p)

	p = c.Classify("https://rdap.nic.registry.godaddy", "")
	require.Equal(t, "GoDaddy", p.Name)
	require.Equal(t, registrar.ReasonHostSuffix, p.Reason)
}

func TestSuffixMatcher_LongestSuffixWins(t *testing.T) {
	m := NewSuffixMatcher([]Gateway{
		{Name: "Broad", Suffixes: []string{".example.com"}},
		{Name: "Narrow", Suffixes: []string{".rdap.example.com"}},
	})
	p, ok := m.Match(NewTarget("x.rdap.example.com", ""))
	require.True(t, ok)
	require.Equal(t, "Narrow", p.Name)
}

func TestClassifier_Matchers(t *testing.T) {
	require.Equal(t, []string{"exact_host", "host_suffix", "self_hosted"}, Default().Matchers())
}

func TestClassifyAll(t *testing.T) {
	records := []registrar.Record{
		{IANAID: 1, Name: "Example Registrar", RDAPURL: "rdap.example-registrar.com", DomainCount: 100},
		{IANAID: 2, RDAPURL: "rdap.tucows.com", DomainCount: 50},
		{IANAID: 3, RDAPURL: "rdap.tucows.com", DomainCount: 30},
	}

	out := Default().ClassifyAll(records)

	require.Equal(t, registrar.KindSelfHosted, out[0].Provider.Kind)
	require.Equal(t, registrar.SelfHostedName, out[0].Provider.Name)
	require.Equal(t, "Tucows", out[1].Provider.Name)
	require.Equal(t, "Tucows", out[2].Provider.Name)
	// inputs untouched
	require.True(t, records[0].Provider.IsZero())
}

func TestClassify_Deterministic(t *testing.T) {
	hosts := []string{"rdap.tucows.com", "rdapserver.net", "rdap.centralnic.com", "rdap.acme.com", "rdap.other.org", ""}
	names := []string{"Acme Inc", "Other LLC", "Tucows", ""}

	rapid.Check(t, func(t *rapid.T) {
		url := rapid.SampledFrom(hosts).Draw(t, "url")
		name := rapid.SampledFrom(names).Draw(t, "name")

		first := Default().Classify(url, name)
		second := Default().Classify(url, name)
		if first != second {
			t.Fatalf("classification changed: %+v vs %+v", first, second)
		}
		if first.Name == "" || !first.Kind.Valid() {
			t.Fatalf("unset provider for %q: %+v", url, first)
		}
	})
}
