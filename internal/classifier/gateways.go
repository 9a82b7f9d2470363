package classifier

import (
	"sort"
	"strings"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

// Gateway describes a confirmed shared RDAP operator.
type Gateway struct {
	Name string
	// Hosts are matched exactly against the RDAP hostname.
	Hosts []string
	// Suffixes match any hostname ending with them (".rdap.tucows.com").
	Suffixes []string
	// Domains match hosts whose registrable domain equals one of them.
	Domains []string
}

// BuiltinGateways is the known-provider table.
func BuiltinGateways() []Gateway {
	return []Gateway{
		{
			Name:  "LogicBoxes",
			Hosts: []string{"rdapserver.net"},
		},
		{
			Name:     "Tucows",
			Hosts:    []string{"rdap.tucows.com", "rdap.ascio.com"},
			Suffixes: []string{".rdap.tucows.com"},
			Domains:  []string{"tucows.com"},
		},
		{
			Name:    "RRPProxy/CentralNic",
			Hosts:   []string{"rdap.rrpproxy.net"},
			Domains: []string{"rrpproxy.net", "centralnic.com", "centralnic.net", "key-systems.net"},
		},
	}
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}

// ExactHostMatcher matches hostnames listed verbatim in the gateway table.
type ExactHostMatcher struct {
	hosts map[string]string
}

// NewExactHostMatcher indexes the Hosts of each gateway. Earlier gateways
// win when a host is listed twice.
func NewExactHostMatcher(gateways []Gateway) *ExactHostMatcher {
	m := &ExactHostMatcher{hosts: make(map[string]string)}
	for _, g := range gateways {
		for _, h := range g.Hosts {
			h = normalizeHost(h)
			if _, exists := m.hosts[h]; !exists && h != "" {
				m.hosts[h] = g.Name
			}
		}
	}
	return m
}

func (m *ExactHostMatcher) Name() string { return "exact_host" }

func (m *ExactHostMatcher) Match(t Target) (registrar.Provider, bool) {
	name, ok := m.hosts[t.Host]
	if !ok {
		return registrar.Provider{}, false
	}
	return registrar.Provider{Name: name, Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost}, true
}

type suffixRule struct {
	suffix  string
	gateway string
}

// SuffixMatcher matches hostname suffixes and registrable domains.
// Longer suffixes are tried first.
type SuffixMatcher struct {
	suffixes []suffixRule
	domains  map[string]string
}

// NewSuffixMatcher indexes the Suffixes and Domains of each gateway.
func NewSuffixMatcher(gateways []Gateway) *SuffixMatcher {
	m := &SuffixMatcher{domains: make(map[string]string)}
	for _, g := range gateways {
		for _, s := range g.Suffixes {
			s = normalizeHost(s)
			if s == "" {
				continue
			}
			if !strings.HasPrefix(s, ".") {
				s = "." + s
			}
			m.suffixes = append(m.suffixes, suffixRule{suffix: s, gateway: g.Name})
		}
		for _, d := range g.Domains {
			d = normalizeHost(d)
			if _, exists := m.domains[d]; !exists && d != "" {
				m.domains[d] = g.Name
			}
		}
	}
	sort.SliceStable(m.suffixes, func(i, j int) bool {
		return len(m.suffixes[i].suffix) > len(m.suffixes[j].suffix)
	})
	return m
}

func (m *SuffixMatcher) Name() string { return "host_suffix" }

func (m *SuffixMatcher) Match(t Target) (registrar.Provider, bool) {
	if t.Host == "" {
		return registrar.Provider{}, false
	}
	for _, r := range m.suffixes {
		if strings.HasSuffix(t.Host, r.suffix) {
			return registrar.Provider{Name: r.gateway, Kind: registrar.KindGateway, Reason: registrar.ReasonHostSuffix}, true
		}
	}
	if name, ok := m.domains[t.Domain]; ok {
		return registrar.Provider{Name: name, Kind: registrar.KindGateway, Reason: registrar.ReasonHostSuffix}, true
	}
	return registrar.Provider{}, false
}
