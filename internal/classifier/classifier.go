// Package classifier maps a registrar's RDAP base URL to the provider that
// operates it.
//
// Classification runs an ordered list of matchers; the first match wins.
// Anything left unmatched becomes a gateway candidate named after its
// registrable domain, so unrecognized shared hosts stay visible without
// being reported as confirmed gateways.
package classifier

import (
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

// Target is the input a matcher sees for one record.
type Target struct {
	URL           string
	Host          string
	Domain        string
	RegistrarName string
}

// NewTarget parses rawURL once so matchers don't repeat the work.
func NewTarget(rawURL, registrarName string) Target {
	host := ParseHost(rawURL)
	return Target{
		URL:           rawURL,
		Host:          host,
		Domain:        RegistrableDomain(host),
		RegistrarName: registrarName,
	}
}

// Matcher is one classification rule.
type Matcher interface {
	Name() string
	Match(t Target) (registrar.Provider, bool)
}

// Classifier applies matchers in order.
type Classifier struct {
	matchers []Matcher
}

// New creates a classifier from an explicit matcher chain.
func New(matchers ...Matcher) *Classifier {
	return &Classifier{matchers: matchers}
}

// Default builds the standard chain over the built-in gateway table plus
// any extra gateways: exact host, then suffix/domain, then the self-hosted
// name heuristic.
func Default(extra ...Gateway) *Classifier {
	gateways := append(BuiltinGateways(), extra...)
	return New(
		NewExactHostMatcher(gateways),
		NewSuffixMatcher(gateways),
		SelfHostedMatcher{},
	)
}

// Matchers returns the names of the configured matchers in order.
func (c *Classifier) Matchers() []string {
	names := make([]string, len(c.matchers))
	for i, m := range c.matchers {
		names[i] = m.Name()
	}
	return names
}

// Classify returns the provider for an RDAP URL and registrar name.
func (c *Classifier) Classify(rawURL, registrarName string) registrar.Provider {
	t := NewTarget(rawURL, registrarName)
	for _, m := range c.matchers {
		if p, ok := m.Match(t); ok {
			return p
		}
	}
	return candidate(t)
}

func candidate(t Target) registrar.Provider {
	name := t.Domain
	if name == "" {
		name = registrar.NoHostName
	}
	return registrar.Provider{Name: name, Kind: registrar.KindCandidate, Reason: registrar.ReasonUnrecognized}
}

// ClassifyAll returns copies of records with Provider set.
func (c *Classifier) ClassifyAll(records []registrar.Record) []registrar.Record {
	out := make([]registrar.Record, len(records))
	counts := make(map[registrar.Kind]int, 3)
	for i, r := range records {
		r.Provider = c.Classify(r.RDAPURL, r.Name)
		counts[r.Provider.Kind]++
		out[i] = r
	}
	log.Info(log.CatClassify, "records classified",
		"total", len(out),
		"gateway", counts[registrar.KindGateway],
		"candidate", counts[registrar.KindCandidate],
		"self_hosted", counts[registrar.KindSelfHosted])
	return out
}
