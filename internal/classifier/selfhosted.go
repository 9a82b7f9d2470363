package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

// minLabelLen keeps very short labels ("co", "ns") from matching everything.
const minLabelLen = 3

// legalSuffixes are company-form tokens dropped from registrar names.
var legalSuffixes = map[string]bool{
	"llc": true, "inc": true, "ltd": true, "limited": true, "corp": true,
	"corporation": true, "gmbh": true, "ag": true, "sa": true, "sas": true,
	"sarl": true, "srl": true, "sl": true, "bv": true, "nv": true,
	"pty": true, "plc": true, "llp": true, "lp": true, "pvt": true,
	"sdn": true, "bhd": true, "as": true, "ab": true, "oy": true,
	"kk": true, "co": true, "company": true, "spa": true,
}

// NormalizeName folds a registrar name for comparison with a hostname label:
// diacritics stripped, lowercased, legal suffixes dropped, and only letters
// and digits kept. "Ascio Technologies, Inc." -> "asciotechnologies".
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	var b strings.Builder
	for _, w := range words {
		alnum := keepAlnum(w)
		if alnum == "" || legalSuffixes[alnum] {
			continue
		}
		b.WriteString(alnum)
	}
	return b.String()
}

func keepAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SelfHostedMatcher guesses that a registrar runs its own RDAP service when
// the registrable domain of its RDAP host resembles its name. The match is
// inferred and carries ReasonNameHeuristic.
type SelfHostedMatcher struct{}

func (SelfHostedMatcher) Name() string { return "self_hosted" }

func (SelfHostedMatcher) Match(t Target) (registrar.Provider, bool) {
	if selfHosted(t.RegistrarName, t.Domain) {
		return registrar.SelfHosted(registrar.ReasonNameHeuristic), true
	}
	return registrar.Provider{}, false
}

func selfHosted(name, domain string) bool {
	label := keepAlnum(firstLabel(domain))
	if len(label) < minLabelLen {
		return false
	}
	n := NormalizeName(name)
	if len(n) < minLabelLen {
		return false
	}
	return strings.Contains(n, label) || strings.Contains(label, n)
}
