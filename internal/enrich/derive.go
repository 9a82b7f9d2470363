package enrich

import (
	"regexp"
	"strings"

	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

// DerivedConfidence is the confidence recorded for name-pattern websites.
const DerivedConfidence = "medium"

var (
	embeddedDomain = regexp.MustCompile(`(?i)([a-z0-9\-]+\.(?:com|net|org|io|co|ca|uk|au|in|ua|eu|asia|biz|info|tv|me))\b`)
	dbaName        = regexp.MustCompile(`(?i)d/b/a\s+([^,]+)`)
	dbaTrailing    = regexp.MustCompile(`(?i)\s*(communications?|registrars?|domains?|internet|online|services?|solutions?|technology|tech)\s*$`)
	legalStem      = regexp.MustCompile(`(?i)^(.*?)\s*\b(LLC|Inc\.?|Ltd\.?|S\.?A\.?|Pvt\.?|Sdn\.?\s*Bhd\.?|Corporation|Corp\.?|Limited|GmbH|AS|SRL|S\.?L\.?|B\.?V\.?|AG|Pty\.?|PLC|LLP|LP)\b`)
	commonWords    = regexp.MustCompile(`(?i)\b(the|domain|registrar|registry|internet|web|online|digital|tech|technology|solutions?|services?|software|company)\b`)
	nonAlnum       = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// WebsiteFromName guesses a website from a registrar name. It tries, in
// order, a domain embedded in the name ("Sav.com, LLC"), a d/b/a trade name,
// and the company stem before a legal suffix. Returns "" when nothing fits.
func WebsiteFromName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if m := embeddedDomain.FindStringSubmatch(name); m != nil {
		return "https://www." + strings.ToLower(m[1])
	}

	if m := dbaName.FindStringSubmatch(name); m != nil {
		trade := dbaTrailing.ReplaceAllString(strings.TrimSpace(m[1]), "")
		if stem := strings.ToLower(nonAlnum.ReplaceAllString(trade, "")); stem != "" {
			return "https://www." + stem + ".com"
		}
	}

	if m := legalStem.FindStringSubmatch(name); m != nil {
		stem := commonWords.ReplaceAllString(m[1], "")
		stem = strings.ToLower(nonAlnum.ReplaceAllString(stem, ""))
		if len(stem) > 2 {
			return "https://www." + stem + ".com"
		}
	}
	return ""
}

// DeriveWebsites fills missing websites from registrar names. Records that
// already have a website are left alone. Returns the new slice and the
// number of records filled.
func DeriveWebsites(records []registrar.Record) ([]registrar.Record, int) {
	out := make([]registrar.Record, len(records))
	n := 0
	for i, r := range records {
		if r.Website == "" {
			if site := WebsiteFromName(r.Name); site != "" {
				r.Website = site
				r.WebsiteSource = registrar.WebsiteSourceNamePattern
				r.WebsiteConfidence = DerivedConfidence
				n++
			}
		}
		out[i] = r
	}
	log.Debug(log.CatEnrich, "websites derived from names", "filled", n)
	return out, n
}
