package classifier

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ParseHost extracts the lowercase hostname from an RDAP base URL. The scheme
// is optional; port and trailing dot are dropped. Returns "" when no host can
// be found.
func ParseHost(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" || strings.ContainsAny(host, " \t") {
		return ""
	}
	return host
}

// RegistrableDomain returns the eTLD+1 of host ("rdap.tucows.com" ->
// "tucows.com"). IP addresses and bare suffixes are returned unchanged.
func RegistrableDomain(host string) string {
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// firstLabel returns the leftmost label of a domain.
func firstLabel(domain string) string {
	if i := strings.IndexByte(domain, '.'); i >= 0 {
		return domain[:i]
	}
	return domain
}
