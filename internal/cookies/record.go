// Package cookies holds the cookie record model, the fetch/normalize step and
// the search/filter engine used by the popup.
package cookies

import (
	"strings"

	"github.com/chromedp/cdproto/network"
)

// Record is the normalized projection of a browser cookie.
type Record struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// Pair returns the cookie in "name=value" form.
func (r Record) Pair() string {
	return r.Name + "=" + r.Value
}

// FromNetwork projects a CDP cookie onto a Record, dropping path, expiry and flags.
func FromNetwork(c *network.Cookie) Record {
	return Record{
		Name:   c.Name,
		Value:  c.Value,
		Domain: c.Domain,
	}
}

// Normalize projects a list of CDP cookies, skipping nil entries and keeping order.
func Normalize(raw []*network.Cookie) []Record {
	records := make([]Record, 0, len(raw))
	for _, c := range raw {
		if c == nil {
			continue
		}
		records = append(records, FromNetwork(c))
	}
	return records
}

// MatchesHost reports whether a cookie scoped to domain is sent to host.
// Chrome reports host-only cookies without a leading dot; those match host
// exactly. Domain cookies (".example.com") also match every subdomain.
func MatchesHost(host, domain string) bool {
	host = normalizeHost(host)
	hostOnly := !strings.HasPrefix(strings.TrimSpace(domain), ".")
	domain = normalizeHost(domain)
	if host == "" || domain == "" {
		return false
	}
	if host == domain {
		return true
	}
	return !hostOnly && strings.HasSuffix(host, "."+domain)
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, ".")
	return strings.ToLower(host)
}
