// Package resolver determines the active browser tab and the hostname its
// cookies should be read for.
package resolver

import (
	"net/url"
	"strings"
)

// Hostname extracts the lowercase hostname of a web page URL. Anything that is
// not an http(s) URL with a host yields "", including internal pages such as
// chrome://newtab or about:blank and strings that fail to parse.
func Hostname(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ""
	}

	return strings.ToLower(u.Hostname())
}
