package websocket

import (
	"net/url"
	"path"
	"strings"
)

// AllowList accepts origins whose host matches one of its patterns. Patterns
// use path.Match syntax against the origin host ("*.example.com") or may be
// a full origin ("https://example.com").
type AllowList []string

// IsAllowedOrigin implements OriginValidator.
func (a AllowList) IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	for _, pattern := range a {
		if strings.Contains(pattern, "://") {
			if strings.EqualFold(strings.TrimSuffix(pattern, "/"), origin) {
				return true
			}
			continue
		}
		if ok, _ := path.Match(strings.ToLower(pattern), strings.ToLower(u.Host)); ok {
			return true
		}
	}
	return false
}

// sameHost reports whether origin points at host, the request's own Host.
func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, host)
}
