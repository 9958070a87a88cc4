package utils

import (
	"net/url"
	"strings"
)

// SafeRedirectPath returns next when it is a same-site relative path and
// fallback otherwise. Absolute URLs, scheme-relative "//host" and
// backslash tricks are rejected.
func SafeRedirectPath(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}
	if strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
