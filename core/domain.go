package core

import "strings"

// IsAllowedDomain reports whether domain matches any of the allow-list
// patterns. Three pattern forms are supported:
//
//   - exact:      "app.example.com" matches only itself
//   - "*.suffix": matches any subdomain of suffix, and suffix itself
//   - "prefix:*": matches prefix with any port, and the bare prefix
//
// Matching is case-sensitive: patterns must be configured with the exact
// casing the frontend reports, no normalization is applied.
func IsAllowedDomain(domain string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchDomainPattern(domain, pattern) {
			return true
		}
	}
	return false
}

func matchDomainPattern(domain, pattern string) bool {
	if domain == pattern {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return domain == suffix || strings.HasSuffix(domain, "."+suffix)
	}
	if prefix, ok := strings.CutSuffix(pattern, ":*"); ok {
		return domain == prefix || strings.HasPrefix(domain, prefix+":")
	}
	return false
}
