package cookiestore

import "strings"

// compareIdentity is a total order over cookies based on identity fields only
// (name, then domain, then path). Value and expiry never participate, so two
// cookies that differ only in those compare equal.
func compareIdentity(a, b Cookie) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := strings.Compare(normalizeDomain(a.Domain), normalizeDomain(b.Domain)); c != 0 {
		return c
	}
	return strings.Compare(normalizePath(a.Path), normalizePath(b.Path))
}

func identityKey(c Cookie) string {
	return c.Name + "\x00" + normalizeDomain(c.Domain) + "\x00" + normalizePath(c.Path)
}

func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, ".")
	return strings.ToLower(domain)
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path[0] != '/' {
		return "/"
	}
	return path
}
