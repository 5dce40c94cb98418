package cookiestore

import "time"

// SameSite is the cookie SameSite attribute.
type SameSite string

const (
	// SameSiteNone is SameSite=None.
	SameSiteNone SameSite = "None"
	// SameSiteLax is SameSite=Lax.
	SameSiteLax SameSite = "Lax"
	// SameSiteStrict is SameSite=Strict.
	SameSiteStrict SameSite = "Strict"
)

// Cookie is a single HTTP cookie record.
//
// Two cookies with the same Name, Domain, and Path are the same cookie for
// storage purposes, regardless of value or expiry.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite SameSite

	// Expires is the expiry instant, or nil for a session cookie that
	// never expires on its own.
	Expires *time.Time
}

// Expired reports whether the cookie is expired as of at. Session cookies
// (nil Expires) never expire.
func (c Cookie) Expired(at time.Time) bool {
	return c.Expires != nil && !c.Expires.After(at)
}
