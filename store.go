package cookiestore

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Store is a concurrent in-memory cookie store. The zero value is ready to
// use; all methods are safe for concurrent callers.
//
// The store holds at most one cookie per identity, kept in identity-sort
// order. A single reader-writer lock guards the container: mutators take the
// write lock, observers the read lock, and no method performs I/O or calls
// another locking method while holding it.
type Store struct {
	mu      sync.RWMutex
	cookies []Cookie // identity-sorted, one cookie per identity
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// AddCookie adds a cookie, replacing any existing cookie with the same
// identity. If the cookie is already expired it is not added, but an existing
// equivalent cookie is still removed. A nil cookie is a no-op.
func (s *Store) AddCookie(c *Cookie) {
	if c == nil {
		return
	}
	s.addCookieAt(*c, time.Now())
}

func (s *Store) addCookieAt(c Cookie, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := slices.BinarySearchFunc(s.cookies, c, compareIdentity)
	switch {
	case found && c.Expired(now):
		s.cookies = slices.Delete(s.cookies, i, i+1)
	case found:
		s.cookies[i] = c
	case !c.Expired(now):
		s.cookies = slices.Insert(s.cookies, i, c)
	}
}

// AddCookies adds cookies individually, in slice order, with AddCookie
// semantics per element. The batch is not atomic: concurrent readers may
// observe states between individual additions. Nil slices and nil elements
// are no-ops.
func (s *Store) AddCookies(cookies []*Cookie) {
	for _, c := range cookies {
		s.AddCookie(c)
	}
}

// Clear removes all cookies.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = nil
}

// ClearExpired removes every cookie that is expired as of at and reports
// whether any cookie was removed. A zero instant is a no-op and returns
// false.
func (s *Store) ClearExpired(at time.Time) bool {
	if at.IsZero() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.cookies)
	s.cookies = slices.DeleteFunc(s.cookies, func(c Cookie) bool {
		return c.Expired(at)
	})
	return len(s.cookies) < before
}

// ClearExpiredUnix is ClearExpired with the instant given as unix seconds,
// the granularity cookie databases store expiry at. Non-positive values are
// a no-op and return false.
func (s *Store) ClearExpiredUnix(sec int64) bool {
	if sec <= 0 {
		return false
	}
	return s.ClearExpired(time.Unix(sec, 0).UTC())
}

// Cookies returns a snapshot of all stored cookies in identity-sort order.
// The returned slice is newly allocated and unaffected by later mutation of
// the store.
func (s *Store) Cookies() []Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cookies)
}

// Len returns the number of stored cookies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cookies)
}

// String renders the current cookies in identity-sort order, for debugging.
func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteByte('[')
	for i, c := range s.cookies {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s; domain=%s; path=%s", c.Name, c.Value, normalizeDomain(c.Domain), normalizePath(c.Path))
	}
	b.WriteByte(']')
	return b.String()
}
