// Package cookiestore is a thread-safe in-memory store of HTTP cookies keyed
// by cookie identity (name, domain, path).
//
// Adding a cookie replaces any existing cookie with the same identity; expired
// cookies are dropped at insertion time and can be swept on demand. A store
// can be saved to and restored from a SQLite snapshot file, optionally with
// cookie values encrypted at rest, and snapshots can be addressed by name
// through a profiles.ini registry. Parsing cookies from headers, matching them
// against requests, and wire serialization are left to callers.
package cookiestore
