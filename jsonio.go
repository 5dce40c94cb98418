package cookiestore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"time"
)

type jsonPayload struct {
	Cookies []jsonCookie `json:"cookies"`
}

type jsonCookie struct {
	Name     string      `json:"name"`
	Value    string      `json:"value"`
	Domain   string      `json:"domain"`
	Path     string      `json:"path"`
	Secure   bool        `json:"secure"`
	HTTPOnly bool        `json:"httpOnly"`
	SameSite string      `json:"sameSite"`
	Expires  interface{} `json:"expires,omitempty"`
}

// ImportJSON parses a JSON cookie payload and adds its cookies to the store
// with AddCookies semantics (per element, no batch atomicity). Both a bare
// `[...]` array and a `{"cookies": [...]}` wrapper are accepted; expires may
// be unix seconds or an RFC 3339 string. Returns the number of cookies parsed
// (cookies without a name are skipped).
func (s *Store) ImportJSON(data []byte) (int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0, errors.New("cookiestore: empty JSON payload")
	}

	var raw []jsonCookie
	if data[0] == '{' {
		var payload jsonPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return 0, err
		}
		raw = payload.Cookies
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return 0, err
	}

	cookies := make([]*Cookie, 0, len(raw))
	for _, jc := range raw {
		if jc.Name == "" {
			continue
		}
		c := &Cookie{
			Name:     jc.Name,
			Value:    jc.Value,
			Domain:   jc.Domain,
			Path:     jc.Path,
			Secure:   jc.Secure,
			HTTPOnly: jc.HTTPOnly,
			SameSite: normalizeSameSite(jc.SameSite),
			Expires:  parseExpires(jc.Expires),
		}
		cookies = append(cookies, c)
	}

	s.AddCookies(cookies)
	return len(cookies), nil
}

// ImportJSONBase64 is ImportJSON for a base64-encoded payload.
func (s *Store) ImportJSONBase64(encoded string) (int, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, err
	}
	return s.ImportJSON(data)
}

// ImportJSONFile is ImportJSON for a payload read from a file.
func (s *Store) ImportJSONFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return s.ImportJSON(data)
}

// ExportJSON renders the current cookie set as a `{"cookies": [...]}` payload
// with RFC 3339 expiry strings, in identity-sort order. The payload round-trips
// through ImportJSON.
func (s *Store) ExportJSON() ([]byte, error) {
	cookies := s.Cookies()

	out := jsonPayload{Cookies: make([]jsonCookie, 0, len(cookies))}
	for _, c := range cookies {
		jc := jsonCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: string(c.SameSite),
		}
		if c.Expires != nil {
			jc.Expires = c.Expires.UTC().Format(time.RFC3339)
		}
		out.Cookies = append(out.Cookies, jc)
	}
	return json.MarshalIndent(out, "", "  ")
}
