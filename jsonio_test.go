package cookiestore

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestImportJSON_WrappedPayload(t *testing.T) {
	s := New()
	n, err := s.ImportJSON([]byte(`{
		"cookies": [
			{"name": "sid", "value": "abc", "domain": "example.com", "path": "/", "secure": true, "httpOnly": true, "sameSite": "lax"},
			{"name": "theme", "value": "dark", "domain": "example.com", "path": "/", "expires": 1900000000}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("want 2 parsed, got %d", n)
	}

	got := s.Cookies()
	if len(got) != 2 {
		t.Fatalf("want 2 stored, got %d", len(got))
	}
	if got[0].Name != "sid" || !got[0].Secure || !got[0].HTTPOnly || got[0].SameSite != SameSiteLax {
		t.Fatalf("unexpected cookie: %#v", got[0])
	}
	if got[1].Expires == nil || got[1].Expires.Unix() != 1900000000 {
		t.Fatalf("unexpected expiry: %#v", got[1].Expires)
	}
}

func TestImportJSON_BareArrayAndRFC3339(t *testing.T) {
	s := New()
	n, err := s.ImportJSON([]byte(`[
		{"name": "a", "value": "1", "domain": "example.com", "path": "/", "expires": "2031-01-02T03:04:05Z"},
		{"name": "", "value": "nameless"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("nameless cookies are skipped; want 1, got %d", n)
	}
	got := s.Cookies()
	want := time.Date(2031, 1, 2, 3, 4, 5, 0, time.UTC)
	if got[0].Expires == nil || !got[0].Expires.Equal(want) {
		t.Fatalf("unexpected expiry: %#v", got[0].Expires)
	}
}

func TestImportJSON_EmptyPayloads(t *testing.T) {
	for _, payload := range []string{`{"cookies": []}`, `{}`, `[]`} {
		s := New()
		n, err := s.ImportJSON([]byte(payload))
		if err != nil {
			t.Fatalf("ImportJSON(%q): %v", payload, err)
		}
		if n != 0 || s.Len() != 0 {
			t.Fatalf("ImportJSON(%q): want empty store, got n=%d len=%d", payload, n, s.Len())
		}
	}
}

func TestExportJSON_EmptyStoreRoundTrip(t *testing.T) {
	data, err := New().ExportJSON()
	if err != nil {
		t.Fatal(err)
	}

	restored := New()
	n, err := restored.ImportJSON(data)
	if err != nil {
		t.Fatalf("empty export must import cleanly: %v", err)
	}
	if n != 0 || restored.Len() != 0 {
		t.Fatalf("want empty store, got n=%d len=%d", n, restored.Len())
	}
}

func TestImportJSON_ExpiredCookieNotStored(t *testing.T) {
	s := New()
	n, err := s.ImportJSON([]byte(`[{"name": "old", "value": "x", "domain": "example.com", "path": "/", "expires": 1000}]`))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 parsed, got %d", n)
	}
	if s.Len() != 0 {
		t.Fatalf("expired cookie must not survive the add")
	}
}

func TestImportJSON_BadInput(t *testing.T) {
	s := New()
	if _, err := s.ImportJSON(nil); err == nil {
		t.Fatalf("empty payload must error")
	}
	if _, err := s.ImportJSON([]byte("   ")); err == nil {
		t.Fatalf("blank payload must error")
	}
	if _, err := s.ImportJSON([]byte("{not json")); err == nil {
		t.Fatalf("malformed payload must error")
	}
}

func TestImportJSONBase64(t *testing.T) {
	payload := `[{"name": "b64", "value": "x", "domain": "example.com", "path": "/"}]`
	s := New()
	if _, err := s.ImportJSONBase64(base64.StdEncoding.EncodeToString([]byte(payload))); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("want 1 cookie, got %d", s.Len())
	}
	if _, err := s.ImportJSONBase64("%%%"); err == nil {
		t.Fatalf("bad base64 must error")
	}
}

func TestImportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte(`[{"name": "f", "value": "x", "domain": "example.com", "path": "/"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	s := New()
	if _, err := s.ImportJSONFile(path); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("want 1 cookie, got %d", s.Len())
	}
	if _, err := s.ImportJSONFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file must error")
	}
}

func TestExportJSON_RoundTrip(t *testing.T) {
	s := New()
	s.AddCookie(testCookie("sid", "example.com", "/", "abc", timePtr(time.Now().Add(time.Hour).Truncate(time.Second))))
	s.AddCookie(&Cookie{Name: "pref", Value: "1", Domain: "example.com", Path: "/", Secure: true, SameSite: SameSiteStrict})

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}

	restored := New()
	if _, err := restored.ImportJSON(data); err != nil {
		t.Fatal(err)
	}

	a, b := s.Cookies(), restored.Cookies()
	if len(a) != len(b) {
		t.Fatalf("round trip changed count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Value != b[i].Value || a[i].Secure != b[i].Secure || a[i].SameSite != b[i].SameSite {
			t.Fatalf("round trip changed cookie %d: %#v vs %#v", i, a[i], b[i])
		}
		if (a[i].Expires == nil) != (b[i].Expires == nil) {
			t.Fatalf("round trip changed expiry presence for %q", a[i].Name)
		}
		if a[i].Expires != nil && !a[i].Expires.Equal(*b[i].Expires) {
			t.Fatalf("round trip changed expiry for %q: %v vs %v", a[i].Name, a[i].Expires, b[i].Expires)
		}
	}
}
