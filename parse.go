package cookiestore

import (
	"strconv"
	"strings"
	"time"
)

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// parseExpires accepts the expiry encodings seen in exported cookie payloads:
// unix seconds as a JSON number, or an RFC 3339 string. Anything else is a
// session cookie.
func parseExpires(v interface{}) *time.Time {
	switch vv := v.(type) {
	case nil:
		return nil
	case float64:
		// JSON numbers come through as float64.
		sec := int64(vv)
		if sec <= 0 {
			return nil
		}
		t := time.Unix(sec, 0).UTC()
		return &t
	case string:
		if vv == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, vv); err == nil {
			tt := t.UTC()
			return &tt
		}
		return nil
	default:
		return nil
	}
}

func normalizeSameSite(v string) SameSite {
	switch v {
	case "Strict", "strict":
		return SameSiteStrict
	case "Lax", "lax":
		return SameSiteLax
	case "None", "none", "NoRestriction", "no_restriction":
		return SameSiteNone
	default:
		return ""
	}
}
