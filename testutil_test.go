package cookiestore

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func timePtr(t time.Time) *time.Time { return &t }

func testCookie(name, domain, path, value string, expires *time.Time) *Cookie {
	return &Cookie{
		Name:    name,
		Value:   value,
		Domain:  domain,
		Path:    path,
		Expires: expires,
	}
}

func cookieNames(cookies []Cookie) []string {
	out := make([]string, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, c.Name)
	}
	return out
}

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
