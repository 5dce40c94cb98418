package cookiestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go).
)

// ErrPasswordRequired is returned by LoadSnapshot when the snapshot holds
// encrypted values and no password was given.
var ErrPasswordRequired = errors.New("cookiestore: snapshot is encrypted (password required)")

const snapshotFormatVersion = 1

// SnapshotOptions configures snapshot save and load.
type SnapshotOptions struct {
	// Password, when non-empty, encrypts cookie values at rest on save and
	// decrypts them on load. See KeyringPassword for a managed source.
	Password string
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cookies (
	host_key TEXT NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	value BLOB NOT NULL,
	expires_unix INTEGER NOT NULL,
	is_secure INTEGER NOT NULL,
	is_httponly INTEGER NOT NULL,
	samesite TEXT NOT NULL,
	PRIMARY KEY (name, host_key, path)
);
`

// SaveSnapshot writes the current cookie set to a SQLite file at path,
// replacing any existing file. Only the cookie set is persisted; the store's
// lock is never part of a snapshot. The member set is captured up front so no
// I/O happens while the lock is held.
func (s *Store) SaveSnapshot(ctx context.Context, path string, opts SnapshotOptions) error {
	cookies := s.Cookies()

	var key []byte
	if opts.Password != "" {
		key = deriveSnapshotKey(opts.Password)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cookiestore-snapshot-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(tmpPath)+"?mode=rwc")
	if err != nil {
		return err
	}
	if err := writeSnapshot(ctx, db, cookies, key); err != nil {
		_ = db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func writeSnapshot(ctx context.Context, db *sql.DB, cookies []Cookie, key []byte) error {
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", snapshotFormatVersion),
	); err != nil {
		return err
	}

	insert, err := tx.PrepareContext(ctx, strings.Join([]string{
		`INSERT OR REPLACE INTO cookies`,
		`(host_key, name, path, value, expires_unix, is_secure, is_httponly, samesite)`,
		`VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	}, " "))
	if err != nil {
		return err
	}
	defer func() { _ = insert.Close() }()

	for _, c := range cookies {
		value := []byte(c.Value)
		if key != nil {
			value, err = sealValue(key, value)
			if err != nil {
				return err
			}
		}
		var expires int64
		if c.Expires != nil {
			expires = c.Expires.Unix()
		}
		if _, err := insert.ExecContext(ctx,
			c.Domain, c.Name, c.Path, value, expires,
			boolToInt(c.Secure), boolToInt(c.HTTPOnly), string(c.SameSite),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadSnapshot reads a snapshot file and returns a new Store holding its
// cookies. The returned store is freshly constructed, so its lock is always
// new: restoring never resurrects synchronization state. Rows whose values
// cannot be decoded are skipped with a warning.
func LoadSnapshot(ctx context.Context, path string, opts SnapshotOptions) (*Store, []string, error) {
	snap, cleanup, warnings, err := openSnapshotReadOnly(ctx, path)
	if err != nil {
		return nil, warnings, err
	}
	defer cleanup()

	db, err := openSnapshotDB(ctx, snap)
	if err != nil {
		return nil, warnings, err
	}
	defer func() { _ = db.Close() }()

	if v := snapshotMetaVersion(ctx, db); v > snapshotFormatVersion {
		warnings = append(warnings, fmt.Sprintf("cookiestore: snapshot format version %d is newer than supported version %d", v, snapshotFormatVersion))
	}

	rows, err := readSnapshotRows(ctx, db)
	if err != nil {
		return nil, warnings, err
	}

	var key []byte
	if opts.Password != "" {
		key = deriveSnapshotKey(opts.Password)
	}

	merged := make(map[string]struct{}, len(rows))
	cookies := make([]Cookie, 0, len(rows))
	for _, r := range rows {
		value := r.value
		if hasCryptoPrefix(value) {
			if key == nil {
				return nil, warnings, ErrPasswordRequired
			}
			plain, err := openValue(key, value)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("cookiestore: failed to decrypt value for cookie %q: %v", r.name, err))
				continue
			}
			value = plain
		}

		c := Cookie{
			Name:     r.name,
			Value:    string(value),
			Domain:   r.hostKey,
			Path:     r.path,
			Secure:   r.isSecure,
			HTTPOnly: r.isHTTPOnly,
			SameSite: SameSite(r.sameSite),
		}
		if r.expiresUnix > 0 {
			t := time.Unix(r.expiresUnix, 0).UTC()
			c.Expires = &t
		}

		// The table's primary key is the raw column tuple, so rows that
		// normalize to the same identity can coexist on disk; the first
		// row wins, as in any merge of cookie sources.
		key := identityKey(c)
		if _, ok := merged[key]; ok {
			continue
		}
		merged[key] = struct{}{}
		cookies = append(cookies, c)
	}

	slices.SortFunc(cookies, compareIdentity)

	st := New()
	st.cookies = cookies
	return st, warnings, nil
}

type snapshotRow struct {
	hostKey     string
	name        string
	path        string
	value       []byte
	expiresUnix int64
	isSecure    bool
	isHTTPOnly  bool
	sameSite    string
}

// openSnapshotReadOnly copies the snapshot (and any WAL sidecars) into a temp
// directory so the live file is never opened for writing.
func openSnapshotReadOnly(ctx context.Context, dbPath string) (snapshotPath string, cleanup func(), warnings []string, err error) {
	_ = ctx
	dir, err := os.MkdirTemp("", "cookiestore-snapshot-")
	if err != nil {
		return "", nil, nil, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	target := filepath.Join(dir, "cookies.sqlite")
	if err := copyFile(dbPath, target); err != nil {
		warnings = append(warnings, fmt.Sprintf("cookiestore: failed to copy snapshot: %v", err))
		cleanup()
		return "", nil, warnings, err
	}

	// If WAL mode is enabled, recent writes may live in sidecars.
	_ = copySidecar(dbPath+"-wal", target+"-wal")
	_ = copySidecar(dbPath+"-shm", target+"-shm")

	return target, cleanup, warnings, nil
}

func openSnapshotDB(ctx context.Context, snapshotPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(snapshotPath)+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func snapshotMetaVersion(ctx context.Context, db *sql.DB) int64 {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value)
	if err != nil {
		return 0
	}
	v, err := parseInt64(value)
	if err != nil {
		return 0
	}
	return v
}

func readSnapshotRows(ctx context.Context, db *sql.DB) ([]snapshotRow, error) {
	query := strings.Join([]string{
		`SELECT host_key, name, path, value, expires_unix, is_secure, is_httponly, samesite`,
		`FROM cookies`,
		`ORDER BY name, host_key, path`,
	}, " ")

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []snapshotRow
	for rows.Next() {
		var r snapshotRow
		var value []byte
		var expires sql.NullInt64
		var secure sql.NullInt64
		var httpOnly sql.NullInt64
		var sameSite sql.NullString

		if err := rows.Scan(&r.hostKey, &r.name, &r.path, &value, &expires, &secure, &httpOnly, &sameSite); err != nil {
			return nil, err
		}

		r.value = value
		if expires.Valid {
			r.expiresUnix = expires.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.isHTTPOnly = httpOnly.Valid && httpOnly.Int64 == 1
		if sameSite.Valid {
			r.sameSite = sameSite.String
		}

		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
