package cookiestore

import (
	"fmt"
	"io"
	"os"
)

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// copyFile copies src to dst with snapshot-private permissions; snapshots may
// hold cookie values, so the copy is never group- or world-readable.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cookiestore: open snapshot source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("cookiestore: create snapshot copy: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// copySidecar copies a WAL or SHM sidecar when one is present. A missing
// sidecar is the common case and not an error.
func copySidecar(src, dst string) error {
	if !fileExists(src) {
		return nil
	}
	return copyFile(src, dst)
}
