package cookiestore

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "Cookiestore Safe Storage"
	keyringAccount = "cookiestore"

	envPassword = "COOKIESTORE_PASSWORD"
)

// KeyringPassword resolves the snapshot encryption password. The
// COOKIESTORE_PASSWORD environment variable wins (escape hatch for
// deterministic tooling/CI), then the OS keyring; on first use a random
// password is generated and stored in the keyring.
func KeyringPassword() (string, error) {
	if override := strings.TrimSpace(os.Getenv(envPassword)); override != "" {
		return override, nil
	}

	pw, err := keyring.Get(keyringService, keyringAccount)
	if err == nil && strings.TrimSpace(pw) != "" {
		return strings.TrimSpace(pw), nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("cookiestore: keyring read: %w", err)
	}

	pw, err = newRandomPassword()
	if err != nil {
		return "", err
	}
	if err := keyring.Set(keyringService, keyringAccount, pw); err != nil {
		return "", fmt.Errorf("cookiestore: keyring write: %w", err)
	}
	return pw, nil
}

func newRandomPassword() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(raw), nil
}
