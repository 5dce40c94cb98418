package cookiestore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	snapshotCryptoPrefix  = "v01"
	snapshotKDFSalt       = "cookiestore.snapshot"
	snapshotKDFIterations = 4096
	snapshotKeyLen        = 32
	snapshotNonceLen      = 12
)

func deriveSnapshotKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte(snapshotKDFSalt), snapshotKDFIterations, snapshotKeyLen, sha256.New)
}

// sealValue encrypts a cookie value for storage: "v01" || nonce ||
// ciphertext-and-tag, AES-256-GCM.
func sealValue(key []byte, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, snapshotNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(snapshotCryptoPrefix)+snapshotNonceLen+len(plaintext)+aesgcm.Overhead())
	out = append(out, snapshotCryptoPrefix...)
	out = append(out, nonce...)
	return aesgcm.Seal(out, nonce, plaintext, nil), nil
}

// openValue decrypts a value produced by sealValue.
func openValue(key []byte, sealed []byte) ([]byte, error) {
	if len(sealed) < len(snapshotCryptoPrefix)+snapshotNonceLen+16 {
		return nil, errors.New("sealed value too short")
	}
	if !hasCryptoPrefix(sealed) {
		return nil, errors.New("missing v## prefix")
	}
	if string(sealed[:3]) != snapshotCryptoPrefix {
		return nil, fmt.Errorf("unsupported value version %q", sealed[:3])
	}

	payload := sealed[3:]
	nonce := payload[:snapshotNonceLen]
	ciphertextAndTag := payload[snapshotNonceLen:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertextAndTag, nil)
}

func hasCryptoPrefix(b []byte) bool {
	if len(b) < 3 {
		return false
	}
	if b[0] != 'v' {
		return false
	}
	return isDigit(b[1]) && isDigit(b[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
