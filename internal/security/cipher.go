// Package security holds the storage cipher and password hashing.
//
// The storage key is compiled into the binary. Anyone holding the binary can
// derive it, so encryption at rest only keeps casual readers of the data file
// out; it is obfuscation, not confidentiality. The key cannot be rotated:
// blobs written under a different key read back as absent.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"

	"golang.org/x/crypto/nacl/secretbox"
)

// Fixed key phrase for the at-rest cipher.
const storageKeyPhrase = "go-pos-vault-secure-storage-key-v1"

const nonceSize = 24

// Codec seals JSON-serialisable values with NaCl secretbox.
// Output is base64(nonce || box); a fresh nonce is drawn per call.
type Codec struct {
	key    [32]byte
	logger *slog.Logger
}

// NewCodec returns a Codec keyed with the compiled-in storage key.
func NewCodec(logger *slog.Logger) *Codec {
	return newCodec(storageKeyPhrase, logger)
}

func newCodec(phrase string, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{key: sha256.Sum256([]byte(phrase)), logger: logger}
}

// Encrypt serialises value and seals it. It returns "" when the value cannot be
// serialised; the failure is logged, never returned.
func (c *Codec) Encrypt(value any) string {
	plaintext, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("encryption failed", "error", err)
		return ""
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		c.logger.Error("encryption failed: nonce", "error", err)
		return ""
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed)
}

// Decrypt opens ciphertext and decodes the JSON payload into out.
// It reports false for empty, malformed, tampered or foreign-key input.
func (c *Codec) Decrypt(ciphertext string, out any) bool {
	if ciphertext == "" {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		c.logger.Debug("decryption failed: malformed ciphertext")
		return false
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &c.key)
	if !ok {
		c.logger.Debug("decryption failed: authentication")
		return false
	}

	if err := json.Unmarshal(plaintext, out); err != nil {
		c.logger.Debug("decryption failed: payload", "error", err)
		return false
	}
	return true
}
