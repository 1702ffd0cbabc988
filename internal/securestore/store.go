// Package securestore encrypts values on their way into the backing and
// decrypts them on the way out.
//
// Reads never fail: an absent key and an unreadable blob (corrupt, legacy
// plaintext, or sealed under another key) both yield the caller's default.
// Unreadable blobs are logged and counted so they can be noticed, but the
// caller cannot tell the two cases apart.
package securestore

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"go-pos-vault/internal/database"
	"go-pos-vault/internal/security"
)

// Persisted keys.
const (
	KeyUsers        = "pos_users"
	KeySession      = "pos_session"
	KeyProducts     = "pos_products"
	KeyTransactions = "pos_transactions"
	KeyCustomers    = "pos_customers"
	KeyCategories   = "pos_categories"
	KeySettings     = "pos_settings"
	KeyAuditLogs    = "pos_audit_logs"
)

// legacyKeys maps each key to the plaintext key older installs wrote.
var legacyKeys = map[string]string{
	KeyUsers:        "db_users",
	KeySession:      "active_user",
	KeyProducts:     "db_products",
	KeyTransactions: "db_transactions",
	KeyCustomers:    "db_customers",
	KeyCategories:   "db_categories",
	KeySettings:     "db_settings",
}

// Store is the only component that touches the backing.
type Store struct {
	backing         database.Backing
	codec           *security.Codec
	logger          *slog.Logger
	decryptFailures atomic.Int64
}

// New composes a Store.
func New(backing database.Backing, codec *security.Codec, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backing: backing, codec: codec, logger: logger}
}

// Read returns the value stored under key, or def when it is absent or unreadable.
func Read[T any](s *Store, key string, def T) T {
	raw, err := s.backing.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return def
	}
	if err != nil {
		s.logger.Error("secure store read failed", "key", key, "error", err)
		return def
	}

	var value T
	if !s.codec.Decrypt(string(raw), &value) {
		s.decryptFailures.Add(1)
		s.logger.Warn("secure store: unreadable value, using default", "key", key)
		return def
	}
	return value
}

// Write encrypts value and stores it under key, replacing any previous blob.
// Once the write lands, the key's legacy plaintext twin is removed.
func (s *Store) Write(key string, value any) error {
	ciphertext := s.codec.Encrypt(value)
	if ciphertext == "" {
		return fmt.Errorf("securestore: encrypt %s", key)
	}
	if err := s.backing.Put(key, []byte(ciphertext)); err != nil {
		return fmt.Errorf("securestore: write %s: %w", key, err)
	}

	if legacy, ok := legacyKeys[key]; ok {
		if err := s.backing.Delete(legacy); err != nil {
			s.logger.Warn("secure store: legacy key not removed", "key", legacy, "error", err)
		}
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(key string) error {
	if err := s.backing.Delete(key); err != nil {
		return fmt.Errorf("securestore: delete %s: %w", key, err)
	}
	return nil
}

// Clear removes every key, legacy ones included.
func (s *Store) Clear() error {
	if err := s.backing.Clear(); err != nil {
		return fmt.Errorf("securestore: clear: %w", err)
	}
	return nil
}

// DecryptFailures counts reads that fell back to the default because the blob
// could not be decrypted.
func (s *Store) DecryptFailures() int64 {
	return s.decryptFailures.Load()
}
