package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// Digest returns the hex SHA-256 of secret. Older installs stored passwords this way.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// HashPassword hashes a password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a password against a bcrypt hash or a legacy digest.
func CheckPassword(hash, password string) bool {
	if IsLegacyDigest(hash) {
		return subtle.ConstantTimeCompare([]byte(hash), []byte(Digest(password))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsLegacyDigest reports whether hash is a 64-char hex SHA-256 digest rather than bcrypt.
func IsLegacyDigest(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
