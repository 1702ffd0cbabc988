package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-pos-vault/internal/models"
)

// ErrInvalidToken covers every way a bearer token can be rejected.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines what is inside the token (The "ID Card")
type Claims struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and checks the API's bearer tokens.
type Tokens struct {
	key []byte
	ttl time.Duration
}

// NewTokens returns a signer using an HMAC secret and token lifetime.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{key: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed JWT for a logged-in session
func (t *Tokens) GenerateToken(s models.Session) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   s.UserID,
		Username: s.Username,
		Role:     s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// ValidateToken checks if a token is fake or expired
func (t *Tokens) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
