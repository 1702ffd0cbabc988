package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-vault/internal/models"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	token, err := tokens.GenerateToken(models.Session{UserID: 3, Username: "budi", Role: models.RoleCashier})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
	assert.Equal(t, "budi", claims.Username)
	assert.Equal(t, models.RoleCashier, claims.Role)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	token, err := tokens.GenerateToken(models.Session{UserID: 1, Role: models.RoleOwner})
	require.NoError(t, err)

	_, err = NewTokens("other-secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = tokens.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
