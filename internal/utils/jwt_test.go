package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSignedToken(t *testing.T) {
	tok, err := GenerateToken("u1", "u1@example.com", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.User())
	assert.Equal(t, "u1@example.com", claims.Email)

	_, err = ValidateToken(tok, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidateRejectsExpiredAndMalformed(t *testing.T) {
	expired, err := GenerateToken("u2", "", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ValidateToken("not-a-token", "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u3"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(none, "secret")
	assert.Error(t, err)
}

func TestUserIDClaimWins(t *testing.T) {
	claims := &Claims{UserID: "from-claim", RegisteredClaims: jwt.RegisteredClaims{Subject: "from-sub"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	got, err := ValidateToken(tok, "s")
	require.NoError(t, err)
	assert.Equal(t, "from-claim", got.User())

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("s"))
	require.NoError(t, err)
	_, err = ValidateToken(noSub, "s")
	assert.ErrorIs(t, err, ErrNoSubject)
}
