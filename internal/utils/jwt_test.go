package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	access, err := NewAccessToken("secret", "acc-1", []string{"guest", "host"}, nil, 15)
	require.NoError(t, err)
	require.NotEmpty(t, access.Token)

	claims, err := ParseAccessToken("secret", access.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, []string{"guest", "host"}, claims.Roles)
	assert.WithinDuration(t, access.Exp, claims.ExpiresAt, time.Second)
}

func TestAccessTokenCustomClaims(t *testing.T) {
	access, err := NewAccessToken("secret", "acc-1", nil, map[string]any{"tenant": "eu"}, 15)
	require.NoError(t, err)

	tok, err := jwt.Parse(access.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	mc := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "eu", mc["tenant"])
	_, hasRoles := mc["roles"]
	assert.False(t, hasRoles, "empty role list must not be embedded")
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	access, err := NewAccessToken("secret", "acc-1", nil, nil, 15)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsNonHMAC(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "acc-1"})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRequiresSubject(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	raw, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseAccessToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// A token is accepted strictly before its expiry instant and rejected from
// that instant on. Clock travel via WithTimeFunc keeps the test exact.
func TestAccessTokenExpiryBoundary(t *testing.T) {
	access, err := NewAccessToken("secret", "acc-1", nil, nil, 15)
	require.NoError(t, err)

	at := func(ts time.Time) jwt.ParserOption {
		return jwt.WithTimeFunc(func() time.Time { return ts })
	}

	_, err = ParseAccessToken("secret", access.Token, at(access.Exp.Add(-time.Second)))
	assert.NoError(t, err, "token must verify just before expiry")

	_, err = ParseAccessToken("secret", access.Token, at(access.Exp.Add(time.Second)))
	assert.ErrorIs(t, err, ErrInvalidToken, "token must fail after expiry")
}

func TestNewRefreshTokenShape(t *testing.T) {
	a, err := NewRefreshToken(30)
	require.NoError(t, err)
	b, err := NewRefreshToken(30)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), a.Exp, time.Minute)
}

func TestHashRefreshRawIsStable(t *testing.T) {
	h1 := HashRefreshRaw("some-raw-token")
	h2 := HashRefreshRaw("some-raw-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashRefreshRaw("some-raw-tokeN"))
}
