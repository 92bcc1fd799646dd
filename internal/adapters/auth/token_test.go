package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/adapters/auth"
)

func TestTokens_RoundTrip(t *testing.T) {
	tk := auth.NewTokens("secret")
	raw, err := tk.Sign(42, time.Hour)
	require.NoError(t, err)

	id, err := tk.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokens_Rejects(t *testing.T) {
	tk := auth.NewTokens("secret")

	other, _ := auth.NewTokens("other").Sign(1, time.Hour)
	expired, _ := tk.Sign(1, -time.Minute)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("secret"))

	for name, raw := range map[string]string{
		"wrong secret": other,
		"expired":      expired,
		"alg none":     none,
		"missing id":   noID,
		"garbage":      "a.b.c",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tk.Parse(raw)
			assert.True(t, errors.Is(err, auth.ErrInvalidToken), "got %v", err)
		})
	}
}

func TestTokens_EmptySecret(t *testing.T) {
	_, err := auth.NewTokens("").Sign(1, time.Hour)
	assert.Error(t, err)
}
