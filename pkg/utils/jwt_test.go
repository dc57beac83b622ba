package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignedToken(t *testing.T) {
	v := NewTokenVerifier("secret", "idp")

	token, err := v.Sign("user-1", "a@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestVerifyRejects(t *testing.T) {
	v := NewTokenVerifier("secret", "idp")

	expired, err := v.Sign("user-1", "", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	otherKey, err := NewTokenVerifier("other", "idp").Sign("user-1", "", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(otherKey)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	otherIssuer, err := NewTokenVerifier("secret", "someone-else").Sign("user-1", "", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(otherIssuer)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	noSubject, err := v.Sign("", "", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("not-a-token")
	assert.Error(t, err)
}

func TestVerifyAnyIssuerWhenUnset(t *testing.T) {
	token, err := NewTokenVerifier("secret", "whoever").Sign("user-2", "", time.Minute)
	require.NoError(t, err)

	claims, err := NewTokenVerifier("secret", "").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.Subject)
}
