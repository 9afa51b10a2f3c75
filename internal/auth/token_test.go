package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/session-gateway/internal/domain"
	"github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret")
	id := uuid.New()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	token, err := tm.Encode(NewClaims(id, domain.RoleAdmin, exp))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Decode(token, true)
	require.NoError(t, err)

	subject, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, id, subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestTokenManagerEncodeIsDeterministic(t *testing.T) {
	tm := NewTokenManager("secret")
	claims := NewClaims(uuid.New(), domain.RoleUser, time.Unix(1_900_000_000, 0))

	first, err := tm.Encode(claims)
	require.NoError(t, err)
	second, err := tm.Encode(claims)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTokenManagerExpiryEnforcement(t *testing.T) {
	tm := NewTokenManager("secret")
	token, err := tm.Encode(NewClaims(uuid.New(), domain.RoleUser, time.Now().Add(-time.Second)))
	require.NoError(t, err)

	_, err = tm.Decode(token, true)
	assert.ErrorIs(t, err, errorutil.ErrTokenIsExpired)

	claims, err := tm.Decode(token, false)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestTokenManagerRejectsForeignSecret(t *testing.T) {
	roles := []domain.Role{domain.RoleUser, domain.RoleAdmin}
	for _, role := range roles {
		token, err := NewTokenManager("secret-a").Encode(NewClaims(uuid.New(), role, time.Now().Add(time.Hour)))
		require.NoError(t, err)

		for _, enforce := range []bool{true, false} {
			_, err = NewTokenManager("secret-b").Decode(token, enforce)
			assert.ErrorIs(t, err, errorutil.ErrAuthorizeFailed)
		}
	}
}

func TestTokenManagerRejectsMalformedAndForeignAlgorithms(t *testing.T) {
	tm := NewTokenManager("secret")

	_, err := tm.Decode("not-a-token", false)
	assert.ErrorIs(t, err, errorutil.ErrAuthorizeFailed)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, NewClaims(uuid.New(), domain.RoleUser, time.Now().Add(time.Hour))).
		SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.Decode(hs512, false)
	assert.ErrorIs(t, err, errorutil.ErrAuthorizeFailed)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, NewClaims(uuid.New(), domain.RoleUser, time.Now().Add(time.Hour))).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Decode(none, false)
	assert.ErrorIs(t, err, errorutil.ErrAuthorizeFailed)
}
