package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/session-gateway/internal/domain"
	"github.com/spec-kit/session-gateway/internal/session"
	"github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

type failingStore struct {
	session.Store
	err error
}

func (s *failingStore) Get(context.Context, uuid.UUID) (*session.Marker, error) {
	return nil, s.err
}

func issue(t *testing.T, tm *TokenManager, store session.Store, role domain.Role) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	token, err := tm.Encode(NewClaims(id, role, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), id, token, time.Hour))
	return token, id
}

func TestGateAuthorize(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager("secret")
	store := session.NewMemoryStore()
	gate := NewGate(tm, store)

	t.Run("live session", func(t *testing.T) {
		token, id := issue(t, tm, store, domain.RoleAdmin)

		claims, err := gate.Authorize(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, id.String(), claims.Subject)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := gate.Authorize(ctx, "")
		assert.ErrorIs(t, err, errorutil.ErrTokenNotExist)
	})

	t.Run("bad signature", func(t *testing.T) {
		token, _ := issue(t, NewTokenManager("other"), store, domain.RoleUser)
		_, err := gate.Authorize(ctx, token)
		assert.ErrorIs(t, err, errorutil.ErrAuthorizeFailed)
	})

	t.Run("revoked session", func(t *testing.T) {
		token, id := issue(t, tm, store, domain.RoleUser)
		require.NoError(t, store.Expire(ctx, id))

		_, err := tm.Decode(token, false)
		require.NoError(t, err)

		_, err = gate.Authorize(ctx, token)
		assert.ErrorIs(t, err, errorutil.ErrTokenIsExpired)
	})

	t.Run("signature expiry is not enforced", func(t *testing.T) {
		id := uuid.New()
		token, err := tm.Encode(NewClaims(id, domain.RoleUser, time.Now().Add(-time.Hour)))
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, id, token, time.Hour))

		_, err = gate.Authorize(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("non uuid subject", func(t *testing.T) {
		claims := NewClaims(uuid.New(), domain.RoleUser, time.Now().Add(time.Hour))
		claims.Subject = "boris"
		token, err := tm.Encode(claims)
		require.NoError(t, err)

		_, err = gate.Authorize(ctx, token)
		assert.ErrorIs(t, err, errorutil.ErrTokenIsExpired)
	})
}

func TestGateFailsClosedOnBackendError(t *testing.T) {
	tm := NewTokenManager("secret")
	token, err := tm.Encode(NewClaims(uuid.New(), domain.RoleUser, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	gate := NewGate(tm, &failingStore{err: errors.New("dial tcp: connection refused")})

	claims, err := gate.Authorize(context.Background(), token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, errorutil.ErrBackend)
	assert.NotErrorIs(t, err, errorutil.ErrTokenIsExpired)
}

func TestGateSingleSession(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager("secret")
	store := session.NewMemoryStore()
	gate := NewGate(tm, store, WithSingleSession(true))

	id := uuid.New()
	first, err := tm.Encode(NewClaims(id, domain.RoleUser, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, id, first, time.Hour))

	second, err := tm.Encode(NewClaims(id, domain.RoleUser, time.Now().Add(2*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, id, second, time.Hour))

	_, err = gate.Authorize(ctx, first)
	assert.ErrorIs(t, err, errorutil.ErrTokenIsExpired)

	_, err = gate.Authorize(ctx, second)
	assert.NoError(t, err)
}
