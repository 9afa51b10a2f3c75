package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory returns a fresh store and a function advancing its clock.
type storeFactory func(t *testing.T) (Store, func(time.Duration))

func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("create then get", func(t *testing.T) {
		store, _ := newStore(t)
		id := uuid.New()

		require.NoError(t, store.Create(ctx, id, "token-a", time.Minute))

		marker, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, marker.SubjectID)
		assert.Equal(t, "token-a", marker.Token)
	})

	t.Run("create replaces previous marker", func(t *testing.T) {
		store, _ := newStore(t)
		id := uuid.New()

		require.NoError(t, store.Create(ctx, id, "token-a", time.Minute))
		require.NoError(t, store.Create(ctx, id, "token-b", time.Minute))

		marker, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "token-b", marker.Token)
	})

	t.Run("missing subject", func(t *testing.T) {
		store, _ := newStore(t)

		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expire is idempotent", func(t *testing.T) {
		store, _ := newStore(t)
		id := uuid.New()

		require.NoError(t, store.Create(ctx, id, "token-a", time.Minute))
		require.NoError(t, store.Expire(ctx, id))
		require.NoError(t, store.Expire(ctx, id))

		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ttl elapses", func(t *testing.T) {
		store, advance := newStore(t)
		id := uuid.New()

		require.NoError(t, store.Create(ctx, id, "token-a", 10*time.Second))
		advance(11 * time.Second)

		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("renew extends ttl", func(t *testing.T) {
		store, advance := newStore(t)
		id := uuid.New()

		require.NoError(t, store.Create(ctx, id, "token-a", 10*time.Second))
		advance(8 * time.Second)
		require.NoError(t, store.Renew(ctx, id, 10*time.Second))
		advance(5 * time.Second)

		marker, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "token-a", marker.Token)
	})

	t.Run("renew without marker creates nothing", func(t *testing.T) {
		store, _ := newStore(t)
		id := uuid.New()

		err := store.Renew(ctx, id, time.Minute)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
