package session

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresPool connects to SESSION_TEST_POSTGRES_DSN inside a throwaway
// schema holding its own sessions table. Tests skip when the DSN is unset.
func newPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("SESSION_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SESSION_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	schema := "session_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// The users foreign key is left out so markers can be written for bare ids.
	_, err = pool.Exec(ctx, `
        CREATE TABLE sessions (
            user_id    UUID PRIMARY KEY,
            token      TEXT NOT NULL,
            expired_at TIMESTAMPTZ NOT NULL
        )`)
	require.NoError(t, err)
	return pool
}

func newPostgresStoreWithClock(pool *pgxpool.Pool) (*PostgresStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewPostgresStore(pool)
	store.now = clock.Now
	return store, clock
}

func TestPostgresStoreContract(t *testing.T) {
	pool := newPostgresPool(t)

	runStoreContract(t, func(t *testing.T) (Store, func(time.Duration)) {
		store, clock := newPostgresStoreWithClock(pool)
		return store, clock.Advance
	})
}

func TestPostgresStorePurgeExpired(t *testing.T) {
	ctx := context.Background()
	store, clock := newPostgresStoreWithClock(newPostgresPool(t))
	stale, live := uuid.New(), uuid.New()

	require.NoError(t, store.Create(ctx, stale, "old", time.Minute))
	require.NoError(t, store.Create(ctx, live, "new", time.Hour))
	clock.Advance(2 * time.Minute)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	marker, err := store.Get(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, "new", marker.Token)
	assert.WithinDuration(t, clock.Now().Add(58*time.Minute), marker.ExpiresAt, time.Second)

	require.NoError(t, store.Ping(ctx))
}
