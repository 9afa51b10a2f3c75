package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps markers in the sessions table. Expiry is enforced at
// read time; PurgeExpired removes stale rows.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore returns a Postgres-backed implementation.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (s *PostgresStore) Create(ctx context.Context, subjectID uuid.UUID, token string, ttl time.Duration) error {
	const query = `
        INSERT INTO sessions (user_id, token, expired_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET token=EXCLUDED.token, expired_at=EXCLUDED.expired_at`

	_, err := s.pool.Exec(ctx, query, subjectID, token, s.now().Add(ttl))
	return err
}

func (s *PostgresStore) Expire(ctx context.Context, subjectID uuid.UUID) error {
	const query = `DELETE FROM sessions WHERE user_id=$1`

	_, err := s.pool.Exec(ctx, query, subjectID)
	return err
}

func (s *PostgresStore) Renew(ctx context.Context, subjectID uuid.UUID, ttl time.Duration) error {
	const query = `
        UPDATE sessions SET expired_at=$2
        WHERE user_id=$1 AND expired_at > $3`

	now := s.now()
	cmd, err := s.pool.Exec(ctx, query, subjectID, now.Add(ttl), now)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subjectID uuid.UUID) (*Marker, error) {
	const query = `
        SELECT user_id, token, expired_at
        FROM sessions WHERE user_id=$1 AND expired_at > $2`

	var marker Marker
	if err := s.pool.QueryRow(ctx, query, subjectID, s.now()).Scan(
		&marker.SubjectID,
		&marker.Token,
		&marker.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &marker, nil
}

// PurgeExpired deletes rows whose expiry has passed.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expired_at <= $1`

	cmd, err := s.pool.Exec(ctx, query, s.now())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return s.pool.Ping(ctx)
}
