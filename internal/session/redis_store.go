package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps markers as plain string keys with a native TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps a go-redis client. prefix namespaces the keys.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(subjectID uuid.UUID) string {
	return s.prefix + subjectID.String()
}

// Create issues SET key token EX ttl.
func (s *RedisStore) Create(ctx context.Context, subjectID uuid.UUID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(subjectID), token, ttl).Err()
}

// Expire issues DEL.
func (s *RedisStore) Expire(ctx context.Context, subjectID uuid.UUID) error {
	return s.client.Del(ctx, s.key(subjectID)).Err()
}

// Renew issues EXPIRE, which is a no-op on a missing key.
func (s *RedisStore) Renew(ctx context.Context, subjectID uuid.UUID, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, s.key(subjectID), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Get reads the marker value and its remaining TTL in one round trip.
func (s *RedisStore) Get(ctx context.Context, subjectID uuid.UUID) (*Marker, error) {
	key := s.key(subjectID)

	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	token, err := getCmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	marker := &Marker{SubjectID: subjectID, Token: token}
	if ttl := ttlCmd.Val(); ttl > 0 {
		marker.ExpiresAt = time.Now().Add(ttl)
	}
	return marker, nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
