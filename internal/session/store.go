// Package session records which subjects hold a live session. A marker keyed
// by subject id exists exactly while that subject is logged in; tokens whose
// subject has no marker are treated as revoked regardless of their signature.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound means the subject has no live session marker.
var ErrNotFound = errors.New("session not found")

// Marker is the liveness record stored for a subject.
type Marker struct {
	SubjectID uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// Store is the revocation store. Implementations keep at most one marker per
// subject; concurrent writers for the same subject resolve last-write-wins.
type Store interface {
	// Create stores a marker for subjectID expiring after ttl, replacing any previous one.
	Create(ctx context.Context, subjectID uuid.UUID, token string, ttl time.Duration) error
	// Expire deletes the marker. Deleting a missing marker succeeds.
	Expire(ctx context.Context, subjectID uuid.UUID) error
	// Renew resets the marker's ttl without touching its value. It returns
	// ErrNotFound and creates nothing when no live marker exists.
	Renew(ctx context.Context, subjectID uuid.UUID, ttl time.Duration) error
	// Get returns the live marker or ErrNotFound.
	Get(ctx context.Context, subjectID uuid.UUID) (*Marker, error)
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// Purger is implemented by stores whose expired markers are not evicted by the backend.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
