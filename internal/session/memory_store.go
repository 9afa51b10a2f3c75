package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu      sync.Mutex
	markers map[uuid.UUID]Marker
	now     func() time.Time
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty store reading time from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{markers: make(map[uuid.UUID]Marker), now: now}
}

func (s *MemoryStore) Create(_ context.Context, subjectID uuid.UUID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[subjectID] = Marker{SubjectID: subjectID, Token: token, ExpiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, subjectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, subjectID)
	return nil
}

func (s *MemoryStore) Renew(_ context.Context, subjectID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marker, ok := s.liveLocked(subjectID)
	if !ok {
		return ErrNotFound
	}
	marker.ExpiresAt = s.now().Add(ttl)
	s.markers[subjectID] = marker
	return nil
}

func (s *MemoryStore) Get(_ context.Context, subjectID uuid.UUID) (*Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marker, ok := s.liveLocked(subjectID)
	if !ok {
		return nil, ErrNotFound
	}
	return &marker, nil
}

// PurgeExpired drops markers whose ttl has elapsed.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var purged int64
	for id, marker := range s.markers {
		if !now.Before(marker.ExpiresAt) {
			delete(s.markers, id)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// liveLocked returns the marker if present and unexpired, evicting it otherwise.
func (s *MemoryStore) liveLocked(subjectID uuid.UUID) (Marker, bool) {
	marker, ok := s.markers[subjectID]
	if !ok {
		return Marker{}, false
	}
	if !s.now().Before(marker.ExpiresAt) {
		delete(s.markers, subjectID)
		return Marker{}, false
	}
	return marker, true
}
