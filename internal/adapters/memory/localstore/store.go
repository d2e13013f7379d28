package localstore

import (
	"context"
	"sync"

	"github.com/trip-trio/trip-planner-api/internal/domain"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
)

// Store is an in-memory implementation of localstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	snapshot localstore.Snapshot
	hasSnap  bool
	user     domain.User
	hasUser  bool
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) LoadSnapshot(ctx context.Context) (localstore.Snapshot, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasSnap {
		return localstore.Snapshot{}, localstore.ErrNotFound
	}
	return cloneSnapshot(s.snapshot), nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap localstore.Snapshot) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = cloneSnapshot(snap)
	s.hasSnap = true
	return nil
}

func (s *Store) LoadUser(ctx context.Context) (domain.User, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasUser {
		return domain.User{}, localstore.ErrNotFound
	}
	return s.user, nil
}

func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.hasUser = true
	return nil
}

func (s *Store) ClearUser(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = domain.User{}
	s.hasUser = false
	return nil
}

func cloneSnapshot(in localstore.Snapshot) localstore.Snapshot {
	out := localstore.Snapshot{CurrentTripID: in.CurrentTripID}
	if in.Trips != nil {
		out.Trips = make([]domain.Trip, len(in.Trips))
		for i, t := range in.Trips {
			out.Trips[i] = t.Clone()
		}
	}
	return out
}
