package localstore

import (
	"context"

	"github.com/trip-trio/trip-planner-api/internal/domain"
)

// Snapshot is the serialized unit the trip store writes through on every
// mutation: the full trip collection plus the current-trip pointer (by id,
// re-resolved against the collection on load).
type Snapshot struct {
	Trips         []domain.Trip `json:"trips"`
	CurrentTripID domain.TripID `json:"currentTripId,omitempty"`
}

// Store is the durable local key-value persistence port. It mirrors the
// state the application owns; it has no independent ownership. Writes are
// whole-value (no batching, no partial writes).
type Store interface {
	// LoadSnapshot returns the stored trip snapshot, or ErrNotFound when
	// nothing has been stored yet.
	LoadSnapshot(ctx context.Context) (Snapshot, error)
	SaveSnapshot(ctx context.Context, s Snapshot) error

	// LoadUser returns the persisted session user record, or ErrNotFound.
	LoadUser(ctx context.Context) (domain.User, error)
	SaveUser(ctx context.Context, u domain.User) error
	ClearUser(ctx context.Context) error
}
