package mirror

import (
	"context"

	"github.com/trip-trio/trip-planner-api/internal/domain"
)

// Mirror pushes trip snapshots to a remote endpoint. Calls are best-effort:
// the caller logs failures and never reconciles responses back into local
// state, so local and remote copies can diverge.
type Mirror interface {
	CreateTrip(ctx context.Context, t domain.Trip) error
	UpdateTrip(ctx context.Context, t domain.Trip) error
}

// Nop is the mirror used when no remote endpoint is configured.
type Nop struct{}

func (Nop) CreateTrip(ctx context.Context, t domain.Trip) error { return nil }
func (Nop) UpdateTrip(ctx context.Context, t domain.Trip) error { return nil }
