package tripregistry

import (
	"context"
	"sync"

	"github.com/trip-trio/trip-planner-api/internal/ports/out/tripregistry"
)

// Registry is the process-memory trip collection behind the stub endpoints.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]tripregistry.Record
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]tripregistry.Record)}
}

func (r *Registry) Put(ctx context.Context, id string, rec tripregistry.Record) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = cloneRecord(rec)
	return nil
}

func (r *Registry) Merge(ctx context.Context, id string, fields tripregistry.Record) (tripregistry.Record, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[id]
	if !ok {
		return nil, tripregistry.ErrNotFound
	}
	merged := cloneRecord(existing)
	for k, v := range fields {
		merged[k] = v
	}
	r.byID[id] = merged
	return cloneRecord(merged), nil
}

func (r *Registry) Get(ctx context.Context, id string) (tripregistry.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, tripregistry.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// cloneRecord copies the top-level map. Nested values are shared; merges
// are shallow.
func cloneRecord(rec tripregistry.Record) tripregistry.Record {
	out := make(tripregistry.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
