package tripregistry

import (
	"context"
	"errors"
)

// Record is a trip snapshot as posted by a client. The registry stores the
// decoded JSON object as-is; it does not interpret fields beyond the id.
type Record map[string]any

var ErrNotFound = errors.New("registered trip not found")

// Registry is the backend stub's own trip collection: process memory, no
// auth, no validation beyond presence of an id.
type Registry interface {
	// Put stores a record under id, overwriting any existing record.
	Put(ctx context.Context, id string, rec Record) error

	// Merge shallow-merges fields over the record stored under id and
	// returns the merged result. ErrNotFound when id is unknown.
	Merge(ctx context.Context, id string, fields Record) (Record, error)

	Get(ctx context.Context, id string) (Record, error)
}
