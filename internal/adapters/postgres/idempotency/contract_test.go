package idempotency

import (
	"context"
	"testing"

	"github.com/trip-trio/trip-planner-api/internal/adapters/contracttest"
	idempotencyport "github.com/trip-trio/trip-planner-api/internal/ports/out/idempotency"
	"github.com/trip-trio/trip-planner-api/testutil"
)

func TestStoreContract(t *testing.T) {
	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, contracttest.CleanupFunc) {
		pool := testutil.NewPool(t)
		ctx := context.Background()

		truncate := func() {
			if _, err := pool.Exec(ctx, `DELETE FROM idempotency_keys`); err != nil {
				t.Fatalf("reset idempotency_keys: %v", err)
			}
		}
		truncate()

		return NewStore(pool), truncate
	})
}
