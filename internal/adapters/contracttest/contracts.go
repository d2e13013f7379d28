// Package contracttest holds behavioral contracts every adapter for a given
// port must satisfy. Adapter packages invoke these suites from their own
// contract_test.go files.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trip-trio/trip-planner-api/internal/domain"
	idempotencyport "github.com/trip-trio/trip-planner-api/internal/ports/out/idempotency"
	localstoreport "github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
	tripregistryport "github.com/trip-trio/trip-planner-api/internal/ports/out/tripregistry"
)

type CleanupFunc = func()

type LocalStoreFactory func(t *testing.T) (localstoreport.Store, CleanupFunc)
type TripRegistryFactory func(t *testing.T) (tripregistryport.Registry, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

// RunLocalStore exercises snapshot and user-record behavior shared by all
// localstore adapters.
func RunLocalStore(t *testing.T, newStore LocalStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Empty store: both records absent.
	if _, err := store.LoadSnapshot(ctx); !errors.Is(err, localstoreport.ErrNotFound) {
		t.Fatalf("LoadSnapshot on empty store: err=%v, want ErrNotFound", err)
	}
	if _, err := store.LoadUser(ctx); !errors.Is(err, localstoreport.ErrNotFound) {
		t.Fatalf("LoadUser on empty store: err=%v, want ErrNotFound", err)
	}

	created := time.Unix(1700000000, 0).UTC()
	snap := localstoreport.Snapshot{
		Trips: []domain.Trip{
			{
				ID:         "trip-1",
				Name:       "Summer Beach Vacation",
				Status:     domain.TripStatusPlanning,
				CreatedAt:  created,
				InviteCode: "BEACH23",
				Members: []domain.Member{
					{ID: "u1", Name: "Ann", IsAdmin: true, Role: "organizer"},
				},
				DateOptions: []domain.Option{
					{ID: "date-1", Value: "July 15-30, 2025", Votes: []domain.Vote{{UserID: "u1"}}},
				},
				PackingList: []domain.PackingItem{
					{
						ID:          "pack-1",
						Name:        "Sunscreen",
						Category:    domain.CategoryEssentials,
						AddedBy:     "u1",
						IsPinned:    true,
						IsEssential: true,
						CreatedAt:   created,
					},
				},
			},
		},
		CurrentTripID: "trip-1",
	}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.CurrentTripID != "trip-1" {
		t.Fatalf("CurrentTripID=%q, want trip-1", got.CurrentTripID)
	}
	if len(got.Trips) != 1 {
		t.Fatalf("len(Trips)=%d, want 1", len(got.Trips))
	}
	tr := got.Trips[0]
	if tr.ID != "trip-1" || tr.InviteCode != "BEACH23" || tr.Status != domain.TripStatusPlanning {
		t.Fatalf("trip=%+v", tr)
	}
	if !tr.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt=%v, want %v", tr.CreatedAt, created)
	}
	if len(tr.Members) != 1 || !tr.Members[0].IsAdmin || tr.Members[0].Role != "organizer" {
		t.Fatalf("members=%+v", tr.Members)
	}
	if len(tr.DateOptions) != 1 || len(tr.DateOptions[0].Votes) != 1 || tr.DateOptions[0].Votes[0].UserID != "u1" {
		t.Fatalf("dateOptions=%+v", tr.DateOptions)
	}
	if len(tr.PackingList) != 1 || tr.PackingList[0].Category != domain.CategoryEssentials {
		t.Fatalf("packingList=%+v", tr.PackingList)
	}

	// Whole-value overwrite: the snapshot is last-write-wins.
	if err := store.SaveSnapshot(ctx, localstoreport.Snapshot{Trips: []domain.Trip{}}); err != nil {
		t.Fatalf("SaveSnapshot overwrite: %v", err)
	}
	got, err = store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot after overwrite: %v", err)
	}
	if len(got.Trips) != 0 || got.CurrentTripID != "" {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}

	// User record lifecycle.
	avatar := "https://cdn.example.com/a.png"
	u := domain.User{ID: "u1", Email: "ann@example.com", Name: "ann", Avatar: &avatar}
	if err := store.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	gu, err := store.LoadUser(ctx)
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if gu.ID != "u1" || gu.Email != "ann@example.com" || gu.Avatar == nil || *gu.Avatar != avatar {
		t.Fatalf("user=%+v", gu)
	}
	if err := store.ClearUser(ctx); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if _, err := store.LoadUser(ctx); !errors.Is(err, localstoreport.ErrNotFound) {
		t.Fatalf("LoadUser after clear: err=%v, want ErrNotFound", err)
	}

	// Clearing an already-clear user record is not an error.
	if err := store.ClearUser(ctx); err != nil {
		t.Fatalf("ClearUser twice: %v", err)
	}
}

// RunTripRegistry exercises the stub registry contract: overwrite on Put,
// shallow Merge, ErrNotFound on unknown ids.
func RunTripRegistry(t *testing.T, newRegistry TripRegistryFactory) {
	t.Helper()
	ctx := context.Background()

	reg, cleanup := newRegistry(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if _, err := reg.Get(ctx, "trip-9"); !errors.Is(err, tripregistryport.ErrNotFound) {
		t.Fatalf("Get unknown: err=%v, want ErrNotFound", err)
	}
	if _, err := reg.Merge(ctx, "trip-9", tripregistryport.Record{"name": "x"}); !errors.Is(err, tripregistryport.ErrNotFound) {
		t.Fatalf("Merge unknown: err=%v, want ErrNotFound", err)
	}

	if err := reg.Put(ctx, "trip-1", tripregistryport.Record{"id": "trip-1", "name": "Ski Trip", "status": "planning"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	merged, err := reg.Merge(ctx, "trip-1", tripregistryport.Record{"status": "confirmed", "selectedDate": "2025-06-10"})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged["name"] != "Ski Trip" || merged["status"] != "confirmed" || merged["selectedDate"] != "2025-06-10" {
		t.Fatalf("merged=%v", merged)
	}

	// Put overwrites wholesale, dropping merged fields.
	if err := reg.Put(ctx, "trip-1", tripregistryport.Record{"id": "trip-1", "name": "Ski Trip 2"}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err := reg.Get(ctx, "trip-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["name"] != "Ski Trip 2" {
		t.Fatalf("name=%v", got["name"])
	}
	if _, ok := got["selectedDate"]; ok {
		t.Fatalf("expected selectedDate dropped by overwrite, got %v", got)
	}
}

// RunIdempotencyStore exercises record lookup, miss, and overwrite behavior
// shared by all idempotency adapters.
func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		User:     domain.UserID("u-1"),
		Method:   "POST",
		Path:     "/trips",
		BodyHash: "",
	}

	// Unknown fingerprint: miss, not an error.
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get unknown: ok=%v err=%v, want miss", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// A different body hash is a distinct fingerprint.
	fp2 := fp
	fp2.BodyHash = "hash-abc"
	if _, ok, err := store.Get(ctx, fp2); err != nil || ok {
		t.Fatalf("Get distinct hash: ok=%v err=%v, want miss", ok, err)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
}
