package trips_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	memlocalstore "github.com/trip-trio/trip-planner-api/internal/adapters/memory/localstore"
	"github.com/trip-trio/trip-planner-api/internal/app/trips"
	"github.com/trip-trio/trip-planner-api/internal/domain"
	portlocalstore "github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
)

// tickingClock advances by one millisecond per reading so timestamp-derived
// ids never collide within a test.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type recordingMirror struct {
	mu      sync.Mutex
	created []domain.TripID
	updated []domain.TripID
	fail    error
}

func (m *recordingMirror) CreateTrip(ctx context.Context, t domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, t.ID)
	return m.fail
}

func (m *recordingMirror) UpdateTrip(ctx context.Context, t domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, t.ID)
	return m.fail
}

var (
	ann = domain.User{ID: "u1", Email: "ann@example.com", Name: "Ann"}
	bob = domain.User{ID: "u2", Email: "bob@example.com", Name: "Bob"}
)

func newService(t *testing.T) (*trips.Service, *memlocalstore.Store, *recordingMirror) {
	t.Helper()
	store := memlocalstore.NewStore()
	m := &recordingMirror{}
	svc := trips.NewService(store, m, newTickingClock(), nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc, store, m
}

func mustCreate(t *testing.T, svc *trips.Service, actor domain.User, name, desc string) domain.Trip {
	t.Helper()
	trip, err := svc.CreateTrip(context.Background(), actor, trips.CreateTripInput{Name: name, Description: desc})
	if err != nil {
		t.Fatalf("CreateTrip(%q): %v", name, err)
	}
	return trip
}

func TestService_CreateTrip_SeedsCreatorAsSoleAdmin(t *testing.T) {
	t.Parallel()

	svc, store, m := newService(t)

	trip := mustCreate(t, svc, ann, "Ski Trip", "Alps")
	if trip.Name != "Ski Trip" || trip.Description != "Alps" || trip.Status != domain.TripStatusPlanning {
		t.Fatalf("trip=%+v", trip)
	}
	if len(trip.Members) != 1 || trip.Members[0].ID != "u1" || !trip.Members[0].IsAdmin {
		t.Fatalf("members=%+v", trip.Members)
	}
	if len(trip.PackingList) != 0 || len(trip.DateOptions) != 0 {
		t.Fatalf("expected empty lists, got %+v", trip)
	}
	if len(trip.InviteCode) != domain.InviteCodeLength {
		t.Fatalf("invite code %q", trip.InviteCode)
	}

	cur, ok, err := svc.CurrentTrip(context.Background())
	if err != nil || !ok || cur.ID != trip.ID {
		t.Fatalf("CurrentTrip=%v ok=%v err=%v", cur.ID, ok, err)
	}

	snap, err := store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Trips) != 1 || snap.CurrentTripID != trip.ID {
		t.Fatalf("snapshot=%+v", snap)
	}

	if len(m.created) != 1 || m.created[0] != trip.ID {
		t.Fatalf("mirror created=%v", m.created)
	}
}

func TestService_CreateTrip_RetriesInviteCodeCollision(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	svc.SetNewInviteCodeForTest(func() string {
		c := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return c
	})

	first := mustCreate(t, svc, ann, "First", "")
	if first.InviteCode != "AAAAAA" {
		t.Fatalf("first code=%q", first.InviteCode)
	}
	second := mustCreate(t, svc, ann, "Second", "")
	if second.InviteCode != "BBBBBB" {
		t.Fatalf("second code=%q, want collision retried", second.InviteCode)
	}
}

func TestService_CreateTrip_RejectsBlankName(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	_, err := svc.CreateTrip(context.Background(), ann, trips.CreateTripInput{Name: "   "})
	var appErr *trips.Error
	if !errors.As(err, &appErr) || appErr.Status != 422 {
		t.Fatalf("err=%v, want 422", err)
	}
}

func TestService_JoinTrip_IsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")

	joined, err := svc.JoinTrip(context.Background(), bob, trip.InviteCode)
	if err != nil {
		t.Fatalf("JoinTrip: %v", err)
	}
	if len(joined.Members) != 2 || joined.Members[1].ID != "u2" || joined.Members[1].IsAdmin {
		t.Fatalf("members=%+v", joined.Members)
	}

	again, err := svc.JoinTrip(context.Background(), bob, trip.InviteCode)
	if err != nil {
		t.Fatalf("JoinTrip again: %v", err)
	}
	if len(again.Members) != 2 {
		t.Fatalf("second join mutated members: %+v", again.Members)
	}
}

func TestService_JoinTrip_MatchesCaseInsensitively(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")

	joined, err := svc.JoinTrip(context.Background(), bob, "  "+lower(trip.InviteCode)+" ")
	if err != nil {
		t.Fatalf("JoinTrip: %v", err)
	}
	if joined.ID != trip.ID {
		t.Fatalf("joined=%v, want %v", joined.ID, trip.ID)
	}
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func TestService_JoinTrip_UnknownCodeDoesNotMutate(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	mustCreate(t, svc, ann, "Ski Trip", "")

	_, err := svc.JoinTrip(context.Background(), bob, "BEACH23")
	var appErr *trips.Error
	if !errors.As(err, &appErr) || appErr.Status != 404 {
		t.Fatalf("err=%v, want 404", err)
	}

	all, err := svc.ListTrips(context.Background())
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(all) != 1 || len(all[0].Members) != 1 {
		t.Fatalf("collection mutated: %+v", all)
	}
}

func TestService_DeleteTrip_ClearsCurrentPointer(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")

	if err := svc.DeleteTrip(context.Background(), trip.ID); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	// Selecting a deleted trip is silently ignored.
	if err := svc.SelectTrip(context.Background(), trip.ID); err != nil {
		t.Fatalf("SelectTrip: %v", err)
	}
	if _, ok, err := svc.CurrentTrip(context.Background()); err != nil || ok {
		t.Fatalf("current trip should be unset, ok=%v err=%v", ok, err)
	}
}

func TestService_SelectTrip_SwitchesCurrent(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	first := mustCreate(t, svc, ann, "First", "")
	second := mustCreate(t, svc, ann, "Second", "")

	if err := svc.SelectTrip(context.Background(), first.ID); err != nil {
		t.Fatalf("SelectTrip: %v", err)
	}
	cur, ok, _ := svc.CurrentTrip(context.Background())
	if !ok || cur.ID != first.ID {
		t.Fatalf("current=%v ok=%v, want %v", cur.ID, ok, first.ID)
	}

	// Unknown ids leave the pointer where it was.
	if err := svc.SelectTrip(context.Background(), "trip-nope"); err != nil {
		t.Fatalf("SelectTrip unknown: %v", err)
	}
	cur, ok, _ = svc.CurrentTrip(context.Background())
	if !ok || cur.ID != first.ID {
		t.Fatalf("current=%v ok=%v after unknown select", cur.ID, ok)
	}
	_ = second
}

func TestService_UpdateTrip_PatchSemantics(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "Alps")

	updated, err := svc.UpdateTrip(context.Background(), trip.ID, trips.UpdateTripInput{
		Name: trips.Some("Snow Run"),
	})
	if err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	if updated.Name != "Snow Run" || updated.Description != "Alps" {
		t.Fatalf("updated=%+v", updated)
	}

	updated, err = svc.UpdateTrip(context.Background(), trip.ID, trips.UpdateTripInput{
		Description: trips.Null[string](),
	})
	if err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	if updated.Name != "Snow Run" || updated.Description != "" {
		t.Fatalf("updated=%+v", updated)
	}

	_, err = svc.UpdateTrip(context.Background(), trip.ID, trips.UpdateTripInput{Name: trips.Null[string]()})
	var appErr *trips.Error
	if !errors.As(err, &appErr) || appErr.Status != 422 {
		t.Fatalf("null name: err=%v, want 422", err)
	}
}

func TestService_ProposeOption_AutoVotesProposer(t *testing.T) {
	t.Parallel()

	svc, _, m := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")

	updated, err := svc.ProposeOption(context.Background(), ann, trip.ID, domain.OptionKindDate, "July 15-30, 2025")
	if err != nil {
		t.Fatalf("ProposeOption: %v", err)
	}
	if len(updated.DateOptions) != 1 {
		t.Fatalf("dateOptions=%+v", updated.DateOptions)
	}
	opt := updated.DateOptions[0]
	if len(opt.Votes) != 1 || opt.Votes[0].UserID != "u1" {
		t.Fatalf("votes=%+v", opt.Votes)
	}

	// Identical values are allowed to repeat.
	updated, err = svc.ProposeOption(context.Background(), ann, trip.ID, domain.OptionKindDate, "July 15-30, 2025")
	if err != nil {
		t.Fatalf("ProposeOption duplicate: %v", err)
	}
	if len(updated.DateOptions) != 2 {
		t.Fatalf("dateOptions=%+v", updated.DateOptions)
	}

	if len(m.updated) != 2 {
		t.Fatalf("mirror updates=%v", m.updated)
	}
}

func TestService_VoteOption_IsIdempotentPerUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")
	trip, err := svc.ProposeOption(context.Background(), ann, trip.ID, domain.OptionKindDestination, "Malibu, CA")
	if err != nil {
		t.Fatalf("ProposeOption: %v", err)
	}
	optID := trip.DestinationOptions[0].ID

	trip, err = svc.VoteOption(context.Background(), bob, trip.ID, domain.OptionKindDestination, optID)
	if err != nil {
		t.Fatalf("VoteOption: %v", err)
	}
	if len(trip.DestinationOptions[0].Votes) != 2 {
		t.Fatalf("votes=%+v", trip.DestinationOptions[0].Votes)
	}

	trip, err = svc.VoteOption(context.Background(), bob, trip.ID, domain.OptionKindDestination, optID)
	if err != nil {
		t.Fatalf("VoteOption again: %v", err)
	}
	if len(trip.DestinationOptions[0].Votes) != 2 {
		t.Fatalf("second vote duplicated: %+v", trip.DestinationOptions[0].Votes)
	}

	_, err = svc.VoteOption(context.Background(), bob, trip.ID, domain.OptionKindDestination, "dest-nope")
	var appErr *trips.Error
	if !errors.As(err, &appErr) || appErr.Code != "OPTION_NOT_FOUND" {
		t.Fatalf("err=%v, want OPTION_NOT_FOUND", err)
	}
}

func TestService_AddPackingItem_AssignsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")

	updated, err := svc.AddPackingItem(context.Background(), ann, trip.ID, trips.AddPackingItemInput{
		Name:        "Sunscreen",
		Category:    domain.CategoryEssentials,
		IsEssential: true,
	})
	if err != nil {
		t.Fatalf("AddPackingItem: %v", err)
	}
	if len(updated.PackingList) != 1 {
		t.Fatalf("packingList=%+v", updated.PackingList)
	}
	it := updated.PackingList[0]
	if it.ID == "" || it.CreatedAt.IsZero() || it.IsChecked || it.AddedBy != "u1" {
		t.Fatalf("item=%+v", it)
	}
}

func TestService_TogglePinItem_RoundTrips(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")
	trip, err := svc.AddPackingItem(context.Background(), ann, trip.ID, trips.AddPackingItemInput{
		Name: "Sunscreen", Category: domain.CategoryEssentials,
	})
	if err != nil {
		t.Fatalf("AddPackingItem: %v", err)
	}
	itemID := trip.PackingList[0].ID

	trip, err = svc.TogglePinItem(context.Background(), trip.ID, itemID)
	if err != nil {
		t.Fatalf("TogglePinItem: %v", err)
	}
	if !trip.PackingList[0].IsPinned {
		t.Fatalf("item should be pinned")
	}
	trip, err = svc.TogglePinItem(context.Background(), trip.ID, itemID)
	if err != nil {
		t.Fatalf("TogglePinItem: %v", err)
	}
	if trip.PackingList[0].IsPinned {
		t.Fatalf("double toggle should restore original pin state")
	}
}

func TestService_AssignRole_SetsFreeFormLabel(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	trip := mustCreate(t, svc, ann, "Ski Trip", "")

	updated, err := svc.AssignRole(context.Background(), trip.ID, "u1", "organizer")
	if err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if updated.Members[0].Role != "organizer" {
		t.Fatalf("role=%q", updated.Members[0].Role)
	}

	_, err = svc.AssignRole(context.Background(), trip.ID, "u9", "organizer")
	var appErr *trips.Error
	if !errors.As(err, &appErr) || appErr.Code != "MEMBER_NOT_FOUND" {
		t.Fatalf("err=%v, want MEMBER_NOT_FOUND", err)
	}
}

func TestService_Load_SeedsDemoTripsForSignedInUser(t *testing.T) {
	t.Parallel()

	store := memlocalstore.NewStore()
	if err := store.SaveUser(context.Background(), ann); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	svc := trips.NewService(store, nil, newTickingClock(), nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	all, err := svc.ListTrips(context.Background())
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("trips=%d, want 2 demo trips", len(all))
	}
	if all[0].InviteCode != "BEACH23" || all[1].InviteCode != "MOUNT45" {
		t.Fatalf("codes=%q/%q", all[0].InviteCode, all[1].InviteCode)
	}
	if all[0].Status != domain.TripStatusPlanning || all[1].Status != domain.TripStatusConfirmed {
		t.Fatalf("statuses=%q/%q", all[0].Status, all[1].Status)
	}
	if all[0].Members[0].ID != ann.ID || !all[0].Members[0].IsAdmin {
		t.Fatalf("seed member=%+v", all[0].Members[0])
	}

	// Seeding writes through so the next launch reads the same collection.
	snap, err := store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Trips) != 2 {
		t.Fatalf("snapshot trips=%d", len(snap.Trips))
	}
}

func TestService_Load_StartsEmptyWithoutUser(t *testing.T) {
	t.Parallel()

	store := memlocalstore.NewStore()
	svc := trips.NewService(store, nil, newTickingClock(), nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	all, err := svc.ListTrips(context.Background())
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("trips=%+v, want none", all)
	}
	if _, err := store.LoadSnapshot(context.Background()); !errors.Is(err, portlocalstore.ErrNotFound) {
		t.Fatalf("empty launch must not write a snapshot, err=%v", err)
	}
}

func TestService_Load_DropsDanglingCurrentPointer(t *testing.T) {
	t.Parallel()

	store := memlocalstore.NewStore()
	err := store.SaveSnapshot(context.Background(), portlocalstore.Snapshot{
		Trips:         []domain.Trip{{ID: "trip-1", Name: "Kept", Status: domain.TripStatusPlanning}},
		CurrentTripID: "trip-gone",
	})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	svc := trips.NewService(store, nil, newTickingClock(), nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok, _ := svc.CurrentTrip(context.Background()); ok {
		t.Fatalf("dangling pointer should not resolve")
	}
}

func TestService_MirrorFailureDoesNotSurface(t *testing.T) {
	t.Parallel()

	store := memlocalstore.NewStore()
	m := &recordingMirror{fail: errors.New("connection refused")}
	svc := trips.NewService(store, m, newTickingClock(), nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	trip, err := svc.CreateTrip(context.Background(), ann, trips.CreateTripInput{Name: "Ski Trip"})
	if err != nil {
		t.Fatalf("CreateTrip must not surface mirror failures: %v", err)
	}
	if _, err := svc.AssignRole(context.Background(), trip.ID, "u1", "organizer"); err != nil {
		t.Fatalf("AssignRole must not surface mirror failures: %v", err)
	}
}
