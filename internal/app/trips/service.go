package trips

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trip-trio/trip-planner-api/internal/domain"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/clock"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/mirror"
)

// inviteCodeAttempts bounds the collision retry loop on trip creation. The
// code space is 36^6, so exhausting this is effectively a store corruption.
const inviteCodeAttempts = 5

// Service owns the trip collection and the current-trip pointer. Every
// mutation follows the same pattern: build a new trip value from the old one,
// replace it in the collection by id, write the whole snapshot through to the
// local store, then push a best-effort copy to the remote mirror.
type Service struct {
	store  localstore.Store
	mirror mirror.Mirror
	clock  clock.Clock
	log    *zap.Logger

	mu      sync.RWMutex
	trips   []domain.Trip
	current domain.TripID

	newInviteCode func() string
}

func NewService(store localstore.Store, m mirror.Mirror, clk clock.Clock, log *zap.Logger) *Service {
	if m == nil {
		m = mirror.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:         store,
		mirror:        m,
		clock:         clk,
		log:           log,
		newInviteCode: domain.NewInviteCode,
	}
}

// SetNewInviteCodeForTest overrides invite-code generation for deterministic
// tests. It should not be used in production code.
func (s *Service) SetNewInviteCodeForTest(fn func() string) {
	if fn != nil {
		s.newInviteCode = fn
	}
}

// Load hydrates the collection from the local store. A missing snapshot is
// not an error: first launch for a signed-in user seeds a demo collection so
// the planner is never empty; without a session user the collection starts
// empty. A current-trip pointer that no longer resolves is dropped.
func (s *Service) Load(ctx context.Context) error {
	snap, err := s.store.LoadSnapshot(ctx)
	if errors.Is(err, localstore.ErrNotFound) {
		u, uerr := s.store.LoadUser(ctx)
		if errors.Is(uerr, localstore.ErrNotFound) {
			s.mu.Lock()
			s.trips, s.current = nil, ""
			s.mu.Unlock()
			return nil
		}
		if uerr != nil {
			return fmt.Errorf("load user: %w", uerr)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.trips = demoTrips(u)
		s.current = ""
		return s.persistLocked(ctx)
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = snap.Trips
	s.current = ""
	for _, t := range snap.Trips {
		if t.ID == snap.CurrentTripID {
			s.current = snap.CurrentTripID
			break
		}
	}
	return nil
}

func (s *Service) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *Service) GetTrip(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfLocked(id)
	if i < 0 {
		return domain.Trip{}, errTripNotFound()
	}
	return s.trips[i].Clone(), nil
}

// CurrentTrip re-resolves the current-trip pointer against the collection.
// The second result is false when no trip is selected.
func (s *Service) CurrentTrip(ctx context.Context) (domain.Trip, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return domain.Trip{}, false, nil
	}
	i := s.indexOfLocked(s.current)
	if i < 0 {
		return domain.Trip{}, false, nil
	}
	return s.trips[i].Clone(), true, nil
}

func (s *Service) CreateTrip(ctx context.Context, actor domain.User, in CreateTripInput) (domain.Trip, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Trip{}, errValidation("invalid name", map[string]any{"name": "must be non-empty"})
	}

	s.mu.Lock()
	code, err := s.uniqueInviteCodeLocked()
	if err != nil {
		s.mu.Unlock()
		return domain.Trip{}, err
	}

	now := s.clock.Now()
	t := domain.Trip{
		ID:          domain.NewTripID(now),
		Name:        name,
		Description: in.Description,
		Status:      domain.TripStatusPlanning,
		CreatedAt:   now,
		InviteCode:  code,
		Members: []domain.Member{
			{ID: actor.ID, Name: actor.Name, Avatar: actor.Avatar, IsAdmin: true},
		},
	}

	s.trips = append(s.trips, t)
	s.current = t.ID
	if err := s.persistLocked(ctx); err != nil {
		s.mu.Unlock()
		return domain.Trip{}, err
	}
	out := t.Clone()
	s.mu.Unlock()

	// Mirror outside the lock: the push can take seconds and must not block
	// other trip operations.
	s.mirrorCreate(ctx, out)
	return out, nil
}

// JoinTrip matches the invite code case-insensitively. Joining a trip the
// actor already belongs to selects it and succeeds without mutation.
func (s *Service) JoinTrip(ctx context.Context, actor domain.User, code string) (domain.Trip, error) {
	code = domain.NormalizeInviteCode(code)
	if code == "" {
		return domain.Trip{}, errValidation("invalid invite code", map[string]any{"code": "must be non-empty"})
	}

	s.mu.Lock()

	idx := -1
	for i, t := range s.trips {
		if domain.NormalizeInviteCode(t.InviteCode) == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.Trip{}, &Error{Status: 404, Code: "INVITE_CODE_NOT_FOUND", Message: "no trip with that invite code"}
	}

	t := s.trips[idx]
	if t.HasMember(actor.ID) {
		s.current = t.ID
		err := s.persistLocked(ctx)
		out := t.Clone()
		s.mu.Unlock()
		if err != nil {
			return domain.Trip{}, err
		}
		return out, nil
	}

	updated := t.Clone()
	updated.Members = append(updated.Members, domain.Member{
		ID:     actor.ID,
		Name:   actor.Name,
		Avatar: actor.Avatar,
	})
	s.trips[idx] = updated
	s.current = updated.ID
	if err := s.persistLocked(ctx); err != nil {
		s.mu.Unlock()
		return domain.Trip{}, err
	}
	out := updated.Clone()
	s.mu.Unlock()

	s.mirrorUpdate(ctx, out)
	return out, nil
}

// SelectTrip points the current-trip reference at the given trip. An unknown
// id is silently ignored.
func (s *Service) SelectTrip(ctx context.Context, id domain.TripID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfLocked(id) < 0 {
		return nil
	}
	s.current = id
	return s.persistLocked(ctx)
}

func (s *Service) DeleteTrip(ctx context.Context, id domain.TripID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return errTripNotFound()
	}
	s.trips = append(s.trips[:i], s.trips[i+1:]...)
	if s.current == id {
		s.current = ""
	}
	return s.persistLocked(ctx)
}

func (s *Service) UpdateTrip(ctx context.Context, id domain.TripID, in UpdateTripInput) (domain.Trip, error) {
	if in.Name.IsNull() {
		return domain.Trip{}, errValidation("invalid name", map[string]any{"name": "must not be null"})
	}
	var name string
	if in.Name.IsSpecified() {
		name = domain.NormalizeHumanName(in.Name.Value())
		if name == "" {
			return domain.Trip{}, errValidation("invalid name", map[string]any{"name": "must be non-empty"})
		}
	}

	return s.mutateTrip(ctx, id, func(t *domain.Trip) error {
		if in.Name.IsSpecified() {
			t.Name = name
		}
		if in.Description.IsNull() {
			t.Description = ""
		} else if in.Description.IsSpecified() {
			t.Description = in.Description.Value()
		}
		return nil
	})
}

// ProposeOption appends a new option of the given kind, with the proposer's
// vote already recorded. Identical values are not deduplicated.
func (s *Service) ProposeOption(ctx context.Context, actor domain.User, id domain.TripID, kind domain.OptionKind, value string) (domain.Trip, error) {
	if value == "" {
		return domain.Trip{}, errValidation("invalid option", map[string]any{"value": "must be non-empty"})
	}
	if !kind.Valid() {
		return domain.Trip{}, errValidation("invalid option kind", map[string]any{"kind": "unknown"})
	}

	return s.mutateTrip(ctx, id, func(t *domain.Trip) error {
		opt := domain.Option{
			ID:    domain.NewOptionID(kind, s.clock.Now()),
			Value: value,
			Votes: []domain.Vote{{UserID: actor.ID}},
		}
		*t = t.WithOptions(kind, append(t.Options(kind), opt))
		return nil
	})
}

// VoteOption records the actor's vote on an option. Voting twice is a no-op.
func (s *Service) VoteOption(ctx context.Context, actor domain.User, id domain.TripID, kind domain.OptionKind, optionID domain.OptionID) (domain.Trip, error) {
	if !kind.Valid() {
		return domain.Trip{}, errValidation("invalid option kind", map[string]any{"kind": "unknown"})
	}

	return s.mutateTrip(ctx, id, func(t *domain.Trip) error {
		opts := t.Options(kind)
		for i, o := range opts {
			if o.ID != optionID {
				continue
			}
			if !o.HasVote(actor.ID) {
				opts[i].Votes = append(opts[i].Votes, domain.Vote{UserID: actor.ID})
			}
			*t = t.WithOptions(kind, opts)
			return nil
		}
		return &Error{Status: 404, Code: "OPTION_NOT_FOUND", Message: "option not found"}
	})
}

func (s *Service) AddPackingItem(ctx context.Context, actor domain.User, id domain.TripID, in AddPackingItemInput) (domain.Trip, error) {
	if in.Name == "" {
		return domain.Trip{}, errValidation("invalid item", map[string]any{"name": "must be non-empty"})
	}
	if !in.Category.Valid() {
		return domain.Trip{}, errValidation("invalid item", map[string]any{"category": "unknown"})
	}

	return s.mutateTrip(ctx, id, func(t *domain.Trip) error {
		now := s.clock.Now()
		t.PackingList = append(t.PackingList, domain.PackingItem{
			ID:          domain.NewItemID(now),
			Name:        in.Name,
			Category:    in.Category,
			AddedBy:     actor.ID,
			IsEssential: in.IsEssential,
			CreatedAt:   now,
		})
		return nil
	})
}

func (s *Service) TogglePinItem(ctx context.Context, id domain.TripID, itemID domain.ItemID) (domain.Trip, error) {
	return s.mutateTrip(ctx, id, func(t *domain.Trip) error {
		for i, it := range t.PackingList {
			if it.ID == itemID {
				t.PackingList[i].IsPinned = !it.IsPinned
				return nil
			}
		}
		return &Error{Status: 404, Code: "ITEM_NOT_FOUND", Message: "packing item not found"}
	})
}

// AssignRole sets the member's free-form role label. The role value is not
// checked against a fixed set.
func (s *Service) AssignRole(ctx context.Context, id domain.TripID, userID domain.UserID, role string) (domain.Trip, error) {
	return s.mutateTrip(ctx, id, func(t *domain.Trip) error {
		for i, m := range t.Members {
			if m.ID == userID {
				t.Members[i].Role = role
				return nil
			}
		}
		return &Error{Status: 404, Code: "MEMBER_NOT_FOUND", Message: "member not found"}
	})
}

// mutateTrip applies fn to a clone of the trip, replaces it in the
// collection, persists the snapshot, and mirrors the update after releasing
// the lock.
func (s *Service) mutateTrip(ctx context.Context, id domain.TripID, fn func(*domain.Trip) error) (domain.Trip, error) {
	s.mu.Lock()

	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Trip{}, errTripNotFound()
	}

	updated := s.trips[i].Clone()
	if err := fn(&updated); err != nil {
		s.mu.Unlock()
		return domain.Trip{}, err
	}

	s.trips[i] = updated
	if err := s.persistLocked(ctx); err != nil {
		s.mu.Unlock()
		return domain.Trip{}, err
	}
	out := updated.Clone()
	s.mu.Unlock()

	s.mirrorUpdate(ctx, out)
	return out, nil
}

func (s *Service) indexOfLocked(id domain.TripID) int {
	for i, t := range s.trips {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) uniqueInviteCodeLocked() (string, error) {
	for range inviteCodeAttempts {
		code := s.newInviteCode()
		taken := false
		for _, t := range s.trips {
			if domain.NormalizeInviteCode(t.InviteCode) == domain.NormalizeInviteCode(code) {
				taken = true
				break
			}
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique invite code after %d attempts", inviteCodeAttempts)
}

func (s *Service) persistLocked(ctx context.Context) error {
	snap := localstore.Snapshot{
		Trips:         append([]domain.Trip(nil), s.trips...),
		CurrentTripID: s.current,
	}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Mirror pushes are best-effort: failures are logged and local state stays
// authoritative.
func (s *Service) mirrorCreate(ctx context.Context, t domain.Trip) {
	if err := s.mirror.CreateTrip(ctx, t); err != nil {
		s.log.Warn("mirror create failed", zap.String("trip_id", string(t.ID)), zap.Error(err))
	}
}

func (s *Service) mirrorUpdate(ctx context.Context, t domain.Trip) {
	if err := s.mirror.UpdateTrip(ctx, t); err != nil {
		s.log.Warn("mirror update failed", zap.String("trip_id", string(t.ID)), zap.Error(err))
	}
}

// demoTrips is the first-launch fixture shown to a signed-in user with no
// stored collection.
func demoTrips(u domain.User) []domain.Trip {
	mustTime := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return t
	}
	selDate := "2025-06-10T00:00:00Z"
	selDest := "Yosemite National Park"

	return []domain.Trip{
		{
			ID:          "trip-1",
			Name:        "Summer Beach Vacation",
			Description: "Two-week getaway to the coast",
			Status:      domain.TripStatusPlanning,
			CreatedAt:   mustTime("2025-03-15T12:00:00Z"),
			InviteCode:  "BEACH23",
			Members: []domain.Member{
				{ID: u.ID, Name: u.Name, Avatar: u.Avatar, IsAdmin: true, Role: "organizer"},
				{ID: "user-2", Name: "Alex Johnson", Role: "photographer"},
			},
			DateOptions: []domain.Option{
				{ID: "date-1", Value: "July 15-30, 2025", Votes: []domain.Vote{{UserID: u.ID}}},
				{ID: "date-2", Value: "August 1-15, 2025", Votes: []domain.Vote{}},
			},
			DestinationOptions: []domain.Option{
				{ID: "dest-1", Value: "Malibu, CA", Votes: []domain.Vote{{UserID: u.ID}}},
				{ID: "dest-2", Value: "San Diego, CA", Votes: []domain.Vote{}},
			},
			TransportOptions: []domain.Option{
				{ID: "trans-1", Value: "Car", Votes: []domain.Vote{{UserID: u.ID}}},
			},
			PackingList: []domain.PackingItem{
				{ID: "pack-1", Name: "Sunscreen", Category: domain.CategoryEssentials, AddedBy: u.ID, IsPinned: true, IsEssential: true, CreatedAt: mustTime("2025-03-16T10:00:00Z")},
				{ID: "pack-2", Name: "Beach towel", Category: domain.CategoryEssentials, AddedBy: u.ID, IsEssential: true, CreatedAt: mustTime("2025-03-16T10:05:00Z")},
				{ID: "pack-3", Name: "Swimsuit", Category: domain.CategoryClothing, AddedBy: u.ID, IsPinned: true, IsChecked: true, CreatedAt: mustTime("2025-03-16T10:10:00Z")},
			},
		},
		{
			ID:          "trip-2",
			Name:        "Mountain Hiking Trip",
			Description: "Weekend hiking adventure",
			Status:      domain.TripStatusConfirmed,
			CreatedAt:   mustTime("2025-02-20T15:30:00Z"),
			InviteCode:  "MOUNT45",
			Members: []domain.Member{
				{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Role: "navigator"},
				{ID: "user-3", Name: "Sam Wilson", IsAdmin: true, Role: "organizer"},
			},
			PackingList: []domain.PackingItem{
				{ID: "pack-4", Name: "Hiking boots", Category: domain.CategoryEssentials, AddedBy: "user-3", IsPinned: true, IsEssential: true, CreatedAt: mustTime("2025-02-21T09:00:00Z")},
			},
			SelectedDate:        &selDate,
			SelectedDestination: &selDest,
		},
	}
}
