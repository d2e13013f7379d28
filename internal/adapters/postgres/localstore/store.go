package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trip-trio/trip-planner-api/internal/domain"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
)

// Store is a Postgres implementation of localstore.Store. Both records are
// single-row upserts; the snapshot's trip collection is stored as one jsonb
// value because writes are always whole-value.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) LoadSnapshot(ctx context.Context) (localstore.Snapshot, error) {
	if s.pool == nil {
		return localstore.Snapshot{}, errors.New("nil postgres pool")
	}

	var (
		raw []byte
		cur *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT trips, current_trip_id FROM local_snapshots WHERE id = 1
	`).Scan(&raw, &cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return localstore.Snapshot{}, localstore.ErrNotFound
	}
	if err != nil {
		return localstore.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var trips []domain.Trip
	if err := json.Unmarshal(raw, &trips); err != nil {
		return localstore.Snapshot{}, fmt.Errorf("decode trips: %w", err)
	}
	snap := localstore.Snapshot{Trips: trips}
	if cur != nil {
		snap.CurrentTripID = domain.TripID(*cur)
	}
	return snap, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap localstore.Snapshot) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}

	trips := snap.Trips
	if trips == nil {
		trips = []domain.Trip{}
	}
	b, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("encode trips: %w", err)
	}
	var cur *string
	if snap.CurrentTripID != "" {
		v := string(snap.CurrentTripID)
		cur = &v
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO local_snapshots (id, trips, current_trip_id, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET trips = EXCLUDED.trips,
		    current_trip_id = EXCLUDED.current_trip_id,
		    updated_at = EXCLUDED.updated_at
	`, b, cur, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) LoadUser(ctx context.Context) (domain.User, error) {
	if s.pool == nil {
		return domain.User{}, errors.New("nil postgres pool")
	}

	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM session_users WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, localstore.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}

	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO session_users (id, record, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET record = EXCLUDED.record,
		    updated_at = EXCLUDED.updated_at
	`, b, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) ClearUser(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM session_users WHERE id = 1`); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}
