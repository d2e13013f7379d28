// Package localstore implements the localstore port on Redis. The key layout
// mirrors the browser-storage scheme this state originally lived under,
// including the one-time migration from the legacy trip_trio_* keys to the
// tripsync_* keys.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trip-trio/trip-planner-api/internal/domain"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
)

// Storage keys. The trip_trio_* names are the legacy scheme migrated at load.
const (
	keyTrips       = "tripsync_trips"
	keyCurrentTrip = "tripsync_current_trip"
	keyUser        = "tripsync_user"

	legacyKeyTrips = "trip_trio_trips"
	legacyKeyUser  = "trip_trio_user"
)

// Store is a Redis implementation of localstore.Store.
type Store struct {
	rdb *redis.Client
}

// NewStore connects to Redis at redisURL and verifies the connection.
func NewStore(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) LoadSnapshot(ctx context.Context) (localstore.Snapshot, error) {
	if err := s.migrateLegacyKey(ctx, legacyKeyTrips, keyTrips); err != nil {
		return localstore.Snapshot{}, err
	}

	raw, err := s.rdb.Get(ctx, keyTrips).Result()
	if errors.Is(err, redis.Nil) {
		return localstore.Snapshot{}, localstore.ErrNotFound
	}
	if err != nil {
		return localstore.Snapshot{}, fmt.Errorf("load trips: %w", err)
	}

	var trips []domain.Trip
	if err := json.Unmarshal([]byte(raw), &trips); err != nil {
		return localstore.Snapshot{}, fmt.Errorf("decode trips: %w", err)
	}

	snap := localstore.Snapshot{Trips: trips}
	cur, err := s.rdb.Get(ctx, keyCurrentTrip).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// No current trip stored.
	case err != nil:
		return localstore.Snapshot{}, fmt.Errorf("load current trip: %w", err)
	default:
		snap.CurrentTripID = domain.TripID(cur)
	}
	return snap, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap localstore.Snapshot) error {
	trips := snap.Trips
	if trips == nil {
		trips = []domain.Trip{}
	}
	b, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("encode trips: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyTrips, b, 0)
	if snap.CurrentTripID == "" {
		pipe.Del(ctx, keyCurrentTrip)
	} else {
		pipe.Set(ctx, keyCurrentTrip, string(snap.CurrentTripID), 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) LoadUser(ctx context.Context) (domain.User, error) {
	if err := s.migrateLegacyKey(ctx, legacyKeyUser, keyUser); err != nil {
		return domain.User{}, err
	}

	raw, err := s.rdb.Get(ctx, keyUser).Result()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, localstore.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.rdb.Set(ctx, keyUser, b, 0).Err(); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) ClearUser(ctx context.Context) error {
	if err := s.rdb.Del(ctx, keyUser, legacyKeyUser).Err(); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

// migrateLegacyKey renames a legacy key to its current name once. The new
// key wins when both exist.
func (s *Store) migrateLegacyKey(ctx context.Context, from, to string) error {
	exists, err := s.rdb.Exists(ctx, to).Result()
	if err != nil {
		return fmt.Errorf("check key %s: %w", to, err)
	}
	if exists > 0 {
		return nil
	}
	legacy, err := s.rdb.Exists(ctx, from).Result()
	if err != nil {
		return fmt.Errorf("check key %s: %w", from, err)
	}
	if legacy == 0 {
		return nil
	}
	if err := s.rdb.Rename(ctx, from, to).Err(); err != nil {
		return fmt.Errorf("migrate key %s: %w", from, err)
	}
	return nil
}
