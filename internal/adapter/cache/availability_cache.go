package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/railseat/internal/core/domain"
)

const defaultSnapshotTTL = 5 * time.Second

// AvailabilityCache keeps display snapshots of trip occupancy in Redis. It is
// never consulted for admission decisions.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

func Key(trip domain.TripKey) string {
	return fmt.Sprintf("availability:%d:%d", trip.TrainID, trip.Departure.UnixNano())
}

// Get returns nil without error on a miss.
func (c *AvailabilityCache) Get(ctx context.Context, trip domain.TripKey) (*domain.TripAvailability, error) {
	raw, err := c.client.Get(ctx, Key(trip)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability snapshot: %w", err)
	}

	var snap domain.TripAvailability
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode availability snapshot: %w", err)
	}
	return &snap, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, trip domain.TripKey, snap *domain.TripAvailability) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode availability snapshot: %w", err)
	}
	if err := c.client.Set(ctx, Key(trip), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set availability snapshot: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, trip domain.TripKey) error {
	if err := c.client.Del(ctx, Key(trip)).Err(); err != nil {
		return fmt.Errorf("invalidate availability snapshot: %w", err)
	}
	return nil
}
