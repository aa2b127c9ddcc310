package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const holdIndexKey = "bookings:holds"

// HoldStore indexes seat holds in a Redis sorted set, scored by the hold
// deadline, so the expiry worker can find due bookings without scanning the
// database. The database remains the source of truth; a stale index entry is
// harmless because ExpireIfDue is idempotent.
type HoldStore struct {
	client *redis.Client
}

// NewHoldStore creates a new HoldStore.
func NewHoldStore(client *redis.Client) *HoldStore {
	return &HoldStore{client: client}
}

// Track records a booking's hold deadline.
func (s *HoldStore) Track(ctx context.Context, bookingID string, expiresAt time.Time) error {
	return s.client.ZAdd(ctx, holdIndexKey, redis.Z{
		Score:  float64(expiresAt.Unix()),
		Member: bookingID,
	}).Err()
}

// Untrack removes a booking from the index once its hold no longer matters
// (confirmed, cancelled, rejected or expired).
func (s *HoldStore) Untrack(ctx context.Context, bookingID string) error {
	return s.client.ZRem(ctx, holdIndexKey, bookingID).Err()
}

// Due returns up to limit booking IDs whose hold deadline is at or before
// now, oldest first.
func (s *HoldStore) Due(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	return s.client.ZRangeByScore(ctx, holdIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
}
