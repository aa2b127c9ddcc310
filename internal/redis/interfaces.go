package redis

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// HoldStoreInterface defines the interface for the seat-hold expiry index.
type HoldStoreInterface interface {
	Track(ctx context.Context, bookingID string, expiresAt time.Time) error
	Untrack(ctx context.Context, bookingID string) error
	Due(ctx context.Context, now time.Time, limit int64) ([]string, error)
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, bookingID string) error
}

// AreaCacheInterface defines the interface for the service-area cache.
type AreaCacheInterface interface {
	GetCityAreas(ctx context.Context, cityID string) ([]*domain.ServiceArea, bool, error)
	SetCityAreas(ctx context.Context, cityID string, areas []*domain.ServiceArea) error
}

// Ensure concrete types implement interfaces.
var (
	_ HoldStoreInterface = (*HoldStore)(nil)
	_ LockStoreInterface = (*LockStore)(nil)
	_ AreaCacheInterface = (*CacheStore)(nil)
)
