package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"carpool/internal/domain"
)

const areaCacheTTL = 5 * time.Minute

// CacheStore caches city service areas so the serviceability check does not
// hit PostgreSQL on every booking or ride creation. Area data changes rarely
// and only through admin tooling, so a short TTL is sufficient invalidation.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

func areaCacheKey(cityID string) string {
	return fmt.Sprintf("cache:city:%s:areas", cityID)
}

// GetCityAreas returns the cached active service areas for a city.
// The second return value is false on a cache miss.
func (s *CacheStore) GetCityAreas(ctx context.Context, cityID string) ([]*domain.ServiceArea, bool, error) {
	data, err := s.client.Get(ctx, areaCacheKey(cityID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var areas []*domain.ServiceArea
	if err := json.Unmarshal(data, &areas); err != nil {
		return nil, false, err
	}

	return areas, true, nil
}

// SetCityAreas caches a city's active service areas.
func (s *CacheStore) SetCityAreas(ctx context.Context, cityID string, areas []*domain.ServiceArea) error {
	data, err := json.Marshal(areas)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, areaCacheKey(cityID), data, areaCacheTTL).Err()
}
