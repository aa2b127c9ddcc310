package service

import (
	"context"
	"math"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between two
// points, using the Haversine formula.
func DistanceKm(p1, p2 domain.Point) float64 {
	dLat := degreesToRadians(p2.Lat - p1.Lat)
	dLng := degreesToRadians(p2.Lng - p1.Lng)

	rLat1 := degreesToRadians(p1.Lat)
	rLat2 := degreesToRadians(p2.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// InCircle reports whether point lies within radiusKm of center.
func InCircle(point, center domain.Point, radiusKm float64) bool {
	return DistanceKm(point, center) <= radiusKm
}

// InPolygon reports whether point lies inside the polygon using the
// ray-casting parity test. Polygons with fewer than 3 vertices never
// contain anything.
func InPolygon(point domain.Point, vertices []domain.Point) bool {
	if len(vertices) < 3 {
		return false
	}

	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lng > point.Lng) != (vj.Lng > point.Lng) &&
			point.Lat < (vj.Lat-vi.Lat)*(point.Lng-vi.Lng)/(vj.Lng-vi.Lng)+vi.Lat {
			inside = !inside
		}
		j = i
	}
	return inside
}

// inArea reports whether point lies inside a single service area.
func inArea(point domain.Point, area *domain.ServiceArea) bool {
	switch area.Kind {
	case domain.ServiceAreaPolygon:
		return InPolygon(point, area.Vertices)
	default:
		return InCircle(point, area.Center, area.RadiusKm)
	}
}

// GeoService answers serviceability questions for cities.
type GeoService struct {
	cityRepo repository.CityRepository
	cache    redis.AreaCacheInterface
	policy   PolicyProvider
}

// NewGeoService creates a new GeoService. cache may be nil.
func NewGeoService(cityRepo repository.CityRepository, cache redis.AreaCacheInterface, policy PolicyProvider) *GeoService {
	return &GeoService{
		cityRepo: cityRepo,
		cache:    cache,
		policy:   policy,
	}
}

// ServiceableForCity reports whether the point may be served in the city.
// With active service areas, the point must lie in at least one. Without
// any, the require-service-area flag decides: set means not serviceable;
// unset falls back to the city's default radius around its center, or
// unconditional serviceability when the city has no center.
func (s *GeoService) ServiceableForCity(ctx context.Context, point domain.Point, cityID string) (bool, error) {
	city, err := s.cityRepo.GetByID(ctx, cityID)
	if err != nil {
		return false, err
	}

	areas, err := s.activeAreas(ctx, cityID)
	if err != nil {
		return false, err
	}

	if len(areas) > 0 {
		for _, area := range areas {
			if inArea(point, area) {
				return true, nil
			}
		}
		return false, nil
	}

	if s.policy.Policy().RequireServiceArea {
		return false, nil
	}

	if !city.HasCenter {
		return true, nil
	}

	radius := city.DefaultRadiusKm
	if radius <= 0 {
		radius = s.policy.Policy().DefaultSearchRadiusKm
	}

	return InCircle(point, city.Center, radius), nil
}

func (s *GeoService) activeAreas(ctx context.Context, cityID string) ([]*domain.ServiceArea, error) {
	if s.cache != nil {
		if areas, ok, err := s.cache.GetCityAreas(ctx, cityID); err == nil && ok {
			return areas, nil
		}
	}

	areas, err := s.cityRepo.ListActiveAreas(ctx, cityID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetCityAreas(ctx, cityID, areas)
	}

	return areas, nil
}
