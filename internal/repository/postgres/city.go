package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// CityRepository is a PostgreSQL implementation of repository.CityRepository.
type CityRepository struct {
	q Querier
}

// NewCityRepository creates a new PostgreSQL city repository.
func NewCityRepository(db *sql.DB) *CityRepository {
	return &CityRepository{q: db}
}

// GetByID retrieves a city by ID.
func (r *CityRepository) GetByID(ctx context.Context, id string) (*domain.City, error) {
	query := `
		SELECT id, name, center_lat, center_lng, default_radius_km
		FROM cities WHERE id = $1
	`

	var city domain.City
	var centerLat, centerLng sql.NullFloat64

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&city.ID,
		&city.Name,
		&centerLat,
		&centerLng,
		&city.DefaultRadiusKm,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if centerLat.Valid && centerLng.Valid {
		city.Center = domain.Point{Lat: centerLat.Float64, Lng: centerLng.Float64}
		city.HasCenter = true
	}

	return &city, nil
}

// ListActiveAreas retrieves the city's active service areas. Polygon
// vertices are stored as a JSON array of [lat, lng] pairs.
func (r *CityRepository) ListActiveAreas(ctx context.Context, cityID string) ([]*domain.ServiceArea, error) {
	query := `
		SELECT id, city_id, kind, center_lat, center_lng, radius_km, vertices
		FROM service_areas WHERE city_id = $1 AND active = TRUE
	`

	rows, err := r.q.QueryContext(ctx, query, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*domain.ServiceArea
	for rows.Next() {
		var area domain.ServiceArea
		var centerLat, centerLng, radiusKm sql.NullFloat64
		var vertices []byte

		if err := rows.Scan(
			&area.ID,
			&area.CityID,
			&area.Kind,
			&centerLat,
			&centerLng,
			&radiusKm,
			&vertices,
		); err != nil {
			return nil, err
		}

		area.Active = true
		if centerLat.Valid && centerLng.Valid {
			area.Center = domain.Point{Lat: centerLat.Float64, Lng: centerLng.Float64}
		}
		if radiusKm.Valid {
			area.RadiusKm = radiusKm.Float64
		}
		if len(vertices) > 0 {
			var pairs [][2]float64
			if err := json.Unmarshal(vertices, &pairs); err != nil {
				return nil, err
			}
			for _, p := range pairs {
				area.Vertices = append(area.Vertices, domain.Point{Lat: p[0], Lng: p[1]})
			}
		}

		areas = append(areas, &area)
	}
	return areas, rows.Err()
}
