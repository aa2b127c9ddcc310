package repository

import (
	"context"

	"carpool/internal/domain"
)

// CityRepository defines read access to cities and their service areas.
// Area data entry is an admin concern outside this core.
type CityRepository interface {
	// GetByID retrieves a city by ID.
	GetByID(ctx context.Context, id string) (*domain.City, error)

	// ListActiveAreas retrieves the city's active service areas.
	ListActiveAreas(ctx context.Context, cityID string) ([]*domain.ServiceArea, error)
}
