package repository

import (
	"context"

	"carpool/internal/domain"
)

// RiderRepository defines the persistence operations for rider profiles.
type RiderRepository interface {
	Create(ctx context.Context, rider *domain.Rider) error
	GetByID(ctx context.Context, id string) (*domain.Rider, error)
}

// DriverProfileRepository defines the persistence operations for driver
// profiles.
type DriverProfileRepository interface {
	Create(ctx context.Context, driver *domain.DriverProfile) error
	GetByID(ctx context.Context, id string) (*domain.DriverProfile, error)
}
