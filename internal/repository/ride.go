package repository

import (
	"context"

	"carpool/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// ListByDriver retrieves a driver's rides, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// UpdateStatus moves a ride to a new status.
	UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error

	// ReserveSeats atomically decrements seats_available by n, but only when
	// n seats are available. It returns false, without mutating anything,
	// when they are not. This is a single conditional UPDATE so concurrent
	// reservations against the same ride cannot oversell.
	ReserveSeats(ctx context.Context, rideID string, n int) (bool, error)

	// ReleaseSeats atomically increments seats_available by n, clamped at
	// seats_total to defend against double release.
	ReleaseSeats(ctx context.Context, rideID string, n int) error
}
