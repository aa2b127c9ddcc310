package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RiderRepository is a PostgreSQL implementation of
// repository.RiderRepository.
type RiderRepository struct {
	q Querier
}

// NewRiderRepository creates a new PostgreSQL rider repository.
func NewRiderRepository(db *sql.DB) *RiderRepository {
	return &RiderRepository{q: db}
}

// Create persists a new rider.
func (r *RiderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	query := `INSERT INTO riders (id, name, phone, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.q.ExecContext(ctx, query, rider.ID, rider.Name, rider.Phone, rider.CreatedAt)
	return mapError(err)
}

// GetByID retrieves a rider by ID.
func (r *RiderRepository) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	query := `SELECT id, name, phone, created_at FROM riders WHERE id = $1`

	var rider domain.Rider
	err := r.q.QueryRowContext(ctx, query, id).Scan(&rider.ID, &rider.Name, &rider.Phone, &rider.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &rider, nil
}

// DriverProfileRepository is a PostgreSQL implementation of
// repository.DriverProfileRepository.
type DriverProfileRepository struct {
	q Querier
}

// NewDriverProfileRepository creates a new PostgreSQL driver profile
// repository.
func NewDriverProfileRepository(db *sql.DB) *DriverProfileRepository {
	return &DriverProfileRepository{q: db}
}

// Create persists a new driver profile.
func (r *DriverProfileRepository) Create(ctx context.Context, driver *domain.DriverProfile) error {
	query := `INSERT INTO driver_profiles (id, name, phone, status, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.q.ExecContext(ctx, query, driver.ID, driver.Name, driver.Phone, driver.Status, driver.CreatedAt)
	return mapError(err)
}

// GetByID retrieves a driver profile by ID.
func (r *DriverProfileRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	query := `SELECT id, name, phone, status, created_at FROM driver_profiles WHERE id = $1`

	var driver domain.DriverProfile
	err := r.q.QueryRowContext(ctx, query, id).Scan(&driver.ID, &driver.Name, &driver.Phone, &driver.Status, &driver.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}
