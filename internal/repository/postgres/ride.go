package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, driver_id, city_id, origin_lat, origin_lng, destination_lat, destination_lng, seats_total, seats_available, price_per_seat, status, departure_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.CityID,
		ride.Origin.Lat,
		ride.Origin.Lng,
		ride.Destination.Lat,
		ride.Destination.Lng,
		ride.SeatsTotal,
		ride.SeatsAvailable,
		ride.PricePerSeat,
		ride.Status,
		ride.DepartureAt,
		ride.CreatedAt,
	)

	return mapError(err)
}

const rideColumns = `id, driver_id, city_id, origin_lat, origin_lng, destination_lat, destination_lng, seats_total, seats_available, price_per_seat, status, departure_at, created_at`

func scanRide(row interface{ Scan(dest ...any) error }) (*domain.Ride, error) {
	var ride domain.Ride
	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.CityID,
		&ride.Origin.Lat,
		&ride.Origin.Lng,
		&ride.Destination.Lat,
		&ride.Destination.Lng,
		&ride.SeatsTotal,
		&ride.SeatsAvailable,
		&ride.PricePerSeat,
		&ride.Status,
		&ride.DepartureAt,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// ListByDriver retrieves a driver's rides, newest first.
func (r *RideRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// UpdateStatus moves a ride to a new status.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	query := `UPDATE rides SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ReserveSeats decrements seats_available by n only when n seats remain.
// The WHERE clause makes the decrement a compare-and-swap: the row is
// untouched and false is returned when availability is short.
func (r *RideRepository) ReserveSeats(ctx context.Context, rideID string, n int) (bool, error) {
	query := `
		UPDATE rides
		SET seats_available = seats_available - $2
		WHERE id = $1 AND seats_available >= $2
	`

	result, err := r.q.ExecContext(ctx, query, rideID, n)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// ReleaseSeats increments seats_available by n, clamped at seats_total.
func (r *RideRepository) ReleaseSeats(ctx context.Context, rideID string, n int) error {
	query := `
		UPDATE rides
		SET seats_available = LEAST(seats_available + $2, seats_total)
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, rideID, n)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
