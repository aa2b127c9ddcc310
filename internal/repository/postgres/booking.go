package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of
// repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, ride_id, rider_id, driver_id, seats_requested, price_per_seat, subtotal, commission_type, commission_value, commission_amount, total_amount, status, payment_method, payment_status, payment_ref, hold_expires_at, created_at, cancelled_at, cancel_reason`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	var paymentRef sql.NullString
	if booking.PaymentRef != "" {
		paymentRef = sql.NullString{String: booking.PaymentRef, Valid: true}
	}

	var cancelledAt sql.NullTime
	if !booking.CancelledAt.IsZero() {
		cancelledAt = sql.NullTime{Time: booking.CancelledAt, Valid: true}
	}

	var cancelReason sql.NullString
	if booking.CancelReason != "" {
		cancelReason = sql.NullString{String: booking.CancelReason, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.RideID,
		booking.RiderID,
		booking.DriverID,
		booking.SeatsRequested,
		booking.PricePerSeat,
		booking.Subtotal,
		booking.CommissionType,
		booking.CommissionValue,
		booking.CommissionAmount,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentMethod,
		booking.PaymentStatus,
		paymentRef,
		booking.HoldExpiresAt,
		booking.CreatedAt,
		cancelledAt,
		cancelReason,
	)

	return mapError(err)
}

func scanBooking(row interface{ Scan(dest ...any) error }) (*domain.Booking, error) {
	var booking domain.Booking
	var paymentRef sql.NullString
	var cancelledAt sql.NullTime
	var cancelReason sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.RiderID,
		&booking.DriverID,
		&booking.SeatsRequested,
		&booking.PricePerSeat,
		&booking.Subtotal,
		&booking.CommissionType,
		&booking.CommissionValue,
		&booking.CommissionAmount,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&paymentRef,
		&booking.HoldExpiresAt,
		&booking.CreatedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	if paymentRef.Valid {
		booking.PaymentRef = paymentRef.String
	}
	if cancelledAt.Valid {
		booking.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		booking.CancelReason = cancelReason.String
	}

	return &booking, nil
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// ListByRide retrieves all bookings for a ride.
func (r *BookingRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ride_id = $1 ORDER BY created_at`

	return r.list(ctx, query, rideID)
}

// CountActiveByRider counts bookings consuming the rider's active quota.
func (r *BookingRepository) CountActiveByRider(ctx context.Context, riderID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE rider_id = $1 AND status IN ('REQUESTED', 'ACCEPTED', 'PAYMENT_PENDING', 'CONFIRMED')
	`

	var count int
	if err := r.q.QueryRowContext(ctx, query, riderID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// ListDueForExpiry returns bookings whose hold deadline has elapsed while
// they still sit in an expirable status.
func (r *BookingRepository) ListDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE status IN ('REQUESTED', 'PAYMENT_PENDING') AND hold_expires_at <= $1
		ORDER BY hold_expires_at
		LIMIT $2
	`

	return r.list(ctx, query, now, limit)
}

// Update persists booking mutations produced by a lifecycle transition.
// The status predicate makes the write a compare-and-swap: a row that left
// the expected status since it was read stays untouched and ErrStaleStatus
// is returned, so two racing transitions from the same state cannot both
// land.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2, payment_ref = $3, hold_expires_at = $4, cancelled_at = $5, cancel_reason = $6
		WHERE id = $7 AND status = $8
	`

	var paymentRef sql.NullString
	if booking.PaymentRef != "" {
		paymentRef = sql.NullString{String: booking.PaymentRef, Valid: true}
	}

	var cancelledAt sql.NullTime
	if !booking.CancelledAt.IsZero() {
		cancelledAt = sql.NullTime{Time: booking.CancelledAt, Valid: true}
	}

	var cancelReason sql.NullString
	if booking.CancelReason != "" {
		cancelReason = sql.NullString{String: booking.CancelReason, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		paymentRef,
		booking.HoldExpiresAt,
		cancelledAt,
		cancelReason,
		booking.ID,
		from,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrStaleStatus
	}

	return nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// BookingEventRepository is a PostgreSQL implementation of
// repository.BookingEventRepository. Rows are insert-only.
type BookingEventRepository struct {
	q Querier
}

// NewBookingEventRepository creates a new PostgreSQL event repository.
func NewBookingEventRepository(db *sql.DB) *BookingEventRepository {
	return &BookingEventRepository{q: db}
}

// NewBookingEventRepositoryWithTx creates an event repository using a
// transaction.
func NewBookingEventRepositoryWithTx(tx *sql.Tx) *BookingEventRepository {
	return &BookingEventRepository{q: tx}
}

// Append persists a new transition event.
func (r *BookingEventRepository) Append(ctx context.Context, event *domain.BookingEvent) error {
	query := `
		INSERT INTO booking_events (id, booking_id, name, actor_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var actorID sql.NullString
	if event.ActorID != "" {
		actorID = sql.NullString{String: event.ActorID, Valid: true}
	}

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		event.ID,
		event.BookingID,
		event.Name,
		actorID,
		metadata,
		event.CreatedAt,
	)

	return mapError(err)
}

// ListByBooking retrieves a booking's events in chronological order.
func (r *BookingEventRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error) {
	query := `
		SELECT id, booking_id, name, actor_id, metadata, created_at
		FROM booking_events WHERE booking_id = $1 ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.BookingEvent
	for rows.Next() {
		var event domain.BookingEvent
		var actorID sql.NullString
		var metadata []byte

		if err := rows.Scan(
			&event.ID,
			&event.BookingID,
			&event.Name,
			&actorID,
			&metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}

		if actorID.Valid {
			event.ActorID = actorID.String
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, err
			}
		}

		events = append(events, &event)
	}
	return events, rows.Err()
}
