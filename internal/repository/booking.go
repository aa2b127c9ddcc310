package repository

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListByRide retrieves all bookings for a ride.
	ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error)

	// CountActiveByRider counts the rider's bookings in the statuses that
	// consume the active-booking quota.
	CountActiveByRider(ctx context.Context, riderID string) (int, error)

	// ListDueForExpiry returns bookings whose hold deadline has elapsed and
	// whose status still allows expiry.
	ListDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)

	// Update persists booking mutations produced by a lifecycle transition.
	// The write is guarded on the status the caller read: when the row has
	// left that status, nothing is written and ErrStaleStatus is returned.
	Update(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error
}

// BookingEventRepository is the append-only audit trail of lifecycle
// transitions. Events are never updated or deleted.
type BookingEventRepository interface {
	// Append persists a new transition event.
	Append(ctx context.Context, event *domain.BookingEvent) error

	// ListByBooking retrieves a booking's events in chronological order.
	ListByBooking(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error)
}
