package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusRequested      BookingStatus = "REQUESTED"
	BookingStatusAccepted       BookingStatus = "ACCEPTED"
	BookingStatusRejected       BookingStatus = "REJECTED"
	BookingStatusPaymentPending BookingStatus = "PAYMENT_PENDING"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
	BookingStatusCompleted      BookingStatus = "COMPLETED"
	BookingStatusExpired        BookingStatus = "EXPIRED"
	BookingStatusRefunded       BookingStatus = "REFUNDED"
)

// PaymentMethod represents how a booking is paid.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodStripe   PaymentMethod = "STRIPE"
	PaymentMethodRazorpay PaymentMethod = "RAZORPAY"
)

// PaymentStatus represents the payment state of a booking.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// CommissionType distinguishes percent from fixed commission policies.
type CommissionType string

const (
	CommissionPercent CommissionType = "PERCENT"
	CommissionFixed   CommissionType = "FIXED"
)

// Booking is a rider's claim on seats of a ride, together with the price
// breakdown frozen at creation time. All amounts are minor units.
type Booking struct {
	ID               string
	RideID           string
	RiderID          string
	DriverID         string
	SeatsRequested   int
	PricePerSeat     int64
	Subtotal         int64
	CommissionType   CommissionType
	CommissionValue  float64
	CommissionAmount int64
	TotalAmount      int64
	Status           BookingStatus
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	PaymentRef       string
	HoldExpiresAt    time.Time
	CreatedAt        time.Time
	CancelledAt      time.Time
	CancelReason     string
}

// BookingEvent is one immutable row of a booking's audit trail. ActorID is
// empty for system-driven transitions (hold expiry).
type BookingEvent struct {
	ID        string
	BookingID string
	Name      string
	ActorID   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// bookingTransitions is the state machine: the set of statuses each status
// may move to. Guards beyond pure state (actor, deadline, payment method)
// live in the booking service.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusRequested: {
		BookingStatusAccepted,
		BookingStatusRejected,
		BookingStatusCancelled,
		BookingStatusExpired,
	},
	BookingStatusAccepted: {
		BookingStatusPaymentPending,
		BookingStatusConfirmed, // cash only
		BookingStatusCancelled,
	},
	BookingStatusPaymentPending: {
		BookingStatusConfirmed,
		BookingStatusCancelled,
		BookingStatusExpired,
	},
	BookingStatusConfirmed: {
		BookingStatusCancelled,
		BookingStatusCompleted,
		BookingStatusRefunded,
	},
	BookingStatusCompleted: {
		BookingStatusRefunded,
	},
}

// CanTransition reports whether the state machine permits moving from one
// booking status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// HoldsSeats reports whether a booking in this status still occupies seat
// inventory. Terminal statuses reached through release paths do not.
func (s BookingStatus) HoldsSeats() bool {
	switch s {
	case BookingStatusRequested,
		BookingStatusAccepted,
		BookingStatusPaymentPending,
		BookingStatusConfirmed,
		BookingStatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether the booking counts against the rider's
// active-booking cap.
func (s BookingStatus) IsActive() bool {
	switch s {
	case BookingStatusRequested,
		BookingStatusAccepted,
		BookingStatusPaymentPending,
		BookingStatusConfirmed:
		return true
	}
	return false
}
