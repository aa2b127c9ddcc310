package service

import "errors"

// Validation errors: malformed or out-of-policy input. Returned to the
// caller, never retried.
var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPayoutID is returned when payout ID is empty.
	ErrInvalidPayoutID = errors.New("invalid payout id")

	// ErrInvalidSeatCount is returned when the requested seat count is not
	// strictly positive.
	ErrInvalidSeatCount = errors.New("seat count must be positive")

	// ErrInvalidSeatsTotal is returned when a ride is created with a
	// non-positive seat capacity.
	ErrInvalidSeatsTotal = errors.New("seats total must be positive")

	// ErrInvalidPrice is returned when price per seat is zero or negative.
	ErrInvalidPrice = errors.New("price per seat must be positive")

	// ErrInvalidDeparture is returned when a ride's departure is not in the
	// future.
	ErrInvalidDeparture = errors.New("departure must be in the future")

	// ErrInvalidAmount is returned when a ledger or payout amount is not
	// strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrPayoutMethodNotAllowed is returned when the payout method is not in
	// the allowed list.
	ErrPayoutMethodNotAllowed = errors.New("payout method not allowed")

	// ErrPayoutBelowMinimum is returned when the payout amount is below the
	// configured minimum.
	ErrPayoutBelowMinimum = errors.New("payout amount below minimum")

	// ErrOriginNotServiceable is returned when a ride's origin lies outside
	// the city's serviceable areas.
	ErrOriginNotServiceable = errors.New("origin not serviceable")

	// ErrRefundsDisabled is returned when refund policy is NONE.
	ErrRefundsDisabled = errors.New("refunds disabled by policy")
)

// State-conflict errors: a transition attempted from an invalid current
// state. Surfaced as a conflict, not retried.
var (
	// ErrInvalidTransition is returned when the booking state machine does
	// not permit the requested transition.
	ErrInvalidTransition = errors.New("transition not allowed from current state")

	// ErrInvalidPayoutTransition is returned when the payout workflow does
	// not permit the requested transition.
	ErrInvalidPayoutTransition = errors.New("payout transition not allowed from current state")

	// ErrRideNotPublished is returned when booking a ride that is not open
	// for booking.
	ErrRideNotPublished = errors.New("ride not published")

	// ErrRideNotUpcoming is returned when booking a ride that has already
	// departed.
	ErrRideNotUpcoming = errors.New("ride already departed")

	// ErrCancellationDeadlinePassed is returned when cancelling past the
	// pre-departure deadline.
	ErrCancellationDeadlinePassed = errors.New("cancellation deadline passed")

	// ErrCashBookingHasNoPayment is returned when starting an online payment
	// for a cash booking.
	ErrCashBookingHasNoPayment = errors.New("cash booking has no payment step")
)

// Insufficient-resource errors: surfaced immediately, no partial success.
var (
	// ErrSeatsUnavailable is returned when a reservation would oversell the
	// ride.
	ErrSeatsUnavailable = errors.New("not enough seats available")

	// ErrInsufficientBalance is returned when a debit would overdraw the
	// wallet and negative balances are not permitted.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrTooManyActiveBookings is returned when the rider is at the
	// active-booking cap.
	ErrTooManyActiveBookings = errors.New("active booking limit reached")
)

// Authorization errors.
var (
	// ErrActorNotAllowed is returned when the actor may not perform the
	// transition (wrong driver, third party cancelling).
	ErrActorNotAllowed = errors.New("actor not allowed to perform this action")
)

// External-dependency errors: the entity is left in a pending state for
// operator or retry-driven resolution.
var (
	// ErrGatewayUnavailable is returned when the payment gateway call failed.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayDeclined is returned when the gateway reports the payment
	// failed.
	ErrGatewayDeclined = errors.New("payment declined by gateway")
)
