package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

const bookingCurrency = "USD"

// BookingService drives the booking lifecycle. Transitions are validated
// against the pure state machine in the domain package; each transition is
// persisted together with its immutable audit event in one unit of work.
type BookingService struct {
	uow         repository.UnitOfWork
	bookingRepo repository.BookingRepository
	eventRepo   repository.BookingEventRepository
	rideRepo    repository.RideRepository
	seatInv     *SeatInventory
	gateway     PaymentGateway
	holds       redis.HoldStoreInterface
	notifier    Notifier
	policy      PolicyProvider
}

// NewBookingService creates a new BookingService. holds and notifier may be
// nil.
func NewBookingService(
	uow repository.UnitOfWork,
	bookingRepo repository.BookingRepository,
	eventRepo repository.BookingEventRepository,
	rideRepo repository.RideRepository,
	seatInv *SeatInventory,
	gateway PaymentGateway,
	holds redis.HoldStoreInterface,
	notifier Notifier,
	policy PolicyProvider,
) *BookingService {
	return &BookingService{
		uow:         uow,
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		rideRepo:    rideRepo,
		seatInv:     seatInv,
		gateway:     gateway,
		holds:       holds,
		notifier:    notifier,
		policy:      policy,
	}
}

// ValidatePaymentMethod parses a payment method string. Empty defaults to
// cash.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch domain.PaymentMethod(method) {
	case "", domain.PaymentMethodCash:
		return domain.PaymentMethodCash, nil
	case domain.PaymentMethodStripe:
		return domain.PaymentMethodStripe, nil
	case domain.PaymentMethodRazorpay:
		return domain.PaymentMethodRazorpay, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// CreateBookingRequest contains the parameters for requesting seats.
type CreateBookingRequest struct {
	RideID        string
	RiderID       string
	Seats         int
	PaymentMethod domain.PaymentMethod
}

// Create reserves seats and writes the booking as one atomic unit: the seat
// hold is taken first through the inventory's compare-and-swap, and the
// deferred guard releases it again if the booking row cannot be committed.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}
	if req.Seats <= 0 {
		return nil, ErrInvalidSeatCount
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if ride.Status != domain.RideStatusPublished {
		return nil, ErrRideNotPublished
	}
	if !ride.IsUpcoming(now) {
		return nil, ErrRideNotUpcoming
	}
	if req.Seats > ride.SeatsAvailable {
		return nil, ErrSeatsUnavailable
	}

	policy := s.policy.Policy()
	active, err := s.bookingRepo.CountActiveByRider(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}
	if active >= policy.MaxActiveBookings {
		return nil, ErrTooManyActiveBookings
	}

	quote := PriceBooking(ride.PricePerSeat, req.Seats, policy)

	booking := &domain.Booking{
		ID:               uuid.New().String(),
		RideID:           ride.ID,
		RiderID:          req.RiderID,
		DriverID:         ride.DriverID,
		SeatsRequested:   req.Seats,
		PricePerSeat:     quote.PricePerSeat,
		Subtotal:         quote.Subtotal,
		CommissionType:   quote.CommissionType,
		CommissionValue:  quote.CommissionValue,
		CommissionAmount: quote.CommissionAmount,
		TotalAmount:      quote.TotalAmount,
		Status:           domain.BookingStatusRequested,
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    domain.PaymentStatusUnpaid,
		HoldExpiresAt:    now.Add(policy.SeatHoldDuration),
		CreatedAt:        now,
	}

	hold, err := s.seatInv.Reserve(ctx, ride.ID, req.Seats)
	if err != nil {
		return nil, err
	}
	defer hold.Release(ctx)

	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, booking.ID, "booking_requested", req.RiderID, map[string]string{
			"seats": strconv.Itoa(req.Seats),
		})
	})
	if err != nil {
		return nil, err
	}
	hold.Commit()

	if s.holds != nil {
		_ = s.holds.Track(ctx, booking.ID, booking.HoldExpiresAt)
	}
	s.notify(ctx, "booking_requested", booking.ID, req.RiderID)

	return booking, nil
}

// Accept moves a requested booking to accepted. Only the booking's driver
// may act. Cash bookings confirm immediately: there is no payment step.
func (s *BookingService) Accept(ctx context.Context, bookingID, driverID string) (*domain.Booking, error) {
	booking, err := s.getForActor(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}
	if booking.DriverID != driverID {
		return nil, ErrActorNotAllowed
	}

	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := s.transition(ctx, tx, booking, domain.BookingStatusAccepted, "booking_accepted", driverID, nil); err != nil {
			return err
		}
		if booking.PaymentMethod == domain.PaymentMethodCash {
			return s.transition(ctx, tx, booking, domain.BookingStatusConfirmed, "booking_confirmed", driverID, map[string]string{
				"payment": "cash",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusConfirmed && s.holds != nil {
		_ = s.holds.Untrack(ctx, booking.ID)
	}
	s.notify(ctx, "booking_accepted", booking.ID, driverID)

	return booking, nil
}

// Reject moves a requested booking to rejected and gives the seats back.
func (s *BookingService) Reject(ctx context.Context, bookingID, driverID, reason string) (*domain.Booking, error) {
	booking, err := s.getForActor(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}
	if booking.DriverID != driverID {
		return nil, ErrActorNotAllowed
	}

	from := booking.Status
	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := s.transition(ctx, tx, booking, domain.BookingStatusRejected, "booking_rejected", driverID, map[string]string{
			"reason": reason,
		}); err != nil {
			return err
		}
		if !from.HoldsSeats() {
			return nil
		}
		return tx.Rides().ReleaseSeats(ctx, booking.RideID, booking.SeatsRequested)
	})
	if err != nil {
		return nil, err
	}

	if s.holds != nil {
		_ = s.holds.Untrack(ctx, booking.ID)
	}
	s.notify(ctx, "booking_rejected", booking.ID, driverID)

	return booking, nil
}

// StartPayment moves an accepted non-cash booking to payment_pending after
// registering a payment intent with the gateway. A gateway failure leaves
// the booking accepted.
func (s *BookingService) StartPayment(ctx context.Context, bookingID, riderID string) (*domain.Booking, error) {
	booking, err := s.getForActor(ctx, bookingID, riderID)
	if err != nil {
		return nil, err
	}
	if booking.RiderID != riderID {
		return nil, ErrActorNotAllowed
	}
	if booking.PaymentMethod == domain.PaymentMethodCash {
		return nil, ErrCashBookingHasNoPayment
	}
	if !domain.CanTransition(booking.Status, domain.BookingStatusPaymentPending) {
		return nil, ErrInvalidTransition
	}

	// Gateway I/O happens before any persistence; the booking only moves
	// once the intent exists.
	intentID, err := s.gateway.CreateIntent(ctx, booking.TotalAmount, bookingCurrency)
	if err != nil {
		return nil, ErrGatewayUnavailable
	}

	booking.PaymentRef = intentID
	booking.PaymentStatus = domain.PaymentStatusPending

	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		return s.transition(ctx, tx, booking, domain.BookingStatusPaymentPending, "payment_started", riderID, map[string]string{
			"intent": intentID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "payment_started", booking.ID, riderID)

	return booking, nil
}

// ConfirmPayment handles the gateway's webhook. Redelivery for an
// already-paid booking is a no-op, so duplicate webhooks are safe. A proof
// that fails verification marks the payment failed but leaves the booking
// in payment_pending for retry.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID, proof string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == domain.PaymentStatusPaid {
		return booking, nil
	}
	if booking.Status != domain.BookingStatusPaymentPending {
		return nil, ErrInvalidTransition
	}

	paid, err := s.gateway.Verify(ctx, booking.PaymentRef, proof)
	if err != nil {
		return nil, ErrGatewayUnavailable
	}

	if !paid {
		booking.PaymentStatus = domain.PaymentStatusFailed
		err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
			if err := tx.Bookings().Update(ctx, booking, booking.Status); err != nil {
				if errors.Is(err, repository.ErrStaleStatus) {
					return ErrInvalidTransition
				}
				return err
			}
			return s.appendEvent(ctx, tx, booking.ID, "payment_failed", "", nil)
		})
		if err != nil {
			return nil, err
		}
		s.notify(ctx, "payment_failed", booking.ID, "")
		return booking, nil
	}

	booking.PaymentStatus = domain.PaymentStatusPaid
	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		return s.transition(ctx, tx, booking, domain.BookingStatusConfirmed, "booking_confirmed", "", nil)
	})
	if err != nil {
		return nil, err
	}

	if s.holds != nil {
		_ = s.holds.Untrack(ctx, booking.ID)
	}
	s.notify(ctx, "booking_confirmed", booking.ID, "")

	return booking, nil
}

// Cancel cancels a booking on behalf of its rider or driver, subject to the
// pre-departure deadline. Seats the booking still holds are released in the
// same unit of work. Paid bookings are refunded through the gateway per
// policy.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID, reason string) (*domain.Booking, error) {
	booking, err := s.getForActor(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != booking.RiderID && actorID != booking.DriverID {
		return nil, ErrActorNotAllowed
	}
	if !domain.CanTransition(booking.Status, domain.BookingStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.After(ride.DepartureAt.Add(-s.policy.Policy().CancellationDeadline)) {
		return nil, ErrCancellationDeadlinePassed
	}

	// Refund through the gateway before touching persistence.
	refunded := false
	if booking.PaymentStatus == domain.PaymentStatusPaid && booking.PaymentMethod != domain.PaymentMethodCash {
		amount, ok := s.refundableAmount(booking.TotalAmount)
		if ok {
			if _, err := s.gateway.Refund(ctx, booking.PaymentRef, amount); err != nil {
				return nil, ErrGatewayUnavailable
			}
			refunded = true
		}
	}

	booking.CancelledAt = now
	booking.CancelReason = reason
	if refunded {
		booking.PaymentStatus = domain.PaymentStatusRefunded
	}

	from := booking.Status
	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := s.transition(ctx, tx, booking, domain.BookingStatusCancelled, "booking_cancelled", actorID, map[string]string{
			"reason": reason,
		}); err != nil {
			return err
		}
		if !from.HoldsSeats() {
			return nil
		}
		return tx.Rides().ReleaseSeats(ctx, booking.RideID, booking.SeatsRequested)
	})
	if err != nil {
		return nil, err
	}

	if s.holds != nil {
		_ = s.holds.Untrack(ctx, booking.ID)
	}
	s.notify(ctx, "booking_cancelled", booking.ID, actorID)

	return booking, nil
}

// Complete moves a confirmed booking to completed and credits the driver's
// net earning (subtotal minus commission) in the same unit of work. Cash
// bookings are marked paid here: the driver has collected in person.
func (s *BookingService) Complete(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentMethod == domain.PaymentMethodCash {
		booking.PaymentStatus = domain.PaymentStatusPaid
	}

	earning := booking.Subtotal - booking.CommissionAmount
	allowNegative := s.policy.Policy().AllowNegativeBalance

	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := s.transition(ctx, tx, booking, domain.BookingStatusCompleted, "booking_completed", "", nil); err != nil {
			return err
		}
		if earning <= 0 {
			return nil
		}
		_, err := applyLedgerEntry(ctx, tx, LedgerEntry{
			DriverID:    booking.DriverID,
			Amount:      earning,
			Type:        domain.WalletTxEarning,
			Direction:   domain.WalletTxCredit,
			BookingID:   booking.ID,
			Description: "trip earning net of commission",
		}, allowNegative)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "booking_completed", booking.ID, "")

	return booking, nil
}

// ExpireIfDue expires a booking whose hold deadline has elapsed, releasing
// its seats exactly once. It is idempotent: bookings already expired, or in
// any state the hold no longer guards, are left untouched. An external
// scheduler calls this periodically.
func (s *BookingService) ExpireIfDue(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusRequested && booking.Status != domain.BookingStatusPaymentPending {
		if s.holds != nil {
			_ = s.holds.Untrack(ctx, booking.ID)
		}
		return booking, nil
	}
	if booking.HoldExpiresAt.After(time.Now()) {
		return booking, nil
	}

	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := s.transition(ctx, tx, booking, domain.BookingStatusExpired, "booking_expired", "", map[string]string{
			"hold_expired_at": booking.HoldExpiresAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
		return tx.Rides().ReleaseSeats(ctx, booking.RideID, booking.SeatsRequested)
	})
	if err != nil {
		return nil, err
	}

	if s.holds != nil {
		_ = s.holds.Untrack(ctx, booking.ID)
	}
	s.notify(ctx, "booking_expired", booking.ID, "")

	return booking, nil
}

// Get retrieves a booking by ID.
func (s *BookingService) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// Events retrieves a booking's audit trail.
func (s *BookingService) Events(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	return s.eventRepo.ListByBooking(ctx, bookingID)
}

// refundableAmount applies the refund policy to amount. The second return
// value is false when policy forbids refunding anything.
func (s *BookingService) refundableAmount(amount int64) (int64, bool) {
	policy := s.policy.Policy()
	switch policy.RefundMode {
	case config.RefundNone:
		return 0, false
	case config.RefundPartial:
		refund := domain.RoundHalfEven(float64(amount) * policy.RefundPercent / 100)
		if refund <= 0 {
			return 0, false
		}
		return refund, true
	default:
		return amount, true
	}
}

// transition validates the move against the state machine, persists the
// booking and appends the audit event. Runs inside the caller's unit of
// work.
func (s *BookingService) transition(
	ctx context.Context,
	tx repository.TxRepositories,
	booking *domain.Booking,
	to domain.BookingStatus,
	eventName, actorID string,
	metadata map[string]string,
) error {
	if !domain.CanTransition(booking.Status, to) {
		return ErrInvalidTransition
	}

	from := booking.Status
	booking.Status = to
	if err := tx.Bookings().Update(ctx, booking, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return ErrInvalidTransition
		}
		return err
	}

	return s.appendEvent(ctx, tx, booking.ID, eventName, actorID, metadata)
}

func (s *BookingService) appendEvent(ctx context.Context, tx repository.TxRepositories, bookingID, name, actorID string, metadata map[string]string) error {
	return tx.BookingEvents().Append(ctx, &domain.BookingEvent{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		Name:      name,
		ActorID:   actorID,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	})
}

func (s *BookingService) notify(ctx context.Context, name, bookingID, actorID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, TransitionEvent{
		Name:       name,
		EntityKind: "booking",
		EntityID:   bookingID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})
}

func (s *BookingService) getForActor(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if actorID == "" {
		return nil, ErrActorNotAllowed
	}

	return s.bookingRepo.GetByID(ctx, bookingID)
}
