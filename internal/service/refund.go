package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RefundCoordinator refunds confirmed or completed bookings. For a completed
// booking the driver's earning has already been credited, so the coordinator
// reverses exactly that ledger row alongside the status change. Bookings
// refunded before completion have no earning to reverse.
type RefundCoordinator struct {
	uow         repository.UnitOfWork
	bookingRepo repository.BookingRepository
	gateway     PaymentGateway
	notifier    Notifier
	policy      PolicyProvider
}

// NewRefundCoordinator creates a new RefundCoordinator. notifier may be nil.
func NewRefundCoordinator(
	uow repository.UnitOfWork,
	bookingRepo repository.BookingRepository,
	gateway PaymentGateway,
	notifier Notifier,
	policy PolicyProvider,
) *RefundCoordinator {
	return &RefundCoordinator{
		uow:         uow,
		bookingRepo: bookingRepo,
		gateway:     gateway,
		notifier:    notifier,
		policy:      policy,
	}
}

// Refund refunds a booking on behalf of an operator. The gateway refund, the
// status change and the earning reversal succeed or fail together apart from
// the gateway call itself, which runs first so no money moves on our ledger
// unless the processor accepted the refund.
func (c *RefundCoordinator) Refund(ctx context.Context, bookingID, actorID, reason string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if actorID == "" {
		return nil, ErrActorNotAllowed
	}

	policy := c.policy.Policy()
	if policy.RefundMode == config.RefundNone {
		return nil, ErrRefundsDisabled
	}

	booking, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(booking.Status, domain.BookingStatusRefunded) {
		return nil, ErrInvalidTransition
	}

	wasCompleted := booking.Status == domain.BookingStatusCompleted

	if booking.PaymentStatus == domain.PaymentStatusPaid && booking.PaymentMethod != domain.PaymentMethodCash {
		amount := booking.TotalAmount
		if policy.RefundMode == config.RefundPartial {
			amount = domain.RoundHalfEven(float64(amount) * policy.RefundPercent / 100)
		}
		if amount > 0 {
			if _, err := c.gateway.Refund(ctx, booking.PaymentRef, amount); err != nil {
				return nil, ErrGatewayUnavailable
			}
		}
		booking.PaymentStatus = domain.PaymentStatusRefunded
	}

	from := booking.Status
	booking.Status = domain.BookingStatusRefunded
	booking.CancelReason = reason

	err = c.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := tx.Bookings().Update(ctx, booking, from); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return ErrInvalidTransition
			}
			return err
		}
		if err := tx.BookingEvents().Append(ctx, &domain.BookingEvent{
			ID:        uuid.New().String(),
			BookingID: booking.ID,
			Name:      "booking_refunded",
			ActorID:   actorID,
			Metadata:  map[string]string{"reason": reason},
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		if !wasCompleted {
			return nil
		}
		return reverseEarning(ctx, tx, booking, policy.AllowNegativeBalance)
	})
	if err != nil {
		return nil, err
	}

	if c.notifier != nil {
		c.notifier.Notify(ctx, TransitionEvent{
			Name:       "booking_refunded",
			EntityKind: "booking",
			EntityID:   booking.ID,
			ActorID:    actorID,
			OccurredAt: time.Now(),
		})
	}

	return booking, nil
}

// reverseEarning debits the exact amount of the earning credited for a
// booking, referencing the original ledger row. A booking with no earning
// on record is a no-op.
func reverseEarning(ctx context.Context, tx repository.TxRepositories, booking *domain.Booking, allowNegative bool) error {
	wallet, err := tx.Wallets().GetByDriverID(ctx, booking.DriverID)
	if err != nil {
		return err
	}

	earning, err := tx.WalletTransactions().GetEarningByBooking(ctx, wallet.ID, booking.ID)
	if err != nil {
		return err
	}
	if earning == nil {
		return nil
	}

	_, err = applyLedgerEntry(ctx, tx, LedgerEntry{
		DriverID:    booking.DriverID,
		Amount:      earning.Amount,
		Type:        domain.WalletTxRefund,
		Direction:   domain.WalletTxDebit,
		BookingID:   booking.ID,
		Description: "earning reversed on refund",
		Reference:   earning.ID,
	}, allowNegative)
	return err
}
