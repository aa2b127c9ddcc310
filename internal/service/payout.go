package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// PayoutService handles driver withdrawal requests. The requested amount is
// debited from the wallet the moment the request is accepted, so a driver
// can never have more in flight than their balance covers; a rejected or
// cancelled request credits the exact amount back.
type PayoutService struct {
	uow        repository.UnitOfWork
	payoutRepo repository.PayoutRepository
	notifier   Notifier
	policy     PolicyProvider
}

// NewPayoutService creates a new PayoutService. notifier may be nil.
func NewPayoutService(uow repository.UnitOfWork, payoutRepo repository.PayoutRepository, notifier Notifier, policy PolicyProvider) *PayoutService {
	return &PayoutService{
		uow:        uow,
		payoutRepo: payoutRepo,
		notifier:   notifier,
		policy:     policy,
	}
}

// Request opens a payout for a driver. The wallet debit and the payout row
// are written in one unit of work.
func (s *PayoutService) Request(ctx context.Context, driverID string, amount int64, method string) (*domain.PayoutRequest, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	policy := s.policy.Policy()
	if amount < policy.MinPayoutAmount {
		return nil, ErrPayoutBelowMinimum
	}
	if !policy.PayoutMethodAllowed(method) {
		return nil, ErrPayoutMethodNotAllowed
	}

	payout := &domain.PayoutRequest{
		ID:          uuid.New().String(),
		DriverID:    driverID,
		Amount:      amount,
		Method:      method,
		Status:      domain.PayoutStatusRequested,
		RequestedAt: time.Now(),
	}
	if policy.AutoApprovePayouts {
		payout.Status = domain.PayoutStatusApproved
	}

	err := s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if _, err := applyLedgerEntry(ctx, tx, LedgerEntry{
			DriverID:    driverID,
			Amount:      amount,
			Type:        domain.WalletTxPayout,
			Direction:   domain.WalletTxDebit,
			Description: "payout requested",
			Reference:   payout.ID,
		}, policy.AllowNegativeBalance); err != nil {
			return err
		}
		return tx.Payouts().Create(ctx, payout)
	})
	if err != nil {
		return nil, err
	}

	s.notifyPayout(ctx, "payout_requested", payout.ID, driverID)

	return payout, nil
}

// Approve moves a requested payout to approved.
func (s *PayoutService) Approve(ctx context.Context, payoutID, adminID string) (*domain.PayoutRequest, error) {
	return s.advance(ctx, payoutID, adminID, domain.PayoutStatusApproved, "payout_approved")
}

// MarkProcessing moves an approved payout to processing while the transfer
// runs.
func (s *PayoutService) MarkProcessing(ctx context.Context, payoutID, adminID string) (*domain.PayoutRequest, error) {
	return s.advance(ctx, payoutID, adminID, domain.PayoutStatusProcessing, "payout_processing")
}

// MarkPaid finalizes a payout with the external transfer reference. Only the
// reference and the processed timestamp change; the wallet was already
// debited at request time.
func (s *PayoutService) MarkPaid(ctx context.Context, payoutID, adminID, reference string) (*domain.PayoutRequest, error) {
	payout, err := s.get(ctx, payoutID, adminID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionPayout(payout.Status, domain.PayoutStatusPaid) {
		return nil, ErrInvalidPayoutTransition
	}

	from := payout.Status
	payout.Status = domain.PayoutStatusPaid
	payout.PayoutReference = reference
	payout.ProcessedAt = time.Now()

	if err := s.payoutRepo.Update(ctx, payout, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidPayoutTransition
		}
		return nil, err
	}

	s.notifyPayout(ctx, "payout_paid", payout.ID, adminID)

	return payout, nil
}

// Reject refuses a payout and credits the debited amount straight back.
func (s *PayoutService) Reject(ctx context.Context, payoutID, adminID string) (*domain.PayoutRequest, error) {
	return s.restore(ctx, payoutID, adminID, domain.PayoutStatusRejected, "payout_rejected")
}

// Cancel lets a driver withdraw their own pending request, crediting the
// amount back.
func (s *PayoutService) Cancel(ctx context.Context, payoutID, driverID string) (*domain.PayoutRequest, error) {
	payout, err := s.get(ctx, payoutID, driverID)
	if err != nil {
		return nil, err
	}
	if payout.DriverID != driverID {
		return nil, ErrActorNotAllowed
	}

	return s.restoreLoaded(ctx, payout, driverID, domain.PayoutStatusCancelled, "payout_cancelled")
}

// Get retrieves a payout by ID.
func (s *PayoutService) Get(ctx context.Context, payoutID string) (*domain.PayoutRequest, error) {
	if payoutID == "" {
		return nil, ErrInvalidPayoutID
	}

	return s.payoutRepo.GetByID(ctx, payoutID)
}

// ListByDriver retrieves a driver's payouts, newest first.
func (s *PayoutService) ListByDriver(ctx context.Context, driverID string) ([]*domain.PayoutRequest, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.payoutRepo.ListByDriver(ctx, driverID)
}

func (s *PayoutService) advance(ctx context.Context, payoutID, actorID string, to domain.PayoutStatus, event string) (*domain.PayoutRequest, error) {
	payout, err := s.get(ctx, payoutID, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionPayout(payout.Status, to) {
		return nil, ErrInvalidPayoutTransition
	}

	from := payout.Status
	payout.Status = to
	if err := s.payoutRepo.Update(ctx, payout, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidPayoutTransition
		}
		return nil, err
	}

	s.notifyPayout(ctx, event, payout.ID, actorID)

	return payout, nil
}

func (s *PayoutService) restore(ctx context.Context, payoutID, actorID string, to domain.PayoutStatus, event string) (*domain.PayoutRequest, error) {
	payout, err := s.get(ctx, payoutID, actorID)
	if err != nil {
		return nil, err
	}

	return s.restoreLoaded(ctx, payout, actorID, to, event)
}

// restoreLoaded moves a payout to a terminal non-paid status and credits the
// held amount back in the same unit of work.
func (s *PayoutService) restoreLoaded(ctx context.Context, payout *domain.PayoutRequest, actorID string, to domain.PayoutStatus, event string) (*domain.PayoutRequest, error) {
	if !domain.CanTransitionPayout(payout.Status, to) {
		return nil, ErrInvalidPayoutTransition
	}

	from := payout.Status
	payout.Status = to
	payout.ProcessedAt = time.Now()

	err := s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := tx.Payouts().Update(ctx, payout, from); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return ErrInvalidPayoutTransition
			}
			return err
		}
		_, err := applyLedgerEntry(ctx, tx, LedgerEntry{
			DriverID:    payout.DriverID,
			Amount:      payout.Amount,
			Type:        domain.WalletTxRefund,
			Direction:   domain.WalletTxCredit,
			Description: "payout returned to wallet",
			Reference:   payout.ID,
		}, s.policy.Policy().AllowNegativeBalance)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyPayout(ctx, event, payout.ID, actorID)

	return payout, nil
}

func (s *PayoutService) get(ctx context.Context, payoutID, actorID string) (*domain.PayoutRequest, error) {
	if payoutID == "" {
		return nil, ErrInvalidPayoutID
	}
	if actorID == "" {
		return nil, ErrActorNotAllowed
	}

	return s.payoutRepo.GetByID(ctx, payoutID)
}

func (s *PayoutService) notifyPayout(ctx context.Context, name, payoutID, actorID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, TransitionEvent{
		Name:       name,
		EntityKind: "payout",
		EntityID:   payoutID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})
}
