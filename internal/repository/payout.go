package repository

import (
	"context"

	"carpool/internal/domain"
)

// PayoutRepository defines the persistence operations for payout requests.
type PayoutRepository interface {
	// Create persists a new payout request.
	Create(ctx context.Context, payout *domain.PayoutRequest) error

	// GetByID retrieves a payout request by ID.
	GetByID(ctx context.Context, id string) (*domain.PayoutRequest, error)

	// ListByDriver retrieves a driver's payout requests, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.PayoutRequest, error)

	// ListByStatus retrieves payout requests in a given status.
	ListByStatus(ctx context.Context, status domain.PayoutStatus) ([]*domain.PayoutRequest, error)

	// Update persists status, reference and processed timestamp changes.
	// The write is guarded on the status the caller read: when the row has
	// left that status, nothing is written and ErrStaleStatus is returned.
	Update(ctx context.Context, payout *domain.PayoutRequest, from domain.PayoutStatus) error
}
