package repository

import (
	"context"

	"carpool/internal/domain"
)

// WalletRepository defines the persistence operations for driver wallets.
type WalletRepository interface {
	// Create persists a new wallet.
	Create(ctx context.Context, wallet *domain.DriverWallet) error

	// GetByDriverID retrieves the driver's wallet.
	GetByDriverID(ctx context.Context, driverID string) (*domain.DriverWallet, error)

	// GetByDriverIDForUpdate retrieves the wallet with a row lock. Must be
	// called inside a transaction; concurrent ledger writes on the same
	// wallet serialize on this lock.
	GetByDriverIDForUpdate(ctx context.Context, driverID string) (*domain.DriverWallet, error)

	// UpdateBalances persists balance, lifetime_earned and lifetime_withdrawn.
	UpdateBalances(ctx context.Context, wallet *domain.DriverWallet) error
}

// WalletTransactionRepository is the append-only wallet ledger.
type WalletTransactionRepository interface {
	// Create persists a new ledger row.
	Create(ctx context.Context, tx *domain.WalletTransaction) error

	// ListByWallet retrieves a wallet's ledger, newest first.
	ListByWallet(ctx context.Context, walletID string) ([]*domain.WalletTransaction, error)

	// GetEarningByBooking retrieves the earning credit tied to a booking.
	// Returns nil (no error) when no earning was ever credited.
	GetEarningByBooking(ctx context.Context, walletID, bookingID string) (*domain.WalletTransaction, error)
}
