package repository

import "context"

// TxRepositories exposes transaction-scoped repositories. Every repository
// obtained from one TxRepositories shares the same database transaction.
type TxRepositories interface {
	Rides() RideRepository
	Bookings() BookingRepository
	BookingEvents() BookingEventRepository
	Wallets() WalletRepository
	WalletTransactions() WalletTransactionRepository
	Payouts() PayoutRepository
}

// UnitOfWork runs a function inside a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise, so
// multi-step operations are all-or-nothing.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx TxRepositories) error) error
}
