package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"carpool/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// mapError translates driver-level errors to repository sentinel errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return repository.ErrDuplicate
	}

	return err
}

// UnitOfWork runs functions inside a database transaction with
// transaction-scoped repositories.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a UnitOfWork backed by db.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx begins a transaction, passes transaction-scoped repositories to
// fn, and commits when fn returns nil. Any error rolls the whole unit back.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx repository.TxRepositories) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&txRepositories{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// txRepositories hands out repositories bound to one *sql.Tx.
type txRepositories struct {
	tx *sql.Tx
}

func (r *txRepositories) Rides() repository.RideRepository {
	return NewRideRepositoryWithTx(r.tx)
}

func (r *txRepositories) Bookings() repository.BookingRepository {
	return NewBookingRepositoryWithTx(r.tx)
}

func (r *txRepositories) BookingEvents() repository.BookingEventRepository {
	return NewBookingEventRepositoryWithTx(r.tx)
}

func (r *txRepositories) Wallets() repository.WalletRepository {
	return NewWalletRepositoryWithTx(r.tx)
}

func (r *txRepositories) WalletTransactions() repository.WalletTransactionRepository {
	return NewWalletTransactionRepositoryWithTx(r.tx)
}

func (r *txRepositories) Payouts() repository.PayoutRepository {
	return NewPayoutRepositoryWithTx(r.tx)
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
