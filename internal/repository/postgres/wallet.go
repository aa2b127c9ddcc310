package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of
// repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

const walletColumns = `id, driver_id, balance, lifetime_earned, lifetime_withdrawn, created_at, updated_at`

// Create persists a new wallet.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.DriverWallet) error {
	query := `
		INSERT INTO driver_wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		wallet.ID,
		wallet.DriverID,
		wallet.Balance,
		wallet.LifetimeEarned,
		wallet.LifetimeWithdrawn,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)

	return mapError(err)
}

func (r *WalletRepository) getByDriverID(ctx context.Context, driverID string, forUpdate bool) (*domain.DriverWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM driver_wallets WHERE driver_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var wallet domain.DriverWallet
	err := r.q.QueryRowContext(ctx, query, driverID).Scan(
		&wallet.ID,
		&wallet.DriverID,
		&wallet.Balance,
		&wallet.LifetimeEarned,
		&wallet.LifetimeWithdrawn,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &wallet, nil
}

// GetByDriverID retrieves the driver's wallet.
func (r *WalletRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	return r.getByDriverID(ctx, driverID, false)
}

// GetByDriverIDForUpdate retrieves the wallet holding its row lock until the
// surrounding transaction finishes. Concurrent ledger writes on the same
// wallet queue up here.
func (r *WalletRepository) GetByDriverIDForUpdate(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	return r.getByDriverID(ctx, driverID, true)
}

// UpdateBalances persists balance and lifetime counters.
func (r *WalletRepository) UpdateBalances(ctx context.Context, wallet *domain.DriverWallet) error {
	query := `
		UPDATE driver_wallets
		SET balance = $1, lifetime_earned = $2, lifetime_withdrawn = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		wallet.Balance,
		wallet.LifetimeEarned,
		wallet.LifetimeWithdrawn,
		wallet.UpdatedAt,
		wallet.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// WalletTransactionRepository is a PostgreSQL implementation of the
// append-only wallet ledger.
type WalletTransactionRepository struct {
	q Querier
}

// NewWalletTransactionRepository creates a new PostgreSQL ledger repository.
func NewWalletTransactionRepository(db *sql.DB) *WalletTransactionRepository {
	return &WalletTransactionRepository{q: db}
}

// NewWalletTransactionRepositoryWithTx creates a ledger repository using a
// transaction.
func NewWalletTransactionRepositoryWithTx(tx *sql.Tx) *WalletTransactionRepository {
	return &WalletTransactionRepository{q: tx}
}

const walletTxColumns = `id, wallet_id, booking_id, type, direction, amount, description, reference, created_at`

// Create persists a new ledger row. Rows are never updated or deleted.
func (r *WalletTransactionRepository) Create(ctx context.Context, tx *domain.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (` + walletTxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var bookingID sql.NullString
	if tx.BookingID != "" {
		bookingID = sql.NullString{String: tx.BookingID, Valid: true}
	}

	var reference sql.NullString
	if tx.Reference != "" {
		reference = sql.NullString{String: tx.Reference, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		tx.ID,
		tx.WalletID,
		bookingID,
		tx.Type,
		tx.Direction,
		tx.Amount,
		tx.Description,
		reference,
		tx.CreatedAt,
	)

	return mapError(err)
}

func scanWalletTx(row interface{ Scan(dest ...any) error }) (*domain.WalletTransaction, error) {
	var tx domain.WalletTransaction
	var bookingID sql.NullString
	var reference sql.NullString

	err := row.Scan(
		&tx.ID,
		&tx.WalletID,
		&bookingID,
		&tx.Type,
		&tx.Direction,
		&tx.Amount,
		&tx.Description,
		&reference,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if bookingID.Valid {
		tx.BookingID = bookingID.String
	}
	if reference.Valid {
		tx.Reference = reference.String
	}

	return &tx, nil
}

// ListByWallet retrieves a wallet's ledger, newest first.
func (r *WalletTransactionRepository) ListByWallet(ctx context.Context, walletID string) ([]*domain.WalletTransaction, error) {
	query := `SELECT ` + walletTxColumns + ` FROM wallet_transactions WHERE wallet_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.WalletTransaction
	for rows.Next() {
		tx, err := scanWalletTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetEarningByBooking retrieves the earning credit tied to a booking.
// Returns nil when no earning was ever credited.
func (r *WalletTransactionRepository) GetEarningByBooking(ctx context.Context, walletID, bookingID string) (*domain.WalletTransaction, error) {
	query := `
		SELECT ` + walletTxColumns + ` FROM wallet_transactions
		WHERE wallet_id = $1 AND booking_id = $2 AND type = 'EARNING' AND direction = 'CREDIT'
	`

	tx, err := scanWalletTx(r.q.QueryRowContext(ctx, query, walletID, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return tx, nil
}
