package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// PayoutRepository is a PostgreSQL implementation of
// repository.PayoutRepository.
type PayoutRepository struct {
	q Querier
}

// NewPayoutRepository creates a new PostgreSQL payout repository.
func NewPayoutRepository(db *sql.DB) *PayoutRepository {
	return &PayoutRepository{q: db}
}

// NewPayoutRepositoryWithTx creates a payout repository using a transaction.
func NewPayoutRepositoryWithTx(tx *sql.Tx) *PayoutRepository {
	return &PayoutRepository{q: tx}
}

const payoutColumns = `id, driver_id, amount, method, status, payout_reference, requested_at, processed_at`

// Create persists a new payout request.
func (r *PayoutRepository) Create(ctx context.Context, payout *domain.PayoutRequest) error {
	query := `
		INSERT INTO payout_requests (` + payoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var reference sql.NullString
	if payout.PayoutReference != "" {
		reference = sql.NullString{String: payout.PayoutReference, Valid: true}
	}

	var processedAt sql.NullTime
	if !payout.ProcessedAt.IsZero() {
		processedAt = sql.NullTime{Time: payout.ProcessedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		payout.ID,
		payout.DriverID,
		payout.Amount,
		payout.Method,
		payout.Status,
		reference,
		payout.RequestedAt,
		processedAt,
	)

	return mapError(err)
}

func scanPayout(row interface{ Scan(dest ...any) error }) (*domain.PayoutRequest, error) {
	var payout domain.PayoutRequest
	var reference sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(
		&payout.ID,
		&payout.DriverID,
		&payout.Amount,
		&payout.Method,
		&payout.Status,
		&reference,
		&payout.RequestedAt,
		&processedAt,
	)
	if err != nil {
		return nil, err
	}

	if reference.Valid {
		payout.PayoutReference = reference.String
	}
	if processedAt.Valid {
		payout.ProcessedAt = processedAt.Time
	}

	return &payout, nil
}

// GetByID retrieves a payout request by ID.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.PayoutRequest, error) {
	query := `SELECT ` + payoutColumns + ` FROM payout_requests WHERE id = $1`

	payout, err := scanPayout(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payout, nil
}

// ListByDriver retrieves a driver's payout requests, newest first.
func (r *PayoutRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.PayoutRequest, error) {
	query := `SELECT ` + payoutColumns + ` FROM payout_requests WHERE driver_id = $1 ORDER BY requested_at DESC`

	return r.list(ctx, query, driverID)
}

// ListByStatus retrieves payout requests in a given status.
func (r *PayoutRepository) ListByStatus(ctx context.Context, status domain.PayoutStatus) ([]*domain.PayoutRequest, error) {
	query := `SELECT ` + payoutColumns + ` FROM payout_requests WHERE status = $1 ORDER BY requested_at`

	return r.list(ctx, query, status)
}

// Update persists status, reference and processed timestamp changes. The
// status predicate makes the write a compare-and-swap; without it, two
// racing rejects would both land and credit the held amount back twice.
func (r *PayoutRepository) Update(ctx context.Context, payout *domain.PayoutRequest, from domain.PayoutStatus) error {
	query := `
		UPDATE payout_requests
		SET status = $1, payout_reference = $2, processed_at = $3
		WHERE id = $4 AND status = $5
	`

	var reference sql.NullString
	if payout.PayoutReference != "" {
		reference = sql.NullString{String: payout.PayoutReference, Valid: true}
	}

	var processedAt sql.NullTime
	if !payout.ProcessedAt.IsZero() {
		processedAt = sql.NullTime{Time: payout.ProcessedAt, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		payout.Status,
		reference,
		processedAt,
		payout.ID,
		from,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrStaleStatus
	}

	return nil
}

func (r *PayoutRepository) list(ctx context.Context, query string, args ...any) ([]*domain.PayoutRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []*domain.PayoutRequest
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, payout)
	}
	return payouts, rows.Err()
}
