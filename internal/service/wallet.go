package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// WalletService is the wallet ledger. Every credit or debit appends exactly
// one WalletTransaction row and updates the wallet balance inside a single
// database transaction, serialized per wallet by a row lock, so the balance
// always equals the sum of credits minus the sum of debits.
type WalletService struct {
	uow        repository.UnitOfWork
	walletRepo repository.WalletRepository
	txRepo     repository.WalletTransactionRepository
	policy     PolicyProvider
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	uow repository.UnitOfWork,
	walletRepo repository.WalletRepository,
	txRepo repository.WalletTransactionRepository,
	policy PolicyProvider,
) *WalletService {
	return &WalletService{
		uow:        uow,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		policy:     policy,
	}
}

// CreateWallet provisions an empty wallet for a driver.
func (s *WalletService) CreateWallet(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	now := time.Now()
	wallet := &domain.DriverWallet{
		ID:        uuid.New().String(),
		DriverID:  driverID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, err
	}

	return wallet, nil
}

// LedgerEntry describes one requested credit or debit.
type LedgerEntry struct {
	DriverID    string
	Amount      int64
	Type        domain.WalletTransactionType
	Direction   domain.WalletTransactionDirection
	BookingID   string
	Description string
	Reference   string
}

// Credit appends a credit row and raises the balance in one atomic unit.
func (s *WalletService) Credit(ctx context.Context, entry LedgerEntry) (*domain.WalletTransaction, error) {
	entry.Direction = domain.WalletTxCredit

	var created *domain.WalletTransaction
	err := s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		var err error
		created, err = applyLedgerEntry(ctx, tx, entry, s.policy.Policy().AllowNegativeBalance)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Debit appends a debit row and lowers the balance in one atomic unit. It
// fails with ErrInsufficientBalance when the wallet would go negative,
// unless the negative-balance policy flag is set.
func (s *WalletService) Debit(ctx context.Context, entry LedgerEntry) (*domain.WalletTransaction, error) {
	entry.Direction = domain.WalletTxDebit

	var created *domain.WalletTransaction
	err := s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		var err error
		created, err = applyLedgerEntry(ctx, tx, entry, s.policy.Policy().AllowNegativeBalance)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Statement returns the wallet and its full ledger, newest first.
func (s *WalletService) Statement(ctx context.Context, driverID string) (*domain.DriverWallet, []*domain.WalletTransaction, error) {
	if driverID == "" {
		return nil, nil, ErrInvalidDriverID
	}

	wallet, err := s.walletRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		return nil, nil, err
	}

	txs, err := s.txRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, nil, err
	}

	return wallet, txs, nil
}

// applyLedgerEntry writes one ledger row and the matching balance update
// against transaction-scoped repositories. Callers composing larger
// operations (booking completion, payout request) run it inside their own
// unit of work so the whole operation stays all-or-nothing.
func applyLedgerEntry(ctx context.Context, tx repository.TxRepositories, entry LedgerEntry, allowNegative bool) (*domain.WalletTransaction, error) {
	if entry.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if entry.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := tx.Wallets().GetByDriverIDForUpdate(ctx, entry.DriverID)
	if err != nil {
		return nil, err
	}

	switch entry.Direction {
	case domain.WalletTxCredit:
		wallet.Balance += entry.Amount
		if entry.Type == domain.WalletTxEarning {
			wallet.LifetimeEarned += entry.Amount
		}
	case domain.WalletTxDebit:
		if wallet.Balance < entry.Amount && !allowNegative {
			return nil, ErrInsufficientBalance
		}
		wallet.Balance -= entry.Amount
		if entry.Type == domain.WalletTxPayout {
			wallet.LifetimeWithdrawn += entry.Amount
		}
	default:
		return nil, ErrInvalidAmount
	}

	row := &domain.WalletTransaction{
		ID:          uuid.New().String(),
		WalletID:    wallet.ID,
		BookingID:   entry.BookingID,
		Type:        entry.Type,
		Direction:   entry.Direction,
		Amount:      entry.Amount,
		Description: entry.Description,
		Reference:   entry.Reference,
		CreatedAt:   time.Now(),
	}

	if err := tx.WalletTransactions().Create(ctx, row); err != nil {
		return nil, err
	}

	wallet.UpdatedAt = row.CreatedAt
	if err := tx.Wallets().UpdateBalances(ctx, wallet); err != nil {
		return nil, err
	}

	return row, nil
}
