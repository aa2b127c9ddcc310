package tests

import (
	"context"
	"errors"
	"testing"

	"carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 4. WALLET LEDGER
// ──────────────────────────────────────────────

func newWalletFixture(policy config.Policy) (*MockUnitOfWork, *service.WalletService) {
	uow := NewMockUnitOfWork()
	svc := service.NewWalletService(uow, uow.WalletRepo, uow.WalletTxRepo, config.NewStaticPolicyProvider(policy))
	return uow, svc
}

func TestWallet_BalanceTracksLedger(t *testing.T) {
	t.Parallel()

	uow, svc := newWalletFixture(testPolicy())
	ctx := context.Background()

	wallet, err := svc.CreateWallet(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Credit(ctx, service.LedgerEntry{
		DriverID: "driver-1", Amount: 500, Type: domain.WalletTxEarning, BookingID: "b-1",
	}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if _, err := svc.Debit(ctx, service.LedgerEntry{
		DriverID: "driver-1", Amount: 200, Type: domain.WalletTxPayout, Reference: "p-1",
	}); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	stored, _ := uow.WalletRepo.GetByDriverID(ctx, "driver-1")
	if stored.Balance != 300 {
		t.Errorf("expected balance 300, got %d", stored.Balance)
	}
	if stored.LifetimeEarned != 500 {
		t.Errorf("expected lifetime earned 500, got %d", stored.LifetimeEarned)
	}
	if stored.LifetimeWithdrawn != 200 {
		t.Errorf("expected lifetime withdrawn 200, got %d", stored.LifetimeWithdrawn)
	}

	// Balance equals the signed sum of the ledger.
	var sum int64
	for _, row := range uow.WalletTxRepo.Rows() {
		if row.WalletID != wallet.ID {
			t.Errorf("row written against wrong wallet: %+v", row)
		}
		if row.Direction == domain.WalletTxCredit {
			sum += row.Amount
		} else {
			sum -= row.Amount
		}
	}
	if sum != stored.Balance {
		t.Errorf("ledger sum %d does not match balance %d", sum, stored.Balance)
	}
}

func TestWallet_DebitFailsOnInsufficientBalance(t *testing.T) {
	t.Parallel()

	uow, svc := newWalletFixture(testPolicy())
	ctx := context.Background()

	if _, err := svc.CreateWallet(ctx, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Debit(ctx, service.LedgerEntry{
		DriverID: "driver-1", Amount: 100, Type: domain.WalletTxPayout,
	})
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// The rejected debit must not leave a ledger row behind.
	if rows := uow.WalletTxRepo.Rows(); len(rows) != 0 {
		t.Errorf("expected no ledger rows, got %d", len(rows))
	}
	if got := uow.WalletRepo.Balance("driver-1"); got != 0 {
		t.Errorf("expected balance 0, got %d", got)
	}
}

func TestWallet_DebitMayOverdrawWhenPolicyAllows(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.AllowNegativeBalance = true
	uow, svc := newWalletFixture(policy)
	ctx := context.Background()

	if _, err := svc.CreateWallet(ctx, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Debit(ctx, service.LedgerEntry{
		DriverID: "driver-1", Amount: 100, Type: domain.WalletTxAdjustment,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := uow.WalletRepo.Balance("driver-1"); got != -100 {
		t.Errorf("expected balance -100, got %d", got)
	}
}

func TestWallet_RejectsNonPositiveAmounts(t *testing.T) {
	t.Parallel()

	_, svc := newWalletFixture(testPolicy())
	ctx := context.Background()

	if _, err := svc.CreateWallet(ctx, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, amount := range []int64{0, -50} {
		_, err := svc.Credit(ctx, service.LedgerEntry{
			DriverID: "driver-1", Amount: amount, Type: domain.WalletTxAdjustment,
		})
		if !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestWallet_StatementListsLedger(t *testing.T) {
	t.Parallel()

	_, svc := newWalletFixture(testPolicy())
	ctx := context.Background()

	if _, err := svc.CreateWallet(ctx, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Credit(ctx, service.LedgerEntry{
			DriverID: "driver-1", Amount: 100, Type: domain.WalletTxEarning,
		}); err != nil {
			t.Fatalf("credit failed: %v", err)
		}
	}

	wallet, rows, err := svc.Statement(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 300 {
		t.Errorf("expected balance 300, got %d", wallet.Balance)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rows))
	}
}
