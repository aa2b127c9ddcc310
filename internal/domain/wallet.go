package domain

import "time"

// DriverWallet holds a driver's spendable balance. The balance always equals
// the sum of credits minus the sum of debits over the wallet's transactions;
// both are written in the same database transaction.
type DriverWallet struct {
	ID                string
	DriverID          string
	Balance           int64
	LifetimeEarned    int64
	LifetimeWithdrawn int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WalletTransactionType classifies ledger entries.
type WalletTransactionType string

const (
	WalletTxEarning    WalletTransactionType = "EARNING"
	WalletTxCommission WalletTransactionType = "COMMISSION"
	WalletTxRefund     WalletTransactionType = "REFUND"
	WalletTxAdjustment WalletTransactionType = "ADJUSTMENT"
	WalletTxPayout     WalletTransactionType = "PAYOUT"
)

// WalletTransactionDirection distinguishes credits from debits.
type WalletTransactionDirection string

const (
	WalletTxCredit WalletTransactionDirection = "CREDIT"
	WalletTxDebit  WalletTransactionDirection = "DEBIT"
)

// WalletTransaction is one immutable ledger row. Amount is strictly positive;
// the direction carries the sign. Reference links a refund row back to the
// reversed earning transaction or to a payout request.
type WalletTransaction struct {
	ID          string
	WalletID    string
	BookingID   string
	Type        WalletTransactionType
	Direction   WalletTransactionDirection
	Amount      int64
	Description string
	Reference   string
	CreatedAt   time.Time
}
