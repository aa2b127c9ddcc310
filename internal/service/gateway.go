package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PaymentGateway is the abstract capability of an external card/payment
// processor. The core never blocks on gateway network I/O inside a
// transaction: gateway calls happen first, and ledger or lifecycle
// mutations follow only after the gateway reports success.
type PaymentGateway interface {
	// CreateIntent registers a payment of amount minor units and returns
	// the gateway's intent ID.
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)

	// Verify checks the proof delivered with a webhook against the intent.
	// It returns true when the payment is settled.
	Verify(ctx context.Context, intentID, proof string) (bool, error)

	// Refund returns amount minor units against a previous payment and
	// yields the gateway's refund reference.
	Refund(ctx context.Context, paymentRef string, amount int64) (string, error)
}

// MockGateway is an in-process gateway used in development and tests.
type MockGateway struct{}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// CreateIntent always succeeds with a generated intent ID.
func (g *MockGateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	return fmt.Sprintf("intent_%s", uuid.New().String()), nil
}

// Verify always reports the payment settled.
func (g *MockGateway) Verify(ctx context.Context, intentID, proof string) (bool, error) {
	return true, nil
}

// Refund always succeeds with a generated refund reference.
func (g *MockGateway) Refund(ctx context.Context, paymentRef string, amount int64) (string, error) {
	return fmt.Sprintf("refund_%s", uuid.New().String()), nil
}
