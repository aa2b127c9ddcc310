package tests

import (
	"testing"
	"time"

	"carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/service"
)

// testPolicy returns the policy used across tests unless a test overrides a
// knob.
func testPolicy() config.Policy {
	return config.Policy{
		SeatHoldDuration:      15 * time.Minute,
		MaxActiveBookings:     3,
		CommissionType:        domain.CommissionPercent,
		CommissionValue:       10,
		CancellationDeadline:  2 * time.Hour,
		RefundMode:            config.RefundFull,
		RefundPercent:         100,
		MinPayoutAmount:       1000,
		AllowedPayoutMethods:  []string{"BANK_TRANSFER", "UPI"},
		DefaultSearchRadiusKm: 25,
	}
}

// ──────────────────────────────────────────────
// 1. COMMISSION AND ROUNDING
// ──────────────────────────────────────────────

func TestRoundHalfEven(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want int64
	}{
		{2.4, 2},
		{2.5, 2},
		{2.6, 3},
		{3.5, 4},
		{-2.5, -2},
		{0, 0},
		{13.5, 14},
		{12.5, 12},
	}

	for _, c := range cases {
		if got := domain.RoundHalfEven(c.in); got != c.want {
			t.Errorf("RoundHalfEven(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCommission_Percent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		subtotal int64
		value    float64
		want     int64
	}{
		{100, 10, 10},
		{125, 10, 12}, // 12.5 ties to even
		{135, 10, 14}, // 13.5 ties to even
		{999, 10, 100}, // 99.9 rounds up
		{0, 10, 0},
	}

	for _, c := range cases {
		got := service.Commission(c.subtotal, domain.CommissionPercent, c.value)
		if got != c.want {
			t.Errorf("Commission(%d, PERCENT, %v) = %d, want %d", c.subtotal, c.value, got, c.want)
		}
	}
}

func TestCommission_FixedCappedAtSubtotal(t *testing.T) {
	t.Parallel()

	if got := service.Commission(50, domain.CommissionFixed, 100); got != 50 {
		t.Errorf("expected commission capped at subtotal 50, got %d", got)
	}
	if got := service.Commission(200, domain.CommissionFixed, 100); got != 100 {
		t.Errorf("expected fixed commission 100, got %d", got)
	}
}

func TestCommission_NeverNegative(t *testing.T) {
	t.Parallel()

	if got := service.Commission(100, domain.CommissionFixed, -5); got != 0 {
		t.Errorf("expected negative fixed commission clamped to 0, got %d", got)
	}
	if got := service.Commission(100, domain.CommissionPercent, -10); got != 0 {
		t.Errorf("expected negative percent commission clamped to 0, got %d", got)
	}
}

func TestPriceBooking_TotalEqualsSubtotal(t *testing.T) {
	t.Parallel()

	quote := service.PriceBooking(250, 3, testPolicy())

	if quote.Subtotal != 750 {
		t.Errorf("expected subtotal 750, got %d", quote.Subtotal)
	}
	if quote.CommissionAmount != 75 {
		t.Errorf("expected commission 75, got %d", quote.CommissionAmount)
	}
	if quote.TotalAmount != quote.Subtotal {
		t.Errorf("expected total %d to equal subtotal %d", quote.TotalAmount, quote.Subtotal)
	}
}
