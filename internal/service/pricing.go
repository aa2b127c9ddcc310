package service

import (
	"carpool/internal/config"
	"carpool/internal/domain"
)

// PolicyProvider yields the business policy consulted by the services.
// Injected at construction so no component reads configuration ambiently.
type PolicyProvider interface {
	Policy() config.Policy
}

// Ensure the config-backed provider satisfies the interface.
var _ PolicyProvider = (*config.StaticPolicyProvider)(nil)

// Commission derives the platform commission in minor units from a subtotal
// and a commission policy. Percent commissions are rounded half-even to the
// minor unit. The result is never negative and never exceeds the subtotal,
// so a misconfigured fixed commission cannot produce a negative driver
// payout.
func Commission(subtotal int64, ctype domain.CommissionType, value float64) int64 {
	if subtotal <= 0 {
		return 0
	}

	var commission int64
	switch ctype {
	case domain.CommissionFixed:
		commission = domain.RoundHalfEven(value)
	default:
		commission = domain.RoundHalfEven(float64(subtotal) * value / 100)
	}

	if commission < 0 {
		return 0
	}
	if commission > subtotal {
		return subtotal
	}
	return commission
}

// Quote is the price breakdown frozen onto a booking at creation time.
// TotalAmount equals Subtotal: the commission is taken from the driver's
// share, not added on top of the rider's price.
type Quote struct {
	PricePerSeat     int64
	Subtotal         int64
	CommissionType   domain.CommissionType
	CommissionValue  float64
	CommissionAmount int64
	TotalAmount      int64
}

// PriceBooking computes the quote for n seats at the ride's per-seat price
// under the given policy.
func PriceBooking(pricePerSeat int64, seats int, policy config.Policy) Quote {
	subtotal := pricePerSeat * int64(seats)
	commission := Commission(subtotal, policy.CommissionType, policy.CommissionValue)

	return Quote{
		PricePerSeat:     pricePerSeat,
		Subtotal:         subtotal,
		CommissionType:   policy.CommissionType,
		CommissionValue:  policy.CommissionValue,
		CommissionAmount: commission,
		TotalAmount:      subtotal,
	}
}
