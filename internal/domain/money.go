package domain

import "math"

// Amounts are carried as int64 minor units (cents) so commission and ledger
// arithmetic is exact and reproducible.

// RoundHalfEven rounds x to the nearest integer minor unit using banker's
// rounding: ties go to the even neighbour.
func RoundHalfEven(x float64) int64 {
	floor := math.Floor(x)
	diff := x - floor

	switch {
	case diff > 0.5:
		return int64(floor) + 1
	case diff < 0.5:
		return int64(floor)
	default:
		if int64(floor)%2 == 0 {
			return int64(floor)
		}
		return int64(floor) + 1
	}
}
