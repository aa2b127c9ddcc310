package domain

import "time"

// PayoutStatus represents where a payout request is in its workflow.
type PayoutStatus string

const (
	PayoutStatusRequested  PayoutStatus = "REQUESTED"
	PayoutStatusApproved   PayoutStatus = "APPROVED"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusPaid       PayoutStatus = "PAID"
	PayoutStatusRejected   PayoutStatus = "REJECTED"
	PayoutStatusCancelled  PayoutStatus = "CANCELLED"
)

// PayoutRequest is a driver-initiated withdrawal. The amount is debited from
// the wallet the moment the request is created; rejected and cancelled
// requests credit it back in full.
type PayoutRequest struct {
	ID              string
	DriverID        string
	Amount          int64
	Method          string
	Status          PayoutStatus
	PayoutReference string
	RequestedAt     time.Time
	ProcessedAt     time.Time
}

var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusRequested: {
		PayoutStatusApproved,
		PayoutStatusRejected,
		PayoutStatusCancelled,
	},
	PayoutStatusApproved: {
		PayoutStatusProcessing,
		PayoutStatusPaid,
		PayoutStatusRejected,
	},
	PayoutStatusProcessing: {
		PayoutStatusPaid,
	},
}

// CanTransitionPayout reports whether the payout workflow permits moving
// from one status to another.
func CanTransitionPayout(from, to PayoutStatus) bool {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
