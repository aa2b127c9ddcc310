package service

import (
	"context"
	"log"

	"carpool/internal/repository"
)

// SeatInventory performs atomic seat reservation and release against rides.
// Correctness under concurrent callers comes from the repository's single
// conditional UPDATE, not from in-process locking, so multiple process
// instances stay safe against shared storage.
type SeatInventory struct {
	rideRepo repository.RideRepository
}

// NewSeatInventory creates a new SeatInventory.
func NewSeatInventory(rideRepo repository.RideRepository) *SeatInventory {
	return &SeatInventory{rideRepo: rideRepo}
}

// SeatHold is a scoped guard over reserved seats. The caller must defer
// Release: until Commit is called, an early return puts the seats back
// before the error propagates. After Commit, Release is a no-op.
type SeatHold struct {
	inv       *SeatInventory
	rideID    string
	seats     int
	committed bool
	released  bool
}

// Reserve atomically takes n seats from the ride. It fails with
// ErrSeatsUnavailable, mutating nothing, when fewer than n seats remain.
func (s *SeatInventory) Reserve(ctx context.Context, rideID string, n int) (*SeatHold, error) {
	if n <= 0 {
		return nil, ErrInvalidSeatCount
	}

	ok, err := s.rideRepo.ReserveSeats(ctx, rideID, n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSeatsUnavailable
	}

	return &SeatHold{inv: s, rideID: rideID, seats: n}, nil
}

// Release gives the held seats back unless the hold was committed. Safe to
// call more than once.
func (h *SeatHold) Release(ctx context.Context) {
	if h == nil || h.committed || h.released {
		return
	}
	h.released = true

	if err := h.inv.Release(ctx, h.rideID, h.seats); err != nil {
		// The compensating release failed; the clamp on a later manual
		// release keeps the counter within capacity.
		log.Printf("seat hold release failed: ride=%s seats=%d err=%v", h.rideID, h.seats, err)
	}
}

// Commit keeps the seats reserved; subsequent Release calls do nothing.
func (h *SeatHold) Commit() {
	h.committed = true
}

// Release atomically gives n seats back to the ride, clamped at the ride's
// capacity to defend against double release.
func (s *SeatInventory) Release(ctx context.Context, rideID string, n int) error {
	if n <= 0 {
		return ErrInvalidSeatCount
	}

	return s.rideRepo.ReleaseSeats(ctx, rideID, n)
}
