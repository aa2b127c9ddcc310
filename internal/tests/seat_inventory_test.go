package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 2. SEAT INVENTORY
// ──────────────────────────────────────────────

func TestSeatInventory_ReserveAndRelease(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", SeatsTotal: 4, SeatsAvailable: 4})

	inv := service.NewSeatInventory(rideRepo)
	ctx := context.Background()

	hold, err := inv.Reserve(ctx, "ride-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rideRepo.SeatsAvailable("ride-1"); got != 1 {
		t.Errorf("expected 1 seat available, got %d", got)
	}

	hold.Release(ctx)
	if got := rideRepo.SeatsAvailable("ride-1"); got != 4 {
		t.Errorf("expected 4 seats after release, got %d", got)
	}
}

func TestSeatInventory_ReserveFailsWhenInsufficient(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", SeatsTotal: 4, SeatsAvailable: 2})

	inv := service.NewSeatInventory(rideRepo)

	_, err := inv.Reserve(context.Background(), "ride-1", 3)
	if !errors.Is(err, service.ErrSeatsUnavailable) {
		t.Fatalf("expected ErrSeatsUnavailable, got %v", err)
	}

	// Failure must not mutate the counter.
	if got := rideRepo.SeatsAvailable("ride-1"); got != 2 {
		t.Errorf("expected 2 seats untouched, got %d", got)
	}
}

func TestSeatInventory_RejectsNonPositiveCount(t *testing.T) {
	t.Parallel()

	inv := service.NewSeatInventory(NewMockRideRepository())

	if _, err := inv.Reserve(context.Background(), "ride-1", 0); !errors.Is(err, service.ErrInvalidSeatCount) {
		t.Errorf("expected ErrInvalidSeatCount for 0 seats, got %v", err)
	}
	if _, err := inv.Reserve(context.Background(), "ride-1", -2); !errors.Is(err, service.ErrInvalidSeatCount) {
		t.Errorf("expected ErrInvalidSeatCount for negative seats, got %v", err)
	}
}

func TestSeatInventory_ConcurrentReservationsNeverOversell(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", SeatsTotal: 8, SeatsAvailable: 8})

	inv := service.NewSeatInventory(rideRepo)
	ctx := context.Background()

	// Two riders race for 5 seats each on an 8 seat ride. Exactly one can
	// win.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hold, err := inv.Reserve(ctx, "ride-1", 5)
			results[i] = err
			if err == nil {
				hold.Commit()
			}
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, service.ErrSeatsUnavailable) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 successful reservation, got %d", wins)
	}
	if got := rideRepo.SeatsAvailable("ride-1"); got != 3 {
		t.Errorf("expected 3 seats left, got %d", got)
	}
}

func TestSeatHold_ReleaseAfterCommitIsNoOp(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", SeatsTotal: 4, SeatsAvailable: 4})

	inv := service.NewSeatInventory(rideRepo)
	ctx := context.Background()

	hold, err := inv.Reserve(ctx, "ride-1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hold.Commit()
	hold.Release(ctx)
	hold.Release(ctx)

	if got := rideRepo.SeatsAvailable("ride-1"); got != 2 {
		t.Errorf("expected committed reservation to stick, got %d seats", got)
	}
}

func TestSeatInventory_ReleaseClampedAtCapacity(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", SeatsTotal: 4, SeatsAvailable: 3})

	inv := service.NewSeatInventory(rideRepo)

	if err := inv.Release(context.Background(), "ride-1", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rideRepo.SeatsAvailable("ride-1"); got != 4 {
		t.Errorf("expected release clamped at capacity 4, got %d", got)
	}
}
