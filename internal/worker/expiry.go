package worker

import (
	"context"
	"log"
	"time"

	"carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/service"
)

const (
	defaultScanInterval = 30 * time.Second
	defaultBatchSize    = 100
	expiryLockTTL       = 30 * time.Second
)

// ExpiryWorker sweeps seat holds whose deadline has passed and expires the
// bookings behind them. The Redis index is the fast path; a periodic
// database scan catches holds the index lost. Expiry itself is idempotent,
// so the worker only needs at-least-once delivery, and the per-booking lock
// keeps replicas from hammering the same row.
type ExpiryWorker struct {
	bookings    *service.BookingService
	bookingRepo repository.BookingRepository
	holds       redis.HoldStoreInterface
	locks       redis.LockStoreInterface
	interval    time.Duration
	batchSize   int
}

// NewExpiryWorker creates a new ExpiryWorker. locks may be nil when running
// a single instance.
func NewExpiryWorker(
	bookings *service.BookingService,
	bookingRepo repository.BookingRepository,
	holds redis.HoldStoreInterface,
	locks redis.LockStoreInterface,
) *ExpiryWorker {
	return &ExpiryWorker{
		bookings:    bookings,
		bookingRepo: bookingRepo,
		holds:       holds,
		locks:       locks,
		interval:    defaultScanInterval,
		batchSize:   defaultBatchSize,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (w *ExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs a single expiry pass. Run calls it on the scan interval.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	now := time.Now()

	ids, err := w.dueBookings(ctx, now)
	if err != nil {
		log.Printf("expiry sweep: %v", err)
		return
	}

	for _, id := range ids {
		w.expireOne(ctx, id)
	}
}

// dueBookings reads the Redis hold index, falling back to a database scan
// when the index is unavailable.
func (w *ExpiryWorker) dueBookings(ctx context.Context, now time.Time) ([]string, error) {
	if w.holds != nil {
		ids, err := w.holds.Due(ctx, now, int64(w.batchSize))
		if err == nil {
			return ids, nil
		}
		log.Printf("expiry sweep: hold index unavailable, scanning database: %v", err)
	}

	due, err := w.bookingRepo.ListDueForExpiry(ctx, now, w.batchSize)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(due))
	for _, booking := range due {
		ids = append(ids, booking.ID)
	}
	return ids, nil
}

func (w *ExpiryWorker) expireOne(ctx context.Context, bookingID string) {
	if w.locks != nil {
		acquired, err := w.locks.AcquireBookingLock(ctx, bookingID, expiryLockTTL)
		if err != nil || !acquired {
			return
		}
		defer func() {
			_ = w.locks.ReleaseBookingLock(ctx, bookingID)
		}()
	}

	if _, err := w.bookings.ExpireIfDue(ctx, bookingID); err != nil {
		log.Printf("expire booking %s: %v", bookingID, err)
	}
}
