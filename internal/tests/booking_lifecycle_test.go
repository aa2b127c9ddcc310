package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 3. BOOKING LIFECYCLE
// ──────────────────────────────────────────────

// bookingFixture wires a BookingService over shared mocks. The same mock
// ride repository backs both the seat inventory and the unit of work, so
// seat math is observable from either side.
type bookingFixture struct {
	uow      *MockUnitOfWork
	rides    *MockRideRepository
	bookings *MockBookingRepository
	events   *MockBookingEventRepository
	wallets  *MockWalletRepository
	ledger   *MockWalletTransactionRepository
	holds    *MockHoldStore
	gateway  *MockPaymentGateway
	notifier *MockNotifier
	svc      *service.BookingService
}

func newBookingFixture(policy config.Policy) *bookingFixture {
	uow := NewMockUnitOfWork()
	holds := NewMockHoldStore()
	gateway := NewMockPaymentGateway()
	notifier := NewMockNotifier()

	svc := service.NewBookingService(
		uow,
		uow.BookingRepo,
		uow.EventRepo,
		uow.RideRepo,
		service.NewSeatInventory(uow.RideRepo),
		gateway,
		holds,
		notifier,
		config.NewStaticPolicyProvider(policy),
	)

	return &bookingFixture{
		uow:      uow,
		rides:    uow.RideRepo,
		bookings: uow.BookingRepo,
		events:   uow.EventRepo,
		wallets:  uow.WalletRepo,
		ledger:   uow.WalletTxRepo,
		holds:    holds,
		gateway:  gateway,
		notifier: notifier,
		svc:      svc,
	}
}

func (f *bookingFixture) addPublishedRide(id string, seats int, price int64) {
	f.rides.AddRide(&domain.Ride{
		ID:             id,
		DriverID:       "driver-1",
		SeatsTotal:     seats,
		SeatsAvailable: seats,
		PricePerSeat:   price,
		Status:         domain.RideStatusPublished,
		DepartureAt:    time.Now().Add(24 * time.Hour),
	})
}

func TestBooking_CreateReservesSeatsAndFreezesPrice(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.addPublishedRide("ride-1", 4, 100)

	booking, err := f.svc.Create(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		RiderID:       "rider-1",
		Seats:         2,
		PaymentMethod: domain.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusRequested {
		t.Errorf("expected status REQUESTED, got %s", booking.Status)
	}
	if booking.Subtotal != 200 || booking.CommissionAmount != 20 || booking.TotalAmount != 200 {
		t.Errorf("unexpected quote: subtotal=%d commission=%d total=%d",
			booking.Subtotal, booking.CommissionAmount, booking.TotalAmount)
	}
	if got := f.rides.SeatsAvailable("ride-1"); got != 2 {
		t.Errorf("expected 2 seats left, got %d", got)
	}
	if !f.holds.Tracked(booking.ID) {
		t.Error("expected hold tracked for expiry")
	}
	if names := f.events.EventNames(booking.ID); len(names) != 1 || names[0] != "booking_requested" {
		t.Errorf("expected single booking_requested event, got %v", names)
	}
}

func TestBooking_CreateFailsWhenRideNotPublished(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID:             "ride-1",
		DriverID:       "driver-1",
		SeatsTotal:     4,
		SeatsAvailable: 4,
		PricePerSeat:   100,
		Status:         domain.RideStatusDraft,
		DepartureAt:    time.Now().Add(time.Hour),
	})

	_, err := f.svc.Create(context.Background(), service.CreateBookingRequest{
		RideID: "ride-1", RiderID: "rider-1", Seats: 1, PaymentMethod: domain.PaymentMethodCash,
	})
	if !errors.Is(err, service.ErrRideNotPublished) {
		t.Fatalf("expected ErrRideNotPublished, got %v", err)
	}
}

func TestBooking_CreateFailsWhenOverCapacity(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.addPublishedRide("ride-1", 2, 100)

	_, err := f.svc.Create(context.Background(), service.CreateBookingRequest{
		RideID: "ride-1", RiderID: "rider-1", Seats: 3, PaymentMethod: domain.PaymentMethodCash,
	})
	if !errors.Is(err, service.ErrSeatsUnavailable) {
		t.Fatalf("expected ErrSeatsUnavailable, got %v", err)
	}
	if got := f.rides.SeatsAvailable("ride-1"); got != 2 {
		t.Errorf("expected seats untouched, got %d", got)
	}
}

func TestBooking_CreateReleasesSeatsWhenPersistenceFails(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.addPublishedRide("ride-1", 4, 100)
	f.bookings.CreateError = errors.New("insert failed")

	_, err := f.svc.Create(context.Background(), service.CreateBookingRequest{
		RideID: "ride-1", RiderID: "rider-1", Seats: 2, PaymentMethod: domain.PaymentMethodCash,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	// The deferred hold release puts the seats back.
	if got := f.rides.SeatsAvailable("ride-1"); got != 4 {
		t.Errorf("expected seats released back to 4, got %d", got)
	}
	if f.holds.TrackCallCount != 0 {
		t.Error("expected no hold tracked for failed booking")
	}
}

func TestBooking_CreateEnforcesActiveBookingCap(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.addPublishedRide("ride-1", 8, 100)
	for _, id := range []string{"b-1", "b-2", "b-3"} {
		f.bookings.AddBooking(&domain.Booking{
			ID: id, RideID: "ride-x", RiderID: "rider-1", Status: domain.BookingStatusConfirmed,
		})
	}

	_, err := f.svc.Create(context.Background(), service.CreateBookingRequest{
		RideID: "ride-1", RiderID: "rider-1", Seats: 1, PaymentMethod: domain.PaymentMethodCash,
	})
	if !errors.Is(err, service.ErrTooManyActiveBookings) {
		t.Fatalf("expected ErrTooManyActiveBookings, got %v", err)
	}
}

func TestBooking_AcceptByWrongDriverForbidden(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusRequested, PaymentMethod: domain.PaymentMethodCash,
	})

	_, err := f.svc.Accept(context.Background(), "b-1", "driver-2")
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Fatalf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestBooking_AcceptCashConfirmsImmediately(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.holds.Track(context.Background(), "b-1", time.Now().Add(15*time.Minute))
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusRequested, PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusUnpaid,
	})

	booking, err := f.svc.Accept(context.Background(), "b-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", booking.Status)
	}
	// Cash stays unpaid until the trip completes.
	if booking.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Errorf("expected UNPAID, got %s", booking.PaymentStatus)
	}
	if f.holds.Tracked("b-1") {
		t.Error("expected hold untracked after confirmation")
	}
	names := f.events.EventNames("b-1")
	if len(names) != 2 || names[0] != "booking_accepted" || names[1] != "booking_confirmed" {
		t.Errorf("expected accepted+confirmed events, got %v", names)
	}
}

func TestBooking_AcceptOnlineWaitsForPayment(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusRequested, PaymentMethod: domain.PaymentMethodStripe,
	})

	booking, err := f.svc.Accept(context.Background(), "b-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != domain.BookingStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", booking.Status)
	}
}

func TestBooking_RejectReleasesSeats(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", SeatsTotal: 4, SeatsAvailable: 2,
		Status: domain.RideStatusPublished, DepartureAt: time.Now().Add(time.Hour),
	})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusRequested,
	})

	booking, err := f.svc.Reject(context.Background(), "b-1", "driver-1", "full car")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != domain.BookingStatusRejected {
		t.Errorf("expected REJECTED, got %s", booking.Status)
	}
	if got := f.rides.SeatsAvailable("ride-1"); got != 4 {
		t.Errorf("expected seats back at 4, got %d", got)
	}
}

func TestBooking_StartPaymentGatewayFailureLeavesAccepted(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.gateway.CreateIntentError = errors.New("gateway down")
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusAccepted, PaymentMethod: domain.PaymentMethodStripe,
		TotalAmount: 200,
	})

	_, err := f.svc.StartPayment(context.Background(), "b-1", "rider-1")
	if !errors.Is(err, service.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}

	stored := f.bookings.GetBooking("b-1")
	if stored.Status != domain.BookingStatusAccepted {
		t.Errorf("expected booking to stay ACCEPTED, got %s", stored.Status)
	}
}

func TestBooking_StartPaymentRejectedForCash(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusAccepted, PaymentMethod: domain.PaymentMethodCash,
	})

	_, err := f.svc.StartPayment(context.Background(), "b-1", "rider-1")
	if !errors.Is(err, service.ErrCashBookingHasNoPayment) {
		t.Fatalf("expected ErrCashBookingHasNoPayment, got %v", err)
	}
}

func TestBooking_ConfirmPaymentSettlesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.holds.Track(context.Background(), "b-1", time.Now().Add(15*time.Minute))
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusPaymentPending, PaymentMethod: domain.PaymentMethodStripe,
		PaymentStatus: domain.PaymentStatusPending, PaymentRef: "intent-1",
	})

	booking, err := f.svc.ConfirmPayment(context.Background(), "b-1", "proof")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != domain.BookingStatusConfirmed || booking.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected CONFIRMED/PAID, got %s/%s", booking.Status, booking.PaymentStatus)
	}
	if f.holds.Tracked("b-1") {
		t.Error("expected hold untracked after confirmation")
	}

	// Webhook redelivery is a no-op; the gateway is not consulted again.
	again, err := f.svc.ConfirmPayment(context.Background(), "b-1", "proof")
	if err != nil {
		t.Fatalf("unexpected error on redelivery: %v", err)
	}
	if again.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED on redelivery, got %s", again.Status)
	}
	if f.gateway.VerifyCallCount != 1 {
		t.Errorf("expected 1 verify call, got %d", f.gateway.VerifyCallCount)
	}
}

func TestBooking_ConfirmPaymentDeclinedKeepsBookingPending(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.gateway.VerifyResult = false
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusPaymentPending, PaymentMethod: domain.PaymentMethodStripe,
		PaymentStatus: domain.PaymentStatusPending, PaymentRef: "intent-1",
	})

	booking, err := f.svc.ConfirmPayment(context.Background(), "b-1", "bad-proof")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != domain.BookingStatusPaymentPending {
		t.Errorf("expected booking to stay PAYMENT_PENDING, got %s", booking.Status)
	}
	if booking.PaymentStatus != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED payment, got %s", booking.PaymentStatus)
	}
}

func TestBooking_CancelPastDeadlineRejected(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", SeatsTotal: 4, SeatsAvailable: 2,
		Status: domain.RideStatusPublished, DepartureAt: time.Now().Add(time.Hour),
	})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusConfirmed,
	})

	// Policy demands 2 hours notice; departure is in 1.
	_, err := f.svc.Cancel(context.Background(), "b-1", "rider-1", "change of plans")
	if !errors.Is(err, service.ErrCancellationDeadlinePassed) {
		t.Fatalf("expected ErrCancellationDeadlinePassed, got %v", err)
	}
}

func TestBooking_CancelReleasesSeatsAndRefundsPaid(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", SeatsTotal: 4, SeatsAvailable: 2,
		Status: domain.RideStatusPublished, DepartureAt: time.Now().Add(24 * time.Hour),
	})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusConfirmed,
		PaymentMethod: domain.PaymentMethodStripe, PaymentStatus: domain.PaymentStatusPaid,
		PaymentRef: "intent-1", TotalAmount: 200,
	})

	booking, err := f.svc.Cancel(context.Background(), "b-1", "rider-1", "change of plans")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", booking.Status)
	}
	if booking.PaymentStatus != domain.PaymentStatusRefunded {
		t.Errorf("expected REFUNDED, got %s", booking.PaymentStatus)
	}
	if got := f.rides.SeatsAvailable("ride-1"); got != 4 {
		t.Errorf("expected seats back at 4, got %d", got)
	}
	if len(f.gateway.RefundCalls) != 1 || f.gateway.RefundCalls[0].Amount != 200 {
		t.Errorf("expected full gateway refund of 200, got %+v", f.gateway.RefundCalls)
	}
}

func TestBooking_CancelByThirdPartyForbidden(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusRequested,
	})

	_, err := f.svc.Cancel(context.Background(), "b-1", "someone-else", "")
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Fatalf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestBooking_ExpireIfDueReleasesSeatsExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", SeatsTotal: 4, SeatsAvailable: 2,
		Status: domain.RideStatusPublished, DepartureAt: time.Now().Add(time.Hour),
	})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusRequested,
		HoldExpiresAt: time.Now().Add(-time.Minute),
	})

	booking, err := f.svc.ExpireIfDue(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != domain.BookingStatusExpired {
		t.Errorf("expected EXPIRED, got %s", booking.Status)
	}
	if got := f.rides.SeatsAvailable("ride-1"); got != 4 {
		t.Errorf("expected seats back at 4, got %d", got)
	}

	// Second delivery of the same expiry is a no-op.
	if _, err := f.svc.ExpireIfDue(context.Background(), "b-1"); err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}
	if f.rides.ReleaseSeatsCallCount != 1 {
		t.Errorf("expected single seat release, got %d", f.rides.ReleaseSeatsCallCount)
	}
}

func TestBooking_ExpireIfDueIgnoresFutureHold(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusRequested,
		HoldExpiresAt: time.Now().Add(10 * time.Minute),
	})

	booking, err := f.svc.ExpireIfDue(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != domain.BookingStatusRequested {
		t.Errorf("expected REQUESTED untouched, got %s", booking.Status)
	}
}

func TestBooking_CompleteCreditsNetEarning(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.wallets.AddWallet(&domain.DriverWallet{ID: "w-1", DriverID: "driver-1"})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusConfirmed,
		PaymentMethod: domain.PaymentMethodCash, PaymentStatus: domain.PaymentStatusUnpaid,
		Subtotal: 200, CommissionAmount: 20, TotalAmount: 200,
	})

	booking, err := f.svc.Complete(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", booking.Status)
	}
	// Cash was collected in person during the trip.
	if booking.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected PAID, got %s", booking.PaymentStatus)
	}
	if got := f.wallets.Balance("driver-1"); got != 180 {
		t.Errorf("expected wallet credited 180, got %d", got)
	}

	rows := f.ledger.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(rows))
	}
	if rows[0].Type != domain.WalletTxEarning || rows[0].Direction != domain.WalletTxCredit || rows[0].Amount != 180 {
		t.Errorf("unexpected earning row: %+v", rows[0])
	}
	if rows[0].BookingID != "b-1" {
		t.Errorf("expected earning tied to booking, got %q", rows[0].BookingID)
	}
}

func TestBooking_StaleCancelAfterExpiryReleasesSeatsOnce(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.addPublishedRide("ride-1", 4, 100)
	ctx := context.Background()
	f.rides.ReserveSeats(ctx, "ride-1", 2)
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusRequested,
		PaymentMethod: domain.PaymentMethodCash,
		HoldExpiresAt: time.Now().Add(-time.Minute),
	})

	// The hold expires between the cancel's read and its write. The status
	// guard on the update must fail the cancel instead of letting both
	// transitions land and release the seats twice.
	expired := false
	f.bookings.GetByIDHook = func(b *domain.Booking) {
		if b.ID != "b-1" || expired {
			return
		}
		expired = true
		if _, err := f.svc.ExpireIfDue(ctx, "b-1"); err != nil {
			t.Errorf("expire: %v", err)
		}
	}

	_, err := f.svc.Cancel(ctx, "b-1", "rider-1", "changed plans")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for the stale cancel, got %v", err)
	}

	if got := f.bookings.GetBooking("b-1").Status; got != domain.BookingStatusExpired {
		t.Errorf("expected EXPIRED, got %s", got)
	}
	if got := f.rides.SeatsAvailable("ride-1"); got != 4 {
		t.Errorf("expected seats released exactly once, got %d available", got)
	}
	if f.rides.ReleaseSeatsCallCount != 1 {
		t.Errorf("expected 1 seat release, got %d", f.rides.ReleaseSeatsCallCount)
	}
}

func TestBooking_StaleCompleteCreditsEarningOnce(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(testPolicy())
	f.addPublishedRide("ride-1", 4, 100)
	ctx := context.Background()
	f.wallets.AddWallet(&domain.DriverWallet{ID: "w-1", DriverID: "driver-1"})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		SeatsRequested: 2, Status: domain.BookingStatusConfirmed,
		PaymentMethod: domain.PaymentMethodCash,
		Subtotal:      200, CommissionAmount: 20, TotalAmount: 200,
	})

	// A second completion lands between this one's read and write.
	completed := false
	f.bookings.GetByIDHook = func(b *domain.Booking) {
		if b.ID != "b-1" || completed {
			return
		}
		completed = true
		if _, err := f.svc.Complete(ctx, "b-1"); err != nil {
			t.Errorf("complete: %v", err)
		}
	}

	_, err := f.svc.Complete(ctx, "b-1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for the stale complete, got %v", err)
	}

	if got := f.wallets.Balance("driver-1"); got != 180 {
		t.Errorf("expected earning credited exactly once, got balance %d", got)
	}
	if rows := f.ledger.Rows(); len(rows) != 1 {
		t.Errorf("expected 1 ledger row, got %d", len(rows))
	}
}
