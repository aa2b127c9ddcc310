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
// 8. RIDE LIFECYCLE
// ──────────────────────────────────────────────

type rideFixture struct {
	*bookingFixture
	drivers  *MockDriverProfileRepository
	cityRepo *MockCityRepository
	svc      *service.RideService
}

func newRideFixture(policy config.Policy) *rideFixture {
	bf := newBookingFixture(policy)
	drivers := NewMockDriverProfileRepository()
	cityRepo := NewMockCityRepository()
	geo := service.NewGeoService(cityRepo, NewMockAreaCache(), config.NewStaticPolicyProvider(policy))

	svc := service.NewRideService(
		bf.uow,
		bf.rides,
		bf.bookings,
		drivers,
		bf.svc,
		geo,
		bf.gateway,
		bf.notifier,
	)

	return &rideFixture{
		bookingFixture: bf,
		drivers:        drivers,
		cityRepo:       cityRepo,
		svc:            svc,
	}
}

func (f *rideFixture) addActiveDriver(id string) {
	f.drivers.AddDriver(&domain.DriverProfile{ID: id, Status: domain.DriverProfileActive})
}

// addOpenCity registers a city without geometry, which serves anywhere.
func (f *rideFixture) addOpenCity(id string) {
	f.cityRepo.AddCity(&domain.City{ID: id})
}

func TestRide_CreateDraftsWithFullCapacity(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.addActiveDriver("driver-1")
	f.addOpenCity("city-1")

	ride, err := f.svc.Create(context.Background(), service.CreateRideRequest{
		DriverID:     "driver-1",
		CityID:       "city-1",
		Origin:       domain.Point{Lat: 1, Lng: 1},
		Destination:  domain.Point{Lat: 2, Lng: 2},
		SeatsTotal:   4,
		PricePerSeat: 250,
		DepartureAt:  time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusDraft {
		t.Errorf("expected DRAFT, got %s", ride.Status)
	}
	if ride.SeatsAvailable != 4 {
		t.Errorf("expected all seats available, got %d", ride.SeatsAvailable)
	}
}

func TestRide_CreateValidatesInput(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.addActiveDriver("driver-1")
	f.addOpenCity("city-1")

	base := service.CreateRideRequest{
		DriverID:     "driver-1",
		CityID:       "city-1",
		SeatsTotal:   4,
		PricePerSeat: 250,
		DepartureAt:  time.Now().Add(time.Hour),
	}

	tests := []struct {
		name    string
		mutate  func(r *service.CreateRideRequest)
		wantErr error
	}{
		{"zero seats", func(r *service.CreateRideRequest) { r.SeatsTotal = 0 }, service.ErrInvalidSeatsTotal},
		{"too many seats", func(r *service.CreateRideRequest) { r.SeatsTotal = 9 }, service.ErrInvalidSeatsTotal},
		{"zero price", func(r *service.CreateRideRequest) { r.PricePerSeat = 0 }, service.ErrInvalidPrice},
		{"past departure", func(r *service.CreateRideRequest) { r.DepartureAt = time.Now().Add(-time.Minute) }, service.ErrInvalidDeparture},
		{"missing driver", func(r *service.CreateRideRequest) { r.DriverID = "" }, service.ErrInvalidDriverID},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := base
			tt.mutate(&req)
			if _, err := f.svc.Create(context.Background(), req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRide_CreateRejectsSuspendedDriver(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.drivers.AddDriver(&domain.DriverProfile{ID: "driver-1", Status: domain.DriverProfileSuspended})
	f.addOpenCity("city-1")

	_, err := f.svc.Create(context.Background(), service.CreateRideRequest{
		DriverID:     "driver-1",
		CityID:       "city-1",
		SeatsTotal:   4,
		PricePerSeat: 250,
		DepartureAt:  time.Now().Add(time.Hour),
	})
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Fatalf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestRide_CreateRejectsOriginOutsideServiceArea(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.addActiveDriver("driver-1")
	f.cityRepo.AddCity(
		&domain.City{ID: "city-1"},
		&domain.ServiceArea{
			ID: "a-1", CityID: "city-1", Kind: domain.ServiceAreaCircle,
			Center: domain.Point{Lat: 0, Lng: 0}, RadiusKm: 10, Active: true,
		},
	)

	_, err := f.svc.Create(context.Background(), service.CreateRideRequest{
		DriverID:     "driver-1",
		CityID:       "city-1",
		Origin:       domain.Point{Lat: 45, Lng: 45},
		SeatsTotal:   4,
		PricePerSeat: 250,
		DepartureAt:  time.Now().Add(time.Hour),
	})
	if !errors.Is(err, service.ErrOriginNotServiceable) {
		t.Fatalf("expected ErrOriginNotServiceable, got %v", err)
	}
}

func TestRide_PublishOpensDraftOnce(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", SeatsTotal: 4, SeatsAvailable: 4,
		PricePerSeat: 100, Status: domain.RideStatusDraft,
		DepartureAt: time.Now().Add(time.Hour),
	})

	ctx := context.Background()

	ride, err := f.svc.Publish(ctx, "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusPublished {
		t.Errorf("expected PUBLISHED, got %s", ride.Status)
	}

	if _, err := f.svc.Publish(ctx, "ride-1", "driver-1"); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on second publish, got %v", err)
	}
}

func TestRide_PublishByWrongDriverForbidden(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", Status: domain.RideStatusDraft,
		SeatsTotal: 4, SeatsAvailable: 4, PricePerSeat: 100,
		DepartureAt: time.Now().Add(time.Hour),
	})

	if _, err := f.svc.Publish(context.Background(), "ride-1", "driver-2"); !errors.Is(err, service.ErrActorNotAllowed) {
		t.Fatalf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestRide_CancelFansOutToActiveBookings(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.addPublishedRide("ride-1", 4, 100)
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-paid", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusConfirmed, PaymentMethod: domain.PaymentMethodStripe,
		PaymentStatus: domain.PaymentStatusPaid, PaymentRef: "pi_1",
		SeatsRequested: 2, Subtotal: 200, TotalAmount: 200,
	})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-cash", RideID: "ride-1", RiderID: "rider-2", DriverID: "driver-1",
		Status: domain.BookingStatusConfirmed, PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusUnpaid,
		SeatsRequested: 1, Subtotal: 100, TotalAmount: 100,
	})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-done", RideID: "ride-1", RiderID: "rider-3", DriverID: "driver-1",
		Status: domain.BookingStatusCompleted, PaymentMethod: domain.PaymentMethodCash,
	})

	ride, err := f.svc.Cancel(context.Background(), "ride-1", "driver-1", "car trouble")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", ride.Status)
	}
	for _, id := range []string{"b-paid", "b-cash"} {
		if got := f.bookings.GetBooking(id).Status; got != domain.BookingStatusCancelled {
			t.Errorf("expected booking %s cancelled, got %s", id, got)
		}
	}
	if got := f.bookings.GetBooking("b-done").Status; got != domain.BookingStatusCompleted {
		t.Errorf("expected completed booking untouched, got %s", got)
	}

	// The paid online rider gets a full refund even under a partial policy.
	if len(f.gateway.RefundCalls) != 1 {
		t.Fatalf("expected 1 refund, got %d", len(f.gateway.RefundCalls))
	}
	if call := f.gateway.RefundCalls[0]; call.PaymentRef != "pi_1" || call.Amount != 200 {
		t.Errorf("unexpected refund call: %+v", call)
	}
	if got := f.bookings.GetBooking("b-paid").PaymentStatus; got != domain.PaymentStatusRefunded {
		t.Errorf("expected REFUNDED, got %s", got)
	}
}

func TestRide_CancelAbortsWhenRefundFails(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.addPublishedRide("ride-1", 4, 100)
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-paid", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusConfirmed, PaymentMethod: domain.PaymentMethodStripe,
		PaymentStatus: domain.PaymentStatusPaid, PaymentRef: "pi_1", TotalAmount: 200,
	})
	f.gateway.RefundError = errors.New("processor down")

	if _, err := f.svc.Cancel(context.Background(), "ride-1", "driver-1", "x"); !errors.Is(err, service.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if got := f.bookings.GetBooking("b-paid").Status; got != domain.BookingStatusConfirmed {
		t.Errorf("expected booking untouched after failed refund, got %s", got)
	}
}

func TestRide_CompleteSettlesConfirmedBookings(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.rides.AddRide(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", SeatsTotal: 4, SeatsAvailable: 1,
		PricePerSeat: 100, Status: domain.RideStatusPublished,
		DepartureAt: time.Now().Add(-time.Hour),
	})
	f.wallets.AddWallet(&domain.DriverWallet{ID: "w-1", DriverID: "driver-1"})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-1", RideID: "ride-1", RiderID: "rider-1", DriverID: "driver-1",
		Status: domain.BookingStatusConfirmed, PaymentMethod: domain.PaymentMethodCash,
		SeatsRequested: 2, Subtotal: 200, CommissionAmount: 20, TotalAmount: 200,
	})
	f.bookings.AddBooking(&domain.Booking{
		ID: "b-2", RideID: "ride-1", RiderID: "rider-2", DriverID: "driver-1",
		Status: domain.BookingStatusCancelled,
	})

	ride, err := f.svc.Complete(context.Background(), "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ride.Status)
	}
	b := f.bookings.GetBooking("b-1")
	if b.Status != domain.BookingStatusCompleted {
		t.Errorf("expected booking completed, got %s", b.Status)
	}
	if b.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected cash booking marked PAID, got %s", b.PaymentStatus)
	}
	if got := f.wallets.Balance("driver-1"); got != 180 {
		t.Errorf("expected driver credited 180, got %d", got)
	}
	if got := f.bookings.GetBooking("b-2").Status; got != domain.BookingStatusCancelled {
		t.Errorf("expected cancelled booking untouched, got %s", got)
	}
}

func TestRide_CompleteRejectedBeforeDeparture(t *testing.T) {
	t.Parallel()

	f := newRideFixture(testPolicy())
	f.addPublishedRide("ride-1", 4, 100)

	if _, err := f.svc.Complete(context.Background(), "ride-1", "driver-1"); !errors.Is(err, service.ErrRideNotUpcoming) {
		t.Fatalf("expected ErrRideNotUpcoming, got %v", err)
	}
}
