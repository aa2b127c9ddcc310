package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

const maxSeatsPerRide = 8

// RideService manages the ride lifecycle around the booking core: drafting,
// publishing inside a serviceable area, and the terminal cancel/complete
// fan-outs over the ride's bookings.
type RideService struct {
	uow         repository.UnitOfWork
	rideRepo    repository.RideRepository
	bookingRepo repository.BookingRepository
	driverRepo  repository.DriverProfileRepository
	bookings    *BookingService
	geo         *GeoService
	gateway     PaymentGateway
	notifier    Notifier
}

// NewRideService creates a new RideService. geo and notifier may be nil.
func NewRideService(
	uow repository.UnitOfWork,
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	driverRepo repository.DriverProfileRepository,
	bookings *BookingService,
	geo *GeoService,
	gateway PaymentGateway,
	notifier Notifier,
) *RideService {
	return &RideService{
		uow:         uow,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		driverRepo:  driverRepo,
		bookings:    bookings,
		geo:         geo,
		gateway:     gateway,
		notifier:    notifier,
	}
}

// CreateRideRequest contains the parameters for drafting a ride.
type CreateRideRequest struct {
	DriverID     string
	CityID       string
	Origin       domain.Point
	Destination  domain.Point
	SeatsTotal   int
	PricePerSeat int64
	DepartureAt  time.Time
}

// Create drafts a ride. The origin must fall inside the city's service
// area and the driver's profile must be active.
func (s *RideService) Create(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.SeatsTotal <= 0 || req.SeatsTotal > maxSeatsPerRide {
		return nil, ErrInvalidSeatsTotal
	}
	if req.PricePerSeat <= 0 {
		return nil, ErrInvalidPrice
	}
	if !req.DepartureAt.After(time.Now()) {
		return nil, ErrInvalidDeparture
	}

	profile, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if profile.Status != domain.DriverProfileActive {
		return nil, ErrActorNotAllowed
	}

	if s.geo != nil {
		ok, err := s.geo.ServiceableForCity(ctx, req.Origin, req.CityID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrOriginNotServiceable
		}
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		DriverID:       req.DriverID,
		CityID:         req.CityID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		SeatsTotal:     req.SeatsTotal,
		SeatsAvailable: req.SeatsTotal,
		PricePerSeat:   req.PricePerSeat,
		Status:         domain.RideStatusDraft,
		DepartureAt:    req.DepartureAt,
		CreatedAt:      time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// Publish opens a drafted ride for booking.
func (s *RideService) Publish(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	ride, err := s.getOwned(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusDraft {
		return nil, ErrInvalidTransition
	}
	if !ride.IsUpcoming(time.Now()) {
		return nil, ErrRideNotUpcoming
	}

	if err := s.rideRepo.UpdateStatus(ctx, ride.ID, domain.RideStatusPublished); err != nil {
		return nil, err
	}
	ride.Status = domain.RideStatusPublished

	s.notifyRide(ctx, "ride_published", ride.ID, driverID)

	return ride, nil
}

// Cancel withdraws a ride and cancels every booking still riding on it.
// Riders who already paid get a full refund regardless of the cancellation
// policy, since the driver pulled the trip out from under them.
func (s *RideService) Cancel(ctx context.Context, rideID, driverID, reason string) (*domain.Ride, error) {
	ride, err := s.getOwned(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusDraft && ride.Status != domain.RideStatusPublished {
		return nil, ErrInvalidTransition
	}

	list, err := s.bookingRepo.ListByRide(ctx, ride.ID)
	if err != nil {
		return nil, err
	}

	for _, booking := range list {
		if !booking.Status.IsActive() {
			continue
		}
		if booking.PaymentStatus == domain.PaymentStatusPaid && booking.PaymentMethod != domain.PaymentMethodCash {
			if _, err := s.gateway.Refund(ctx, booking.PaymentRef, booking.TotalAmount); err != nil {
				return nil, ErrGatewayUnavailable
			}
			booking.PaymentStatus = domain.PaymentStatusRefunded
		}
	}

	err = s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if err := tx.Rides().UpdateStatus(ctx, ride.ID, domain.RideStatusCancelled); err != nil {
			return err
		}
		for _, booking := range list {
			if !booking.Status.IsActive() {
				continue
			}
			from := booking.Status
			booking.Status = domain.BookingStatusCancelled
			booking.CancelledAt = time.Now()
			booking.CancelReason = "ride cancelled"
			if err := tx.Bookings().Update(ctx, booking, from); err != nil {
				return err
			}
			if err := tx.BookingEvents().Append(ctx, &domain.BookingEvent{
				ID:        uuid.New().String(),
				BookingID: booking.ID,
				Name:      "booking_cancelled",
				ActorID:   driverID,
				Metadata:  map[string]string{"reason": "ride cancelled"},
				CreatedAt: time.Now(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ride.Status = domain.RideStatusCancelled

	s.notifyRide(ctx, "ride_cancelled", ride.ID, driverID)

	return ride, nil
}

// Complete closes out a departed ride. Every confirmed booking completes in
// its own unit of work so one bad booking does not hold the rest hostage;
// failures are logged and the booking stays confirmed for a retry.
func (s *RideService) Complete(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	ride, err := s.getOwned(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusPublished {
		return nil, ErrInvalidTransition
	}
	if ride.IsUpcoming(time.Now()) {
		return nil, ErrRideNotUpcoming
	}

	if err := s.rideRepo.UpdateStatus(ctx, ride.ID, domain.RideStatusCompleted); err != nil {
		return nil, err
	}
	ride.Status = domain.RideStatusCompleted

	list, err := s.bookingRepo.ListByRide(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	for _, booking := range list {
		if booking.Status != domain.BookingStatusConfirmed {
			continue
		}
		if _, err := s.bookings.Complete(ctx, booking.ID); err != nil {
			log.Printf("complete booking %s for ride %s: %v", booking.ID, ride.ID, err)
		}
	}

	s.notifyRide(ctx, "ride_completed", ride.ID, driverID)

	return ride, nil
}

// Get retrieves a ride by ID.
func (s *RideService) Get(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	return s.rideRepo.GetByID(ctx, rideID)
}

// ListByDriver retrieves a driver's rides, newest first.
func (s *RideService) ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.rideRepo.ListByDriver(ctx, driverID)
}

func (s *RideService) getOwned(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, ErrActorNotAllowed
	}

	return ride, nil
}

func (s *RideService) notifyRide(ctx context.Context, name, rideID, actorID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, TransitionEvent{
		Name:       name,
		EntityKind: "ride",
		EntityID:   rideID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})
}
