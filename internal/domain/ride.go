package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusDraft     RideStatus = "DRAFT"
	RideStatusPublished RideStatus = "PUBLISHED"
	RideStatusCancelled RideStatus = "CANCELLED"
	RideStatusCompleted RideStatus = "COMPLETED"
)

// Ride is a driver-published trip with a fixed number of seats for sale.
// SeatsAvailable is only ever mutated through the seat inventory's
// conditional updates, so 0 <= SeatsAvailable <= SeatsTotal holds at all
// times.
type Ride struct {
	ID             string
	DriverID       string
	CityID         string
	Origin         Point
	Destination    Point
	SeatsTotal     int
	SeatsAvailable int
	PricePerSeat   int64 // minor units
	Status         RideStatus
	DepartureAt    time.Time
	CreatedAt      time.Time
}

// IsUpcoming reports whether the ride departs after now.
func (r *Ride) IsUpcoming(now time.Time) bool {
	return r.DepartureAt.After(now)
}
