package domain

import "time"

// Rider is the minimal rider profile this core needs; authentication lives
// outside the core.
type Rider struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// DriverProfileStatus represents whether a driver may publish rides.
type DriverProfileStatus string

const (
	DriverProfileActive    DriverProfileStatus = "ACTIVE"
	DriverProfileSuspended DriverProfileStatus = "SUSPENDED"
)

// DriverProfile owns rides and a wallet.
type DriverProfile struct {
	ID        string
	Name      string
	Phone     string
	Status    DriverProfileStatus
	CreatedAt time.Time
}
