package entity

import (
	"time"
)

type TripStatus string

const (
	TripStatusAvailable TripStatus = "available"
	TripStatusPromoted  TripStatus = "promoted"
	TripStatusFull      TripStatus = "full"
	TripStatusCancelled TripStatus = "cancelled"
)

type Trip struct {
	Base
	Name           string     `db:"name"`
	Destination    string     `db:"destination"`
	MaxCapacity    int        `db:"max_capacity"`
	SpotsAvailable int        `db:"spots_available"`
	Price          float64    `db:"price"`
	Status         TripStatus `db:"status"`
	Tags           []string   `db:"tags"`
	NextDeparture  *time.Time `db:"next_departure"`
}

// TripStatusFor derives the availability status from the seat counters.
// Cancelled is set manually and never derived, so it is not returned here.
func TripStatusFor(spotsAvailable, maxCapacity int, promoteThreshold float64) TripStatus {
	if spotsAvailable <= 0 {
		return TripStatusFull
	}
	booked := float64(maxCapacity-spotsAvailable) / float64(maxCapacity)
	if booked >= promoteThreshold {
		return TripStatusPromoted
	}
	return TripStatusAvailable
}

// IsOpenForBooking reports whether seats can still be reserved on the trip.
func (t *Trip) IsOpenForBooking() bool {
	return t.Status != TripStatusCancelled && t.SpotsAvailable > 0
}
