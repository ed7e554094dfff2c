package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	Base
	OrderID       string        `db:"order_id"`
	UserID        uuid.UUID     `db:"user_id"`
	TripID        uuid.UUID     `db:"trip_id"`
	Seats         int           `db:"seats"`
	TotalPrice    float64       `db:"total_price"`
	AdvanceAmount float64       `db:"advance_amount"`
	BalanceAmount float64       `db:"balance_amount"`
	Status        BookingStatus `db:"status"`
}
