package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "created"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is the advance-amount record created alongside a booking.
// Its confirmation never touches trip capacity.
type Payment struct {
	Base
	BookingID     uuid.UUID     `db:"booking_id"`
	Amount        float64       `db:"amount"`
	Status        PaymentStatus `db:"status"`
	TransactionID *string       `db:"transaction_id"`
}
