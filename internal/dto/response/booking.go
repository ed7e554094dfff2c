package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	TripID        string               `json:"trip_id"`
	TripName      string               `json:"trip_name,omitempty"`
	Destination   string               `json:"destination,omitempty"`
	Seats         int                  `json:"seats"`
	TotalPrice    float64              `json:"total_price"`
	AdvanceAmount float64              `json:"advance_amount"`
	BalanceAmount float64              `json:"balance_amount"`
	Status        entity.BookingStatus `json:"status"`
	Payment       *PaymentResponse     `json:"payment,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	Amount        float64              `json:"amount"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID.String(),
		BookingID:     payment.BookingID.String(),
		Amount:        payment.Amount,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
	}
}
