package request

type CreateBookingRequest struct {
	TripID string  `json:"trip_id" validate:"required,uuid4"`
	Seats  int     `json:"seats" validate:"omitempty,min=1"`
	LockID *string `json:"lock_id,omitempty" validate:"omitempty,uuid4"`
}

type ConfirmPaymentRequest struct {
	PaymentID     string  `json:"payment_id" validate:"required,uuid4"`
	TransactionID *string `json:"transaction_id,omitempty"`
}
