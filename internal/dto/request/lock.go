package request

type AcquireLockRequest struct {
	TripID string `json:"trip_id" validate:"required,uuid4"`
	Seats  int    `json:"seats" validate:"required,min=1"`
}
