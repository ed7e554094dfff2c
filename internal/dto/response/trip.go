package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type TripResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Destination    string            `json:"destination"`
	MaxCapacity    int               `json:"max_capacity"`
	SpotsAvailable int               `json:"spots_available"`
	Price          float64           `json:"price"`
	Status         entity.TripStatus `json:"status"`
	Tags           []string          `json:"tags,omitempty"`
	NextDeparture  *time.Time        `json:"next_departure,omitempty"`
}

func TripToResponse(trip *entity.Trip) TripResponse {
	return TripResponse{
		ID:             trip.ID.String(),
		Name:           trip.Name,
		Destination:    trip.Destination,
		MaxCapacity:    trip.MaxCapacity,
		SpotsAvailable: trip.SpotsAvailable,
		Price:          trip.Price,
		Status:         trip.Status,
		Tags:           trip.Tags,
		NextDeparture:  trip.NextDeparture,
	}
}
