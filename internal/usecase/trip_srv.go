package usecase

import (
	"context"
	"fmt"

	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type TripService interface {
	GetTrips(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TripResponse], error)
	GetTripByID(ctx context.Context, tripID string) (*response.TripResponse, error)
}

type tripService struct {
	repo repository.TripRepository
	log  *zap.Logger
}

func NewTripService(repo repository.TripRepository, log *zap.Logger) TripService {
	return &tripService{
		repo: repo,
		log:  log.With(zap.String("service", "trip")),
	}
}

func (s *tripService) GetTrips(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TripResponse], error) {
	trips, err := s.repo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get trips",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get trips: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.log.Error("Failed to count trips", zap.Error(err))
		return nil, fmt.Errorf("count trips: %w", err)
	}

	tripResponses := make([]response.TripResponse, len(trips))
	for i, trip := range trips {
		tripResponses[i] = response.TripToResponse(trip)
	}

	return response.NewPaginatedResponse(tripResponses, req.Page, req.PerPage, total), nil
}

func (s *tripService) GetTripByID(ctx context.Context, tripID string) (*response.TripResponse, error) {
	id, err := utils.ParseUUID(tripID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: invalid trip id")
	}

	trip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get trip",
			zap.Error(err),
			zap.String("trip_id", tripID),
		)
		return nil, fmt.Errorf("get trip: %w", err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	resp := response.TripToResponse(trip)
	return &resp, nil
}
