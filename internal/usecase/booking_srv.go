package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// CreateBooking converts a seat lock into a booking, or reserves and
	// books in one step when no lock is supplied.
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	ConfirmPayment(ctx context.Context, userID string, req *request.ConfirmPaymentRequest) (*response.PaymentResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// Admin endpoints
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo         *repository.Repository
	capacity     CapacityService
	locks        SeatLockService
	advanceRatio float64
	log          *zap.Logger
	clock        func() time.Time
}

func NewBookingService(repo *repository.Repository, capacity CapacityService, locks SeatLockService, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:         repo,
		capacity:     capacity,
		locks:        locks,
		advanceRatio: config.Booking.AdvanceRatio,
		log:          log.With(zap.String("service", "booking")),
		clock:        time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	if req.LockID == nil && req.Seats < 1 {
		return nil, fmt.Errorf("validation failed: Seats: required without a lock")
	}

	// Parse IDs
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID format %s: %w", req.TripID, err)
	}

	trip, err := s.repo.Trip.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if trip.Price <= 0 {
		return nil, fmt.Errorf("validation failed: trip %s has no price set", req.TripID)
	}

	var seats int
	if req.LockID != nil {
		// Path A: consume the hold. Expiry and ownership are re-validated
		// inside Consume; the held seats convert into the booking without
		// touching capacity again.
		lockID, err := uuid.Parse(*req.LockID)
		if err != nil {
			return nil, fmt.Errorf("invalid lock ID format %s: %w", *req.LockID, err)
		}

		lock, err := s.locks.Consume(ctx, lockID, userUUID, tripID)
		if err != nil {
			return nil, err
		}
		seats = lock.Seats
	} else {
		// Path B: inline reserve and commit with no intervening hold.
		if _, err := s.capacity.Reserve(ctx, tripID, req.Seats); err != nil {
			return nil, err
		}
		seats = req.Seats
	}

	total := trip.Price * float64(seats)
	advance := roundMoney(total * s.advanceRatio)
	balance := roundMoney(total - advance)

	now := s.clock()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:       utils.GenerateOrderID(),
		UserID:        userUUID,
		TripID:        tripID,
		Seats:         seats,
		TotalPrice:    total,
		AdvanceAmount: advance,
		BalanceAmount: balance,
		Status:        entity.BookingStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		// Seats are already committed on both paths; give them back so
		// the failed commit leaves no trace.
		s.releaseSeats(ctx, tripID, seats)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID: booking.ID,
		Amount:    advance,
		Status:    entity.PaymentStatusCreated,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		// Roll back: no partial booking/payment pair.
		if delErr := s.repo.Booking.Delete(ctx, booking.ID); delErr != nil {
			s.log.Error("Failed to roll back booking after payment create failure",
				zap.Error(delErr),
				zap.String("booking_id", booking.ID.String()),
			)
		}
		s.releaseSeats(ctx, tripID, seats)
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("user_id", userID),
		zap.String("trip_id", req.TripID),
		zap.Int("seats", seats),
		zap.Float64("total_price", total),
		zap.Float64("advance_amount", advance),
		zap.Bool("from_lock", req.LockID != nil),
	)

	resp := s.buildBookingResponse(booking, trip, payment)
	return &resp, nil
}

func (s *bookingService) ConfirmPayment(ctx context.Context, userID string, req *request.ConfirmPaymentRequest) (*response.PaymentResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Confirm payment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID format %s: %w", req.PaymentID, err)
	}

	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s not found", req.PaymentID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", payment.BookingID.String())
	}
	if booking.UserID != userUUID {
		return nil, fmt.Errorf("unauthorized to confirm payment for this booking")
	}

	if payment.Status != entity.PaymentStatusCreated {
		return nil, fmt.Errorf("payment status is %s, cannot confirm", payment.Status)
	}

	// Confirmation flips the records only; capacity was committed when
	// the booking was created.
	if err := s.repo.Payment.UpdateStatus(ctx, paymentID, entity.PaymentStatusPaid, req.TransactionID); err != nil {
		return nil, err
	}
	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusConfirmed); err != nil {
		s.log.Error("Failed to confirm booking after payment",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, err
	}

	payment.Status = entity.PaymentStatusPaid
	if req.TransactionID != nil {
		payment.TransactionID = req.TransactionID
	}

	s.log.Info("Payment confirmed",
		zap.String("payment_id", paymentID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Float64("amount", payment.Amount),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		// Trip and payment details are best-effort enrichment.
		trip, _ := s.repo.Trip.FindByID(ctx, booking.TripID)
		payment, _ := s.repo.Payment.FindByBookingID(ctx, booking.ID)
		bookingResponses[i] = s.buildBookingResponse(booking, trip, payment)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	trip, _ := s.repo.Trip.FindByID(ctx, booking.TripID)
	payment, _ := s.repo.Payment.FindByBookingID(ctx, booking.ID)

	resp := s.buildBookingResponse(booking, trip, payment)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("booking %s not found", bookingID)
	}

	if booking.Status != entity.BookingStatusPending && booking.Status != entity.BookingStatusConfirmed {
		return fmt.Errorf("booking status is %s, cannot cancel", booking.Status)
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled); err != nil {
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	// Booked seats return to the pool.
	s.releaseSeats(ctx, booking.TripID, booking.Seats)

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("order_id", booking.OrderID),
		zap.Int("seats", booking.Seats),
	)

	return nil
}

func (s *bookingService) releaseSeats(ctx context.Context, tripID uuid.UUID, seats int) {
	if _, err := s.capacity.Release(ctx, tripID, seats); err != nil {
		s.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.Int("seats", seats),
		)
	}
}

func (s *bookingService) buildBookingResponse(booking *entity.Booking, trip *entity.Trip, payment *entity.Payment) response.BookingResponse {
	resp := response.BookingResponse{
		ID:            booking.ID.String(),
		OrderID:       booking.OrderID,
		UserID:        booking.UserID.String(),
		TripID:        booking.TripID.String(),
		Seats:         booking.Seats,
		TotalPrice:    booking.TotalPrice,
		AdvanceAmount: booking.AdvanceAmount,
		BalanceAmount: booking.BalanceAmount,
		Status:        booking.Status,
		CreatedAt:     booking.CreatedAt,
	}

	if trip != nil {
		resp.TripName = trip.Name
		resp.Destination = trip.Destination
	}
	if payment != nil {
		paymentResp := response.PaymentToResponse(payment)
		resp.Payment = &paymentResp
	}

	return resp
}

// roundMoney rounds to 2 decimal places
func roundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
