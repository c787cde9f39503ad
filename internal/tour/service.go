package tour

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tur-booking/internal/logger"
	"tur-booking/internal/models"
	tourdb "tur-booking/internal/tour/db"
)

var (
	ErrNotFound    = errors.New("tour not found")
	ErrInvalidTour = errors.New("invalid tour")
)

type DBLayer interface {
	GetCapacity(ctx context.Context, tourID string) (int, error)
	GetTourByID(ctx context.Context, id string) (*models.Tour, error)
	ListTours(ctx context.Context) ([]models.Tour, error)
	CreateTour(ctx context.Context, tour models.Tour) error
	UpdateTour(ctx context.Context, tour models.Tour) error
	DeleteTour(ctx context.Context, id string) error
}

// SeatCounter reports the seats currently held by active bookings. It is
// implemented by the booking storage layer.
type SeatCounter interface {
	SumActiveSeats(ctx context.Context, tourID string) (int, error)
}

// TourService manages tour listings and exposes the availability read model.
type TourService struct {
	DB     DBLayer
	Seats  SeatCounter
	Logger *logger.Logger
}

func NewTourService(db DBLayer, seats SeatCounter, log *logger.Logger) *TourService {
	return &TourService{DB: db, Seats: seats, Logger: log}
}

func (s *TourService) CreateTour(ctx context.Context, req models.TourRequest) (*models.Tour, error) {
	if req.MaxSeats == nil {
		return nil, fmt.Errorf("%w: max_seats is required", ErrInvalidTour)
	}
	if *req.MaxSeats < 0 {
		return nil, fmt.Errorf("%w: max_seats must not be negative", ErrInvalidTour)
	}
	if len(req.Name) == 0 {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTour)
	}

	tour := models.Tour{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Photos:      req.Photos,
		Price:       req.Price,
		MaxSeats:    *req.MaxSeats,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.DB.CreateTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}

	if s.Logger != nil {
		s.Logger.LogDatabase("INSERT", "tours", fmt.Sprintf("tour %s with %d seats", tour.ID, tour.MaxSeats))
	}
	return &tour, nil
}

// UpdateTour applies partial edits. Lowering max_seats below the booked
// total is allowed; existing bookings stay valid, new ones are rejected
// until seats free up.
func (s *TourService) UpdateTour(ctx context.Context, id string, req models.TourRequest) (*models.Tour, error) {
	tour, err := s.GetTour(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tour.Name = req.Name
	}
	if req.Description != nil {
		tour.Description = req.Description
	}
	if req.Photos != nil {
		tour.Photos = req.Photos
	}
	if req.Price != 0 {
		tour.Price = req.Price
	}
	if req.MaxSeats != nil {
		if *req.MaxSeats < 0 {
			return nil, fmt.Errorf("%w: max_seats must not be negative", ErrInvalidTour)
		}
		tour.MaxSeats = *req.MaxSeats
	}

	if err := s.DB.UpdateTour(ctx, *tour); err != nil {
		if errors.Is(err, tourdb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update tour: %w", err)
	}
	return tour, nil
}

func (s *TourService) DeleteTour(ctx context.Context, id string) error {
	if err := s.DB.DeleteTour(ctx, id); err != nil {
		if errors.Is(err, tourdb.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete tour: %w", err)
	}
	return nil
}

func (s *TourService) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	tour, err := s.DB.GetTourByID(ctx, id)
	if err != nil {
		if errors.Is(err, tourdb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tour: %w", err)
	}
	return tour, nil
}

func (s *TourService) ListTours(ctx context.Context) ([]models.Tour, error) {
	return s.DB.ListTours(ctx)
}

// GetAvailability recomputes the seat aggregate for one tour.
func (s *TourService) GetAvailability(ctx context.Context, id string) (*models.TourAvailability, error) {
	capacity, err := s.DB.GetCapacity(ctx, id)
	if err != nil {
		if errors.Is(err, tourdb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get capacity: %w", err)
	}

	booked, err := s.Seats.SumActiveSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sum active seats: %w", err)
	}

	return &models.TourAvailability{
		TourID:      id,
		MaxSeats:    capacity,
		SeatsBooked: booked,
		Remaining:   capacity - booked,
	}, nil
}
