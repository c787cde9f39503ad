package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tur-booking/internal/logger"
	"tur-booking/internal/models"
)

type DBLayer interface {
	CreateBooking(ctx context.Context, booking models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, tourID string) ([]models.Booking, error)
	SumActiveSeats(ctx context.Context, tourID string) (int, error)
	ArchiveBooking(ctx context.Context, id, historyID string, endedAt time.Time) (*models.HistoryRecord, error)
	GetHistoryRecordByID(ctx context.Context, id string) (*models.HistoryRecord, error)
	ListHistory(ctx context.Context, tourID string) ([]models.HistoryRecord, error)
}

// TourStore is the read-only capacity source. NotFound is reported via
// ErrTourNotFound.
type TourStore interface {
	GetCapacity(ctx context.Context, tourID string) (int, error)
}

// TourLock serializes the check-and-insert sequence per tour. Locks for
// different tours are independent.
type TourLock interface {
	LockTour(ctx context.Context, tourID, ownerID string) (bool, error)
	UnlockTour(ctx context.Context, tourID, ownerID string) error
}

type KafkaPublisher interface {
	PublishBookingCreated(booking models.Booking) error
	PublishBookingArchived(record models.HistoryRecord) error
}

type BookingService struct {
	DB     DBLayer
	Tours  TourStore
	Lock   TourLock
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewBookingService(db DBLayer, tours TourStore, lock TourLock, kafka KafkaPublisher, log *logger.Logger) *BookingService {
	return &BookingService{DB: db, Tours: tours, Lock: lock, Kafka: kafka, Logger: log}
}

// CreateBooking reserves seats on a tour. The capacity check and the insert
// run under the tour's lock so concurrent requests cannot jointly oversell;
// the booked total is recomputed from active bookings on every call.
func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if req.SeatsBooked <= 0 {
		return nil, fmt.Errorf("%w: seats_booked must be a positive integer", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, fmt.Errorf("%w: phone_number is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.TourID) == "" {
		return nil, fmt.Errorf("%w: tur_id is required", ErrInvalidRequest)
	}

	capacity, err := s.Tours.GetCapacity(ctx, req.TourID)
	if err != nil {
		if isTourNotFound(err) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("%w: read tour capacity: %v", ErrStorage, err)
	}

	booking := models.Booking{
		ID:          uuid.NewString(),
		TourID:      req.TourID,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		SeatsBooked: req.SeatsBooked,
		Status:      models.StatusBooked,
		BookingDate: time.Now().UTC(),
	}

	// Lock contention and aborted transactions are transient; retry once
	// before surfacing a storage failure.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		err := s.reserve(ctx, booking, capacity)
		if err == nil {
			lastErr = nil
			break
		}
		if errors.Is(err, ErrInvalidRequest) || IsCapacityExceeded(err) != nil {
			return nil, err
		}
		lastErr = err
	}
	if lastErr != nil {
		s.logBooking("CREATE_FAILED", booking.ID, lastErr.Error())
		return nil, fmt.Errorf("%w: %v", ErrStorage, lastErr)
	}

	s.logBooking("CREATED", booking.ID, fmt.Sprintf("%d seats on tour %s", booking.SeatsBooked, booking.TourID))

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCreated(booking); err != nil {
			s.logBooking("KAFKA_PUBLISH_FAILED", booking.ID, err.Error())
		}
	}

	return &booking, nil
}

// reserve runs the check-and-insert critical section under the tour lock.
func (s *BookingService) reserve(ctx context.Context, booking models.Booking, capacity int) error {
	ok, err := s.Lock.LockTour(ctx, booking.TourID, booking.ID)
	if err != nil {
		return fmt.Errorf("acquire tour lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("tour %s lock contention", booking.TourID)
	}
	defer func() {
		if err := s.Lock.UnlockTour(ctx, booking.TourID, booking.ID); err != nil {
			s.logBooking("UNLOCK_FAILED", booking.ID, err.Error())
		}
	}()

	booked, err := s.DB.SumActiveSeats(ctx, booking.TourID)
	if err != nil {
		return fmt.Errorf("sum active seats: %w", err)
	}

	if booked+booking.SeatsBooked > capacity {
		return &CapacityExceededError{
			TourID:    booking.TourID,
			Requested: booking.SeatsBooked,
			Remaining: capacity - booked,
		}
	}

	if err := s.DB.CreateBooking(ctx, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// ArchiveBooking moves an active booking into the history ledger. The
// snapshot insert and the delete happen in one DB transaction. A second
// archival of the same id fails with ErrBookingNotFound.
func (s *BookingService) ArchiveBooking(ctx context.Context, id string) (*models.HistoryRecord, error) {
	record, err := s.DB.ArchiveBooking(ctx, id, uuid.NewString(), time.Now().UTC())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		// Aborted transactions leave no partial state; one internal retry.
		record, err = s.DB.ArchiveBooking(ctx, id, uuid.NewString(), time.Now().UTC())
		if err != nil {
			if isNotFound(err) {
				return nil, ErrBookingNotFound
			}
			return nil, fmt.Errorf("%w: archive booking %s: %v", ErrStorage, id, err)
		}
	}

	s.logBooking("ARCHIVED", id, fmt.Sprintf("history record %s", record.ID))

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingArchived(*record); err != nil {
			s.logBooking("KAFKA_PUBLISH_FAILED", id, err.Error())
		}
	}

	return record, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, tourID string) ([]models.Booking, error) {
	bookings, err := s.DB.ListBookings(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return bookings, nil
}

func (s *BookingService) GetHistoryRecord(ctx context.Context, id string) (*models.HistoryRecord, error) {
	record, err := s.DB.GetHistoryRecordByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrHistoryNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return record, nil
}

func (s *BookingService) ListHistory(ctx context.Context, tourID string) ([]models.HistoryRecord, error) {
	records, err := s.DB.ListHistory(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return records, nil
}

func (s *BookingService) logBooking(action, id, message string) {
	if s.Logger != nil {
		s.Logger.LogBooking(action, id, message)
	}
}
