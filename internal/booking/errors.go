package booking

import (
	"database/sql"
	"errors"
	"fmt"

	bookingdb "tur-booking/internal/booking/db"
	tourdb "tur-booking/internal/tour/db"
)

var (
	// ErrInvalidRequest covers malformed booking input: missing contact
	// fields or a non-positive seat count.
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrTourNotFound means the referenced tour does not exist.
	ErrTourNotFound = errors.New("tour not found")

	// ErrBookingNotFound means no active booking exists for the id. An
	// already-archived booking reports this too; archival is not idempotent.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrHistoryNotFound means no history record exists for the id.
	ErrHistoryNotFound = errors.New("history record not found")

	// ErrStorage signals the persistence layer failed or a transaction
	// aborted. No partial state is left visible, so callers may retry.
	ErrStorage = errors.New("storage failure")
)

// CapacityExceededError rejects a reservation that would oversell the tour.
// Remaining carries the seats still available for user feedback.
type CapacityExceededError struct {
	TourID    string
	Requested int
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("tour %s has only %d seats remaining, %d requested", e.TourID, e.Remaining, e.Requested)
}

func IsCapacityExceeded(err error) *CapacityExceededError {
	if err == nil {
		return nil
	}

	var capErr *CapacityExceededError
	if errors.As(err, &capErr) {
		return capErr
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, bookingdb.ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

func isTourNotFound(err error) bool {
	return errors.Is(err, tourdb.ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
