package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"tur-booking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ErrNotFound is returned when a booking or history record does not exist.
var ErrNotFound = errors.New("record not found")

// ---------------- BOOKINGS ----------------

// CreateBooking → insert new active booking
func (d *DB) CreateBooking(ctx context.Context, booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(ctx)
	return err
}

// GetBookingByID → fetch one active booking by its ID
func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookings → fetch all active bookings, optionally scoped to one tour
func (d *DB) ListBookings(ctx context.Context, tourID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	q := d.Bun.NewSelect().
		Model(&bookings).
		Order("booking_date DESC")
	if tourID != "" {
		q = q.Where("tur_id = ?", tourID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return bookings, nil
}

// SumActiveSeats returns the total seats held by active bookings for a tour.
// The aggregate is recomputed on every call rather than kept as a counter,
// so deleted bookings can never leave it stale.
func (d *DB) SumActiveSeats(ctx context.Context, tourID string) (int, error) {
	var total int
	err := d.Bun.NewSelect().
		ColumnExpr("COALESCE(SUM(seats_booked), 0)").
		Model((*models.Booking)(nil)).
		Where("tur_id = ?", tourID).
		Where("status = ?", models.StatusBooked).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ---------------- HISTORY ----------------

// ArchiveBooking snapshots the booking into booking_history and deletes the
// active row in one transaction, so a crash between the steps can neither
// lose nor duplicate the record.
func (d *DB) ArchiveBooking(ctx context.Context, id, historyID string, endedAt time.Time) (*models.HistoryRecord, error) {
	var record models.HistoryRecord

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var booking models.Booking
		err := tx.NewSelect().
			Model(&booking).
			Where("id = ?", id).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		record = models.HistoryRecord{
			ID:          historyID,
			TourID:      booking.TourID,
			FullName:    booking.FullName,
			PhoneNumber: booking.PhoneNumber,
			SeatsBooked: booking.SeatsBooked,
			BookingDate: booking.BookingDate,
			EndedAt:     endedAt,
		}
		if _, err := tx.NewInsert().Model(&record).Exec(ctx); err != nil {
			return fmt.Errorf("insert history record: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetHistoryRecordByID → fetch one archived booking by its ID
func (d *DB) GetHistoryRecordByID(ctx context.Context, id string) (*models.HistoryRecord, error) {
	var record models.HistoryRecord
	err := d.Bun.NewSelect().
		Model(&record).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListHistory → fetch archived bookings, optionally scoped to one tour
func (d *DB) ListHistory(ctx context.Context, tourID string) ([]models.HistoryRecord, error) {
	records := []models.HistoryRecord{}
	q := d.Bun.NewSelect().
		Model(&records).
		Order("ended_at DESC")
	if tourID != "" {
		q = q.Where("tur_id = ?", tourID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

// CountHistory → number of archived bookings
func (d *DB) CountHistory(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.HistoryRecord)(nil)).
		Count(ctx)
}
