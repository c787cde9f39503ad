package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"tur-booking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ErrNotFound is returned when the referenced tour does not exist.
var ErrNotFound = errors.New("tour not found")

// GetCapacity returns the configured max_seats of a tour. This is the read
// the reservation engine's availability check runs against.
func (d *DB) GetCapacity(ctx context.Context, tourID string) (int, error) {
	var maxSeats int
	err := d.Bun.NewSelect().
		Column("max_seats").
		Model((*models.Tour)(nil)).
		Where("id = ?", tourID).
		Limit(1).
		Scan(ctx, &maxSeats)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return maxSeats, nil
}

// GetTourByID → fetch one tour by its ID
func (d *DB) GetTourByID(ctx context.Context, id string) (*models.Tour, error) {
	var tour models.Tour
	err := d.Bun.NewSelect().
		Model(&tour).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

// ListTours → fetch all tours
func (d *DB) ListTours(ctx context.Context) ([]models.Tour, error) {
	tours := []models.Tour{}
	err := d.Bun.NewSelect().
		Model(&tours).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tours, nil
}

// CreateTour → insert new tour
func (d *DB) CreateTour(ctx context.Context, tour models.Tour) error {
	_, err := d.Bun.NewInsert().Model(&tour).Exec(ctx)
	return err
}

// UpdateTour → update allowed fields
func (d *DB) UpdateTour(ctx context.Context, tour models.Tour) error {
	res, err := d.Bun.NewUpdate().
		Model(&tour).
		Column("name", "description", "photos", "price", "max_seats").
		Where("id = ?", tour.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTour → delete a tour by ID. History records reference tours by
// value only, so they survive this.
func (d *DB) DeleteTour(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Tour)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
