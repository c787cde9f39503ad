package db

import (
	"context"

	"github.com/uptrace/bun"

	"tur-booking/internal/models"
)

// Migrate creates the bookings and booking_history tables. Production
// schemas come from the golang-migrate SQL files; this helper covers
// test databases and first-run dev setups.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.Booking)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	if _, err := db.NewCreateTable().
		Model((*models.HistoryRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	return nil
}
