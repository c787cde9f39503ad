package db

import (
	"context"

	"github.com/uptrace/bun"

	"tur-booking/internal/models"
)

// Migrate creates the tours table for test and dev databases.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*models.Tour)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}
