package models

import (
	"time"

	"github.com/uptrace/bun"
)

// HistoryRecord is an immutable snapshot of a booking taken at archival.
// It carries no foreign keys so it survives deletion of the originating
// tour or booking.
type HistoryRecord struct {
	bun.BaseModel `bun:"table:booking_history"`

	ID          string    `bun:"id,pk" json:"id"`
	TourID      string    `bun:"tur_id,notnull" json:"tur_id"`
	FullName    string    `bun:"full_name,notnull" json:"full_name"`
	PhoneNumber string    `bun:"phone_number,notnull" json:"phone_number"`
	SeatsBooked int       `bun:"seats_booked,notnull" json:"seats_booked"`
	BookingDate time.Time `bun:"booking_date,notnull" json:"booking_date"`
	EndedAt     time.Time `bun:"ended_at,notnull" json:"ended_at"`
}
