package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Tour is a listed trip offering. The multilingual name/description maps
// are opaque to the booking core; only MaxSeats is read during reservation.
type Tour struct {
	bun.BaseModel `bun:"table:tours"`

	ID          string            `bun:"id,pk" json:"id"`
	Name        map[string]string `bun:"name,type:jsonb" json:"name"`
	Description map[string]string `bun:"description,type:jsonb" json:"description"`
	Photos      []string          `bun:"photos,array" json:"photos"`
	Price       float64           `bun:"price" json:"price"`
	MaxSeats    int               `bun:"max_seats,notnull" json:"max_seats"`
	CreatedAt   time.Time         `bun:"created_at,notnull" json:"created_at"`
}

type TourRequest struct {
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description"`
	Photos      []string          `json:"photos"`
	Price       float64           `json:"price"`
	MaxSeats    *int              `json:"max_seats"`
}

// TourAvailability is the recomputed seat aggregate for one tour.
type TourAvailability struct {
	TourID      string `json:"tur_id"`
	MaxSeats    int    `json:"max_seats"`
	SeatsBooked int    `json:"seats_booked"`
	Remaining   int    `json:"remaining"`
}
