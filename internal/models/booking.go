package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booking statuses. Only StatusBooked is assigned today; cancellation is
// modeled as delete-plus-archive, not a status transition.
const (
	StatusBooked = "booked"
)

type BookingRequest struct {
	TourID      string `json:"tur_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	SeatsBooked int    `json:"seats_booked"`
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID          string    `bun:"id,pk" json:"id"`
	TourID      string    `bun:"tur_id,notnull" json:"tur_id"`
	FullName    string    `bun:"full_name,notnull" json:"full_name"`
	PhoneNumber string    `bun:"phone_number,notnull" json:"phone_number"`
	SeatsBooked int       `bun:"seats_booked,notnull" json:"seats_booked"`
	Status      string    `bun:"status,notnull" json:"status"`
	BookingDate time.Time `bun:"booking_date,notnull" json:"booking_date"`
}
