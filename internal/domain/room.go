package domain

import "time"

// Room is a bookable hotel room.
type Room struct {
	ID            string    `json:"id"`
	Type          string    `json:"room_type"`
	PricePerNight Money     `json:"price_per_night"`
	Description   string    `json:"description"`
	PhotoURL      string    `json:"photo_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
