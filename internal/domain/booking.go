package domain

import (
	"regexp"
	"time"
)

// Confirmation code wire format: "BOOK-" followed by 8 characters of
// ConfirmationCodeAlphabet.
const (
	ConfirmationCodePrefix   = "BOOK-"
	ConfirmationCodeLength   = 8
	ConfirmationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var confirmationCodeRe = regexp.MustCompile(`^BOOK-[A-Z0-9]{8}$`)

// IsValidConfirmationCode reports whether code has the BOOK-XXXXXXXX format.
func IsValidConfirmationCode(code string) bool {
	return confirmationCodeRe.MatchString(code)
}

// BookingState is the state of a single booking attempt.
type BookingState string

const (
	BookingStateIdle       BookingState = "idle"
	BookingStateSubmitting BookingState = "submitting"
	BookingStateConfirmed  BookingState = "confirmed"
	BookingStateRejected   BookingState = "rejected"
)

// Booking is a confirmed room reservation. Bookings are never mutated after
// creation; cancellation removes them.
type Booking struct {
	ID               string    `json:"id"`
	ConfirmationCode string    `json:"confirmation_code"`
	RoomID           string    `json:"room_id"`
	UserID           string    `json:"user_id"`
	CheckIn          Date      `json:"check_in_date"`
	CheckOut         Date      `json:"check_out_date"`
	NumAdults        int       `json:"num_adults"`
	NumChildren      int       `json:"num_children"`
	TotalGuests      int       `json:"total_guests"`
	CreatedAt        time.Time `json:"created_at"`
}

// Overlaps reports whether the booking occupies its room during any day of
// [checkIn, checkOut]. Both ends are inclusive, so a stay starting on another
// stay's check-out day counts as an overlap.
func (b *Booking) Overlaps(checkIn, checkOut Date) bool {
	return !b.CheckIn.After(checkOut.Time) && !b.CheckOut.Before(checkIn.Time)
}

// Nights returns the number of nights of the stay.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn.Time).Hours() / 24)
}

// BookingDetails is the guest-supplied part of a booking request.
type BookingDetails struct {
	CheckIn     Date
	CheckOut    Date
	NumAdults   int
	NumChildren int
}
