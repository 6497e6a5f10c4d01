package catalog

import (
	"strings"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// FilterRooms narrows rooms to roomType for the stay [checkIn, checkOut].
//
// An empty roomType selects every room. A roomType that matches nothing
// yields an empty result; there is no fallback to the full catalog. Types are
// compared case-insensitively. The input slice is never modified and the
// result keeps input order.
func FilterRooms(rooms []domain.Room, roomType string, checkIn, checkOut domain.Date) ([]domain.Room, error) {
	if err := domain.ValidateStay(checkIn, checkOut); err != nil {
		return nil, err
	}

	roomType = strings.TrimSpace(roomType)
	result := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if roomType == "" || strings.EqualFold(room.Type, roomType) {
			result = append(result, room)
		}
	}
	return result, nil
}
