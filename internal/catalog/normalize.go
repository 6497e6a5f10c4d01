package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeRoomType collapses whitespace and title-cases a room type, so
// "  deluxe   SUITE" becomes "Deluxe Suite".
func NormalizeRoomType(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
