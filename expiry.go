package kursovaya

import (
	"strconv"
	"strings"
	"time"
)

// CardExpired checks an MM/YY expiry string against the given date. The
// two-digit year is read as 2000+YY; a card is expired when its year is
// before the current year, or the same year with an earlier month.
// Malformed strings are treated as not expired rather than as an error.
func CardExpired(expiry string, now time.Time) bool {
	if len(expiry) < 5 {
		return false
	}
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 0 || year > 99 {
		return false
	}

	fullYear := 2000 + year
	if fullYear < now.Year() {
		return true
	}
	if fullYear == now.Year() && month < int(now.Month()) {
		return true
	}
	return false
}
