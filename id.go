package kursovaya

import "math/rand"

// Identifier lengths used across the system.
const (
	AccountNumberDigits     = 20
	CardNumberDigits        = 16
	TransactionNumberDigits = 12
)

// NumericID returns a string of exactly digits characters drawn uniformly
// from '0'-'9'. There is no collision checking; the widths in use keep
// duplicates implausible.
func NumericID(digits int) string {
	buf := make([]byte, digits)
	for i := range buf {
		buf[i] = byte('0' + rand.Intn(10))
	}
	return string(buf)
}
