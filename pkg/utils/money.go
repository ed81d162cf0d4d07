package utils

import "math"

// ToCents converts a decimal currency amount from the API boundary into
// int64 minor units. Rounds to the nearest cent so values like 19.99, which
// have no exact binary representation, do not lose a cent to truncation.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
