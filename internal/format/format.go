// Package format renders prices, durations and distances for display.
// Formatting is total: invalid input degrades to a placeholder or an
// absent value, never an error.
package format

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// moneyPlaceholder is shown when no price is available.
const moneyPlaceholder = "—"

// Money renders a price with two decimal digits, rounding halves away
// from zero. A nil or non-finite value renders as the placeholder.
//
// Rounding happens in decimal space, on the shortest decimal form of the
// value, so Money(12.345) is "12.35" even though the nearest float64 to
// 12.345 sits just below it.
func Money(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return moneyPlaceholder
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(*v, 'f', -1, 64))
	if !ok {
		return moneyPlaceholder
	}
	return r.FloatString(2)
}

// Duration renders a duration in seconds as "H h M min", dropping the
// hour part when it is zero. Negative input clamps to zero. The second
// return value is false when the input is nil or not a finite number,
// meaning the caller should omit the field entirely.
func Duration(seconds *float64) (string, bool) {
	if seconds == nil || math.IsNaN(*seconds) || math.IsInf(*seconds, 0) {
		return "", false
	}
	s := *seconds
	if s < 0 {
		s = 0
	}
	totalMinutes := int(s) / 60
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%d h %d min", hours, minutes), true
	}
	return fmt.Sprintf("%d min", minutes), true
}

// Distance renders a distance in kilometers as "N km" using the shortest
// decimal form of the value.
func Distance(km float64) string {
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return moneyPlaceholder
	}
	return strconv.FormatFloat(km, 'f', -1, 64) + " km"
}
