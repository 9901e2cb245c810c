// Package currency renders monetary amounts for display. Analysis code
// takes a Formatter so callers can substitute their own locale or
// currency without touching detector logic.
package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Formatter renders an amount as a display string.
type Formatter func(amount float64) string

// USD formats an amount as US dollars with two decimal places and
// comma grouping, e.g. 1234.5 -> "$1,234.50".
func USD(amount float64) string {
	negative := math.Signbit(amount)
	abs := math.Abs(amount)

	// Round to cents before splitting to avoid 9.999 -> "$9.100"
	cents := int64(math.Round(abs * 100))
	whole := cents / 100
	frac := cents % 100

	s := fmt.Sprintf("$%s.%02d", groupThousands(whole), frac)
	if negative && cents != 0 {
		return "-" + s
	}
	return s
}

// groupThousands adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
