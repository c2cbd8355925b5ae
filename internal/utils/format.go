package utils

import (
	"strconv"
	"strings"
)

// FormatComma renders a non-negative amount as a comma-grouped integer
// string (1000000 -> "1,000,000"). Fractions are rounded away.
func FormatComma(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
