// Package cli provides the command-line interface for the analysis engine.
package cli

import (
	"fmt"
	"strings"
)

// FormatPrice formats a price with thousands separators and 2 decimal places.
func FormatPrice(price float64) string {
	negative := price < 0
	if negative {
		price = -price
	}

	str := fmt.Sprintf("%.2f", price)
	parts := strings.Split(str, ".")
	intPart := groupThousands(parts[0])

	result := intPart + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	return groupThousands(s[:n-3]) + "," + s[n-3:]
}

// FormatVolume formats a volume with K/M/B abbreviation.
func FormatVolume(volume int64) string {
	v := float64(volume)
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%d", volume)
	}
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatConfidence renders a 0..1 confidence as a percentage.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}

// FormatRange renders a price range as "min – max".
func FormatRange(min, max float64) string {
	return FormatPrice(min) + " – " + FormatPrice(max)
}
