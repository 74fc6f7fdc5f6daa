package stattable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number parses raw as a float. Blank, unparsable, NaN and infinite values
// yield def.
func Number(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	raw = strings.TrimSuffix(raw, "%")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SeasonLabel renders "2425" and "2024-2025" as "2024-25". Anything else is
// returned trimmed.
func SeasonLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case len(raw) == 4 && isDigits(raw):
		return fmt.Sprintf("20%s-%s", raw[:2], raw[2:])
	case len(raw) == 9 && raw[4] == '-' && isDigits(raw[:4]) && isDigits(raw[5:]):
		return raw[:4] + "-" + raw[7:]
	default:
		return raw
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
