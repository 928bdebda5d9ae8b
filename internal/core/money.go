// Package core holds the domain records and the pure financial engines:
// aggregation, notification rules and budget alerts. Nothing in this
// package performs I/O.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-supplied amount string to whole rupiah.
//
// It accepts bare digits ("150000"), dot or comma thousand separators
// ("150.000", "150,000") and an optional decimal tail which is rounded
// half-up to the nearest rupiah ("150000.50" -> 150001). Only positive
// amounts are valid.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	intPart := s
	fracPart := ""
	// A single trailing dot/comma group of 1-2 digits is a decimal tail;
	// everything else is treated as thousand separators.
	if i := strings.LastIndexAny(s, ".,"); i >= 0 && len(s)-i-1 <= 2 {
		intPart = s[:i]
		fracPart = s[i+1:]
	}
	intPart = strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, intPart)
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	amount, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Round the decimal tail half-up.
	if len(fracPart) > 0 {
		d := int64(fracPart[0] - '0')
		if d >= 5 {
			amount++
		}
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// FormatRupiah renders an amount as "Rp 1.234.567" with dot thousand
// separators, the display convention of the app.
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
