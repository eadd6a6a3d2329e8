// Package core holds the ledger domain: transactions, money, recurring
// templates and budget limits, together with their validation rules.
//
// This file contains parsing and formatting of monetary amounts. Amounts
// are kept as integer grosze; floats never enter a calculation.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToGrosze converts a user-entered decimal string to grosze.
//
// Both dot (12.34) and comma (12,34) separators are accepted; a third
// decimal digit is rounded half-up. Only strictly positive amounts are
// valid — signs, zero and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToGrosze("12.34") -> 1234, nil
//	ParseDecimalToGrosze("12,34") -> 1234, nil
//	ParseDecimalToGrosze("12.344") -> 1234, nil (rounds down)
//	ParseDecimalToGrosze("12.345") -> 1235, nil (rounds up)
func ParseDecimalToGrosze(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
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
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; half-up rounding on the third
	var fracGrosze int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracGrosze = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracGrosze += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracGrosze++
			}
		}
	}
	grosze := iv*100 + fracGrosze
	if grosze <= 0 {
		return 0, ErrInvalidAmount
	}
	return grosze, nil
}

// String formats the amount as a złoty string, e.g. "12,34 zł" or
// "-3,50 zł". Display only; calculations stay in grosze.
func (m Money) String() string {
	g := m.Grosze
	neg := g < 0
	if neg {
		g = -g
	}
	s := strconv.FormatInt(g/100, 10) + "," + fmt.Sprintf("%02d", g%100)
	if neg {
		return "-" + s + " zł"
	}
	return s + " zł"
}
