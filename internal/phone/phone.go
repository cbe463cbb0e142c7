// Package phone normalizes and validates Brazilian phone numbers. Numbers are
// stored in E.164 form (+55 followed by area code and subscriber number).
package phone

import (
	"errors"
	"strings"
)

// ErrInvalid indicates a number that cannot be normalized.
var ErrInvalid = errors.New("phone: invalid number")

// Normalize strips formatting and returns the E.164 form of a Brazilian
// number. Accepts local forms with or without the country code, with or
// without punctuation. Mobile numbers must carry the leading 9 digit.
func Normalize(raw string) (string, error) {
	digits := digitsOf(raw)
	if digits == "" {
		return "", ErrInvalid
	}

	// Drop the international prefix when present.
	digits = strings.TrimPrefix(digits, "00")
	if strings.HasPrefix(digits, "55") && len(digits) >= 12 {
		digits = digits[2:]
	}

	// Remainder must be area code (2 digits) plus 8 or 9 subscriber digits.
	if len(digits) != 10 && len(digits) != 11 {
		return "", ErrInvalid
	}
	area := digits[:2]
	if area[0] == '0' {
		return "", ErrInvalid
	}
	subscriber := digits[2:]
	if len(subscriber) == 9 && subscriber[0] != '9' {
		return "", ErrInvalid
	}

	return "+55" + digits, nil
}

// Valid reports whether the number normalizes cleanly.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// IsMobile reports whether a normalized number is a mobile line. Brazilian
// mobile numbers have a 9-digit subscriber part starting with 9.
func IsMobile(normalized string) bool {
	digits := strings.TrimPrefix(normalized, "+55")
	return len(digits) == 11 && digits[2] == '9'
}

// digitsOf keeps only the decimal digits of a string.
func digitsOf(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
