// Package isbn validates book identifiers and converts them to the canonical
// 13-digit form used as the catalogue key.
package isbn

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned when a string is not a valid ISBN-10 or ISBN-13.
var ErrInvalid = errors.New("invalid ISBN")

// Clean keeps only digits and X, upper-casing x. Prefixes such as "ISBN",
// separators and stray whitespace are dropped.
func Clean(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}

// To13 converts s to a 13-digit ISBN. ISBN-10 input is converted to the
// 978-prefixed form. Both forms must carry a valid check digit.
func To13(s string) (string, error) {
	c := Clean(s)
	if placeholder(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	switch len(c) {
	case 10:
		if !valid10(c) {
			return "", fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		body := "978" + c[:9]
		return body + string(check13(body)), nil
	case 13:
		if !valid13(c) {
			return "", fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalid, s)
	}
}

// Valid reports whether s can be converted with To13.
func Valid(s string) bool {
	_, err := To13(s)
	return err == nil
}

// placeholder reports the all-zero identifiers some catalogues use for
// books without an ISBN.
func placeholder(c string) bool {
	switch c {
	case "0000000000", "000000000X", "0000000000000":
		return true
	}
	return false
}

func valid10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		var d int
		switch {
		case s[i] >= '0' && s[i] <= '9':
			d = int(s[i] - '0')
		case s[i] == 'X' && i == 9:
			d = 10
		default:
			return false
		}
		sum += (10 - i) * d
	}
	return sum%11 == 0
}

func valid13(s string) bool {
	if !strings.HasPrefix(s, "978") && !strings.HasPrefix(s, "979") {
		return false
	}
	for i := 0; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return check13(s[:12]) == s[12]
}

// check13 computes the check digit for the first twelve digits of an ISBN-13.
func check13(body string) byte {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return byte('0' + (10-sum%10)%10)
}
