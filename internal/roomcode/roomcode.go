// Package roomcode generates, validates and formats the short codes players
// type to join a room.
package roomcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

const (
	Length           = 6
	Alphabet         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultSeparator = "-"

	// bytes at or above this bound are rejected so every symbol is equally likely
	unbiasedBound = 256 - 256%len(Alphabet)
)

var ErrInvalidFormat = errors.New("invalid room code format")

// Generate draws Length independent symbols uniformly from Alphabet.
// Uniqueness is not checked here; the store decides that on create.
func Generate() string {
	code := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(code) < Length {
		rand.Read(buf)
		for _, b := range buf {
			if int(b) >= unbiasedBound {
				continue
			}
			code = append(code, Alphabet[int(b)%len(Alphabet)])
			if len(code) == Length {
				break
			}
		}
	}
	return string(code)
}

// IsValid reports whether code is exactly Length characters of [A-Z0-9].
// It is case sensitive and does not trim.
func IsValid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Format renders code as "ABC-123".
func Format(code string) (string, error) {
	return FormatWith(code, DefaultSeparator)
}

// FormatWith inserts sep after the third character. An empty sep returns the
// code unchanged, still validated.
func FormatWith(code, sep string) (string, error) {
	if !IsValid(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, code)
	}
	half := Length / 2
	return code[:half] + sep + code[half:], nil
}

// Normalize reverses display formatting: it drops every non alphanumeric
// character and upper-cases the rest. The result still needs IsValid.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
