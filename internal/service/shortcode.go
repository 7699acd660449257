package service

import (
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	shortCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// MinShortCodeLength and MaxShortCodeLength bound both generated and custom codes.
	MinShortCodeLength = 6
	MaxShortCodeLength = 8
)

var shortCodeRegexp = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// Paths served by the router itself that would shadow a redirect.
var reservedShortCodes = map[string]struct{}{
	"docs":    {},
	"healthz": {},
	"metrics": {},
	"swagger": {},
}

// IsValidShortCode reports whether code may be used as a custom short code.
func IsValidShortCode(code string) bool {
	if !shortCodeRegexp.MatchString(code) {
		return false
	}

	_, reserved := reservedShortCodes[code]
	return !reserved
}

// generatedLength returns the code length for the given zero-based attempt.
// Each collision lengthens the next code by one, up to MaxShortCodeLength.
func generatedLength(attempt int) int {
	return min(MinShortCodeLength+attempt, MaxShortCodeLength)
}

func generateShortCode(length int) (string, error) {
	return gonanoid.Generate(shortCodeAlphabet, length)
}
