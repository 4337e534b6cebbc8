// Package shortcode produces and validates short codes. Generation is pure
// given the random source; registry-wide uniqueness is the store's problem.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

const (
	// DefaultLength gives 62^6 combinations, enough that collisions are
	// a retry path rather than an expected event.
	DefaultLength = 6

	charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Custom codes additionally allow hyphens.
var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,20}$`)

// Generator produces random alphanumeric codes of a fixed length.
type Generator struct {
	length int
}

// NewGenerator returns a generator for codes of the given length.
// Non-positive lengths fall back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}

// Generate draws a code uniformly from [A-Za-z0-9]^length using crypto/rand.
// Bytes that would bias the modulo are rejected and redrawn.
func (g *Generator) Generate() (string, error) {
	// Largest multiple of len(charset) below 256; bytes at or above it
	// are discarded to keep the distribution uniform.
	const limit = byte(256 - 256%len(charset))

	code := make([]byte, g.length)
	buf := make([]byte, g.length)
	filled := 0
	for filled < g.length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code[filled] = charset[int(b)%len(charset)]
			filled++
			if filled == g.length {
				break
			}
		}
	}
	return string(code), nil
}

// ValidateCustom reports whether a caller-supplied code has an acceptable
// shape: 3-20 characters, alphanumeric plus hyphen.
func ValidateCustom(code string) bool {
	return customCodePattern.MatchString(code)
}
