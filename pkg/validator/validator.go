// Package validator holds input validation shared by the service layer and
// any transport surface that wants to reject bad input early.
package validator

import (
	"net/url"
	"strings"
	"time"
)

// URL checks that a string is an absolute http(s) URL with a host.
func URL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrMalformedURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidScheme
	}
	if parsed.Host == "" {
		return ErrInvalidHost
	}
	return nil
}

// Expiry checks that an expiration timestamp lies strictly after now.
func Expiry(expiresAt, now time.Time) error {
	if !expiresAt.After(now) {
		return ErrExpiryInPast
	}
	return nil
}
