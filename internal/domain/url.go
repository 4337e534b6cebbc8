package domain

import (
	"errors"
	"time"
)

// URL is a single short-code registration. The short code is the unique key
// into the registry; ClickCount is mutated only through the click recorder.
type URL struct {
	ID          string
	ShortCode   string
	OriginalURL string
	CreatedAt   time.Time
	ExpiresAt   *time.Time // nil means the record never expires
	IsActive    bool
	ClickCount  int64
}

// Error taxonomy. Every failure path in the service core resolves to one of
// these sentinels, possibly wrapped with request context.
var (
	ErrInvalidURL         = errors.New("invalid URL: must be absolute http or https")
	ErrInvalidShortCode   = errors.New("invalid short code: 3-20 characters, alphanumeric or hyphen")
	ErrDuplicateShortCode = errors.New("short code already exists")
	ErrInvalidExpiry      = errors.New("expiry must be in the future")
	ErrNotFound           = errors.New("short code not found")
	ErrExpired            = errors.New("short URL has expired")
	ErrInactive           = errors.New("short URL is inactive")

	// ErrCodeSpaceExhausted is returned when random generation keeps
	// colliding past the retry ceiling.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
)

// IsExpired reports whether the record's expiry lies at or before now.
func (u *URL) IsExpired(now time.Time) bool {
	if u.ExpiresAt == nil {
		return false
	}
	return !u.ExpiresAt.After(now)
}

// CanRedirect is the redirect gate: expired records fail with ErrExpired,
// deactivated ones with ErrInactive. Lookup-only callers skip this check.
func (u *URL) CanRedirect(now time.Time) error {
	if u.IsExpired(now) {
		return ErrExpired
	}
	if !u.IsActive {
		return ErrInactive
	}
	return nil
}

// Clone returns a deep copy. Stores hand out clones so concurrent click
// recording never races with a caller inspecting a returned record.
func (u *URL) Clone() *URL {
	c := *u
	if u.ExpiresAt != nil {
		t := *u.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}
