// Package service holds the business logic of the short-code registry: record
// creation and lifecycle, redirect resolution, click recording and statistics.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"
	"shortlink/internal/shortcode"
	"shortlink/pkg/validator"
)

// CodeGenerator produces candidate short codes. *shortcode.Generator is the
// production implementation.
type CodeGenerator interface {
	Generate() (string, error)
}

// Registry owns short URL records: it validates input, allocates codes and
// gates redirect resolution. Uniqueness itself is enforced by the store's
// exclusive check-then-insert, so concurrent creates for the same code cannot
// both succeed.
type Registry struct {
	urls        repository.URLRepository
	gen         CodeGenerator
	maxAttempts int
	now         func() time.Time
}

// NewRegistry creates a registry. maxAttempts caps random-code retries before
// creation gives up with domain.ErrCodeSpaceExhausted; non-positive values
// mean a single attempt.
func NewRegistry(urls repository.URLRepository, gen CodeGenerator, maxAttempts int) *Registry {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Registry{
		urls:        urls,
		gen:         gen,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// WithClock overrides the registry's time source. Tests use it to pin "now".
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Create registers originalURL under customCode, or under a generated code
// when customCode is empty. All validation happens before any write: a failed
// create never leaves a partial record behind.
func (r *Registry) Create(ctx context.Context, originalURL, customCode string, expiresAt *time.Time) (*domain.URL, error) {
	if err := validator.URL(originalURL); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidURL, err)
	}

	now := r.now()
	if expiresAt != nil {
		if err := validator.Expiry(*expiresAt, now); err != nil {
			return nil, domain.ErrInvalidExpiry
		}
	}

	if customCode != "" {
		if !shortcode.ValidateCustom(customCode) {
			return nil, domain.ErrInvalidShortCode
		}
		url := r.newRecord(originalURL, customCode, now, expiresAt)
		if err := r.urls.Create(ctx, url); err != nil {
			return nil, err
		}
		metrics.RecordURLCreated()
		return url, nil
	}

	// Random allocation: generation is not uniqueness-aware, so collisions
	// surface from the store and are retried up to the ceiling.
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		code, err := r.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}
		url := r.newRecord(originalURL, code, now, expiresAt)
		err = r.urls.Create(ctx, url)
		if err == nil {
			metrics.RecordURLCreated()
			return url, nil
		}
		if errors.Is(err, domain.ErrDuplicateShortCode) {
			continue
		}
		return nil, err
	}
	return nil, domain.ErrCodeSpaceExhausted
}

func (r *Registry) newRecord(originalURL, code string, now time.Time, expiresAt *time.Time) *domain.URL {
	return &domain.URL{
		ID:          uuid.NewString(),
		ShortCode:   code,
		OriginalURL: originalURL,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
		IsActive:    true,
		ClickCount:  0,
	}
}

// Lookup returns the record for a code without considering expiry or active
// state; callers decide what those mean.
func (r *Registry) Lookup(ctx context.Context, shortCode string) (*domain.URL, error) {
	return r.urls.GetByShortCode(ctx, shortCode)
}

// ResolveForRedirect is the single gate every redirect passes through. It
// fails with domain.ErrNotFound, domain.ErrExpired or domain.ErrInactive, and
// on success returns the target URL.
func (r *Registry) ResolveForRedirect(ctx context.Context, shortCode string) (string, error) {
	url, err := r.urls.GetByShortCode(ctx, shortCode)
	if err != nil {
		return "", err
	}
	if err := url.CanRedirect(r.now()); err != nil {
		return "", err
	}
	return url.OriginalURL, nil
}

// Delete removes the record with the given ID, reporting whether anything was
// deleted. Click history is kept for historical stats.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	err := r.urls.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	metrics.RecordURLDeleted()
	return true, nil
}

// List returns all records, newest first.
func (r *Registry) List(ctx context.Context) ([]*domain.URL, error) {
	return r.urls.List(ctx)
}
