// Package repository defines the storage contracts the service layer is
// written against. Implementations live in the memory and postgres
// subpackages; the redis subpackage adds a cache-aside decorator.
package repository

import (
	"context"

	"shortlink/internal/domain"
)

// URLRepository owns the short-code to URL mapping. Implementations must
// enforce short-code uniqueness on Create (returning
// domain.ErrDuplicateShortCode) with an exclusive check-then-insert, and must
// return copies that are safe to read while clicks are being recorded.
type URLRepository interface {
	// Create inserts a new record. Fails with domain.ErrDuplicateShortCode
	// when the short code is already live.
	Create(ctx context.Context, url *domain.URL) error

	// GetByShortCode returns the record for a code, ignoring expiry and
	// active state. domain.ErrNotFound when absent.
	GetByShortCode(ctx context.Context, shortCode string) (*domain.URL, error)

	// GetByID returns the record with the given ID, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.URL, error)

	// Delete removes the record with the given ID. domain.ErrNotFound when
	// no such record exists. Click history is not cascaded.
	Delete(ctx context.Context, id string) error

	// List returns all records ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.URL, error)
}

// ClickRepository owns the append-only click log.
type ClickRepository interface {
	// Record appends the click and increments the owning record's counter
	// as one atomic unit: no reader may observe the counter without the
	// event or the event without the counter. domain.ErrNotFound when the
	// short code has no owning record.
	Record(ctx context.Context, click *domain.Click) error

	// History returns the click events for a code ordered by click time,
	// newest first. It works for orphaned history: events survive the
	// deletion of their owning record.
	History(ctx context.Context, shortCode string) ([]*domain.Click, error)
}
