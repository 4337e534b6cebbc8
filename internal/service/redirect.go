package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
)

// Redirector orchestrates one redirect: resolve the code through the
// registry gate, record the click, then hand the target URL back. A blocked
// resolution records nothing; a failed click record blocks the redirect
// rather than silently dropping the event.
type Redirector struct {
	registry *Registry
	recorder *ClickRecorder
	logger   *slog.Logger
}

// NewRedirector creates a redirector.
func NewRedirector(registry *Registry, recorder *ClickRecorder, logger *slog.Logger) *Redirector {
	return &Redirector{
		registry: registry,
		recorder: recorder,
		logger:   logger,
	}
}

// Redirect resolves shortCode and records the traversal. On success it
// returns the original URL for the caller to redirect to.
func (r *Redirector) Redirect(ctx context.Context, shortCode string, meta domain.ClickMetadata) (string, error) {
	target, err := r.registry.ResolveForRedirect(ctx, shortCode)
	if err != nil {
		metrics.RecordRedirectBlocked(blockReason(err))
		return "", err
	}

	// The record can vanish between resolve and record; the click store
	// reports that as ErrNotFound and the redirect is abandoned with it.
	if _, err := r.recorder.Record(ctx, shortCode, meta); err != nil {
		r.logger.Error("click recording failed, redirect aborted",
			"short_code", shortCode,
			"error", err,
		)
		return "", fmt.Errorf("record click: %w", err)
	}

	metrics.RecordRedirect()
	return target, nil
}

func blockReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrInactive):
		return "inactive"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
