package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shortlink/internal/domain"
	"shortlink/internal/geoip"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"
)

// DefaultEnrichTimeout bounds how long click enrichment may hold up a
// redirect before the derived fields fall back to Unknown.
const DefaultEnrichTimeout = 150 * time.Millisecond

// ClickRecorder appends click events and keeps the owning record's counter in
// step. The store makes the append+increment pair atomic; this layer adds ID
// and timestamp assignment plus best-effort metadata enrichment.
type ClickRecorder struct {
	clicks        repository.ClickRepository
	locator       geoip.Locator
	classifier    geoip.Classifier
	enrichTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewClickRecorder creates a recorder. A non-positive enrichTimeout falls
// back to DefaultEnrichTimeout.
func NewClickRecorder(
	clicks repository.ClickRepository,
	locator geoip.Locator,
	classifier geoip.Classifier,
	enrichTimeout time.Duration,
	logger *slog.Logger,
) *ClickRecorder {
	if enrichTimeout <= 0 {
		enrichTimeout = DefaultEnrichTimeout
	}
	return &ClickRecorder{
		clicks:        clicks,
		locator:       locator,
		classifier:    classifier,
		enrichTimeout: enrichTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the recorder's time source for tests.
func (c *ClickRecorder) WithClock(now func() time.Time) *ClickRecorder {
	c.now = now
	return c
}

// Record appends a click event for shortCode and increments its record's
// counter. Fails with domain.ErrNotFound when the code has no owning record;
// the existence check happens inside the store, atomically with the append,
// so there is no window for the record to vanish in between.
func (c *ClickRecorder) Record(ctx context.Context, shortCode string, meta domain.ClickMetadata) (*domain.Click, error) {
	click := domain.NewClick(uuid.NewString(), shortCode, c.now(), meta)
	c.enrich(ctx, click)

	if err := c.clicks.Record(ctx, click); err != nil {
		return nil, err
	}
	metrics.RecordClick()
	return click, nil
}

// History returns the click events for a code, newest first. Deleted records
// keep their history, so this works for orphaned codes too.
func (c *ClickRecorder) History(ctx context.Context, shortCode string) ([]*domain.Click, error) {
	return c.clicks.History(ctx, shortCode)
}

// enrich fills the derived fields under a bounded deadline. Enrichment never
// fails the click: on timeout or lookup error the Unknown sentinels stay.
func (c *ClickRecorder) enrich(ctx context.Context, click *domain.Click) {
	ctx, cancel := context.WithTimeout(ctx, c.enrichTimeout)
	defer cancel()

	if loc, err := c.locator.Locate(ctx, click.IPAddress); err == nil {
		click.Country = loc.Country
		click.City = loc.City
	} else {
		c.logger.Debug("geolocation unavailable",
			"short_code", click.ShortCode,
			"error", err,
		)
	}

	click.Device, click.Browser = c.classifier.Classify(click.UserAgent)
}
