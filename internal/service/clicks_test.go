package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/domain"
	"shortlink/internal/geoip"
	"shortlink/internal/repository"
	"shortlink/internal/repository/memory"
	"shortlink/pkg/logger"
)

// fixedLocator always answers the same location.
type fixedLocator struct {
	loc geoip.Location
}

func (l fixedLocator) Locate(ctx context.Context, ip string) (geoip.Location, error) {
	return l.loc, nil
}

// slowLocator blocks until its context expires.
type slowLocator struct{}

func (slowLocator) Locate(ctx context.Context, ip string) (geoip.Location, error) {
	<-ctx.Done()
	return geoip.Location{}, ctx.Err()
}

// fixedClassifier answers constant device/browser classes.
type fixedClassifier struct {
	device, browser string
}

func (c fixedClassifier) Classify(ua string) (string, string) {
	return c.device, c.browser
}

func newTestRecorder(t *testing.T, clicks repository.ClickRepository, locator geoip.Locator) *ClickRecorder {
	t.Helper()
	return NewClickRecorder(
		clicks,
		locator,
		fixedClassifier{device: "Desktop", browser: "Firefox"},
		50*time.Millisecond,
		logger.New("error").Logger,
	).WithClock(func() time.Time { return fixedNow })
}

func seedURL(t *testing.T, store *memory.Store, code string) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &domain.URL{
		ID:          "id-" + code,
		ShortCode:   code,
		OriginalURL: "https://example.com/" + code,
		CreatedAt:   fixedNow,
		IsActive:    true,
	}))
}

func TestRecord_AppendsAndIncrements(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedURL(t, store, "abc123")
	rec := newTestRecorder(t, store, fixedLocator{loc: geoip.Location{Country: "Canada", City: "Toronto"}})

	click, err := rec.Record(ctx, "abc123", domain.ClickMetadata{
		IPAddress: "203.0.113.9",
		UserAgent: "some-agent",
		Referrer:  "https://news.example",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, click.ID)
	assert.Equal(t, fixedNow, click.ClickedAt)
	assert.Equal(t, "Canada", click.Country)
	assert.Equal(t, "Toronto", click.City)
	assert.Equal(t, "Desktop", click.Device)
	assert.Equal(t, "Firefox", click.Browser)
	assert.Equal(t, "https://news.example", click.Referrer)

	url, err := store.GetByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), url.ClickCount)

	history, err := rec.History(ctx, "abc123")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecord_MissingReferrerBecomesDirect(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedURL(t, store, "abc123")
	rec := newTestRecorder(t, store, geoip.StubLocator{})

	click, err := rec.Record(ctx, "abc123", domain.ClickMetadata{IPAddress: "203.0.113.9"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReferrerDirect, click.Referrer)
}

func TestRecord_UnknownCode(t *testing.T) {
	store := memory.NewStore()
	rec := newTestRecorder(t, store, geoip.StubLocator{})

	_, err := rec.Record(context.Background(), "ghost1", domain.ClickMetadata{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Clicks on expired links are still recorded; blocking the redirect is the
// resolver's job, not the recorder's.
func TestRecord_ExpiredRecordStillRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	past := fixedNow.Add(-time.Hour)
	require.NoError(t, store.Create(ctx, &domain.URL{
		ID:          "id-1",
		ShortCode:   "old123",
		OriginalURL: "https://example.com",
		CreatedAt:   fixedNow.Add(-2 * time.Hour),
		ExpiresAt:   &past,
		IsActive:    true,
	}))
	rec := newTestRecorder(t, store, geoip.StubLocator{})

	_, err := rec.Record(ctx, "old123", domain.ClickMetadata{})
	require.NoError(t, err)

	url, err := store.GetByShortCode(ctx, "old123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), url.ClickCount)
}

// A locator that outruns the enrichment budget must not fail or delay the
// click; the derived fields stay Unknown.
func TestRecord_EnrichmentTimeout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedURL(t, store, "abc123")
	rec := newTestRecorder(t, store, slowLocator{})

	start := time.Now()
	click, err := rec.Record(ctx, "abc123", domain.ClickMetadata{IPAddress: "203.0.113.9"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, domain.Unknown, click.Country)
	assert.Equal(t, domain.Unknown, click.City)
	assert.Less(t, elapsed, time.Second)
}

func TestHistory_SurvivesDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedURL(t, store, "abc123")
	rec := newTestRecorder(t, store, geoip.StubLocator{})

	_, err := rec.Record(ctx, "abc123", domain.ClickMetadata{})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "id-abc123"))

	history, err := rec.History(ctx, "abc123")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecord_LocatorError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedURL(t, store, "abc123")

	rec := NewClickRecorder(
		store,
		errLocator{},
		fixedClassifier{device: "Mobile", browser: "Safari"},
		50*time.Millisecond,
		logger.New("error").Logger,
	).WithClock(func() time.Time { return fixedNow })

	click, err := rec.Record(ctx, "abc123", domain.ClickMetadata{IPAddress: "203.0.113.9"})
	require.NoError(t, err)
	assert.Equal(t, domain.Unknown, click.Country)
	assert.Equal(t, "Mobile", click.Device)
}

type errLocator struct{}

func (errLocator) Locate(ctx context.Context, ip string) (geoip.Location, error) {
	return geoip.Location{}, errors.New("upstream unavailable")
}
