package service

import (
	"context"
	"sort"
	"time"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"
)

// StatsAggregator computes summary statistics for one short code from its
// click history. For a fixed history and a fixed clock the output is fully
// reproducible.
type StatsAggregator struct {
	urls   repository.URLRepository
	clicks repository.ClickRepository
	now    func() time.Time
}

// NewStatsAggregator creates an aggregator.
func NewStatsAggregator(urls repository.URLRepository, clicks repository.ClickRepository) *StatsAggregator {
	return &StatsAggregator{
		urls:   urls,
		clicks: clicks,
		now:    time.Now,
	}
}

// WithClock overrides the aggregator's time source for tests.
func (a *StatsAggregator) WithClock(now func() time.Time) *StatsAggregator {
	a.now = now
	return a
}

// Compute returns the statistics for shortCode, or domain.ErrNotFound when no
// record exists. The record's creation time anchors the per-day average.
func (a *StatsAggregator) Compute(ctx context.Context, shortCode string) (*domain.Stats, error) {
	url, err := a.urls.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	history, err := a.clicks.History(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	now := a.now()
	stats := &domain.Stats{
		TotalClicks:  int64(len(history)),
		TopReferrers: []string{},
		TopCountries: []string{},
	}

	// Unique clicks count distinct source addresses.
	ips := make(map[string]struct{})
	for _, click := range history {
		ips[click.IPAddress] = struct{}{}
	}
	stats.UniqueClicks = int64(len(ips))

	// Divisor is whole days since creation, at least 1, so a record
	// created today reports its total as the daily average.
	days := int64(now.Sub(url.CreatedAt).Hours() / 24)
	if days < 1 {
		days = 1
	}
	if stats.TotalClicks > 0 {
		stats.AverageClicksPerDay = float64(stats.TotalClicks) / float64(days)
	}

	// History arrives newest first; ranking wants first-seen order, so
	// walk it backwards.
	chronological := make([]*domain.Click, len(history))
	for i, click := range history {
		chronological[len(history)-1-i] = click
	}

	stats.TopReferrers = rankTop(chronological, func(c *domain.Click) string { return c.Referrer })
	stats.TopCountries = rankTop(chronological, func(c *domain.Click) string { return c.Country })
	stats.ClickTrend = trend(chronological, now)

	metrics.RecordStats()
	return stats, nil
}

// rankTop returns the distinct values of key ranked by frequency, descending,
// ties broken by first occurrence, truncated to domain.TopN.
func rankTop(chronological []*domain.Click, key func(*domain.Click) string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	for i, click := range chronological {
		v := key(click)
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			firstSeen[v] = i
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > domain.TopN {
		order = order[:domain.TopN]
	}
	return order
}

// trend buckets clicks by calendar day for the domain.TrendDays most recent
// days including today, oldest first, with empty days reported as zero.
func trend(chronological []*domain.Click, now time.Time) []domain.TrendPoint {
	const dayFormat = "2006-01-02"

	perDay := make(map[string]int64)
	for _, click := range chronological {
		perDay[click.ClickedAt.Format(dayFormat)]++
	}

	points := make([]domain.TrendPoint, 0, domain.TrendDays)
	for i := domain.TrendDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(dayFormat)
		points = append(points, domain.TrendPoint{
			Date:   day,
			Clicks: perDay[day],
		})
	}
	return points
}
