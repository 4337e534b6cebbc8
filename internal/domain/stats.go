package domain

// TrendDays is the size of the click-trend window: the most recent N calendar
// days including today, oldest first.
const TrendDays = 5

// TopN is how many entries the ranked referrer and country lists carry.
const TopN = 4

// TrendPoint is one calendar-day bucket of the click trend.
type TrendPoint struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Clicks int64  `json:"clicks"`
}

// Stats is the derived summary for one short code. It is computed from the
// click history on demand and never stored.
type Stats struct {
	TotalClicks         int64        `json:"total_clicks"`
	UniqueClicks        int64        `json:"unique_clicks"`
	AverageClicksPerDay float64      `json:"average_clicks_per_day"`
	TopReferrers        []string     `json:"top_referrers"`
	TopCountries        []string     `json:"top_countries"`
	ClickTrend          []TrendPoint `json:"click_trend"`
}
