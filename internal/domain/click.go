package domain

import "time"

// Sentinel values for click metadata that could not be resolved.
const (
	ReferrerDirect = "Direct"
	Unknown        = "Unknown"
)

// Click is one recorded traversal of a short code. Clicks are append-only:
// once written they are never mutated or deleted, and they deliberately keep
// only the short code (not the record ID) as a weak reference, so deleting a
// URL orphans its history rather than erasing it.
type Click struct {
	ID        string
	ShortCode string
	ClickedAt time.Time

	// Raw request metadata.
	IPAddress string
	UserAgent string
	Referrer  string

	// Derived fields, best-effort. "Unknown" when enrichment is
	// unavailable or timed out.
	Country string
	City    string
	Device  string
	Browser string
}

// ClickMetadata is what the transport layer hands to the click recorder.
type ClickMetadata struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// NewClick builds an unenriched click for the given short code. Derived
// fields start at Unknown; an absent referrer becomes the Direct sentinel.
func NewClick(id, shortCode string, clickedAt time.Time, meta ClickMetadata) *Click {
	referrer := meta.Referrer
	if referrer == "" {
		referrer = ReferrerDirect
	}
	return &Click{
		ID:        id,
		ShortCode: shortCode,
		ClickedAt: clickedAt,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Referrer:  referrer,
		Country:   Unknown,
		City:      Unknown,
		Device:    Unknown,
		Browser:   Unknown,
	}
}

// Clone returns a copy so stored events stay immutable.
func (c *Click) Clone() *Click {
	cp := *c
	return &cp
}
