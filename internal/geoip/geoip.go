// Package geoip defines the enrichment collaborators for click events:
// IP geolocation and user-agent classification. Both are best-effort and
// substitutable; the click recorder falls back to the Unknown sentinel when
// they fail or run out of time.
package geoip

import (
	"context"

	"shortlink/internal/domain"
)

// Location is the resolved geography for an IP address.
type Location struct {
	Country string
	City    string
}

// Locator resolves an IP address to a location. Implementations must respect
// ctx cancellation; the caller runs them under a short deadline.
type Locator interface {
	Locate(ctx context.Context, ipAddress string) (Location, error)
}

// Classifier derives device and browser classes from a raw user-agent
// string. Classification is heuristic and local, so it takes no context.
type Classifier interface {
	Classify(userAgent string) (device, browser string)
}

// StubLocator answers Unknown for every IP. It is the default Locator: the
// interface is the plug point for a real geolocation backend.
type StubLocator struct{}

func (StubLocator) Locate(ctx context.Context, ipAddress string) (Location, error) {
	return Location{Country: domain.Unknown, City: domain.Unknown}, nil
}

var _ Locator = StubLocator{}
