package geoip

import (
	"github.com/mileusna/useragent"

	"shortlink/internal/domain"
)

// Device classes reported by the user-agent classifier.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceBot     = "Bot"
)

// UAClassifier classifies user agents with mileusna/useragent.
type UAClassifier struct{}

func (UAClassifier) Classify(rawUA string) (device, browser string) {
	if rawUA == "" {
		return domain.Unknown, domain.Unknown
	}

	ua := useragent.Parse(rawUA)

	switch {
	case ua.Bot:
		device = DeviceBot
	case ua.Tablet:
		device = DeviceTablet
	case ua.Mobile:
		device = DeviceMobile
	case ua.Desktop:
		device = DeviceDesktop
	default:
		device = domain.Unknown
	}

	browser = ua.Name
	if browser == "" {
		browser = domain.Unknown
	}
	return device, browser
}

var _ Classifier = UAClassifier{}
