package validator

import "errors"

var (
	ErrEmptyURL      = errors.New("URL cannot be empty")
	ErrMalformedURL  = errors.New("URL is not parseable")
	ErrInvalidScheme = errors.New("URL must use http or https scheme")
	ErrInvalidHost   = errors.New("URL must have a host")
	ErrExpiryInPast  = errors.New("expiry date must be in the future")
)
