package pricing

import "errors"

var (
	ErrUnknownTier         = errors.New("unknown package tier")
	ErrTravelersOutOfRange = errors.New("travelers must be between 1 and 10")
)
