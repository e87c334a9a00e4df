package payment

import "errors"

var (
	ErrUnknownMethod      = errors.New("unknown payment method")
	ErrMissingCardDetails = errors.New("missing card details")
)
