package notify

import "errors"

var (
	ErrUnknownKind      = errors.New("unknown notification kind")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrMissingBookingID = errors.New("missing booking id")
)
