package catalog

import "errors"

var ErrDestinationNotFound = errors.New("destination not found")
