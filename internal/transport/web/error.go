package web

import "errors"

var (
	ErrPanic         = errors.New("recovered from panic")
	ErrMalformedBody = errors.New("malformed request body")
)
