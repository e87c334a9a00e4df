package config

import "errors"

var ErrInvalidValue = errors.New("invalid config value")
