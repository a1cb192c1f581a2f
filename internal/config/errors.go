package config

import (
	"errors"
)

// Sentinel kinds for configuration failures, matchable with errors.Is
// from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
