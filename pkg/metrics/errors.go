package metrics

import (
	"errors"
)

// Sentinel kinds for metric registration failures.
var (
	ErrRegisterFailed = errors.New("metrics registration failed")
)
