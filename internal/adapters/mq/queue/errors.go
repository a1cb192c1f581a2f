package queue

import "errors"

// Sentinel kinds for queue consumers.
var (
	ErrClosed = errors.New("queue closed")
)
