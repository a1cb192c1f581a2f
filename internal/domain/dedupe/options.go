// Package dedupe tracks reaction event ids so client retries are dropped
// before they reach the queue.
package dedupe

// Option applies a configuration option to the ring deduper.
type Option func(*ringDeduper)

// WithMaxSize sets the maximum number of ids to keep in memory.
// A value of zero or less disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
