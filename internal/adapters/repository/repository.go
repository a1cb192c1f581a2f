// Package repository provides the in-memory store implementations the
// engine reads and writes through. Each store is an explicit object with
// its own lifecycle, injected where needed; there is no ambient global
// state. Stores are mutex-guarded and safe for concurrent use, but
// read-modify-write sequences across calls are not transactionally
// isolated.
package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrMissingRecord = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
)
