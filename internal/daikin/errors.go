package daikin

import "errors"

// Sentinel errors for appliance operations.
// Use errors.Is() to distinguish read failures from write failures.
var (
	// ErrRead indicates a read operation against the appliance failed.
	// Reads are transient; the next poll is the implicit retry.
	ErrRead = errors.New("daikin: read failed")

	// ErrWrite indicates a write operation against the appliance failed.
	// Writes are not retried; the failure is surfaced to the caller.
	ErrWrite = errors.New("daikin: write failed")

	// ErrBadResponse indicates the appliance answered with a malformed
	// or non-OK field list.
	ErrBadResponse = errors.New("daikin: bad response")
)
