// Package coreerr holds the sentinel errors shared across the engine core.
package coreerr

import "errors"

var (
	// ErrOutOfSpace is returned when a fixed-capacity structure is saturated:
	// handle pool, component map, command buffer, observer list, system
	// scheduler, or work-stealing deque.
	ErrOutOfSpace = errors.New("coreerr: out of space")

	// ErrInvalidHandle is returned when an entity or job handle does not
	// match the current generation of its slot.
	ErrInvalidHandle = errors.New("coreerr: invalid handle")

	// ErrComponentExists is returned by Add when the component is already present.
	ErrComponentExists = errors.New("coreerr: component already exists")

	// ErrComponentMissing is returned by Set/Get when the component is absent.
	ErrComponentMissing = errors.New("coreerr: component missing")

	// ErrPlatformFailure marks a window/backend failure surfaced to the driver.
	ErrPlatformFailure = errors.New("coreerr: platform failure")

	// ErrScriptError marks an error raised by a script callback.
	ErrScriptError = errors.New("coreerr: script error")

	// ErrPayloadTooLarge is returned when a job payload exceeds the fixed
	// inline data size.
	ErrPayloadTooLarge = errors.New("coreerr: job payload too large")
)
