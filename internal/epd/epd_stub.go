//go:build !(linux && arm)

// Stub implementation for platforms without the panel hardware; keeps
// the daemon buildable on development machines.
package epd

import (
	"context"
	"errors"
)

// Driver is a no-op handle off the target hardware.
type Driver struct{}

var errUnsupported = errors.New("epd: display hardware not supported on this platform")

// Init always fails off linux/arm; callers fall back to render-only mode.
func Init(_ context.Context) (*Driver, error) {
	return nil, errUnsupported
}

func (d *Driver) Display(_ context.Context, _, _ []byte) error {
	return errUnsupported
}

func (d *Driver) Sleep() error { return errUnsupported }

func (d *Driver) Close() error { return nil }
