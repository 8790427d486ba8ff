//go:build !unix

package capture

import (
	"context"
	"fmt"
)

// Device is only supported on unix hosts.
type Device struct {
	Path string
}

// Acquire implements Provider.
func (d Device) Acquire(ctx context.Context, _ Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("opening %s: %w", d.Path, ErrNoDevice)
}
