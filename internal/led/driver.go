package led

import (
	"errors"

	"github.com/coreman2200/funtimes-candela/internal/render"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one complete frame to the output.
	Write(render.Frame) error
	// Close releases resources.
	Close() error
}

// Multi writes every frame to each of its drivers.
type Multi []Driver

func (m Multi) Write(f render.Frame) error {
	var errs []error
	for _, d := range m {
		if err := d.Write(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
