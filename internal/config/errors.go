package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRate is returned for a frame rate outside 1..255.
	ErrInvalidRate = errors.New("invalid rate")
	// ErrInvalidRepeat is returned for a hue repeat that is not a multiple of 3 dividing 360.
	ErrInvalidRepeat = errors.New("invalid hue repeat")
	// ErrInvalidBrightness is returned for a brightness outside 0..255.
	ErrInvalidBrightness = errors.New("invalid brightness")
)

// ConfigError reports which field of a raw record was rejected.
type ConfigError struct {
	Field string
	Value int
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%d", e.Err, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate checks a raw record and fills omitted fields with defaults.
func Validate(r Raw) (Snapshot, error) {
	brightness := intOr(r.Brightness, DefaultBrightness)
	flickerFPS := intOr(r.FlickerFPS, DefaultFlickerFPS)
	hueFPS := intOr(r.HueFPS, DefaultHueFPS)
	repeat := intOr(r.HueRepeat, DefaultHueRepeat)

	if brightness < 0 || brightness > 255 {
		return Snapshot{}, &ConfigError{Field: "brightness", Value: brightness, Err: ErrInvalidBrightness}
	}
	if flickerFPS < 1 || flickerFPS > 255 {
		return Snapshot{}, &ConfigError{Field: "flickerFPS", Value: flickerFPS, Err: ErrInvalidRate}
	}
	if hueFPS < 1 || hueFPS > 255 {
		return Snapshot{}, &ConfigError{Field: "hueFPS", Value: hueFPS, Err: ErrInvalidRate}
	}
	// 360 must divide evenly so the hue spacing stays an integer.
	if repeat < 3 || repeat > 255 || repeat%3 != 0 || 360%repeat != 0 {
		return Snapshot{}, &ConfigError{Field: "hueRepeat", Value: repeat, Err: ErrInvalidRepeat}
	}

	return Snapshot{
		Darkness:        r.Darkness,
		FlickerEnabled:  r.Flicker,
		RotationEnabled: r.Rotation,
		BrightnessScale: uint8(brightness),
		FlickerFPS:      uint8(flickerFPS),
		HueFPS:          uint8(hueFPS),
		HueRepeat:       uint8(repeat),
	}, nil
}
