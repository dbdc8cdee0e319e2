// Package flicker provides per-element value generators used to simulate a
// flame. A generator is constructed from Params and advanced one sample at a
// time; its state belongs to a single element and is never shared.
package flicker

import "fmt"

// Params are the generator construction arguments.
type Params struct {
	Baseline uint8 `yaml:"baseline" json:"baseline"` // lowest value produced
	Ceiling  uint8 `yaml:"ceiling" json:"ceiling"`   // hard upper clamp
	Speed    uint8 `yaml:"speed" json:"speed"`       // how fast the value chases its target
	Range    uint8 `yaml:"range" json:"range"`       // how far above Baseline targets may land
}

var (
	// DefaultBrightness is a slow, deep flame flicker.
	DefaultBrightness = Params{Baseline: 96, Ceiling: 255, Speed: 2, Range: 96}
	// DefaultSaturation wobbles quickly in a narrower band.
	DefaultSaturation = Params{Baseline: 112, Ceiling: 255, Speed: 20, Range: 62}
)

// bounds returns the inclusive interval every sample falls within.
func (p Params) bounds() (lo, hi int) {
	lo = int(p.Baseline)
	if int(p.Ceiling) < lo {
		lo = int(p.Ceiling)
	}
	hi = lo + int(p.Range)
	if hi > int(p.Ceiling) {
		hi = int(p.Ceiling)
	}
	return lo, hi
}

// Source yields one sample per call and advances its state. Calling Next
// twice for the same frame advances the flame twice.
type Source interface {
	Next() uint8
}

// Factory constructs a Source. seed makes each element's sequence distinct.
type Factory func(p Params, seed int64) Source

// ByName resolves a generator name from configuration.
func ByName(name string) (Factory, error) {
	switch name {
	case "", "candle":
		return func(p Params, seed int64) Source { return NewCandle(p, seed) }, nil
	case "simplex":
		return func(p Params, seed int64) Source { return NewSimplex(p, seed) }, nil
	default:
		return nil, fmt.Errorf("unknown flicker generator: %s", name)
	}
}
