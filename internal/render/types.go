package render

import (
	"math/rand"

	"github.com/coreman2200/funtimes-candela/internal/config"
	"github.com/coreman2200/funtimes-candela/internal/flicker"
	"github.com/coreman2200/funtimes-candela/internal/layout"
)

// HSV is one element's output color. H is in degrees (0..359).
type HSV struct {
	H    uint16
	S, V uint8
}

// Frame is the color buffer handed to a Driver. Brightness is a global
// multiplier applied on top of every V; Value does that for you.
type Frame struct {
	Pixels     []HSV
	Brightness uint8
}

// Value returns pixel i's V scaled by the frame brightness.
func (f Frame) Value(i int) uint8 {
	return scale8(f.Pixels[i].V, f.Brightness)
}

// scale8 computes v*scale/255, with 255 as identity.
func scale8(v, scale uint8) uint8 {
	return uint8((uint16(v)*uint16(scale) + 255) >> 8)
}

// Phase is the global hue rotation counter in degrees.
type Phase uint16

func (p Phase) Advance() Phase { return (p + 1) % 360 }

// Element is one addressable light and the generator state it owns.
type Element struct {
	Index      int
	Placement  layout.Placement
	RestingHue uint16
	Flicker    flicker.Source
	Saturation flicker.Source
}

// ElementOptions controls how NewElements seeds per-element state.
type ElementOptions struct {
	Generator  flicker.Factory
	Brightness flicker.Params
	Saturation flicker.Params
	RandomHue  bool  // resting hue drawn at random instead of spread by hue repeat
	Seed       int64
}

// NewElements builds the element arena for topo. Resting hues are fixed here
// and do not follow later configuration changes.
func NewElements(topo layout.Topology, act *config.Active, o ElementOptions) []Element {
	gen := o.Generator
	if gen == nil {
		gen = func(p flicker.Params, seed int64) flicker.Source { return flicker.NewCandle(p, seed) }
	}
	rnd := rand.New(rand.NewSource(o.Seed))

	n := topo.Count()
	elems := make([]Element, n)
	for i := range elems {
		pl, _ := topo.Resolve(i)
		var hue int
		if o.RandomHue {
			hue = rnd.Intn(360)
		} else {
			hue = pl.HueOffset + (i%int(act.HueRepeat))*act.HueModulus
		}
		elems[i] = Element{
			Index:      i,
			Placement:  pl,
			RestingHue: uint16(hue % 360),
			Flicker:    gen(o.Brightness, o.Seed+int64(2*i)),
			Saturation: gen(o.Saturation, o.Seed+int64(2*i+1)),
		}
	}
	return elems
}
