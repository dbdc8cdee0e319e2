package led

import (
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-candela/internal/render"
)

// Sim logs a compact summary of every Nth frame (first element and average
// value), useful for headless runs.
type Sim struct {
	Every int
	Count int
}

func NewSim() *Sim { return &Sim{Every: 60} }

func (d *Sim) Write(f render.Frame) error {
	d.Count++
	if d.Every > 1 && d.Count%d.Every != 0 {
		return nil
	}
	if len(f.Pixels) == 0 {
		return nil
	}
	var v float64
	for i := range f.Pixels {
		v += float64(f.Value(i))
	}
	first := f.Pixels[0]
	log.Debug().
		Int("frame", d.Count).
		Float64("avg_v", v/float64(len(f.Pixels))).
		Uint16("h0", first.H).
		Uint8("s0", first.S).
		Uint8("v0", f.Value(0)).
		Msg("sim frame")
	return nil
}

func (d *Sim) Close() error { return nil }
