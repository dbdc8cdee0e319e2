// Package selftest drives wiring checks on the installed lights before the
// effect starts: walk a single lit element, flash each primary, light one
// group at a time.
package selftest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-candela/internal/layout"
	"github.com/coreman2200/funtimes-candela/internal/render"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	GroupSweep Kind = "group_sweep"
)

// Kinds lists the selectable patterns in run order.
var Kinds = []Kind{IndexSweep, RGBTest, GroupSweep}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case None, IndexSweep, RGBTest, GroupSweep:
		return k, nil
	}
	return None, fmt.Errorf("unknown self-test %q", s)
}

type Plan struct{ Kind Kind }

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner { return &Runner{plan: plan} }
func (r *Runner) Kind() Kind      { return r.plan.Kind }

var primaries = [3]uint16{0, 120, 240}

// Step fills f with the next pattern; returns false when complete.
func (r *Runner) Step(topo layout.Topology, f *render.Frame) bool {
	n := topo.Count()
	if cap(f.Pixels) < n {
		f.Pixels = make([]render.HSV, n)
	}
	f.Pixels = f.Pixels[:n]
	for i := range f.Pixels {
		f.Pixels[i] = render.HSV{}
	}

	switch r.plan.Kind {
	case IndexSweep:
		if r.step >= n {
			return false
		}
		f.Pixels[r.step] = render.HSV{S: 0, V: 255} // white
	case RGBTest:
		if r.step >= len(primaries) {
			return false
		}
		for i := range f.Pixels {
			f.Pixels[i] = render.HSV{H: primaries[r.step], S: 255, V: 255}
		}
	case GroupSweep:
		if r.step >= len(topo.Groups) {
			return false
		}
		start, end := topo.Span(r.step)
		for i := start; i < end; i++ {
			f.Pixels[i] = render.HSV{H: 180, S: 255, V: 255} // cyan
		}
	default:
		return false
	}
	r.step++
	return true
}

// Run writes every step of the plan to drv, one per interval, then a dark
// frame. Returns early on ctx cancellation or a write error.
func Run(ctx context.Context, plan Plan, topo layout.Topology, drv render.Driver, interval time.Duration, brightness uint8) error {
	r := NewRunner(plan)
	f := render.Frame{Brightness: brightness}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	log.Info().Str("kind", string(plan.Kind)).Int("elements", topo.Count()).Msg("self-test start")
	for r.Step(topo, &f) {
		if err := drv.Write(f); err != nil {
			return fmt.Errorf("self-test %s step %d: %w", plan.Kind, r.step, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	for i := range f.Pixels {
		f.Pixels[i] = render.HSV{}
	}
	log.Info().Str("kind", string(plan.Kind)).Int("steps", r.step).Msg("self-test done")
	return drv.Write(f)
}
