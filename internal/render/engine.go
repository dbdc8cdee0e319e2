package render

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-candela/internal/config"
	"github.com/coreman2200/funtimes-candela/internal/diagnostics"
	"github.com/coreman2200/funtimes-candela/internal/layout"
)

// Driver abstracts the LED transport (SPI, console, preview...).
type Driver interface {
	Write(Frame) error
}

// Clock is the time source for the loop. Tests inject a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// DefaultPoll is how often Run checks the cadences.
const DefaultPoll = time.Millisecond

// Engine runs the effect: each loop iteration checks the scheduler, renders
// and writes a frame on a flicker tick, and advances the hue on a hue tick.
// Only Step/Run touch element state; Status may be called from any goroutine.
type Engine struct {
	Cfg   *config.Applier
	Topo  layout.Topology
	Elems []Element
	Drv   Driver

	poll  time.Duration
	clock Clock
	sched Scheduler
	comp  Compositor
	phase atomic.Uint32
	t0    time.Time

	reg       metrics.Registry
	frames    metrics.Counter
	hueTicks  metrics.Counter
	writeErrs metrics.Counter
	renderUS  metrics.Histogram
	errLog    zerolog.Logger
}

type Option func(*Engine)

// WithClock replaces the wall clock used by Run.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithPoll sets the loop resolution for Run.
func WithPoll(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.poll = d
		}
	}
}

// WithRegistry records metrics into r instead of a private registry.
func WithRegistry(r metrics.Registry) Option { return func(e *Engine) { e.reg = r } }

// NewEngine wires an engine around an applier and a prepared element arena.
func NewEngine(cfg *config.Applier, topo layout.Topology, elems []Element, drv Driver, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("nil config applier")
	}
	if len(elems) == 0 || len(elems) != topo.Count() {
		return nil, errors.New("element count does not match topology")
	}
	e := &Engine{
		Cfg:   cfg,
		Topo:  topo,
		Elems: elems,
		Drv:   drv,
		poll:  DefaultPoll,
		clock: systemClock{},
		t0:    time.Now(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.reg == nil {
		e.reg = metrics.NewRegistry()
	}
	e.frames = metrics.GetOrRegisterCounter("render.frames", e.reg)
	e.hueTicks = metrics.GetOrRegisterCounter("render.hue_ticks", e.reg)
	e.writeErrs = metrics.GetOrRegisterCounter("render.write_errors", e.reg)
	e.renderUS = metrics.GetOrRegisterHistogram("render.duration_us", e.reg, metrics.NewExpDecaySample(1028, 0.015))
	e.errLog = log.Sample(&zerolog.BasicSampler{N: 100})
	return e, nil
}

// Phase returns the current global hue phase.
func (e *Engine) Phase() Phase { return Phase(e.phase.Load()) }

// Metrics exposes the engine's registry.
func (e *Engine) Metrics() metrics.Registry { return e.reg }

// Step runs one loop iteration at now. It never blocks beyond the driver
// write; a driver error is counted and logged, and the loop carries on.
func (e *Engine) Step(now time.Time) (flickered, hued bool) {
	act := e.Cfg.Active()
	flickered, hued = e.sched.Tick(now, act.FlickerInterval, act.HueInterval)

	if flickered {
		start := time.Now()
		f := e.comp.RenderFrame(e.Elems, e.Phase(), act)
		if e.Drv != nil {
			if err := e.Drv.Write(f); err != nil {
				e.writeErrs.Inc(1)
				e.errLog.Warn().Err(err).Msg("driver write failed")
			}
		}
		e.renderUS.Update(time.Since(start).Microseconds())
		e.frames.Inc(1)
	}
	if hued {
		e.phase.Store(uint32(e.Phase().Advance()))
		e.hueTicks.Inc(1)
	}
	return flickered, hued
}

// Run drives Step until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	tick := time.NewTicker(e.poll)
	defer tick.Stop()
	log.Info().
		Int("elements", len(e.Elems)).
		Int("groups", len(e.Topo.Groups)).
		Dur("poll", e.poll).
		Msg("render loop running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			e.Step(e.clock.Now())
		}
	}
}

// Status reports configuration, derived values and loop counters.
func (e *Engine) Status() diagnostics.Status {
	st := diagnostics.FromActive(e.Cfg.Active())
	st.Phase = uint16(e.Phase())
	st.Elements = len(e.Elems)
	st.Groups = len(e.Topo.Groups)
	st.Frames = e.frames.Count()
	st.HueTicks = e.hueTicks.Count()
	st.WriteErrors = e.writeErrs.Count()
	snap := e.renderUS.Snapshot()
	st.RenderMeanU = snap.Mean()
	st.RenderP99U = snap.Percentile(0.99)
	st.UptimeS = time.Since(e.t0).Seconds()
	return st
}
