package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-candela/internal/config"
	"github.com/coreman2200/funtimes-candela/internal/flicker"
	"github.com/coreman2200/funtimes-candela/internal/layout"
)

func elements(t *testing.T, topo layout.Topology, act *config.Active) []Element {
	t.Helper()
	return NewElements(topo, act, ElementOptions{
		Generator:  stepFactory,
		Brightness: flicker.Params{Baseline: 50},
		Saturation: flicker.Params{Baseline: 150},
	})
}

func TestRotationHueDistribution(t *testing.T) {
	a := applier(t, func(r *config.Raw) { r.HueRepeat = config.Int(3) })
	act := a.Active()
	require.Equal(t, 120, act.HueModulus)

	var c Compositor
	f := c.RenderFrame(elements(t, strip(12), act), 10, act)
	want := []uint16{10, 130, 250, 10, 130, 250, 10, 130, 250, 10, 130, 250}
	for i, h := range want {
		assert.Equal(t, h, f.Pixels[i].H, "element %d", i)
	}
}

func TestRotationWrapsAcrossGroups(t *testing.T) {
	a := applier(t, func(r *config.Raw) { r.HueRepeat = config.Int(6) })
	act := a.Active()
	topo := layout.Topology{Groups: []layout.Group{
		{Name: "a", Count: 3},
		{Name: "b", Count: 3, HueOffset: 30},
	}}
	var c Compositor
	f := c.RenderFrame(elements(t, topo, act), 350, act)
	assert.Equal(t, []uint16{350, 50, 110, 200, 260, 320}, hues(f))
}

func hues(f Frame) []uint16 {
	out := make([]uint16, len(f.Pixels))
	for i, px := range f.Pixels {
		out[i] = px.H
	}
	return out
}

func TestDarknessOverridesEveryMode(t *testing.T) {
	for _, flick := range []bool{false, true} {
		for _, rot := range []bool{false, true} {
			a := applier(t, func(r *config.Raw) {
				r.Darkness = true
				r.Flicker = flick
				r.Rotation = rot
			})
			act := a.Active()
			elems := elements(t, strip(5), act)
			var c Compositor
			f := c.RenderFrame(elems, 42, act)
			for i := range f.Pixels {
				assert.Equal(t, uint8(0), f.Value(i), "flicker=%v rotation=%v", flick, rot)
				assert.Equal(t, uint8(0), f.Pixels[i].V)
			}
			assert.Equal(t, uint8(0), f.Brightness)
		}
	}
}

func TestRestingHueStableWithoutRotation(t *testing.T) {
	a := applier(t, func(r *config.Raw) { r.Rotation = false })
	act := a.Active()
	elems := elements(t, strip(6), act)
	var c Compositor

	first := hues(c.RenderFrame(elems, 0, act))
	second := hues(c.RenderFrame(elems, 200, act))
	assert.Equal(t, first, second)
	assert.Equal(t, []uint16{0, 120, 240, 0, 120, 240}, first)
}

func TestRandomRestingHueIsFixedAtSetup(t *testing.T) {
	a := applier(t, func(r *config.Raw) { r.Rotation = false })
	act := a.Active()
	elems := NewElements(strip(8), act, ElementOptions{Generator: stepFactory, RandomHue: true, Seed: 3})
	var c Compositor
	first := hues(c.RenderFrame(elems, 0, act))

	raw := config.DefaultRaw()
	raw.Rotation = false
	raw.HueRepeat = config.Int(12)
	next, err := a.Apply(raw)
	require.NoError(t, err)
	assert.Equal(t, first, hues(c.RenderFrame(elems, 99, next)))
	for _, h := range first {
		assert.Less(t, h, uint16(360))
	}
}

func TestFlickerDisabledPinsMaximum(t *testing.T) {
	a := applier(t, func(r *config.Raw) { r.Flicker = false })
	act := a.Active()
	elems := elements(t, strip(4), act)
	var c Compositor
	f := c.RenderFrame(elems, 0, act)
	for i, px := range f.Pixels {
		assert.Equal(t, uint8(255), px.S)
		assert.Equal(t, uint8(255), px.V)
		assert.Equal(t, 0, elems[i].Flicker.(*stepSource).calls)
	}
}

func TestFlickerEnabledSamplesOncePerFrame(t *testing.T) {
	a := applier(t, nil)
	act := a.Active()
	elems := elements(t, strip(3), act)
	var c Compositor

	f := c.RenderFrame(elems, 0, act)
	assert.Equal(t, uint8(50), f.Pixels[0].V)
	assert.Equal(t, uint8(150), f.Pixels[0].S)
	f = c.RenderFrame(elems, 0, act)
	assert.Equal(t, uint8(51), f.Pixels[0].V)
	for _, e := range elems {
		assert.Equal(t, 2, e.Flicker.(*stepSource).calls)
		assert.Equal(t, 2, e.Saturation.(*stepSource).calls)
	}
}

func TestBrightnessIsGlobalPostMultiply(t *testing.T) {
	a := applier(t, func(r *config.Raw) {
		r.Flicker = false
		r.Brightness = config.Int(128)
	})
	act := a.Active()
	var c Compositor
	f := c.RenderFrame(elements(t, strip(2), act), 0, act)
	assert.Equal(t, uint8(255), f.Pixels[0].V)
	assert.Equal(t, uint8(128), f.Brightness)
	assert.Equal(t, uint8(128), f.Value(0))

	f.Brightness = 255
	assert.Equal(t, uint8(255), f.Value(0))
	f.Brightness = 0
	assert.Equal(t, uint8(0), f.Value(0))
}

func TestPhaseWraps(t *testing.T) {
	assert.Equal(t, Phase(0), Phase(359).Advance())
	assert.Equal(t, Phase(11), Phase(10).Advance())
}

func TestSchedulerCoalescesMissedTicks(t *testing.T) {
	var s Scheduler
	t0 := time.Unix(0, 0)
	every := 16 * time.Millisecond

	fl, hue := s.Tick(t0, every, time.Second)
	assert.True(t, fl)
	assert.True(t, hue)

	// a long stall: exactly one flicker tick, then back on cadence from now
	late := t0.Add(100 * every)
	fl, hue = s.Tick(late, every, time.Second)
	assert.True(t, fl)
	assert.True(t, hue)
	fl, _ = s.Tick(late.Add(time.Millisecond), every, time.Second)
	assert.False(t, fl)
	fl, _ = s.Tick(late.Add(every), every, time.Second)
	assert.True(t, fl)
}

func TestSchedulerCadencesIndependent(t *testing.T) {
	var s Scheduler
	t0 := time.Unix(0, 0)
	s.Tick(t0, time.Second, 10*time.Millisecond)

	hueTicks := 0
	for ms := 1; ms <= 100; ms++ {
		fl, hue := s.Tick(t0.Add(time.Duration(ms)*time.Millisecond), time.Second, 10*time.Millisecond)
		assert.False(t, fl)
		if hue {
			hueTicks++
		}
	}
	assert.Equal(t, 10, hueTicks)

	s.Reset()
	fl, hue := s.Tick(t0, time.Second, time.Second)
	assert.True(t, fl)
	assert.True(t, hue)
}
