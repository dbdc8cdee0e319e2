package render

import "github.com/coreman2200/funtimes-candela/internal/config"

// Compositor turns element state, the hue phase and the active configuration
// into a Frame. It owns the pixel buffer and reuses it between frames, so a
// returned Frame is only valid until the next RenderFrame call.
type Compositor struct {
	buf []HSV
}

// RenderFrame computes one frame. With flicker enabled it advances every
// element's generators exactly once, so call it once per flicker tick.
//
//   - darkness: every V and the frame brightness are 0; generators are left alone.
//   - rotation: hue = phase + index*modulus + group offset; otherwise the resting hue.
//   - flicker: S and V come from the generators; otherwise both are 255.
func (c *Compositor) RenderFrame(elems []Element, phase Phase, act *config.Active) Frame {
	if cap(c.buf) < len(elems) {
		c.buf = make([]HSV, len(elems))
	}
	c.buf = c.buf[:len(elems)]

	for i := range elems {
		e := &elems[i]
		px := HSV{S: 255, V: 255}

		if act.RotationEnabled {
			px.H = uint16((int(phase) + e.Index*act.HueModulus + e.Placement.HueOffset) % 360)
		} else {
			px.H = e.RestingHue
		}

		switch {
		case act.Darkness:
			px.V = 0
		case act.FlickerEnabled:
			px.S = e.Saturation.Next()
			px.V = e.Flicker.Next()
		}
		c.buf[i] = px
	}

	f := Frame{Pixels: c.buf, Brightness: act.BrightnessScale}
	if act.Darkness {
		f.Brightness = 0
	}
	return f
}
