package led

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-candela/internal/layout"
	"github.com/coreman2200/funtimes-candela/internal/render"
)

// Encode converts a frame to packed RGB (3 bytes per element, logical order)
// with the frame brightness applied. dst is reused when large enough.
func Encode(f render.Frame, dst []byte) []byte {
	n := len(f.Pixels) * 3
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, px := range f.Pixels {
		c := colorful.Hsv(float64(px.H), float64(px.S)/255.0, float64(f.Value(i))/255.0)
		dst[i*3+0], dst[i*3+1], dst[i*3+2] = c.Clamped().RGB255()
	}
	return dst
}

// GroupBytes copies group g's elements out of a logical RGB buffer into dst
// in wire order, honoring the group's Reverse flag.
func GroupBytes(topo layout.Topology, rgb []byte, g int, dst []byte) []byte {
	start, end := topo.Span(g)
	n := (end - start) * 3
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i := start; i < end; i++ {
		pl, ok := topo.Resolve(i)
		if !ok || i*3+2 >= len(rgb) {
			continue
		}
		copy(dst[pl.Pos*3:pl.Pos*3+3], rgb[i*3:i*3+3])
	}
	return dst
}
