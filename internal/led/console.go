package led

import (
	"image"
	"image/color"

	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-candela/internal/render"
)

// Console prints frames to the terminal with ANSI colors, one row per frame.
// This is the fallback when no SPI port is available.
type Console struct {
	dev *screen.Dev
	img *image.NRGBA
	rgb []byte
}

func NewConsole(count int) *Console {
	return &Console{
		dev: screen.New(count),
		img: image.NewNRGBA(image.Rect(0, 0, count, 1)),
	}
}

func (c *Console) Write(f render.Frame) error {
	c.rgb = Encode(f, c.rgb)
	w := c.img.Bounds().Dx()
	for i := 0; i < len(f.Pixels) && i < w; i++ {
		c.img.SetNRGBA(i, 0, color.NRGBA{R: c.rgb[i*3], G: c.rgb[i*3+1], B: c.rgb[i*3+2], A: 255})
	}
	return c.dev.Draw(c.dev.Bounds(), c.img, image.Point{})
}

func (c *Console) Close() error { return c.dev.Halt() }
