// Package preview draws frames into a terminal with tcell: one row per
// topology group, two cells per element.
package preview

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-candela/internal/layout"
	"github.com/coreman2200/funtimes-candela/internal/render"
)

type Driver struct {
	screen   tcell.Screen
	topo     layout.Topology
	throttle time.Duration
	lastEmit time.Time
	status   func() string
	mu       sync.Mutex
}

// New takes ownership of an initialized screen. status, if set, is drawn
// below the strips on every emitted frame.
func New(s tcell.Screen, topo layout.Topology, status func() string) *Driver {
	return &Driver{
		screen:   s,
		topo:     topo,
		throttle: 33 * time.Millisecond, // ~30 FPS to the terminal
		status:   status,
	}
}

// Open creates and initializes the terminal screen.
func Open(topo layout.Topology, status func() string) (*Driver, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.Clear()
	return New(s, topo, status), nil
}

func (d *Driver) Write(f render.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if d.lastEmit.Add(d.throttle).After(now) {
		return nil
	}
	d.lastEmit = now

	for g, grp := range d.topo.Groups {
		row := g * 2
		drawText(d.screen, 0, row, grp.Name, tcell.StyleDefault)
		start, end := d.topo.Span(g)
		for i := start; i < end && i < len(f.Pixels); i++ {
			px := f.Pixels[i]
			c := colorful.Hsv(float64(px.H), float64(px.S)/255.0, float64(f.Value(i))/255.0).Clamped()
			r, gg, b := c.RGB255()
			st := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(gg), int32(b)))
			x := 10 + (i-start)*2
			d.screen.SetContent(x, row, ' ', nil, st)
			d.screen.SetContent(x+1, row, ' ', nil, st)
		}
	}
	if d.status != nil {
		drawText(d.screen, 0, len(d.topo.Groups)*2, d.status(), tcell.StyleDefault)
	}
	d.screen.Show()
	return nil
}

// Events blocks delivering key events until the screen is closed; onQuit is
// called once on q, Esc or Ctrl-C.
func (d *Driver) Events(onQuit func()) {
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return
		}
		if k, ok := ev.(*tcell.EventKey); ok {
			if k.Key() == tcell.KeyEscape || k.Key() == tcell.KeyCtrlC || k.Rune() == 'q' {
				onQuit()
				return
			}
		}
	}
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen.Fini()
	return nil
}

func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, st)
	}
}
