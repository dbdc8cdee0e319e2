package led

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/funtimes-candela/internal/layout"
	"github.com/coreman2200/funtimes-candela/internal/render"
)

// DefaultFreq is the SPI clock nrzled needs to hit WS2812 timing (3x 800kHz + margin).
const DefaultFreq = 2500 * physic.KiloHertz

// SPI drives one NRZ-encoded strip (WS2812 and friends) per topology group,
// each on its own SPI port. host.Init must have been called.
type SPI struct {
	mu      sync.Mutex
	topo    layout.Topology
	devs    []*nrzled.Dev
	closers []io.Closer
	power   Power

	rgb []byte
	grp []byte
}

// NewSPI opens group.Port for every group in topo ("" picks the first port).
func NewSPI(topo layout.Topology, freq physic.Frequency, power Power) (*SPI, error) {
	ports := make([]spi.Port, 0, len(topo.Groups))
	closeAll := func() {
		for _, p := range ports {
			if c, ok := p.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}
	for _, g := range topo.Groups {
		p, err := spireg.Open(g.Port)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("open spi port %q for group %s: %w", g.Port, g.Name, err)
		}
		ports = append(ports, p)
	}
	s, err := NewSPIPorts(topo, ports, freq, power)
	if err != nil {
		closeAll()
		return nil, err
	}
	return s, nil
}

// NewSPIPorts builds the driver on already opened ports, one per group.
// Ports implementing io.Closer are closed by Close.
func NewSPIPorts(topo layout.Topology, ports []spi.Port, freq physic.Frequency, power Power) (*SPI, error) {
	if len(ports) != len(topo.Groups) {
		return nil, fmt.Errorf("need %d spi ports, got %d", len(topo.Groups), len(ports))
	}
	if freq == 0 {
		freq = DefaultFreq
	}
	s := &SPI{topo: topo, power: power}
	for i, g := range topo.Groups {
		d, err := nrzled.NewSPI(ports[i], &nrzled.Opts{
			NumPixels: g.Count,
			Channels:  3,
			Freq:      freq,
		})
		if err != nil {
			return nil, fmt.Errorf("nrzled group %s: %w", g.Name, err)
		}
		s.devs = append(s.devs, d)
		if c, ok := ports[i].(io.Closer); ok {
			s.closers = append(s.closers, c)
		}
	}
	return s, nil
}

// Write encodes the frame once and sends each group's slice to its strip.
func (s *SPI) Write(f render.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.devs == nil {
		return errors.New("spi closed")
	}
	if len(f.Pixels) != s.topo.Count() {
		return fmt.Errorf("frame has %d elements, topology has %d", len(f.Pixels), s.topo.Count())
	}
	s.rgb = Encode(f, s.rgb)
	Limit(s.rgb, s.power)

	for g, d := range s.devs {
		s.grp = GroupBytes(s.topo, s.rgb, g, s.grp)
		if _, err := d.Write(s.grp); err != nil {
			return fmt.Errorf("spi write group %s: %w", s.topo.Groups[g].Name, err)
		}
	}
	return nil
}

// Close blanks the strips and releases the ports.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, d := range s.devs {
		if err := d.Halt(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.devs = nil
	s.closers = nil
	return errors.Join(errs...)
}
