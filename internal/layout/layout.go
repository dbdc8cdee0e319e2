package layout

import (
	"errors"
	"fmt"
)

// Group is one physical output: a strip or chain wired to a single port.
type Group struct {
	Name      string `yaml:"name" json:"name"`
	Port      string `yaml:"port" json:"port"`             // e.g. "/dev/spidev0.0"; "" picks the first port
	Count     int    `yaml:"count" json:"count"`           // elements on this group
	Reverse   bool   `yaml:"reverse" json:"reverse"`       // data enters at the far end
	HueOffset int    `yaml:"hue_offset" json:"hueOffset"` // degrees added to every element of the group
}

// Topology maps logical element indices onto groups in declaration order.
type Topology struct {
	Groups []Group
}

// Placement is where a logical element physically lives.
type Placement struct {
	Group     int
	Pos       int // position along the wire, after Reverse
	HueOffset int
}

func (t Topology) Validate() error {
	if len(t.Groups) == 0 {
		return errors.New("topology has no groups")
	}
	for i, g := range t.Groups {
		if g.Count <= 0 {
			return fmt.Errorf("group %d (%s): invalid count %d", i, g.Name, g.Count)
		}
		if g.HueOffset < 0 || g.HueOffset >= 360 {
			return fmt.Errorf("group %d (%s): hue offset %d out of range", i, g.Name, g.HueOffset)
		}
	}
	return nil
}

func (t Topology) Count() int {
	n := 0
	for _, g := range t.Groups {
		n += g.Count
	}
	return n
}

// Resolve maps a logical index (0..Count-1) to its placement.
func (t Topology) Resolve(i int) (Placement, bool) {
	if i < 0 {
		return Placement{}, false
	}
	base := 0
	for gi, g := range t.Groups {
		if i < base+g.Count {
			pos := i - base
			if g.Reverse {
				pos = g.Count - 1 - pos
			}
			return Placement{Group: gi, Pos: pos, HueOffset: g.HueOffset}, true
		}
		base += g.Count
	}
	return Placement{}, false
}

// Span returns the half-open range of logical indices belonging to group g.
func (t Topology) Span(g int) (start, end int) {
	for i := 0; i < g && i < len(t.Groups); i++ {
		start += t.Groups[i].Count
	}
	if g < 0 || g >= len(t.Groups) {
		return start, start
	}
	return start, start + t.Groups[g].Count
}
