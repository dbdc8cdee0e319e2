package flicker

import "math/rand"

// Candle is a bounded random walk: it picks a target inside the allowed band
// and steps toward it by at most Speed per sample, then picks another.
type Candle struct {
	lo, hi int
	step   int
	cur    int
	target int
	rnd    *rand.Rand
}

func NewCandle(p Params, seed int64) *Candle {
	lo, hi := p.bounds()
	c := &Candle{
		lo:   lo,
		hi:   hi,
		step: int(p.Speed),
		rnd:  rand.New(rand.NewSource(seed)),
	}
	if c.step < 1 {
		c.step = 1
	}
	c.cur = c.pick()
	c.target = c.pick()
	return c
}

func (c *Candle) pick() int {
	return c.lo + c.rnd.Intn(c.hi-c.lo+1)
}

func (c *Candle) Next() uint8 {
	if c.cur == c.target {
		c.target = c.pick()
	}
	d := c.target - c.cur
	switch {
	case d > c.step:
		c.cur += c.step
	case d < -c.step:
		c.cur -= c.step
	default:
		c.cur = c.target
	}
	return uint8(c.cur)
}
