package flicker

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Simplex samples 1D-ish opensimplex noise, giving a smoother flame than
// Candle. Speed sets how far along the noise field each sample moves.
type Simplex struct {
	noise opensimplex.Noise
	lo    float64
	span  float64
	x, y  float64
	dx    float64
}

func NewSimplex(p Params, seed int64) *Simplex {
	lo, hi := p.bounds()
	speed := float64(p.Speed)
	if speed < 1 {
		speed = 1
	}
	return &Simplex{
		noise: opensimplex.NewNormalized(seed),
		lo:    float64(lo),
		span:  float64(hi - lo),
		y:     float64(seed%1024) * 0.37,
		dx:    speed / 64.0,
	}
}

func (s *Simplex) Next() uint8 {
	v := s.noise.Eval2(s.x, s.y)
	s.x += s.dx
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(s.lo + v*s.span))
}
