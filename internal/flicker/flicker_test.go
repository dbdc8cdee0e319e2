package flicker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boundsCases = []struct {
	name   string
	p      Params
	lo, hi uint8
}{
	{"brightness", DefaultBrightness, 96, 192},
	{"saturation", DefaultSaturation, 112, 174},
	{"clamped by ceiling", Params{Baseline: 200, Ceiling: 220, Speed: 5, Range: 100}, 200, 220},
	{"ceiling below baseline", Params{Baseline: 150, Ceiling: 100, Speed: 1, Range: 10}, 100, 100},
	{"zero range", Params{Baseline: 40, Ceiling: 255, Speed: 0, Range: 0}, 40, 40},
}

func TestGeneratorsStayInBounds(t *testing.T) {
	for _, name := range []string{"candle", "simplex"} {
		factory, err := ByName(name)
		require.NoError(t, err)
		for _, c := range boundsCases {
			t.Run(name+"/"+c.name, func(t *testing.T) {
				src := factory(c.p, 7)
				for i := 0; i < 2000; i++ {
					v := src.Next()
					if v < c.lo || v > c.hi {
						t.Fatalf("sample %d = %d outside [%d,%d]", i, v, c.lo, c.hi)
					}
				}
			})
		}
	}
}

func TestCandleStepLimitedBySpeed(t *testing.T) {
	c := NewCandle(Params{Baseline: 0, Ceiling: 255, Speed: 3, Range: 255}, 1)
	prev := int(c.Next())
	for i := 0; i < 1000; i++ {
		v := int(c.Next())
		d := v - prev
		if d < 0 {
			d = -d
		}
		assert.LessOrEqual(t, d, 3)
		prev = v
	}
}

func TestCandleActuallyFlickers(t *testing.T) {
	c := NewCandle(DefaultBrightness, 42)
	seen := map[uint8]bool{}
	for i := 0; i < 500; i++ {
		seen[c.Next()] = true
	}
	assert.Greater(t, len(seen), 10)
}

func TestSameSeedSameSequence(t *testing.T) {
	a := NewCandle(DefaultSaturation, 99)
	b := NewCandle(DefaultSaturation, 99)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("plasma")
	assert.Error(t, err)
}
