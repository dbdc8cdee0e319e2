package led

// Power configures the output limiter. Zero values disable each stage.
type Power struct {
	// WhiteCap caps each element so R+G+B <= WhiteCap*3*255 (0..1, 0 or 1 = no cap).
	WhiteCap float64
	// LimitAmps is the global current budget; 0 disables it.
	LimitAmps float64
	// ChanMA is the current per color channel at full scale (WS2812 ≈ 20).
	ChanMA float64
}

// limiterKnee is the fraction of the budget where soft limiting begins.
const limiterKnee = 0.9

// Limit applies a two-stage limiter to a packed RGB frame:
// 1) Per-element white cap
// 2) Global current budget with a soft knee below the budget
func Limit(rgb []byte, p Power) {
	if p.WhiteCap > 0 && p.WhiteCap < 1 {
		limit := p.WhiteCap * 3.0 * 255.0
		for i := 0; i+2 < len(rgb); i += 3 {
			s := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
			if s > limit && s > 0 {
				scaleTriplet(rgb[i:i+3], limit/s)
			}
		}
	}

	if p.LimitAmps <= 0 {
		return
	}
	chanMA := p.ChanMA
	if chanMA <= 0 {
		chanMA = 20
	}
	budget := p.LimitAmps * 1000.0
	total := EstimateMA(rgb, chanMA)
	if total <= 0 {
		return
	}

	ratio := total / budget
	if ratio <= limiterKnee {
		return
	}
	var s float64
	if ratio <= 1.0 {
		// map ratio in [knee,1] to scale in [1, budget/total]
		minS := budget / total
		t := (ratio - limiterKnee) / (1.0 - limiterKnee)
		s = 1.0 - t*(1.0-minS)
	} else {
		s = budget / total
	}
	if s >= 1.0 {
		return
	}
	for i := 0; i+2 < len(rgb); i += 3 {
		scaleTriplet(rgb[i:i+3], s)
	}
}

// EstimateMA returns the estimated draw of a packed RGB frame in mA.
func EstimateMA(rgb []byte, chanMA float64) float64 {
	var sum float64
	for _, v := range rgb {
		sum += float64(v)
	}
	return sum / 255.0 * chanMA
}

func scaleTriplet(px []byte, s float64) {
	for j := range px {
		px[j] = byte(float64(px[j]) * s)
	}
}
