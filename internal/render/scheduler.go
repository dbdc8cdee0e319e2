package render

import "time"

// Scheduler holds the two independent cadences of the effect: flicker frames
// and hue steps. It never blocks; call Tick once per loop iteration.
//
// A cadence fires when at least its interval has elapsed since it last fired,
// and then restarts from now. Missed periods are dropped, not replayed.
type Scheduler struct {
	lastFlicker time.Time
	lastHue     time.Time
}

// Tick reports which cadences are due at now. Intervals are passed in on
// every call so a configuration change applies on the next check. A cadence
// that has never fired is always due.
func (s *Scheduler) Tick(now time.Time, flickerEvery, hueEvery time.Duration) (flicker, hue bool) {
	flicker = due(&s.lastFlicker, now, flickerEvery)
	hue = due(&s.lastHue, now, hueEvery)
	return flicker, hue
}

// Reset forgets both cadences so the next Tick fires both.
func (s *Scheduler) Reset() {
	s.lastFlicker = time.Time{}
	s.lastHue = time.Time{}
}

func due(last *time.Time, now time.Time, every time.Duration) bool {
	if !last.IsZero() && now.Sub(*last) < every {
		return false
	}
	*last = now
	return true
}
