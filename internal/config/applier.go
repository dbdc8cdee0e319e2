package config

import (
	"sync"
	"sync/atomic"
	"time"
)

// Applier validates raw records and publishes the resulting Active set.
// Apply may run on any goroutine; Active is safe to call from the render loop
// without locking.
type Applier struct {
	active atomic.Pointer[Active]

	mu        sync.Mutex // serializes Apply and guards listeners
	version   uint64
	listeners []func(*Active)
	now       func() time.Time
}

// NewApplier applies the initial record. It fails if that record is invalid,
// since there is no previous configuration to fall back to.
func NewApplier(initial Raw) (*Applier, error) {
	a := &Applier{now: time.Now}
	if _, err := a.Apply(initial); err != nil {
		return nil, err
	}
	return a, nil
}

// Active returns the currently published parameter set.
func (a *Applier) Active() *Active { return a.active.Load() }

// Apply validates r and, on success, swaps it in as the active set.
// On failure the previous set stays active and the error is returned.
func (a *Applier) Apply(r Raw) (*Active, error) {
	snap, err := Validate(r)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.version++
	act := Derive(snap)
	act.Version = a.version
	act.AppliedAt = a.now()
	a.active.Store(&act)
	listeners := append([]func(*Active){}, a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(&act)
	}
	return &act, nil
}

// OnApply registers fn to be called after every successful Apply.
func (a *Applier) OnApply(fn func(*Active)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}
