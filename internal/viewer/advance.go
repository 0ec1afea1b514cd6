package viewer

import (
	"context"
	"sync"
	"time"
)

// Advance drives timed forward navigation: while unpaused it calls Next on
// the viewer once per interval. Operations that must not race a transition
// (tag dialogs, batch edits) pause it temporarily and resume only if it was
// playing before.
type Advance struct {
	v *Viewer

	mu          sync.Mutex
	paused      bool
	resumeAfter bool // playing state remembered across a temporary pause
	interval    time.Duration
}

// NewAdvance creates the auto-advance driver. It starts paused; Run ticks it.
func (v *Viewer) NewAdvance() *Advance {
	return &Advance{
		v:        v,
		paused:   true,
		interval: v.cfg.SlideInterval,
	}
}

// Run ticks until the context is cancelled. Each tick advances the viewer
// unless paused; a Next that exhausts the list pauses the advance rather
// than failing.
func (a *Advance) Run(ctx context.Context) {
	ticker := time.NewTicker(a.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.IsPaused() {
				continue
			}
			if _, err := a.v.Next(); err != nil {
				a.v.logger("auto-advance paused: " + err.Error())
				a.SetPaused(true)
			}
		}
	}
}

// TogglePlayPause flips the play/pause state, overriding any pending
// operation-scoped resume.
func (a *Advance) TogglePlayPause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = !a.paused
	a.resumeAfter = false
}

// SetPaused forces the state.
func (a *Advance) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = paused
	a.resumeAfter = false
}

// PauseForOperation pauses and remembers whether the advance was playing, so
// ResumeAfterOperation can restore it.
func (a *Advance) PauseForOperation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resumeAfter = !a.paused
	a.paused = true
}

// ResumeAfterOperation resumes only if the advance was playing before the
// matching PauseForOperation.
func (a *Advance) ResumeAfterOperation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resumeAfter {
		a.paused = false
	}
	a.resumeAfter = false
}

// IsPaused reports the current state.
func (a *Advance) IsPaused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// Interval returns the configured advance period.
func (a *Advance) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}
