package capture

import "time"

// DefaultIdleTimeout is how long without motion before dropping to the idle rate.
const DefaultIdleTimeout = 2 * time.Second

// RateGovernor switches between an active and an idle frame rate: motion
// selects the active rate at once, and the idle rate returns after
// IdleTimeout without motion.
type RateGovernor struct {
	ActiveFPS   int
	IdleFPS     int
	IdleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewRateGovernor starts in the active state so the first seconds after
// startup run at full rate.
func NewRateGovernor(activeFPS, idleFPS int, now time.Time) *RateGovernor {
	if idleFPS <= 0 || idleFPS > activeFPS {
		idleFPS = activeFPS
	}
	return &RateGovernor{
		ActiveFPS:   activeFPS,
		IdleFPS:     idleFPS,
		IdleTimeout: DefaultIdleTimeout,
		active:      true,
		lastMotion:  now,
	}
}

// Observe records one motion result and returns the rate to use and whether
// it changed.
func (g *RateGovernor) Observe(motion bool, now time.Time) (int, bool) {
	if motion {
		g.lastMotion = now
		if !g.active {
			g.active = true
			return g.ActiveFPS, true
		}
		return g.ActiveFPS, false
	}
	if g.active && now.Sub(g.lastMotion) > g.IdleTimeout {
		g.active = false
		return g.IdleFPS, true
	}
	return g.FPS(), false
}

// Active reports whether the active rate is selected.
func (g *RateGovernor) Active() bool { return g.active }

// FPS returns the selected rate.
func (g *RateGovernor) FPS() int {
	if g.active {
		return g.ActiveFPS
	}
	return g.IdleFPS
}
