// Package effects computes per-tick LED zone levels from the current settings.
package effects

import (
	"math"
	"time"

	"github.com/KarimImran/quadcast2-go/internal/services/settings"
)

// phaseStep is how far the wave advances per tick at speed 1.0. The advance
// happens per call rather than per elapsed wall-clock time, so the apparent
// wave speed follows the loop cadence.
const phaseStep = 0.05

// Engine derives the two zone levels for each control-loop tick. It owns the
// only time-based animation state: the wave phase, and the previous-effect
// marker used to detect transitions. The control loop is its sole caller, so
// the engine needs no locking.
type Engine struct {
	phase      float64
	lastEffect settings.Effect
}

// NewEngine creates an engine with no effect observed yet.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute returns the (lower, upper) zone levels for one tick. Any change of
// effect since the previous call resets the wave phase, including a return to
// an effect that was active before. Both results stay within the 0-242 range
// the settings store guarantees for brightness.
func (e *Engine) Compute(s settings.Settings, now time.Time) (int, int) {
	if s.Effect != e.lastEffect {
		e.phase = 0
		e.lastEffect = s.Effect
	}

	if !s.Enabled {
		return 0, 0
	}

	var lower, upper int
	switch s.ZoneMode {
	case settings.ZoneBottom:
		lower = s.Brightness
	case settings.ZoneTop:
		upper = s.Brightness
	case settings.ZoneBoth:
		lower = s.Brightness
		upper = s.Brightness
	}

	switch s.Effect {
	case settings.EffectBlink:
		// 2Hz square wave from the wall clock; both zones gate together
		if (now.UnixMilli()/500)%2 == 0 {
			lower = 0
			upper = 0
		}
	case settings.EffectWave:
		e.phase += phaseStep * s.WaveSpeed
		factor := (math.Sin(e.phase) + 1) / 2
		lower = int(float64(lower) * factor)
		upper = int(float64(upper) * factor)
	}

	return lower, upper
}
