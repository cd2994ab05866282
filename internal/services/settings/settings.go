// Package settings holds the live LED configuration shared between the
// control loop and the external settings surface.
package settings

import (
	"fmt"
	"sync"

	"github.com/KarimImran/quadcast2-go/pkg/quadcast"
)

// ZoneMode selects which LED zones are driven.
type ZoneMode string

const (
	// ZoneBottom drives only the lower zone.
	ZoneBottom ZoneMode = "bottom"
	// ZoneTop drives only the upper zone.
	ZoneTop ZoneMode = "top"
	// ZoneBoth drives both zones at the same level.
	ZoneBoth ZoneMode = "both"
)

// Effect selects the animation applied to the active zones.
type Effect string

const (
	// EffectStatic holds a constant level.
	EffectStatic Effect = "static"
	// EffectBlink gates the level with a 2Hz square wave.
	EffectBlink Effect = "blink"
	// EffectWave modulates the level with a sine wave.
	EffectWave Effect = "wave"
)

// Control-scale ranges and startup defaults. Brightness arrives from the
// settings surface on a 0-100 scale and is stored device-native (0-242);
// wave speed arrives on a 1-50 scale and is stored as step/10.
const (
	MaxBrightnessPercent = 100
	MinWaveSpeedStep     = 1
	MaxWaveSpeedStep     = 50

	DefaultBrightnessPercent = 10
	DefaultWaveSpeedStep     = 10
)

// ParseZoneMode validates a user-supplied zone mode string.
func ParseZoneMode(s string) (ZoneMode, error) {
	switch ZoneMode(s) {
	case ZoneBottom, ZoneTop, ZoneBoth:
		return ZoneMode(s), nil
	}
	return "", fmt.Errorf("unknown zone mode %q", s)
}

// ParseEffect validates a user-supplied effect string.
func ParseEffect(s string) (Effect, error) {
	switch Effect(s) {
	case EffectStatic, EffectBlink, EffectWave:
		return Effect(s), nil
	}
	return "", fmt.Errorf("unknown effect %q", s)
}

// Settings is a value snapshot of the current LED configuration.
// Brightness is device-native (0-242).
type Settings struct {
	Enabled    bool
	ZoneMode   ZoneMode
	Effect     Effect
	Brightness int
	WaveSpeed  float64
}

// View is the user-facing representation of the settings: control-scale
// values plus the device-native levels derived from them.
type View struct {
	Enabled          bool     `json:"enabled"`
	ZoneMode         ZoneMode `json:"zoneMode"`
	Effect           Effect   `json:"effect"`
	Brightness       int      `json:"brightness"`       // control scale, 0-100
	WaveSpeed        int      `json:"waveSpeed"`        // control scale, 1-50
	DeviceBrightness int      `json:"deviceBrightness"` // 0-242
	WaveSpeedFactor  float64  `json:"waveSpeedFactor"`
}

// Store holds the live settings. The settings surface writes individual
// fields; the control loop reads a snapshot each tick. Every write is
// independent, non-blocking, and immediately visible. The store's lock is
// shared with nothing else, so unrelated work can never stall the tick path.
type Store struct {
	mu sync.RWMutex

	enabled    bool
	zoneMode   ZoneMode
	effect     Effect
	brightness int     // device-native, 0-242
	waveSpeed  float64 // step/10

	// Last accepted control-scale values, kept so the surface can echo them
	brightnessPercent int
	waveSpeedStep     int

	onChange func(View)
}

// NewStore creates a store with the documented startup defaults.
func NewStore() *Store {
	return &Store{
		enabled:           true,
		zoneMode:          ZoneBottom,
		effect:            EffectStatic,
		brightness:        DefaultBrightnessPercent * quadcast.MaxBrightness / 100,
		waveSpeed:         float64(DefaultWaveSpeedStep) / 10,
		brightnessPercent: DefaultBrightnessPercent,
		waveSpeedStep:     DefaultWaveSpeedStep,
	}
}

// OnChange registers a callback fired after every accepted write. The
// callback receives the post-write view and must not block.
func (s *Store) OnChange(fn func(View)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetEnabled turns LED output on or off.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	s.notifyChange()
}

// SetZoneMode selects the driven zones. Unknown values are ignored so the
// store never holds an undefined variant.
func (s *Store) SetZoneMode(mode ZoneMode) {
	switch mode {
	case ZoneBottom, ZoneTop, ZoneBoth:
	default:
		return
	}

	s.mu.Lock()
	s.zoneMode = mode
	s.mu.Unlock()

	s.notifyChange()
}

// SetEffect selects the animation. Unknown values are ignored.
func (s *Store) SetEffect(effect Effect) {
	switch effect {
	case EffectStatic, EffectBlink, EffectWave:
	default:
		return
	}

	s.mu.Lock()
	s.effect = effect
	s.mu.Unlock()

	s.notifyChange()
}

// SetBrightness accepts a 0-100 control value and stores the device-native
// level. Out-of-range input is clamped, so the stored level is always within
// what the firmware accepts.
func (s *Store) SetBrightness(percent int) {
	percent = clamp(percent, 0, MaxBrightnessPercent)

	s.mu.Lock()
	s.brightnessPercent = percent
	s.brightness = percent * quadcast.MaxBrightness / 100
	s.mu.Unlock()

	s.notifyChange()
}

// SetWaveSpeed accepts a 1-50 control value and stores the wave speed
// multiplier. Out-of-range input is clamped.
func (s *Store) SetWaveSpeed(step int) {
	step = clamp(step, MinWaveSpeedStep, MaxWaveSpeedStep)

	s.mu.Lock()
	s.waveSpeedStep = step
	s.waveSpeed = float64(step) / 10
	s.mu.Unlock()

	s.notifyChange()
}

// Snapshot returns a consistent copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Settings{
		Enabled:    s.enabled,
		ZoneMode:   s.zoneMode,
		Effect:     s.effect,
		Brightness: s.brightness,
		WaveSpeed:  s.waveSpeed,
	}
}

// View returns the user-facing settings representation.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// BrightnessPercent returns the last accepted 0-100 control value.
func (s *Store) BrightnessPercent() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brightnessPercent
}

// WaveSpeedStep returns the last accepted 1-50 control value.
func (s *Store) WaveSpeedStep() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.waveSpeedStep
}

// viewLocked builds a View; callers must hold at least a read lock.
func (s *Store) viewLocked() View {
	return View{
		Enabled:          s.enabled,
		ZoneMode:         s.zoneMode,
		Effect:           s.effect,
		Brightness:       s.brightnessPercent,
		WaveSpeed:        s.waveSpeedStep,
		DeviceBrightness: s.brightness,
		WaveSpeedFactor:  s.waveSpeed,
	}
}

// notifyChange invokes the change callback outside the lock.
func (s *Store) notifyChange() {
	s.mu.RLock()
	cb := s.onChange
	view := s.viewLocked()
	s.mu.RUnlock()

	if cb != nil {
		cb(view)
	}
}

// clamp clamps an integer to a range.
func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
