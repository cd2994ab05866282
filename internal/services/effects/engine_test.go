package effects

import (
	"math"
	"testing"
	"time"

	"github.com/KarimImran/quadcast2-go/internal/services/settings"
)

// blinkOn is a wall-clock instant where the 2Hz gate is in its on half-cycle.
var blinkOn = time.UnixMilli(750)

func TestCompute_ZoneModeTable(t *testing.T) {
	tests := []struct {
		name       string
		mode       settings.ZoneMode
		brightness int
		wantLower  int
		wantUpper  int
	}{
		{name: "bottom full", mode: settings.ZoneBottom, brightness: 242, wantLower: 242, wantUpper: 0},
		{name: "bottom mid", mode: settings.ZoneBottom, brightness: 121, wantLower: 121, wantUpper: 0},
		{name: "bottom off", mode: settings.ZoneBottom, brightness: 0, wantLower: 0, wantUpper: 0},
		{name: "top full", mode: settings.ZoneTop, brightness: 242, wantLower: 0, wantUpper: 242},
		{name: "top mid", mode: settings.ZoneTop, brightness: 121, wantLower: 0, wantUpper: 121},
		{name: "both full", mode: settings.ZoneBoth, brightness: 242, wantLower: 242, wantUpper: 242},
		{name: "both mid", mode: settings.ZoneBoth, brightness: 121, wantLower: 121, wantUpper: 121},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine()
			lower, upper := engine.Compute(settings.Settings{
				Enabled:    true,
				ZoneMode:   tt.mode,
				Effect:     settings.EffectStatic,
				Brightness: tt.brightness,
			}, time.Now())

			if lower != tt.wantLower || upper != tt.wantUpper {
				t.Errorf("Compute() = (%d, %d), want (%d, %d)", lower, upper, tt.wantLower, tt.wantUpper)
			}
		})
	}
}

func TestCompute_Disabled(t *testing.T) {
	modes := []settings.ZoneMode{settings.ZoneBottom, settings.ZoneTop, settings.ZoneBoth}
	effects := []settings.Effect{settings.EffectStatic, settings.EffectBlink, settings.EffectWave}

	for _, mode := range modes {
		for _, effect := range effects {
			engine := NewEngine()
			lower, upper := engine.Compute(settings.Settings{
				Enabled:    false,
				ZoneMode:   mode,
				Effect:     effect,
				Brightness: 242,
				WaveSpeed:  1.0,
			}, blinkOn)

			if lower != 0 || upper != 0 {
				t.Errorf("Compute() disabled %s/%s = (%d, %d), want (0, 0)", mode, effect, lower, upper)
			}
		}
	}
}

func TestCompute_DisabledDoesNotAdvancePhase(t *testing.T) {
	engine := NewEngine()
	cfg := settings.Settings{
		Enabled:    false,
		ZoneMode:   settings.ZoneBoth,
		Effect:     settings.EffectWave,
		Brightness: 242,
		WaveSpeed:  1.0,
	}

	engine.Compute(cfg, time.Now())
	engine.Compute(cfg, time.Now())

	if engine.phase != 0 {
		t.Errorf("phase = %v after disabled ticks, want 0", engine.phase)
	}
}

func TestCompute_BlinkAlternation(t *testing.T) {
	engine := NewEngine()
	cfg := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBoth,
		Effect:     settings.EffectBlink,
		Brightness: 200,
	}

	// The gate flips every 500ms: off, on, off, on...
	tests := []struct {
		ms   int64
		want int
	}{
		{ms: 250, want: 0},
		{ms: 750, want: 200},
		{ms: 1250, want: 0},
		{ms: 1750, want: 200},
		{ms: 2250, want: 0},
	}

	for _, tt := range tests {
		lower, upper := engine.Compute(cfg, time.UnixMilli(tt.ms))
		if lower != tt.want || upper != tt.want {
			t.Errorf("Compute() at %dms = (%d, %d), want (%d, %d)", tt.ms, lower, upper, tt.want, tt.want)
		}
	}
}

func TestCompute_BlinkZonesGateTogether(t *testing.T) {
	engine := NewEngine()
	cfg := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBoth,
		Effect:     settings.EffectBlink,
		Brightness: 150,
	}

	for ms := int64(0); ms < 3000; ms += 125 {
		lower, upper := engine.Compute(cfg, time.UnixMilli(ms))
		if lower != upper {
			t.Fatalf("Compute() at %dms = (%d, %d), zones must gate together", ms, lower, upper)
		}
	}
}

func TestCompute_BlinkIsPureInTime(t *testing.T) {
	engine := NewEngine()
	cfg := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBottom,
		Effect:     settings.EffectBlink,
		Brightness: 242,
	}

	l1, u1 := engine.Compute(cfg, blinkOn)
	l2, u2 := engine.Compute(cfg, blinkOn)

	if l1 != l2 || u1 != u2 {
		t.Errorf("Compute() at same instant = (%d, %d) then (%d, %d), want identical", l1, u1, l2, u2)
	}
}

func TestCompute_WaveMidpointAtZeroPhase(t *testing.T) {
	tests := []struct {
		brightness int
		wantLevel  int
	}{
		{brightness: 242, wantLevel: 121},
		// Odd level: 121 * 0.5 = 60.5 truncates toward zero
		{brightness: 121, wantLevel: 60},
	}

	for _, tt := range tests {
		engine := NewEngine()
		engine.lastEffect = settings.EffectWave
		// Advance lands exactly on phase 0, where the factor is exactly 0.5
		engine.phase = -phaseStep

		lower, upper := engine.Compute(settings.Settings{
			Enabled:    true,
			ZoneMode:   settings.ZoneBoth,
			Effect:     settings.EffectWave,
			Brightness: tt.brightness,
			WaveSpeed:  1.0,
		}, time.Now())

		if lower != tt.wantLevel || upper != tt.wantLevel {
			t.Errorf("Compute() wave at phase 0 with brightness %d = (%d, %d), want (%d, %d)",
				tt.brightness, lower, upper, tt.wantLevel, tt.wantLevel)
		}
	}
}

func TestCompute_WavePeriodic(t *testing.T) {
	cfg := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBottom,
		Effect:     settings.EffectWave,
		Brightness: 242,
		WaveSpeed:  1.0,
	}

	for _, start := range []float64{0.3, 1.1, 2.9, 4.2} {
		e1 := NewEngine()
		e1.lastEffect = settings.EffectWave
		e1.phase = start

		e2 := NewEngine()
		e2.lastEffect = settings.EffectWave
		e2.phase = start + 2*math.Pi

		l1, _ := e1.Compute(cfg, time.Now())
		l2, _ := e2.Compute(cfg, time.Now())

		// One full period apart; allow a single count for float rounding
		if diff := l1 - l2; diff < -1 || diff > 1 {
			t.Errorf("Compute() at phase %v = %d, at phase+2π = %d, want equal", start, l1, l2)
		}
	}
}

func TestCompute_WaveDeterministicAtSamePhase(t *testing.T) {
	cfg := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBoth,
		Effect:     settings.EffectWave,
		Brightness: 200,
		WaveSpeed:  3.0,
	}

	e1 := NewEngine()
	e1.lastEffect = settings.EffectWave
	e1.phase = 1.7

	e2 := NewEngine()
	e2.lastEffect = settings.EffectWave
	e2.phase = 1.7

	l1, u1 := e1.Compute(cfg, time.Now())
	l2, u2 := e2.Compute(cfg, time.Now())

	if l1 != l2 || u1 != u2 {
		t.Errorf("Compute() from equal phase = (%d, %d) and (%d, %d), want identical", l1, u1, l2, u2)
	}
}

func TestCompute_WavePhaseAdvancesPerTick(t *testing.T) {
	engine := NewEngine()
	cfg := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBottom,
		Effect:     settings.EffectWave,
		Brightness: 242,
		WaveSpeed:  2.0,
	}

	for i := 0; i < 3; i++ {
		engine.Compute(cfg, time.Now())
	}

	want := 3 * phaseStep * 2.0
	if math.Abs(engine.phase-want) > 1e-9 {
		t.Errorf("phase after 3 ticks = %v, want %v", engine.phase, want)
	}
}

func TestCompute_WaveSpeedScalesAdvance(t *testing.T) {
	engine := NewEngine()
	engine.Compute(settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBottom,
		Effect:     settings.EffectWave,
		Brightness: 242,
		WaveSpeed:  2.5,
	}, time.Now())

	want := phaseStep * 2.5
	if math.Abs(engine.phase-want) > 1e-9 {
		t.Errorf("phase after one tick at speed 2.5 = %v, want %v", engine.phase, want)
	}
}

func TestCompute_EffectTransitionResetsPhase(t *testing.T) {
	engine := NewEngine()
	wave := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBoth,
		Effect:     settings.EffectWave,
		Brightness: 242,
		WaveSpeed:  1.0,
	}
	blink := wave
	blink.Effect = settings.EffectBlink

	// Let the wave accumulate some phase
	for i := 0; i < 10; i++ {
		engine.Compute(wave, time.Now())
	}
	if engine.phase == 0 {
		t.Fatal("phase should have advanced during wave ticks")
	}

	// Leaving wave resets the phase
	engine.Compute(blink, blinkOn)
	if engine.phase != 0 {
		t.Errorf("phase after wave->blink = %v, want 0", engine.phase)
	}

	// Returning to wave starts from zero again, not where it left off
	engine.Compute(wave, time.Now())
	want := phaseStep * 1.0
	if math.Abs(engine.phase-want) > 1e-9 {
		t.Errorf("phase after blink->wave tick = %v, want %v", engine.phase, want)
	}
}

func TestCompute_StaticToWaveStartsFresh(t *testing.T) {
	engine := NewEngine()
	static := settings.Settings{
		Enabled:    true,
		ZoneMode:   settings.ZoneBottom,
		Effect:     settings.EffectStatic,
		Brightness: 242,
	}
	wave := static
	wave.Effect = settings.EffectWave
	wave.WaveSpeed = 1.0

	engine.Compute(static, time.Now())
	engine.Compute(wave, time.Now())

	want := phaseStep * 1.0
	if math.Abs(engine.phase-want) > 1e-9 {
		t.Errorf("phase after static->wave tick = %v, want %v", engine.phase, want)
	}
}
