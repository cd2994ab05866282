package settings

import (
	"sync"
	"testing"
)

func TestNewStoreDefaults(t *testing.T) {
	store := NewStore()
	snap := store.Snapshot()

	if !snap.Enabled {
		t.Error("Expected default Enabled = true")
	}
	if snap.ZoneMode != ZoneBottom {
		t.Errorf("Default ZoneMode = %q, want %q", snap.ZoneMode, ZoneBottom)
	}
	if snap.Effect != EffectStatic {
		t.Errorf("Default Effect = %q, want %q", snap.Effect, EffectStatic)
	}
	// 10 on the control scale maps to 24 device-native
	if snap.Brightness != 24 {
		t.Errorf("Default Brightness = %d, want 24", snap.Brightness)
	}
	if snap.WaveSpeed != 1.0 {
		t.Errorf("Default WaveSpeed = %v, want 1.0", snap.WaveSpeed)
	}

	if store.BrightnessPercent() != DefaultBrightnessPercent {
		t.Errorf("BrightnessPercent() = %d, want %d", store.BrightnessPercent(), DefaultBrightnessPercent)
	}
	if store.WaveSpeedStep() != DefaultWaveSpeedStep {
		t.Errorf("WaveSpeedStep() = %d, want %d", store.WaveSpeedStep(), DefaultWaveSpeedStep)
	}
}

func TestSetBrightness(t *testing.T) {
	tests := []struct {
		name        string
		percent     int
		wantPercent int
		wantLevel   int
	}{
		{name: "midpoint", percent: 50, wantPercent: 50, wantLevel: 121},
		{name: "full", percent: 100, wantPercent: 100, wantLevel: 242},
		{name: "off", percent: 0, wantPercent: 0, wantLevel: 0},
		{name: "truncates", percent: 33, wantPercent: 33, wantLevel: 79},
		{name: "clamped below", percent: -5, wantPercent: 0, wantLevel: 0},
		{name: "clamped above", percent: 150, wantPercent: 100, wantLevel: 242},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.SetBrightness(tt.percent)

			if got := store.BrightnessPercent(); got != tt.wantPercent {
				t.Errorf("BrightnessPercent() = %d, want %d", got, tt.wantPercent)
			}
			if got := store.Snapshot().Brightness; got != tt.wantLevel {
				t.Errorf("Snapshot().Brightness = %d, want %d", got, tt.wantLevel)
			}
		})
	}
}

func TestSetWaveSpeed(t *testing.T) {
	tests := []struct {
		name      string
		step      int
		wantStep  int
		wantSpeed float64
	}{
		{name: "midpoint", step: 25, wantStep: 25, wantSpeed: 2.5},
		{name: "slowest", step: 1, wantStep: 1, wantSpeed: 0.1},
		{name: "fastest", step: 50, wantStep: 50, wantSpeed: 5.0},
		{name: "clamped below", step: 0, wantStep: 1, wantSpeed: 0.1},
		{name: "clamped above", step: 99, wantStep: 50, wantSpeed: 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.SetWaveSpeed(tt.step)

			if got := store.WaveSpeedStep(); got != tt.wantStep {
				t.Errorf("WaveSpeedStep() = %d, want %d", got, tt.wantStep)
			}
			if got := store.Snapshot().WaveSpeed; got != tt.wantSpeed {
				t.Errorf("Snapshot().WaveSpeed = %v, want %v", got, tt.wantSpeed)
			}
		})
	}
}

func TestSetZoneMode(t *testing.T) {
	store := NewStore()

	store.SetZoneMode(ZoneBoth)
	if got := store.Snapshot().ZoneMode; got != ZoneBoth {
		t.Errorf("ZoneMode = %q, want %q", got, ZoneBoth)
	}

	// Unknown values must not disturb the stored variant
	store.SetZoneMode(ZoneMode("sideways"))
	if got := store.Snapshot().ZoneMode; got != ZoneBoth {
		t.Errorf("ZoneMode after invalid set = %q, want %q", got, ZoneBoth)
	}
}

func TestSetEffect(t *testing.T) {
	store := NewStore()

	store.SetEffect(EffectWave)
	if got := store.Snapshot().Effect; got != EffectWave {
		t.Errorf("Effect = %q, want %q", got, EffectWave)
	}

	store.SetEffect(Effect("rainbow"))
	if got := store.Snapshot().Effect; got != EffectWave {
		t.Errorf("Effect after invalid set = %q, want %q", got, EffectWave)
	}
}

func TestSetEnabled(t *testing.T) {
	store := NewStore()

	store.SetEnabled(false)
	if store.Snapshot().Enabled {
		t.Error("Expected Enabled = false after SetEnabled(false)")
	}

	store.SetEnabled(true)
	if !store.Snapshot().Enabled {
		t.Error("Expected Enabled = true after SetEnabled(true)")
	}
}

func TestParseZoneMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ZoneMode
		wantErr bool
	}{
		{input: "bottom", want: ZoneBottom},
		{input: "top", want: ZoneTop},
		{input: "both", want: ZoneBoth},
		{input: "Bottom", wantErr: true},
		{input: "", wantErr: true},
		{input: "middle", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseZoneMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseZoneMode(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseZoneMode(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseZoneMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseEffect(t *testing.T) {
	tests := []struct {
		input   string
		want    Effect
		wantErr bool
	}{
		{input: "static", want: EffectStatic},
		{input: "blink", want: EffectBlink},
		{input: "wave", want: EffectWave},
		{input: "WAVE", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseEffect(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseEffect(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEffect(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseEffect(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestOnChange(t *testing.T) {
	store := NewStore()

	var got []View
	store.OnChange(func(v View) {
		got = append(got, v)
	})

	store.SetBrightness(50)
	store.SetEffect(EffectBlink)

	if len(got) != 2 {
		t.Fatalf("Expected 2 change notifications, got %d", len(got))
	}
	if got[0].Brightness != 50 {
		t.Errorf("First notification Brightness = %d, want 50", got[0].Brightness)
	}
	if got[0].DeviceBrightness != 121 {
		t.Errorf("First notification DeviceBrightness = %d, want 121", got[0].DeviceBrightness)
	}
	if got[1].Effect != EffectBlink {
		t.Errorf("Second notification Effect = %q, want %q", got[1].Effect, EffectBlink)
	}
}

func TestOnChange_InvalidWriteDoesNotNotify(t *testing.T) {
	store := NewStore()

	notified := 0
	store.OnChange(func(View) {
		notified++
	})

	store.SetZoneMode(ZoneMode("nowhere"))
	store.SetEffect(Effect("sparkle"))

	if notified != 0 {
		t.Errorf("Expected no notifications for rejected writes, got %d", notified)
	}
}

func TestView(t *testing.T) {
	store := NewStore()
	store.SetBrightness(50)
	store.SetWaveSpeed(25)
	store.SetZoneMode(ZoneBoth)

	v := store.View()
	if v.Brightness != 50 || v.DeviceBrightness != 121 {
		t.Errorf("View brightness = (%d, %d), want (50, 121)", v.Brightness, v.DeviceBrightness)
	}
	if v.WaveSpeed != 25 || v.WaveSpeedFactor != 2.5 {
		t.Errorf("View wave speed = (%d, %v), want (25, 2.5)", v.WaveSpeed, v.WaveSpeedFactor)
	}
	if v.ZoneMode != ZoneBoth {
		t.Errorf("View zone mode = %q, want %q", v.ZoneMode, ZoneBoth)
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.SetBrightness(n * 10)
			store.SetWaveSpeed(n + 1)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
			_ = store.BrightnessPercent()
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, the stored level must be in range
	snap := store.Snapshot()
	if snap.Brightness < 0 || snap.Brightness > 242 {
		t.Errorf("Brightness out of range after concurrent writes: %d", snap.Brightness)
	}
}
