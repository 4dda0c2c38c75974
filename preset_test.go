package modsynth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vsariola/modsynth"
)

func TestPresetApply(t *testing.T) {
	ports := modsynth.NewPorts(modsynth.PluginName)
	err := ports.Apply(modsynth.Preset{
		"volume":                           1.5,
		modsynth.Specifier("pitch-tuning"): -5000,
		"osc-1-oscillator":                 3.2,
		"no-such-port":                     1,
	})
	if err == nil {
		t.Fatalf("expected an error for the unknown port")
	}
	tests := []struct {
		name string
		want float64
	}{
		{"volume", 1.5},
		{"pitch-tuning", -1200},
		{"osc-1-oscillator", modsynth.WaveSquare},
		{"osc-0-volume", 0.333},
	}
	for _, tt := range tests {
		if got := ports.Value(tt.name); got != tt.want {
			t.Fatalf("%v = %v, expected %v", tt.name, got, tt.want)
		}
	}
}

func TestPresetSaveLoad(t *testing.T) {
	ports := modsynth.NewPorts(modsynth.PluginName)
	ports.Set("env-0-attack", 0.01)
	ports.Set("lfo-0-sends", float64(modsynth.SendPitchTuning))
	data, err := ports.Preset().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	filename := filepath.Join(t.TempDir(), "preset.yml")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	preset, err := modsynth.LoadPreset(filename)
	if err != nil {
		t.Fatalf("LoadPreset failed: %v", err)
	}
	if len(preset) != len(modsynth.PortDescriptors) {
		t.Fatalf("preset has %d entries, expected %d", len(preset), len(modsynth.PortDescriptors))
	}
	other := modsynth.NewPorts(modsynth.PluginName)
	if err := other.Apply(preset); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for _, p := range ports.All() {
		if got := other.Value(p.Name); got != p.Value() {
			t.Fatalf("%v = %v after loading, expected %v", p.Name, got, p.Value())
		}
	}
}

func TestParsePresetJSON(t *testing.T) {
	preset, err := modsynth.ParsePreset([]byte(`{"volume": 0.25}`))
	if err != nil {
		t.Fatalf("ParsePreset failed: %v", err)
	}
	if preset["volume"] != 0.25 {
		t.Fatalf("got %v", preset)
	}
	if _, err := modsynth.ParsePreset([]byte("volume: [")); err == nil {
		t.Fatalf("expected an error for malformed input")
	}
}
