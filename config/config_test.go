package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero steps", func(c *Config) { c.Waveform.Steps = 0 }},
		{"zero region width", func(c *Config) { c.Sequence.Region.W = 0 }},
		{"negative quantization", func(c *Config) { c.Sequence.Quantize = -1 }},
		{"empty surface", func(c *Config) { c.Surface.Height = 0 }},
		{"zero fps", func(c *Config) { c.Surface.FPS = 0 }},
		{"no sample rate", func(c *Config) { c.Synth.SampleRate = 0 }},
		{"midi channel", func(c *Config) { c.MIDI.Channel = 17 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Waveform.Steps != 20 {
		t.Errorf("steps = %d, want defaults", c.Waveform.Steps)
	}
}

func TestSaveLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	// partial file: only the tempo is overridden
	if err := os.WriteFile(path, []byte(`{"synth":{"tempo":90}}`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Synth.Tempo != 90 {
		t.Errorf("tempo = %d, want 90", c.Synth.Tempo)
	}
	if c.Synth.SampleRate != 48000 || c.Sequence.Steps != 5 {
		t.Errorf("defaults lost: %+v", c)
	}

	c.Surface.FPS = 30
	if err := c.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	again, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Surface.FPS != 30 {
		t.Errorf("fps = %d after save", again.Surface.FPS)
	}
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"waveform":{"steps":0}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("LoadFrom() = %v, want ErrInvalid", err)
	}
}

func TestNewGridFromDefaults(t *testing.T) {
	c := DefaultConfig()

	wave, err := c.Waveform.NewGrid("waveform")
	if err != nil {
		t.Fatal(err)
	}
	if wave.Len() != 20 || wave.Value(2) != 0.5 || wave.Value(3) != 1 {
		t.Errorf("waveform = %v", wave.Values())
	}

	seq, err := c.Sequence.NewGrid("sequence")
	if err != nil {
		t.Fatal(err)
	}
	if seq.Len() != 5 || seq.Quantization() != 4 {
		t.Errorf("sequence len=%d q=%d", seq.Len(), seq.Quantization())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("WAVEDRAW_TEST_DIR", "/tmp/x")

	tests := []struct{ in, want string }{
		{"", ""},
		{"/abs/file.gpl", "/abs/file.gpl"},
		{"~/p.gpl", filepath.Join(home, "p.gpl")},
		{"$WAVEDRAW_TEST_DIR/log.txt", "/tmp/x/log.txt"},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
