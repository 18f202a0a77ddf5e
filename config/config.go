package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"go-wavedraw/geom"
	"go-wavedraw/grid"
)

var ErrInvalid = errors.New("config: invalid")

// SurfaceConfig sizes the headless surface and sets the frame rate
type SurfaceConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	FPS    int `json:"fps"`
}

// RegionConfig is a normalized placement on the surface
type RegionConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// GridConfig defines one step grid
type GridConfig struct {
	Region   RegionConfig `json:"region"`
	Steps    int          `json:"steps"`
	Quantize int          `json:"quantize,omitempty"` // 0 = continuous
	Values   []float64    `json:"values,omitempty"`
}

// SynthConfig defines the audio voice and step clock
type SynthConfig struct {
	SampleRate int     `json:"sampleRate"`
	Frequency  float64 `json:"frequency"`
	TableSize  int     `json:"tableSize"`
	Tempo      int     `json:"tempo"`
	Mute       bool    `json:"mute,omitempty"`
}

// MIDIConfig defines the optional MIDI mirror of the sequence
type MIDIConfig struct {
	Port    string `json:"port,omitempty"`
	Channel uint8  `json:"channel,omitempty"` // 1-16
	Note    uint8  `json:"note,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Surface  SurfaceConfig `json:"surface"`
	Waveform GridConfig    `json:"waveform"`
	Sequence GridConfig    `json:"sequence"`
	Synth    SynthConfig   `json:"synth"`
	MIDI     MIDIConfig    `json:"midi"`
	Palette  string        `json:"palette,omitempty"` // GPL file, embedded palette if empty
	Debug    string        `json:"debug,omitempty"`   // log file, disabled if empty
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Surface: SurfaceConfig{Width: 800, Height: 600, FPS: 60},
		Waveform: GridConfig{
			Region: RegionConfig{X: 0, Y: 0, W: 0.5, H: 0.2},
			Steps:  20,
			Values: []float64{0, 0, 0.5, 1},
		},
		Sequence: GridConfig{
			Region:   RegionConfig{X: 0.5, Y: 0, W: 0.5, H: 0.2},
			Steps:    5,
			Quantize: 4,
		},
		Synth: SynthConfig{
			SampleRate: 48000,
			Frequency:  220,
			TableSize:  2048,
			Tempo:      120,
		},
		MIDI: MIDIConfig{Channel: 1, Note: 60},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-wavedraw"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath resolves a leading ~ and environment variables in a user
// supplied path. Empty stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return os.ExpandEnv(p), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep their
// defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Palette, err = ExpandPath(cfg.Palette); err != nil {
		return nil, err
	}
	if cfg.Debug, err = ExpandPath(cfg.Debug); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		return fmt.Errorf("%w: surface %dx%d", ErrInvalid, c.Surface.Width, c.Surface.Height)
	}
	if c.Surface.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.Surface.FPS)
	}
	for name, g := range map[string]GridConfig{"waveform": c.Waveform, "sequence": c.Sequence} {
		if err := g.validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
	}
	if c.Synth.SampleRate <= 0 || c.Synth.Frequency <= 0 {
		return fmt.Errorf("%w: synth rate %d freq %v", ErrInvalid, c.Synth.SampleRate, c.Synth.Frequency)
	}
	if c.MIDI.Channel > 16 || c.MIDI.Note > 127 {
		return fmt.Errorf("%w: midi channel %d note %d", ErrInvalid, c.MIDI.Channel, c.MIDI.Note)
	}
	return nil
}

func (g GridConfig) validate() error {
	if g.Steps <= 0 {
		return grid.ErrNoSteps
	}
	if !g.box().Valid() {
		return grid.ErrEmptyRegion
	}
	if g.Quantize < 0 {
		return grid.ErrQuantization
	}
	return nil
}

func (g GridConfig) box() geom.BoundingBox {
	return geom.Box(g.Region.X, g.Region.Y, g.Region.W, g.Region.H)
}

// NewGrid builds the grid this config describes.
func (g GridConfig) NewGrid(name string, opts ...grid.Option) (*grid.Grid, error) {
	base := []grid.Option{grid.WithValues(g.Values...)}
	if g.Quantize > 0 {
		base = append(base, grid.WithQuantization(g.Quantize))
	}
	return grid.New(name, g.box(), g.Steps, append(base, opts...)...)
}
