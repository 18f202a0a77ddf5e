package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gogpu/gg"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
	"golang.org/x/sync/errgroup"

	"go-wavedraw/audio"
	"go-wavedraw/config"
	"go-wavedraw/debug"
	"go-wavedraw/engine"
	"go-wavedraw/grid"
	"go-wavedraw/midi"
	"go-wavedraw/sequencer"
	"go-wavedraw/synth"
	"go-wavedraw/theme"
	"go-wavedraw/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-wavedraw/config.json)")
	debugPath := flag.String("debug", "", "write debug log to this file")
	mute := flag.Bool("mute", false, "no audio output")
	flag.Parse()

	if err := run(*configPath, *debugPath, *mute); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, debugPath string, mute bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if debugPath == "" {
		debugPath = cfg.Debug
	} else if debugPath, err = config.ExpandPath(debugPath); err != nil {
		return err
	}
	if debugPath != "" {
		if err := debug.Enable(debugPath); err != nil {
			return err
		}
		defer debug.Disable()
		gg.SetLogger(debug.Logger())
	}

	// Load theme
	palette := theme.DefaultPalette()
	if cfg.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.Palette); err != nil {
			return err
		}
	}
	th := theme.New(palette)

	// Editor: engine plus the two grids
	eng := engine.New(engine.Options{FPS: cfg.Surface.FPS, Theme: th})
	wave, err := cfg.Waveform.NewGrid("waveform", grid.WithListener(eng.WaveformPublisher()))
	if err != nil {
		return err
	}
	steps, err := cfg.Sequence.NewGrid("sequence", grid.WithListener(eng.SequencePublisher()))
	if err != nil {
		return err
	}
	for _, g := range []*grid.Grid{wave, steps} {
		if err := eng.AddGrid(g); err != nil {
			return err
		}
	}

	// Sound: voice gated by the step sequencer
	voice := synth.NewVoice(cfg.Synth.SampleRate, cfg.Synth.Frequency)
	manager := sequencer.NewManager(voice, sequencer.Options{
		Tempo:     cfg.Synth.Tempo,
		TableSize: cfg.Synth.TableSize,
	})

	if cfg.MIDI.Port != "" {
		out, err := midi.Open(cfg.MIDI.Port, cfg.MIDI.Channel, cfg.MIDI.Note)
		if err != nil {
			fmt.Printf("MIDI disabled: %v\n", err)
		} else {
			manager.SetOutput(out)
			defer out.Close()
		}
	}

	if !mute && !cfg.Synth.Mute {
		player, err := audio.NewPlayer(cfg.Synth.SampleRate, voice)
		if err != nil {
			fmt.Printf("Audio disabled: %v\n", err)
		} else {
			player.Start()
			defer player.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := eng.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		manager.Run(ctx)
		return nil
	})

	// Create and run TUI; quitting it stops everything else
	m := tui.NewModel(eng, manager, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	return g.Wait()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
