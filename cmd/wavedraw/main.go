package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/gg"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-wavedraw/config"
	"go-wavedraw/debug"
	"go-wavedraw/engine"
	"go-wavedraw/grid"
	"go-wavedraw/headless"
	"go-wavedraw/midi"
	"go-wavedraw/sequencer"
	"go-wavedraw/synth"
	"go-wavedraw/tape"
	"go-wavedraw/theme"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runHeadless(os.Args[2:])
	case "ports":
		err = listPorts()
	case "note":
		err = testNote(os.Args[2:])
	case "config":
		err = writeConfig(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("wavedraw tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run     - Drive the editor with JSON lines on stdin")
	fmt.Println("  ports   - List all MIDI ports")
	fmt.Println("  note    - Send a test note to the configured port")
	fmt.Println("  config  - Write the default config")
}

func runHeadless(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	pngPath := fs.String("png", "", "save the last frame as PNG")
	wavPath := fs.String("wav", "", "render the drawn sound to a WAV file")
	seconds := fs.Float64("seconds", 4, "length of the WAV render")
	debugPath := fs.String("debug", "", "write debug log to this file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	for _, p := range []*string{pngPath, wavPath, debugPath} {
		if *p, err = config.ExpandPath(*p); err != nil {
			return err
		}
	}
	if *debugPath != "" {
		if err := debug.Enable(*debugPath); err != nil {
			return err
		}
		defer debug.Disable()
		gg.SetLogger(debug.Logger())
	}

	palette := theme.DefaultPalette()
	if cfg.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.Palette); err != nil {
			return err
		}
	}

	eng := engine.New(engine.Options{FPS: cfg.Surface.FPS, Theme: theme.New(palette)})
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

	d := headless.New(eng, cfg.Surface.Width, cfg.Surface.Height, os.Stdout, os.Stderr)

	voice := synth.NewVoice(cfg.Synth.SampleRate, cfg.Synth.Frequency)
	manager := sequencer.NewManager(voice, sequencer.Options{
		Tempo:     cfg.Synth.Tempo,
		TableSize: cfg.Synth.TableSize,
	})
	d.Sink = manager.Apply

	if err := d.Run(os.Stdin); err != nil {
		return err
	}
	if *pngPath != "" {
		if err := d.SavePNG(*pngPath); err != nil {
			return err
		}
	}
	if *wavPath != "" {
		dur := time.Duration(*seconds * float64(time.Second))
		samples := tape.Record(manager, voice, cfg.Synth.SampleRate, dur)
		return tape.WriteWAV(*wavPath, cfg.Synth.SampleRate, samples)
	}
	return nil
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(3 * time.Second)
	if err != nil {
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.In {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Out {
		fmt.Printf("  %d: %s\n", i, p)
	}
	return nil
}

func testNote(args []string) error {
	fs := flag.NewFlagSet("note", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	port := fs.String("port", "", "output port (default from config)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *port == "" {
		*port = cfg.MIDI.Port
	}

	out, err := midi.Open(*port, cfg.MIDI.Channel, cfg.MIDI.Note)
	if err != nil {
		return err
	}
	defer out.Close()

	fmt.Printf("Playing on %s...\n", *port)
	for _, level := range []float64{1, 0.75, 0.5, 0.25} {
		if err := out.Step(level); err != nil {
			return err
		}
		time.Sleep(250 * time.Millisecond)
	}
	fmt.Println("Done!")
	return nil
}

func writeConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	path := fs.String("o", "", "output path (default ~/.config/go-wavedraw/config.json)")
	fs.Parse(args)

	cfg := config.DefaultConfig()
	if *path == "" {
		return cfg.Save()
	}
	p, err := config.ExpandPath(*path)
	if err != nil {
		return err
	}
	return cfg.SaveTo(p)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
