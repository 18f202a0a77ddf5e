// Package sequencer plays the edited grids: the waveform spectrum becomes the
// voice's wavetable and the sequence grid gates it step by step.
package sequencer

import (
	"context"
	"sync"
	"time"

	"go-wavedraw/debug"
	"go-wavedraw/protocol"
	"go-wavedraw/synth"
)

const (
	MinTempo     = 20
	MaxTempo     = 300
	DefaultTempo = 120

	// StepsPerBeat makes each sequence cell a sixteenth note.
	StepsPerBeat = 4
)

// Voice is the sound source the manager drives.
type Voice interface {
	SetWave(w synth.Wave)
	SetGain(g float64)
}

// StepSender mirrors each played step somewhere else, e.g. a MIDI port.
type StepSender interface {
	Step(level float64) error
}

// Options configures a Manager.
type Options struct {
	Tempo     int // bpm, clamped to MinTempo..MaxTempo (default 120)
	TableSize int // wavetable size (default synth.DefaultTableSize)
}

// Manager holds the latest results from the editor and advances the step
// clock.
type Manager struct {
	voice     Voice
	out       StepSender
	tableSize int

	mu    sync.RWMutex
	steps []float64 // nil until the first sequence arrives
	pos   int       // next step to play
	last  int       // last step played, -1 before the first
	tempo int

	interruptChan chan struct{} // tempo changed, reschedule

	// Notify UI of played steps
	UpdateChan chan struct{}
}

// NewManager creates a manager driving voice.
func NewManager(voice Voice, opts Options) *Manager {
	if opts.TableSize <= 0 {
		opts.TableSize = synth.DefaultTableSize
	}
	if opts.Tempo == 0 {
		opts.Tempo = DefaultTempo
	}
	return &Manager{
		voice:         voice,
		tableSize:     opts.TableSize,
		tempo:         clampTempo(opts.Tempo),
		last:          -1,
		interruptChan: make(chan struct{}, 1),
		UpdateChan:    make(chan struct{}, 1),
	}
}

// SetOutput sets where played steps are mirrored (nil to stop).
func (m *Manager) SetOutput(out StepSender) {
	m.mu.Lock()
	m.out = out
	m.mu.Unlock()
}

// Apply routes a result message from the editor. Other messages are ignored.
func (m *Manager) Apply(msg protocol.Message) {
	switch r := msg.(type) {
	case protocol.WaveformResult:
		m.ApplyWaveform(r)
	case protocol.SequenceResult:
		m.ApplySequence(r)
	}
}

// ApplyWaveform rebuilds the voice's wavetable from a spectrum.
func (m *Manager) ApplyWaveform(r protocol.WaveformResult) {
	w := synth.NewWave(r.Real, r.Imag, m.tableSize)
	m.voice.SetWave(w)
	debug.Log("seq", "waveform: %d bins silent=%v", len(r.Real), w.Silent())
}

// ApplySequence replaces the step levels. The play position wraps if the new
// sequence is shorter. An empty sequence opens the gate.
func (m *Manager) ApplySequence(r protocol.SequenceResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(r.Values) == 0 {
		m.steps = nil
		m.pos = 0
		return
	}
	m.steps = append(m.steps[:0:0], r.Values...)
	m.pos %= len(m.steps)
	debug.Log("seq", "sequence: %v", m.steps)
}

// Steps returns a copy of the step levels, or nil if no sequence has arrived.
func (m *Manager) Steps() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.steps == nil {
		return nil
	}
	return append([]float64(nil), m.steps...)
}

// SetTempo sets the BPM.
func (m *Manager) SetTempo(bpm int) {
	m.mu.Lock()
	m.tempo = clampTempo(bpm)
	m.mu.Unlock()
	m.interrupt()
}

func (m *Manager) Tempo() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tempo
}

// StepDuration is the length of one step at the current tempo.
func (m *Manager) StepDuration() time.Duration {
	return time.Minute / time.Duration(m.Tempo()*StepsPerBeat)
}

// Current returns the last played step, or -1.
func (m *Manager) Current() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Advance plays the next step: the voice gain becomes the step's level and the
// level is mirrored to the output. Without a sequence the gate stays open
// and the step index is -1.
func (m *Manager) Advance() (step int, level float64) {
	m.mu.Lock()
	step, level = -1, 1
	if len(m.steps) > 0 {
		step = m.pos
		level = m.steps[step]
		m.pos = (step + 1) % len(m.steps)
	}
	m.last = step
	out := m.out
	m.mu.Unlock()

	m.voice.SetGain(level)
	if out != nil {
		if err := out.Step(level); err != nil {
			debug.LogEvery(16, "seq", "step output: %v", err)
		}
	}

	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
	return step, level
}

// Run advances one step per StepDuration until ctx is done, then silences
// the voice and the output.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.StepDuration())
	defer ticker.Stop()
	defer m.silence()

	m.Advance()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.interruptChan:
			ticker.Reset(m.StepDuration())
		case <-ticker.C:
			m.Advance()
		}
	}
}

func (m *Manager) silence() {
	m.voice.SetGain(0)
	m.mu.RLock()
	out := m.out
	m.mu.RUnlock()
	if out != nil {
		if err := out.Step(0); err != nil {
			debug.Log("seq", "silence output: %v", err)
		}
	}
}

// interrupt signals the run loop to reschedule
func (m *Manager) interrupt() {
	select {
	case m.interruptChan <- struct{}{}:
	default:
	}
}

func clampTempo(bpm int) int {
	if bpm < MinTempo {
		bpm = MinTempo
	}
	if bpm > MaxTempo {
		bpm = MaxTempo
	}
	return bpm
}
