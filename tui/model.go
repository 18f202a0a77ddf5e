package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-wavedraw/debug"
	"go-wavedraw/engine"
	"go-wavedraw/protocol"
	"go-wavedraw/sequencer"
	"go-wavedraw/spectral"
	"go-wavedraw/surface"
	"go-wavedraw/theme"
	"go-wavedraw/widgets"
)

// rows reserved below the drawing for status and help
const statusLines = 2

// one terminal cell is one pixel wide and two pixels tall
const pixelsPerRow = 2

type Model struct {
	Engine    *engine.Engine
	Sequencer *sequencer.Manager // may be nil
	Theme     *theme.Theme

	frames   *Frames
	renderer *widgets.FrameRenderer
	frame    image.Image
	keys     keyMap
	help     help.Model

	width, height int
	started       bool
	ready         bool
	harmonic      int
	quitting      bool
}

// FrameMsg carries the latest presented frame.
type FrameMsg struct{ Image image.Image }

// EngineMsg carries a message from the engine to the host.
type EngineMsg struct{ Msg protocol.Message }

// UpdateMsg means the sequencer played a step.
type UpdateMsg struct{}

func NewModel(eng *engine.Engine, seq *sequencer.Manager, th *theme.Theme) Model {
	return Model{
		Engine:    eng,
		Sequencer: seq,
		Theme:     th,
		frames:    NewFrames(),
		renderer:  widgets.NewFrameRenderer(),
		keys:      newKeyMap(),
		help:      help.New(),
	}
}

func ListenForEngine(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return EngineMsg{Msg: <-eng.Outbox()}
	}
}

func ListenForFrames(f *Frames) tea.Cmd {
	return func() tea.Msg {
		return FrameMsg{Image: <-f.C()}
	}
}

func ListenForUpdates(seq *sequencer.Manager) tea.Cmd {
	if seq == nil {
		return nil
	}
	return func() tea.Msg {
		<-seq.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForEngine(m.Engine),
		ListenForFrames(m.frames),
		ListenForUpdates(m.Sequencer),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.TempoUp):
			if m.Sequencer != nil {
				m.Sequencer.SetTempo(m.Sequencer.Tempo() + 5)
			}

		case key.Matches(msg, m.keys.TempoDown):
			if m.Sequencer != nil {
				m.Sequencer.SetTempo(m.Sequencer.Tempo() - 5)
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		w, h := m.surfaceSize()
		if !m.started {
			handle := surface.New(w, h, surface.WithPresenter(m.frames.Present))
			m.Engine.Post(protocol.Start{Surface: handle, Width: w, Height: h})
			m.started = true
			debug.Log("tui", "start %dx%d px", w, h)
		} else {
			m.Engine.Post(protocol.Resize{Width: w, Height: h})
		}

	case tea.MouseMsg:
		for _, pm := range PointerMessages(msg) {
			m.Engine.Post(pm)
		}

	case FrameMsg:
		m.frame = msg.Image
		return m, ListenForFrames(m.frames)

	case EngineMsg:
		m.handleEngine(msg.Msg)
		return m, ListenForEngine(m.Engine)

	case UpdateMsg:
		return m, ListenForUpdates(m.Sequencer)
	}

	return m, nil
}

func (m *Model) handleEngine(msg protocol.Message) {
	switch r := msg.(type) {
	case protocol.Ready:
		m.ready = true
	case protocol.WaveformResult:
		m.harmonic = spectral.Dominant(r.Real, r.Imag)
	}
	if m.Sequencer != nil {
		m.Sequencer.Apply(msg)
	}
}

// surfaceSize is the drawing area in pixels for the current terminal size
func (m Model) surfaceSize() (int, int) {
	rows := max(1, m.height-statusLines)
	return max(1, m.width), rows * pixelsPerRow
}

// PointerMessages translates a terminal mouse event into engine input. A
// release also reports a click at the release position.
func PointerMessages(msg tea.MouseMsg) []protocol.Message {
	x, y := float64(msg.X), float64(msg.Y*pixelsPerRow)
	move := protocol.PointerMove{X: x, Y: y}

	switch msg.Action {
	case tea.MouseActionMotion:
		return []protocol.Message{move}
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		return []protocol.Message{move, protocol.PointerDown{}}
	case tea.MouseActionRelease:
		return []protocol.Message{move, protocol.PointerUp{}, protocol.SurfaceClick{X: x, Y: y}}
	}
	return nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())

	rows := max(1, m.height-statusLines)
	var out strings.Builder
	if m.frame != nil {
		out.WriteString(m.renderer.Render(m.frame, m.width, rows))
	} else {
		out.WriteString(strings.Repeat("\n", rows-1))
	}
	out.WriteString("\n")

	state := "waiting"
	if m.ready {
		state = "drawing"
	}
	status := fmt.Sprintf("go-wavedraw  %s  harmonic:%d", state, m.harmonic)
	if m.Sequencer != nil {
		status += fmt.Sprintf("  %3dbpm  ", m.Sequencer.Tempo())
		out.WriteString(headerStyle.Render(status))
		out.WriteString(widgets.RenderSteps(m.Sequencer.Steps(), m.Sequencer.Current(),
			m.Theme.Accent(), m.Theme.Muted(), m.Theme.FG()))
	} else {
		out.WriteString(headerStyle.Render(status))
	}
	out.WriteString("\n")
	out.WriteString(m.help.View(m.keys))

	return out.String()
}
