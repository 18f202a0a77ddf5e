// Package audio plays a sample stream on the system output through oto.
package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"go-wavedraw/debug"
)

// Player pulls mono float32 little-endian samples from a source.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

// NewPlayer opens the audio device and prepares to read from src.
func NewPlayer(sampleRate int, src io.Reader) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	debug.Log("audio", "device ready at %d Hz", sampleRate)

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(src),
	}, nil
}

func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	p.started = false
	return err
}
