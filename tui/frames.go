package tui

import "image"

// Frames is a latest-only mailbox between the engine's presenter and the
// terminal. A frame the UI has not picked up yet is replaced, never queued.
type Frames struct {
	ch chan image.Image
}

func NewFrames() *Frames {
	return &Frames{ch: make(chan image.Image, 1)}
}

// Present stores img, dropping any frame still waiting. Never blocks.
func (f *Frames) Present(img image.Image) {
	for {
		select {
		case f.ch <- img:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// C delivers frames.
func (f *Frames) C() <-chan image.Image {
	return f.ch
}
