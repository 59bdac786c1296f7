package hal

import (
	"context"
	"fmt"
	"image"
	"time"
)

// HeadlessConfig controls the no-window host.
type HeadlessConfig struct {
	Width  int
	Height int
	Hz     int
	// Ticks stops the run after that many ticks; 0 runs until ctx is done.
	Ticks uint64
	// Script is input replayed at fixed ticks, sorted by Tick.
	Script []ScriptStep
}

// ScriptKind selects the input a ScriptStep delivers.
type ScriptKind uint8

const (
	ScriptKeyPress ScriptKind = iota + 1
	ScriptKeyRelease
	ScriptPointerPress
	ScriptPointerDrag
	ScriptPointerRelease
)

// ScriptStep is one scripted input delivered on tick Tick (counted from 1).
type ScriptStep struct {
	Tick uint64
	Kind ScriptKind
	Key  Key
	X, Y int
}

func (s ScriptStep) deliver(sink InputSink) {
	switch s.Kind {
	case ScriptKeyPress:
		sink.KeyPressed(s.Key)
	case ScriptKeyRelease:
		sink.KeyReleased(s.Key)
	case ScriptPointerPress:
		sink.PointerPressed(s.X, s.Y)
	case ScriptPointerDrag:
		sink.PointerDragged(s.X, s.Y)
	case ScriptPointerRelease:
		sink.PointerReleased(s.X, s.Y)
	}
}

// Headless runs without opening a window. Frames are kept in memory.
type Headless struct {
	*framebuffer
	cfg   HeadlessConfig
	audio Audio
}

func NewHeadless(cfg HeadlessConfig) *Headless {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	cfg.Width, cfg.Height = canvasSize(cfg.Width, cfg.Height)
	return &Headless{
		framebuffer: newFramebuffer(cfg.Width, cfg.Height, 0),
		cfg:         cfg,
		audio:       newDrainAudio(),
	}
}

func (h *Headless) Audio() Audio { return h.audio }

// Frame returns a copy of the last presented frame.
func (h *Headless) Frame() *image.RGBA { return h.snapshot(nil) }

func (h *Headless) Run(ctx context.Context, sink InputSink) error {
	d := time.Second / time.Duration(h.cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", h.cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	script := h.cfg.Script
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			tick++
			for len(script) > 0 && script[0].Tick <= tick {
				script[0].deliver(sink)
				script = script[1:]
			}
			if h.cfg.Ticks > 0 && tick >= h.cfg.Ticks {
				return nil
			}
		}
	}
}
