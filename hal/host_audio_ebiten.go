//go:build cgo

package hal

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// ebitenAudio plays streams through Ebiten's audio package. The context is
// process-wide and its sample rate is fixed once created.
type ebitenAudio struct {
	mu  sync.Mutex
	ctx *audio.Context
}

var sharedAudio ebitenAudio

func newHostAudio() Audio { return &sharedAudio }

func (a *ebitenAudio) SampleRate() int { return DefaultSampleRate }

func (a *ebitenAudio) context() *audio.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx == nil {
		a.ctx = audio.NewContext(DefaultSampleRate)
	}
	return a.ctx
}

func (a *ebitenAudio) Play(r io.Reader, volume float64) (Voice, error) {
	if r == nil {
		return nil, errors.New("host audio: nil stream")
	}
	p, err := a.context().NewPlayer(&hostAudioReader{r: r})
	if err != nil {
		return nil, err
	}
	p.SetBufferSize(100 * time.Millisecond)
	p.SetVolume(volume)
	p.Play()
	return p, nil
}

// hostAudioReader pads short reads with silence to whole stereo frames.
// Ebiten audio expects 16-bit little-endian stereo.
type hostAudioReader struct {
	r   io.Reader
	eof bool
}

func (h *hostAudioReader) Read(p []byte) (int, error) {
	if h.eof {
		return 0, io.EOF
	}
	n := len(p) &^ 3
	if n == 0 {
		return 0, nil
	}
	got, err := io.ReadFull(h.r, p[:n])
	if err == nil {
		return n, nil
	}
	h.eof = true
	if got == 0 {
		return 0, io.EOF
	}
	for i := got; i < (got+3)&^3; i++ {
		p[i] = 0
	}
	return (got + 3) &^ 3, nil
}
