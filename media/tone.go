package media

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"midp/hal"
	"midp/internal/logging"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

var ErrBadTone = errors.New("media: tone out of range")

// Frequency returns the frequency of a MIDI note, 69 being A4 at 440 Hz.
func Frequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// TonePlayer plays Manager.playTone style sine tones. Each tone is a player
// whose stop listeners run when the tone ends.
type TonePlayer struct {
	audio   hal.Audio
	reg     *Registry
	enabled func() bool
	next    atomic.Uint64

	mu     sync.Mutex
	voices map[Handle]hal.Voice
}

// NewTonePlayer plays through a. enabled reports whether sound is on; when
// it returns false tones are silent but still stop on time.
func NewTonePlayer(a hal.Audio, reg *Registry, enabled func() bool) *TonePlayer {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &TonePlayer{audio: a, reg: reg, enabled: enabled, voices: make(map[Handle]hal.Voice)}
}

func (p *TonePlayer) Registry() *Registry { return p.reg }

// Prepare reserves a handle so listeners can be registered before the tone
// starts.
func (p *TonePlayer) Prepare() Handle { return Handle(p.next.Add(1)) }

// PlayTone plays note for d at volume 0..100 on a fresh handle.
func (p *TonePlayer) PlayTone(note int, d time.Duration, volume int) (Handle, error) {
	h := p.Prepare()
	return h, p.Play(h, note, d, volume)
}

// Play plays note on a handle from Prepare.
func (p *TonePlayer) Play(h Handle, note int, d time.Duration, volume int) error {
	if note < 0 || note > 127 || d <= 0 {
		return fmt.Errorf("%w: note %d for %v", ErrBadTone, note, d)
	}
	volume = max(0, min(volume, 100))

	if !p.enabled() || p.audio == nil {
		time.AfterFunc(d, func() { p.stopped(h) })
		return nil
	}

	sr := beep.SampleRate(p.audio.SampleRate())
	tone, err := generators.SineTone(sr, Frequency(note))
	if err != nil {
		return fmt.Errorf("media: tone %d: %w", note, err)
	}
	s := beep.Seq(
		Gain(beep.Take(sr.N(d), tone), float64(volume)/100),
		beep.Callback(func() { go p.stopped(h) }),
	)
	v, err := p.audio.Play(NewStreamReader(s, sr), 1)
	if err != nil {
		return fmt.Errorf("media: play tone: %w", err)
	}
	p.mu.Lock()
	p.voices[h] = v
	p.mu.Unlock()
	logging.Logger().Debug("media: tone", "handle", uint64(h), "note", note, "duration", d, "volume", volume)
	return nil
}

// Close stops h early and drops its listeners without notifying them.
func (p *TonePlayer) Close(h Handle) {
	p.mu.Lock()
	v := p.voices[h]
	delete(p.voices, h)
	p.mu.Unlock()
	if v != nil {
		v.Close()
	}
	p.reg.Unregister(h)
}

func (p *TonePlayer) stopped(h Handle) {
	p.mu.Lock()
	delete(p.voices, h)
	p.mu.Unlock()
	p.reg.NotifyStop(h)
}

// Gain scales s linearly. Zero is silence.
func Gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}

// StreamReader encodes a beep stream as 16-bit little-endian stereo PCM.
type StreamReader struct {
	s   beep.Streamer
	pcm beep.Format
	buf [][2]float64
	eof bool
}

func NewStreamReader(s beep.Streamer, sr beep.SampleRate) *StreamReader {
	return &StreamReader{s: s, pcm: beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	if r.eof {
		return 0, io.EOF
	}
	width := r.pcm.Width()
	frames := len(p) / width
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]
	n, ok := r.s.Stream(buf)
	for i := 0; i < n; i++ {
		r.pcm.EncodeSigned(p[i*width:], buf[i])
	}
	if !ok || n == 0 {
		r.eof = true
		if n == 0 {
			if err := r.s.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
	}
	return n * width, nil
}
