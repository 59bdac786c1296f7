// Package hal is the boundary between the runtime and the machine it runs on:
// a screen to present frames to, keyboard and pointer input, and PCM audio.
package hal

import (
	"context"
	"errors"
	"image"
	"io"
)

var ErrNotImplemented = errors.New("not implemented")

// Key is a host key code. Values follow the AWT virtual key numbering so the
// phone keysets can be expressed the same way on every host.
type Key int32

const (
	KeyUnknown Key = 0
	KeyEnter   Key = 10
	KeyEscape  Key = 27
	KeySpace   Key = 32
	KeyLeft    Key = 37
	KeyUp      Key = 38
	KeyRight   Key = 39
	KeyDown    Key = 40

	Key0 Key = 48
	Key1 Key = 49
	Key2 Key = 50
	Key3 Key = 51
	Key4 Key = 52
	Key5 Key = 53
	Key6 Key = 54
	Key7 Key = 55
	Key8 Key = 56
	Key9 Key = 57

	KeyA Key = 65
	KeyE Key = 69
	KeyF Key = 70
	KeyG Key = 71
	KeyH Key = 72
	KeyQ Key = 81
	KeyR Key = 82
	KeyW Key = 87
	KeyZ Key = 90

	KeyNumpad0  Key = 96
	KeyNumpad1  Key = 97
	KeyNumpad2  Key = 98
	KeyNumpad3  Key = 99
	KeyNumpad4  Key = 100
	KeyNumpad5  Key = 101
	KeyNumpad6  Key = 102
	KeyNumpad7  Key = 103
	KeyNumpad8  Key = 104
	KeyNumpad9  Key = 105
	KeyMultiply Key = 106
	KeyDivide   Key = 111

	KeyF1 Key = 112
	KeyF2 Key = 113
)

// Letter returns the key for an ASCII letter, either case.
func Letter(r rune) Key {
	switch {
	case r >= 'a' && r <= 'z':
		return Key('A' + r - 'a')
	case r >= 'A' && r <= 'Z':
		return Key(r)
	}
	return KeyUnknown
}

// InputSink receives host input. Calls come from the host goroutine and must
// not block for long.
type InputSink interface {
	KeyPressed(k Key)
	KeyReleased(k Key)
	PointerPressed(x, y int)
	PointerDragged(x, y int)
	PointerReleased(x, y int)
}

// Screen shows finished frames.
type Screen interface {
	// SetCanvasSize sets the logical size of presented frames.
	SetCanvasSize(w, h int)
	// Present copies img into the host frame. Safe from any goroutine.
	Present(img image.Image)
}

// Audio plays PCM streams of signed 16-bit little-endian stereo frames.
type Audio interface {
	SampleRate() int
	// Play starts reading r until it returns an error or the voice is closed.
	Play(r io.Reader, volume float64) (Voice, error)
}

// Voice is one playing stream.
type Voice interface {
	Close() error
}

// Host is a complete machine: a screen, audio, and an input loop.
type Host interface {
	Screen
	Audio() Audio
	// Run delivers input to sink until ctx is done or the user closes the host.
	Run(ctx context.Context, sink InputSink) error
}
