package media

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"midp/hal"

	"github.com/gopxl/beep"
)

func TestNotifyStopCallsInOrder(t *testing.T) {
	r := NewRegistry()
	var got []int
	r.Register(1, func() { got = append(got, 1) })
	r.Register(1, func() { got = append(got, 2) })
	r.Register(2, func() { got = append(got, 99) })

	if n := r.NotifyStop(1); n != 2 {
		t.Fatalf("NotifyStop() = %d, want 2", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("listeners ran %v, want [1 2]", got)
	}
}

func TestClosedListenersArePrunedOnDispatch(t *testing.T) {
	r := NewRegistry()
	calls := 0
	a := r.Register(7, func() { calls++ })
	r.Register(7, func() { calls++ })

	a.Close()
	if r.Len(7) != 2 {
		t.Fatalf("Len() before dispatch = %d, want 2", r.Len(7))
	}
	if n := r.NotifyStop(7); n != 1 || calls != 1 {
		t.Fatalf("NotifyStop() = %d with %d calls, want 1", n, calls)
	}
	if r.Len(7) != 1 {
		t.Fatalf("Len() after dispatch = %d, want 1", r.Len(7))
	}
}

func TestUnregisterDropsHandle(t *testing.T) {
	r := NewRegistry()
	r.Register(3, func() { t.Fatalf("listener of an unregistered handle ran") })
	r.Unregister(3)
	if n := r.NotifyStop(3); n != 0 {
		t.Fatalf("NotifyStop() = %d, want 0", n)
	}
}

func TestListenerMayCloseItself(t *testing.T) {
	r := NewRegistry()
	var reg *Registration
	reg = r.Register(4, func() { reg.Close() })
	r.NotifyStop(4)
	if n := r.NotifyStop(4); n != 0 {
		t.Fatalf("second NotifyStop() = %d, want 0", n)
	}
	if r.Len(4) != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len(4))
	}
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
	}
	for _, tt := range tests {
		if got := Frequency(tt.note); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("Frequency(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}

type constStreamer struct {
	v    float64
	left int
}

func (s *constStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.left == 0 {
		return 0, false
	}
	n := min(len(samples), s.left)
	for i := range samples[:n] {
		samples[i] = [2]float64{s.v, -s.v}
	}
	s.left -= n
	return n, true
}

func (s *constStreamer) Err() error { return nil }

func TestStreamReaderEncodes(t *testing.T) {
	tests := []struct {
		v    float64
		want int16
	}{
		{0.5, 16383},
		{2, 32767},
	}
	for _, tt := range tests {
		r := NewStreamReader(&constStreamer{v: tt.v, left: 3}, 44100)
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if len(data) != 12 {
			t.Fatalf("len(data) = %d, want 12", len(data))
		}
		l := int16(binary.LittleEndian.Uint16(data[0:]))
		rt := int16(binary.LittleEndian.Uint16(data[2:]))
		if l != tt.want || rt != -tt.want {
			t.Fatalf("v=%v: first frame = (%d, %d), want (%d, %d)", tt.v, l, rt, tt.want, -tt.want)
		}
	}
}

func TestGainSilence(t *testing.T) {
	s := Gain(&constStreamer{v: 1, left: 4}, 0)
	buf := make([][2]float64, 4)
	n, _ := s.Stream(buf)
	if n != 4 || buf[0][0] != 0 {
		t.Fatalf("silent stream = %d samples, first %v", n, buf[0])
	}

	s = Gain(&constStreamer{v: 1, left: 1}, 0.5)
	s.Stream(buf[:1])
	if math.Abs(buf[0][0]-0.5) > 1e-9 {
		t.Fatalf("half gain sample = %v, want 0.5", buf[0][0])
	}
}

// syncAudio reads every stream to the end on its own goroutine.
type syncAudio struct {
	mu     sync.Mutex
	bytes  int
	copied sync.WaitGroup
}

func (a *syncAudio) SampleRate() int { return 8000 }

func (a *syncAudio) Play(r io.Reader, _ float64) (hal.Voice, error) {
	a.copied.Add(1)
	go func() {
		defer a.copied.Done()
		n, _ := io.Copy(io.Discard, r)
		a.mu.Lock()
		a.bytes += int(n)
		a.mu.Unlock()
	}()
	return nopVoice{}, nil
}

type nopVoice struct{}

func (nopVoice) Close() error { return nil }

func waitStop(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("stop listener did not run")
	}
}

func TestPlayToneNotifiesStop(t *testing.T) {
	a := &syncAudio{}
	p := NewTonePlayer(a, NewRegistry(), nil)
	h := p.Prepare()
	done := make(chan struct{})
	p.Registry().Register(h, func() { close(done) })

	if err := p.Play(h, 69, 100*time.Millisecond, 80); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	waitStop(t, done)
	a.copied.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if want := beep.SampleRate(8000).N(100*time.Millisecond) * 4; a.bytes != want {
		t.Fatalf("streamed %d bytes, want %d", a.bytes, want)
	}
}

func TestMutedToneStillStops(t *testing.T) {
	a := &syncAudio{}
	p := NewTonePlayer(a, NewRegistry(), func() bool { return false })
	h := p.Prepare()
	done := make(chan struct{})
	p.Registry().Register(h, func() { close(done) })

	if err := p.Play(h, 60, 10*time.Millisecond, 100); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	waitStop(t, done)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bytes != 0 {
		t.Fatalf("muted tone streamed %d bytes", a.bytes)
	}
}

func TestPlayToneRejectsBadInput(t *testing.T) {
	p := NewTonePlayer(&syncAudio{}, NewRegistry(), nil)
	for _, note := range []int{-1, 128} {
		if _, err := p.PlayTone(note, time.Second, 50); !errors.Is(err, ErrBadTone) {
			t.Fatalf("PlayTone(%d) error = %v, want ErrBadTone", note, err)
		}
	}
	if _, err := p.PlayTone(60, 0, 50); !errors.Is(err, ErrBadTone) {
		t.Fatalf("PlayTone(0s) error = %v, want ErrBadTone", err)
	}
}
