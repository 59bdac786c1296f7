package hal

import (
	"io"
	"sync"
	"time"
)

// DefaultSampleRate is the PCM rate every host plays at.
const DefaultSampleRate = 44100

// drainAudio consumes streams in real time without a sound device, so stream
// callbacks fire on the same schedule as they would on speakers.
type drainAudio struct {
	rate int
}

func newDrainAudio() drainAudio { return drainAudio{rate: DefaultSampleRate} }

func (a drainAudio) SampleRate() int { return a.rate }

func (a drainAudio) Play(r io.Reader, _ float64) (Voice, error) {
	v := &drainVoice{done: make(chan struct{})}
	go v.run(r, a.rate)
	return v, nil
}

type drainVoice struct {
	once sync.Once
	done chan struct{}
}

const drainPeriod = 10 * time.Millisecond

func (v *drainVoice) run(r io.Reader, rate int) {
	buf := make([]byte, 4*rate*int(drainPeriod/time.Millisecond)/1000)
	t := time.NewTicker(drainPeriod)
	defer t.Stop()
	for {
		select {
		case <-v.done:
			return
		case <-t.C:
			if _, err := io.ReadFull(r, buf); err != nil {
				return
			}
		}
	}
}

func (v *drainVoice) Close() error {
	v.once.Do(func() { close(v.done) })
	return nil
}
