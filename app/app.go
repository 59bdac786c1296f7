// Package app wires a host, the platform and a MIDlet suite into a running
// system.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"midp/config"
	"midp/hal"
	"midp/hal/gles"
	"midp/internal/logging"
	"midp/kernel"
	"midp/media"
	"midp/midlet"
	"midp/mobile"
	"midp/quarkgl"
)

// Config is what the system is started with.
type Config struct {
	Runtime config.Config
	// ConfigPath receives settings changed at runtime. Empty disables saving.
	ConfigPath string
	Suite      *midlet.Suite
	// GL backs 3D rendering; nil gets a software device.
	GL gles.GL
	// ShowFaults draws recovered event handler faults over the LCD.
	ShowFaults bool
}

// System is one running MIDlet with its platform.
type System struct {
	cfg      Config
	host     hal.Host
	platform *mobile.Platform
	tones    *media.TonePlayer
	gl       gles.GL

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	midlet atomic.Pointer[midlet.MIDlet]
	faults atomic.Uint64
}

// New creates the platform on h. Only one System may exist at a time.
func New(h hal.Host, cfg Config) (*System, error) {
	if cfg.Suite == nil {
		return nil, errors.New("app: no suite")
	}
	s := &System{cfg: cfg, host: h}

	// The suite's descriptor attributes are visible to the MIDlet, with
	// configured app properties taking precedence.
	if len(cfg.Runtime.AppProperties) > 0 {
		cfg.Suite.SetProperties(cfg.Runtime.AppProperties)
	}
	if m := cfg.Runtime.Settings.Main; m != "" {
		cfg.Suite.SetClass(m)
	}

	p, err := mobile.New(cfg.Runtime, mobile.Deps{
		Screen: h,
		Save:   s.save,
		Exit:   s.exit,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	s.platform = p
	p.Dispatcher().OnFault(s.onFault)

	s.tones = media.NewTonePlayer(h.Audio(), media.NewRegistry(), func() bool {
		return p.Settings().Sound
	})

	s.gl = cfg.GL
	if s.gl == nil {
		w, hh := p.ScreenSize()
		s.gl = quarkgl.NewDevice(w, hh)
	}
	return s, nil
}

func (s *System) Platform() *mobile.Platform { return s.platform }

// Faults is the number of handler faults recovered so far.
func (s *System) Faults() uint64 { return s.faults.Load() }

// Run starts the MIDlet and blocks until ctx is done, the host closes or
// the user exits. A MIDlet that fails to start leaves the crash frame on
// screen; it does not end the run.
func (s *System) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.platform.Dispatcher().Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		err := s.host.Run(ctx, s.platform)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		s.platform.RunMIDlet(s.start)
		return nil
	})

	err := g.Wait()
	s.destroy()
	s.platform.Close()
	logging.Logger().Info("system stopped", "faults", s.faults.Load())
	return err
}

func (s *System) start() error {
	m, err := s.cfg.Suite.Start(midlet.Env{
		Display:       s.platform.Display(),
		Tones:         s.tones,
		GL:            s.gl,
		TextureFilter: s.cfg.Runtime.Settings.TextureFilter,
		Exit:          s.exit,
	})
	if m != nil {
		s.midlet.Store(&m)
	}
	return err
}

func (s *System) destroy() {
	p := s.midlet.Swap(nil)
	if p == nil {
		return
	}
	if d, ok := (*p).(midlet.Destroyer); ok {
		if err := d.DestroyApp(true); err != nil {
			logging.Logger().Warn("destroy midlet", "error", err)
		}
	}
}

func (s *System) exit() {
	s.cancelMu.Lock()
	cancel := s.cancel
	s.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *System) save(st config.Settings) error {
	if s.cfg.ConfigPath == "" {
		return nil
	}
	c := s.cfg.Runtime
	c.Settings = st
	return config.Save(s.cfg.ConfigPath, c)
}

func (s *System) onFault(f kernel.Fault) {
	n := s.faults.Add(1)
	if !s.cfg.ShowFaults {
		return
	}
	w, h := s.platform.ScreenSize()
	img := faultScreen(w, h, f, n)
	if img != nil {
		s.platform.Present(img, 0, 0, w, h)
	}
}
