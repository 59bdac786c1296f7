// Package mobile is the runtime context a MIDlet runs in: the LCD, the event
// dispatcher, key mapping and key state, system properties and the painter
// that moves finished frames to the host screen.
package mobile

import (
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"midp/config"
	"midp/hal"
	"midp/internal/logging"
	"midp/kernel"
	"midp/lcdui"

	"tinygo.org/x/drivers"
)

// ErrPlatformExists is returned by New while another Platform is open.
var ErrPlatformExists = errors.New("mobile: platform already exists")

var live atomic.Bool

// Deps are the outside collaborators of a Platform. All are optional.
type Deps struct {
	Screen hal.Screen
	// Save persists settings changed from the overlay.
	Save func(config.Settings) error
	// Exit is called when the user picks Exit in the overlay.
	Exit func()
}

// Platform is the single process-wide runtime context.
type Platform struct {
	deps    Deps
	disp    *kernel.Dispatcher
	display *lcdui.Display
	overlay *overlay

	mu        sync.Mutex
	settings  config.Settings
	overrides map[string]string
	props     map[string]string
	appProps  map[string]string
	pressed   [128]bool

	paintMu sync.Mutex
	lcd     *lcdui.Image
	gc      *lcdui.Graphics
	frame   *lcdui.Image

	keyState atomic.Int32
	closed   atomic.Bool

	sleep func(time.Duration)
}

// New creates the platform. Only one may be open at a time.
func New(cfg config.Config, deps Deps) (*Platform, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("mobile: %w", err)
	}
	if !live.CompareAndSwap(false, true) {
		return nil, ErrPlatformExists
	}

	p := &Platform{
		deps:      deps,
		overrides: maps.Clone(cfg.SystemProperties),
		props:     make(map[string]string),
		appProps:  maps.Clone(cfg.AppProperties),
		sleep:     time.Sleep,
	}
	p.disp = kernel.NewDispatcher(nil, nil, p)
	p.display = lcdui.NewDisplay(p)
	p.overlay = newOverlay(p)

	for k, v := range p.overrides {
		p.props[k] = v
	}
	for _, kv := range defaultProperties {
		p.addSystemProperty(kv[0], kv[1])
	}

	s := cfg.Settings
	lcdui.SetFontScale(fontScale(s.FontSize, s.Width, s.Height))
	p.resizeLCD(s.Width, s.Height)
	p.SettingsChanged(s)

	logging.Logger().Info("platform started",
		"width", s.Width, "height", s.Height, "phone", s.Phone, "queued_paint", s.QueuedPaint)
	return p, nil
}

// Close releases the process-wide slot. The dispatcher is stopped by
// cancelling the context passed to its Run.
func (p *Platform) Close() error {
	if p.closed.CompareAndSwap(false, true) {
		live.Store(false)
	}
	return nil
}

func (p *Platform) Dispatcher() *kernel.Dispatcher { return p.disp }
func (p *Platform) Display() *lcdui.Display        { return p.display }

// Settings returns the active settings.
func (p *Platform) Settings() config.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

func (p *Platform) QueuedPaint() bool { return p.Settings().QueuedPaint }

// KeyStates is the GameCanvas key-state mask.
func (p *Platform) KeyStates() int { return int(p.keyState.Load()) }

// ScreenSize is the LCD size the application draws to.
func (p *Platform) ScreenSize() (int, int) {
	p.paintMu.Lock()
	defer p.paintMu.Unlock()
	return p.lcd.Width(), p.lcd.Height()
}

// AppProperty returns a configured application property.
func (p *Platform) AppProperty(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.appProps[key]
	return v, ok
}

// AppProperties returns a copy of the configured application properties.
func (p *Platform) AppProperties() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.appProps)
}

// Rotation is the rotation the painter applies to the LCD.
func (p *Platform) Rotation() drivers.Rotation {
	if p.Settings().Rotate {
		return drivers.Rotation270
	}
	return drivers.Rotation0
}

// HandleEvent runs one dispatched event. It is called with the dispatch lock
// held.
func (p *Platform) HandleEvent(ev kernel.Event) error {
	switch ev.Kind {
	case kernel.KeyPressed:
		if ev.Key.PlatformCode != 0 {
			p.updateKeyState(ev.Key.NormalizedCode, true)
		}
		p.display.Route(ev)
	case kernel.KeyReleased:
		if ev.Key.PlatformCode != 0 {
			p.updateKeyState(ev.Key.NormalizedCode, false)
		}
		p.display.Route(ev)
	case kernel.KeyRepeated, kernel.PointerPressed, kernel.PointerDragged, kernel.PointerReleased:
		p.display.Route(ev)
	case kernel.RepaintCanvas:
		if ev.Target != nil {
			r := ev.Region
			ev.Target.PaintRegion(r.X, r.Y, r.W, r.H)
		}
	case kernel.Run:
		if ev.Fn != nil {
			ev.Fn()
		}
	default:
		return fmt.Errorf("mobile: unknown event %v", ev.Kind)
	}
	return nil
}

func (p *Platform) updateKeyState(code int, pressed bool) {
	mask := int32(keyStateBit(code))
	if mask == 0 {
		return
	}
	for {
		old := p.keyState.Load()
		next := old &^ mask
		if pressed {
			next |= mask
		}
		if p.keyState.CompareAndSwap(old, next) {
			return
		}
	}
}

func (p *Platform) keyEvent(k hal.Key) kernel.KeyEvent {
	phone := p.Settings().Phone
	code := MobileKey(phone, k)
	return kernel.KeyEvent{Code: int(k), PlatformCode: code, NormalizedCode: NormalizeKey(phone, code)}
}

// KeyPressed takes a host key press. Esc drops pending events and opens the
// settings overlay; a second press of a held key is reported as a repeat.
func (p *Platform) KeyPressed(k hal.Key) {
	ke := p.keyEvent(k)
	if p.overlay.running() {
		p.overlay.keyPressed(ke)
		return
	}
	if k == hal.KeyEscape {
		p.disp.Drop()
		p.overlay.start()
		return
	}

	idx := (ke.PlatformCode + 64) & 0x7F
	p.mu.Lock()
	repeat := p.pressed[idx]
	if ke.PlatformCode != 0 {
		p.pressed[idx] = true
	}
	p.mu.Unlock()

	kind := kernel.KeyPressed
	if repeat {
		kind = kernel.KeyRepeated
	}
	p.disp.Submit(kernel.Key(kind, ke))
}

func (p *Platform) KeyReleased(k hal.Key) {
	if p.overlay.running() {
		return
	}
	ke := p.keyEvent(k)
	if ke.PlatformCode != 0 {
		p.mu.Lock()
		p.pressed[(ke.PlatformCode+64)&0x7F] = false
		p.mu.Unlock()
	}
	p.disp.Submit(kernel.Key(kernel.KeyReleased, ke))
}

func (p *Platform) PointerPressed(x, y int) { p.pointer(kernel.PointerPressed, x, y) }
func (p *Platform) PointerDragged(x, y int) { p.pointer(kernel.PointerDragged, x, y) }
func (p *Platform) PointerReleased(x, y int) {
	p.pointer(kernel.PointerReleased, x, y)
}

func (p *Platform) pointer(kind kernel.Kind, x, y int) {
	if p.overlay.running() {
		return
	}
	if p.Settings().Rotate {
		x, y = y, x
	}
	p.disp.Submit(kernel.Pointer(kind, x, y))
}

// RunMIDlet calls start. A failure is logged and replaces the screen with
// the crash frame.
func (p *Platform) RunMIDlet(start func() error) error {
	err := start()
	if err == nil {
		return nil
	}
	logging.Logger().Error("error running midlet", "error", err)

	p.paintMu.Lock()
	w, h := p.lcd.Width(), p.lcd.Height()
	p.gc.SetClip(0, 0, w, h)
	p.gc.SetColor(0x000080)
	p.gc.FillRect(0, 0, w, h)
	p.gc.SetColor(0xFFFFFF)
	p.gc.DrawString("Game crashed :(", w/2, h/2, lcdui.HCenter|lcdui.VCenter)
	p.paintMu.Unlock()
	p.paint()
	return err
}

var _ lcdui.Host = (*Platform)(nil)
var _ hal.InputSink = (*Platform)(nil)
var _ kernel.Handler = (*Platform)(nil)
