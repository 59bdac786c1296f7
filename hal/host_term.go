package hal

import (
	"context"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// TerminalConfig describes the terminal host.
type TerminalConfig struct {
	Width  int
	Height int
	Hz     int
	// Screen overrides the terminal, for example with a simulation screen.
	Screen tcell.Screen
}

// Terminals report presses only; a key counts as held until no press for
// it arrives within releaseAfter.
const releaseAfter = 150 * time.Millisecond

// Terminal renders frames with half-block cells, two pixels per cell.
type Terminal struct {
	*framebuffer
	cfg    TerminalConfig
	screen tcell.Screen
	audio  Audio

	frame *image.RGBA
	cells *image.RGBA
	fit   f64.Aff3
	held  map[Key]time.Time
	ptr   pointerState
}

func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	cfg.Width, cfg.Height = canvasSize(cfg.Width, cfg.Height)
	s := cfg.Screen
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return nil, err
		}
	}
	return &Terminal{
		framebuffer: newFramebuffer(cfg.Width, cfg.Height, 0),
		cfg:         cfg,
		screen:      s,
		audio:       newDrainAudio(),
		held:        make(map[Key]time.Time),
	}, nil
}

func (t *Terminal) Audio() Audio { return t.audio }

// Run returns nil when the user presses Ctrl-C.
func (t *Terminal) Run(ctx context.Context, sink InputSink) error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	defer t.screen.Fini()
	t.screen.EnableMouse()
	t.screen.HideCursor()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	tick := time.NewTicker(time.Second / time.Duration(t.cfg.Hz))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !t.handle(ev, sink) {
				return nil
			}
		case now := <-tick.C:
			t.release(now, sink)
			t.render()
		}
	}
}

func (t *Terminal) handle(ev tcell.Event, sink InputSink) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return false
		}
		k := termKey(ev)
		if k == KeyUnknown {
			return true
		}
		t.held[k] = ev.When()
		sink.KeyPressed(k)
	case *tcell.EventMouse:
		x, y := ev.Position()
		px, py := t.toCanvas(x, y)
		t.ptr.update(sink, ev.Buttons()&tcell.Button1 != 0, px, py)
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *Terminal) release(now time.Time, sink InputSink) {
	for k, at := range t.held {
		if now.Sub(at) >= releaseAfter {
			delete(t.held, k)
			sink.KeyReleased(k)
		}
	}
}

func termKey(ev *tcell.EventKey) Key {
	switch ev.Key() {
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyF1:
		return KeyF1
	case tcell.KeyF2:
		return KeyF2
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r >= '0' && r <= '9':
			return Key0 + Key(r-'0')
		case r == ' ':
			return KeySpace
		case r == '*':
			return KeyMultiply
		case r == '#', r == '/':
			return KeyDivide
		}
		return Letter(r)
	}
	return KeyUnknown
}

// toCanvas maps a cell position back through the fit transform.
func (t *Terminal) toCanvas(col, row int) (int, int) {
	s := t.fit[0]
	if s == 0 {
		return col, row
	}
	x := (float64(col) + 0.5 - t.fit[2]) / s
	y := (float64(row*2) + 1 - t.fit[5]) / s
	return int(x), int(y)
}

func (t *Terminal) render() {
	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	t.frame = t.snapshot(t.frame)
	fw, fh := t.frame.Bounds().Dx(), t.frame.Bounds().Dy()
	pw, ph := cols, rows*2
	if t.cells == nil || t.cells.Bounds().Dx() != pw || t.cells.Bounds().Dy() != ph {
		t.cells = image.NewRGBA(image.Rect(0, 0, pw, ph))
	} else {
		clear(t.cells.Pix)
	}

	s := min(float64(pw)/float64(fw), float64(ph)/float64(fh))
	ox := (float64(pw) - float64(fw)*s) / 2
	oy := (float64(ph) - float64(fh)*s) / 2
	t.fit = f64.Aff3{s, 0, ox, 0, s, oy}
	draw.ApproxBiLinear.Transform(t.cells, t.fit, t.frame, t.frame.Bounds(), draw.Src, nil)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := t.cells.RGBAAt(x, 2*y)
			bot := t.cells.RGBAAt(x, 2*y+1)
			st := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			t.screen.SetContent(x, y, '▀', nil, st)
		}
	}
	t.screen.Show()
}
