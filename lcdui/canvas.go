package lcdui

import (
	"midp/kernel"
)

// Painter draws a canvas.
type Painter interface {
	Paint(g *Graphics)
}

// KeyListener receives key codes routed to a canvas.
type KeyListener interface {
	KeyPressed(code int)
	KeyReleased(code int)
}

type KeyRepeatListener interface {
	KeyRepeated(code int)
}

type PointerListener interface {
	PointerPressed(x, y int)
	PointerDragged(x, y int)
	PointerReleased(x, y int)
}

type VisibilityListener interface {
	ShowNotify()
	HideNotify()
}

type SizeListener interface {
	SizeChanged(w, h int)
}

// Canvas is a full-screen displayable painted by its owner. Each canvas
// keeps its own back buffer which is presented region by region.
type Canvas struct {
	display  *Display
	painter  Painter
	listener any
	img      *Image
	g        *Graphics
	title    string
	queued   repaintQueue
}

// NewCanvas creates a canvas painted by p. If p also implements any of the
// listener interfaces it receives those events.
func NewCanvas(d *Display, p Painter) *Canvas {
	c := &Canvas{display: d, painter: p, listener: p}
	c.fitScreen()
	return c
}

// SetListener replaces the input listener.
func (c *Canvas) SetListener(l any) { c.listener = l }

func (c *Canvas) Width() int  { return c.img.w }
func (c *Canvas) Height() int { return c.img.h }

func (c *Canvas) SetTitle(s string) { c.title = s }
func (c *Canvas) Title() string     { return c.title }

// Display returns the display the canvas belongs to.
func (c *Canvas) Display() *Display { return c.display }

// fitScreen reallocates the back buffer when the screen size changed.
func (c *Canvas) fitScreen() bool {
	w, h := c.display.host.ScreenSize()
	if c.img != nil && c.img.w == w && c.img.h == h {
		return false
	}
	img, err := NewImage(max(w, 1), max(h, 1))
	if err != nil {
		return false
	}
	resized := c.img != nil
	c.img = img
	c.g = img.Graphics()
	if s, ok := c.listener.(SizeListener); ok && resized {
		s.SizeChanged(img.w, img.h)
	}
	return true
}

func (c *Canvas) Repaint() { c.RepaintRegion(0, 0, c.img.w, c.img.h) }

// RepaintRegion paints now (immediate mode) or queues a RepaintCanvas event.
func (c *Canvas) RepaintRegion(x, y, w, h int) {
	if c.display.host.QueuedPaint() {
		c.queued.add(x, y, w, h)
		c.display.host.Dispatcher().Submit(kernel.Repaint(c, x, y, w, h))
		return
	}
	c.paint(x, y, w, h)
}

// ServiceRepaints paints every queued repaint request of the canvas before
// returning. The RepaintCanvas events already queued for them do nothing
// when they arrive. Immediate repaints are done by the time they return.
func (c *Canvas) ServiceRepaints() {
	if r, ok := c.queued.take(); ok {
		c.paint(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	}
}

// PaintRegion delivers a queued repaint. It is a no-op when
// ServiceRepaints already painted the request.
func (c *Canvas) PaintRegion(x, y, w, h int) {
	if c.queued.deliver() {
		c.paint(x, y, w, h)
	}
}

// paint paints the region and presents it if the canvas is current. The
// currency check and the paint happen under the dispatch lock.
func (c *Canvas) paint(x, y, w, h int) {
	c.display.locked(func() {
		if c.display.current != Displayable(c) {
			return
		}
		g := c.g
		g.tx, g.ty = 0, 0
		g.clip = c.img.Bounds()
		g.SetClip(x, y, w, h)
		g.SetColor(0)
		g.SetFont(nil)
		if c.painter != nil {
			c.painter.Paint(g)
		}
		c.display.host.Present(c.img, x, y, w, h)
	})
}

func (c *Canvas) KeyPressed(ke kernel.KeyEvent) {
	if l, ok := c.listener.(KeyListener); ok {
		l.KeyPressed(ke.PlatformCode)
	}
}

func (c *Canvas) KeyReleased(ke kernel.KeyEvent) {
	if l, ok := c.listener.(KeyListener); ok {
		l.KeyReleased(ke.PlatformCode)
	}
}

func (c *Canvas) KeyRepeated(ke kernel.KeyEvent) {
	if l, ok := c.listener.(KeyRepeatListener); ok {
		l.KeyRepeated(ke.PlatformCode)
	}
}

func (c *Canvas) PointerPressed(x, y int) {
	if l, ok := c.listener.(PointerListener); ok {
		l.PointerPressed(x, y)
	}
}

func (c *Canvas) PointerDragged(x, y int) {
	if l, ok := c.listener.(PointerListener); ok {
		l.PointerDragged(x, y)
	}
}

func (c *Canvas) PointerReleased(x, y int) {
	if l, ok := c.listener.(PointerListener); ok {
		l.PointerReleased(x, y)
	}
}

func (c *Canvas) ShowNotify() {
	c.fitScreen()
	if l, ok := c.listener.(VisibilityListener); ok {
		l.ShowNotify()
	}
}

func (c *Canvas) HideNotify() {
	if l, ok := c.listener.(VisibilityListener); ok {
		l.HideNotify()
	}
}

// GameCanvas is a canvas with an off-screen buffer flushed on demand.
type GameCanvas struct {
	*Canvas
	buf          *Image
	suppressKeys bool
}

type nopPainter struct{}

func (nopPainter) Paint(*Graphics) {}

// NewGameCanvas creates a game canvas. With suppressKeyEvents set, keys that
// map to game actions are not delivered to the listener.
func NewGameCanvas(d *Display, suppressKeyEvents bool) *GameCanvas {
	gc := &GameCanvas{suppressKeys: suppressKeyEvents}
	gc.Canvas = &Canvas{display: d, painter: nopPainter{}}
	gc.Canvas.fitScreen()
	gc.buf, _ = NewImage(gc.img.w, gc.img.h)
	return gc
}

// Graphics returns a new Graphics on the off-screen buffer.
func (gc *GameCanvas) Graphics() *Graphics { return gc.buf.Graphics() }

// Buffer returns the off-screen buffer.
func (gc *GameCanvas) Buffer() *Image { return gc.buf }

func (gc *GameCanvas) FlushGraphics() { gc.FlushGraphicsRegion(0, 0, gc.buf.w, gc.buf.h) }

// FlushGraphicsRegion copies the buffer region to the canvas and presents it.
// In queued mode this bypasses the queue and presents directly while the
// canvas is current.
func (gc *GameCanvas) FlushGraphicsRegion(x, y, w, h int) {
	d := gc.display
	if d.host.QueuedPaint() {
		d.locked(func() {
			gc.g.DrawImagePart(gc.buf, x, y, w, h)
			if d.current == Displayable(gc) {
				d.host.Present(gc.img, x, y, w, h)
			}
		})
		return
	}
	d.locked(func() { gc.g.DrawImagePart(gc.buf, x, y, w, h) })
	gc.RepaintRegion(x, y, w, h)
}

// KeyStates returns the pressed game-action bits.
func (gc *GameCanvas) KeyStates() int { return gc.display.host.KeyStates() }

// Repaint requests a full repaint of the game canvas.
func (gc *GameCanvas) Repaint() { gc.RepaintRegion(0, 0, gc.img.w, gc.img.h) }

// RepaintRegion is Canvas.RepaintRegion with the game canvas as the target.
func (gc *GameCanvas) RepaintRegion(x, y, w, h int) {
	if gc.display.host.QueuedPaint() {
		gc.queued.add(x, y, w, h)
		gc.display.host.Dispatcher().Submit(kernel.Repaint(gc, x, y, w, h))
		return
	}
	gc.paint(x, y, w, h)
}

// ServiceRepaints presents every queued repaint request before returning.
func (gc *GameCanvas) ServiceRepaints() {
	if r, ok := gc.queued.take(); ok {
		gc.paint(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	}
}

func (gc *GameCanvas) PaintRegion(x, y, w, h int) {
	if gc.queued.deliver() {
		gc.paint(x, y, w, h)
	}
}

// paint presents the region if the game canvas is current.
func (gc *GameCanvas) paint(x, y, w, h int) {
	d := gc.display
	d.locked(func() {
		if d.current == Displayable(gc) {
			d.host.Present(gc.img, x, y, w, h)
		}
	})
}

func (gc *GameCanvas) KeyPressed(ke kernel.KeyEvent) {
	if gc.suppressed(ke.NormalizedCode) {
		return
	}
	gc.Canvas.KeyPressed(ke)
}

func (gc *GameCanvas) KeyReleased(ke kernel.KeyEvent) {
	if gc.suppressed(ke.NormalizedCode) {
		return
	}
	gc.Canvas.KeyReleased(ke)
}

func (gc *GameCanvas) KeyRepeated(ke kernel.KeyEvent) {
	if gc.suppressed(ke.NormalizedCode) {
		return
	}
	gc.Canvas.KeyRepeated(ke)
}

func (gc *GameCanvas) suppressed(code int) bool {
	switch GameAction(code) {
	case ActionUp, ActionDown, ActionLeft, ActionRight, ActionFire, GameA, GameB, GameC, GameD:
		return gc.suppressKeys
	}
	return false
}

// ShowNotify resizes both buffers if the screen changed.
func (gc *GameCanvas) ShowNotify() {
	gc.fitScreen()
	if l, ok := gc.listener.(VisibilityListener); ok {
		l.ShowNotify()
	}
}

func (gc *GameCanvas) fitScreen() bool {
	if !gc.Canvas.fitScreen() {
		return false
	}
	buf, err := NewImage(gc.img.w, gc.img.h)
	if err == nil {
		buf.Graphics().DrawImage(gc.buf, 0, 0, Top|Left)
		gc.buf = buf
	}
	return true
}
