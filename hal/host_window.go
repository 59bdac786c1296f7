//go:build cgo

package hal

import (
	"context"
	"image"

	"midp/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// WindowConfig describes the desktop window host.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	Scale  int
	// Depth 16 reduces presented frames to RGB565.
	Depth int
}

// Window is a desktop window that displays presented frames and forwards
// keyboard and mouse input.
type Window struct {
	*framebuffer
	cfg   WindowConfig
	audio Audio
}

// NewWindow creates the window host. The window opens on Run.
func NewWindow(cfg WindowConfig) (Host, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	cfg.Width, cfg.Height = canvasSize(cfg.Width, cfg.Height)
	return &Window{
		framebuffer: newFramebuffer(cfg.Width, cfg.Height, cfg.Depth),
		cfg:         cfg,
		audio:       newHostAudio(),
	}, nil
}

func (w *Window) Audio() Audio { return w.audio }

// Run blocks until the window closes or ctx is done.
func (w *Window) Run(ctx context.Context, sink InputSink) error {
	width, height := w.size()
	g := &hostGame{ctx: ctx, w: w, sink: sink, width: width, height: height}
	ebiten.SetWindowTitle(buildinfo.Title(w.cfg.Title))
	ebiten.SetWindowSize(width*w.cfg.Scale, height*w.cfg.Scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	ctx  context.Context
	w    *Window
	sink InputSink

	width, height int
	img           *image.RGBA
	fbImg         *ebiten.Image
	ptr           pointerState
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if w, h := g.w.size(); w != g.width || h != g.height {
		g.width, g.height = w, h
		ebiten.SetWindowSize(w*g.w.cfg.Scale, h*g.w.cfg.Scale)
	}
	pollKeys(g.sink)
	g.pollPointer()
	return nil
}

func (g *hostGame) pollPointer() {
	x, y := ebiten.CursorPosition()
	g.ptr.update(g.sink, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), x, y)
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	g.img = g.w.snapshot(g.img)
	b := g.img.Bounds()
	if g.fbImg == nil || g.fbImg.Bounds().Dx() != b.Dx() || g.fbImg.Bounds().Dy() != b.Dy() {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
