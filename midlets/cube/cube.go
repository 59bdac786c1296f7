// Package cube is a built-in MIDlet that spins a lit cube through micro3d
// and draws a 2D frame counter over it on the same canvas.
package cube

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"midp/internal/logging"
	"midp/lcdui"
	"midp/micro3d"
	"midp/midlet"
	"midp/quarkgl"
)

// Class is the entry point name suites refer to.
const Class = "midp.demo.Cube"

func init() { midlet.Register(Class, New) }

const frameInterval = 33 * time.Millisecond

// Demo renders one figure per frame into a GameCanvas buffer.
type Demo struct {
	env    midlet.Env
	canvas *lcdui.GameCanvas
	render *micro3d.Render
	figure *micro3d.Figure

	mu     sync.Mutex
	orbit  quarkgl.Orbit
	spin   float32
	light  micro3d.Light
	frames int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func New(env midlet.Env) (midlet.MIDlet, error) {
	if env.Display == nil {
		return nil, errors.New("cube: no display")
	}
	if env.GL == nil {
		return nil, errors.New("cube: no GL on this host")
	}
	m, err := Model(40)
	if err != nil {
		return nil, fmt.Errorf("cube: %w", err)
	}
	return &Demo{
		env:    env,
		render: micro3d.NewRender(env.GL, env.TextureFilter),
		figure: micro3d.NewFigure(m),
		orbit:  quarkgl.Orbit{Radius: 160, Pitch: 0.4, MinRadius: 80, MaxRadius: 400},
		spin:   0.05,
		light:  micro3d.Light{Ambient: 1024, Directional: 12288, X: -2048, Y: -4096, Z: -4096},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Model builds a cube of half-size s with one colored lit quad per face.
func Model(s float32) (*micro3d.Model, error) {
	b := micro3d.NewModelBuilder(micro3d.ModelSpec{Vertices: 8, PolyC4: 6})
	for i := 0; i < 8; i++ {
		x, y, z := -s, -s, -s
		if i&1 != 0 {
			x = s
		}
		if i&2 != 0 {
			y = s
		}
		if i&4 != 0 {
			z = s
		}
		b.Vertex(x, y, z)
	}
	sign := func(bit int) float32 {
		if bit != 0 {
			return 1
		}
		return -1
	}
	for i := 0; i < 8; i++ {
		n := quarkgl.Normalize(quarkgl.V3(sign(i&1), sign(i&2), sign(i&4)))
		b.Normal(n.X, n.Y, n.Z)
	}
	faces := []struct {
		idx [4]int
		rgb [3]byte
	}{
		{[4]int{0, 2, 1, 3}, [3]byte{0xE0, 0x40, 0x40}}, // -z
		{[4]int{5, 7, 4, 6}, [3]byte{0x40, 0xE0, 0x40}}, // +z
		{[4]int{4, 6, 0, 2}, [3]byte{0x40, 0x40, 0xE0}}, // -x
		{[4]int{1, 3, 5, 7}, [3]byte{0xE0, 0xE0, 0x40}}, // +x
		{[4]int{4, 0, 5, 1}, [3]byte{0x40, 0xE0, 0xE0}}, // -y
		{[4]int{2, 6, 3, 7}, [3]byte{0xE0, 0x40, 0xE0}}, // +y
	}
	for _, f := range faces {
		b.Colored(micro3d.Polygon{Material: micro3d.Lighting | micro3d.DoubleFace, Indices: f.idx[:], Color: f.rgb})
	}
	return b.Build()
}

func (d *Demo) StartApp() error {
	d.canvas = lcdui.NewGameCanvas(d.env.Display, false)
	d.canvas.SetListener(d)
	d.env.Display.SetCurrent(d.canvas)
	go d.loop()
	return nil
}

func (d *Demo) DestroyApp(bool) error {
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.done
	d.render.Close()
	return nil
}

func (d *Demo) loop() {
	defer close(d.done)
	t := time.NewTicker(frameInterval)
	defer t.Stop()
	for {
		if err := d.Frame(); err != nil {
			logging.Logger().Error("cube: frame", "error", err)
			return
		}
		select {
		case <-d.stop:
			return
		case <-t.C:
		}
	}
}

// Frame advances the animation by one step and presents it.
func (d *Demo) Frame() error {
	d.mu.Lock()
	keys := d.canvas.KeyStates()
	if keys&lcdui.LeftPressed != 0 {
		d.orbit.Rotate(-0.08, 0)
	}
	if keys&lcdui.RightPressed != 0 {
		d.orbit.Rotate(0.08, 0)
	}
	if keys&lcdui.UpPressed != 0 {
		d.orbit.Rotate(0, 0.05)
	}
	if keys&lcdui.DownPressed != 0 {
		d.orbit.Rotate(0, -0.05)
	}
	d.orbit.Rotate(d.spin, 0)
	view := d.orbit.View()
	light := d.light
	d.frames++
	frames := d.frames
	d.mu.Unlock()

	g := d.canvas.Graphics()
	w, h := d.canvas.Width(), d.canvas.Height()
	g.SetColor(0x101828)
	g.FillRect(0, 0, w, h)

	if err := d.render.Bind(g); err != nil {
		return err
	}
	d.render.DrawFigure(d.figure, w/2, h/2, micro3d.Layout{
		View:       view,
		Projection: micro3d.ProjectPerspective,
		Near:       1,
		Far:        1000,
		FOV:        60,
	}, micro3d.Effect{Light: &light})
	d.render.Release(g)

	g.SetColor(0xFFFFFF)
	g.DrawString(fmt.Sprintf("frame %d", frames), 2, 2, lcdui.Top|lcdui.Left)
	d.canvas.FlushGraphics()
	return nil
}

// KeyPressed toggles the idle spin with fire and zooms with 1 and 3. The
// arrows are read from the key states each frame.
func (d *Demo) KeyPressed(code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch code {
	case lcdui.KeyNum5, lcdui.KeyFire:
		if d.spin == 0 {
			d.spin = 0.05
		} else {
			d.spin = 0
		}
	case lcdui.KeyNum1:
		d.orbit.Zoom(-20)
	case lcdui.KeyNum3:
		d.orbit.Zoom(20)
	}
}

func (d *Demo) KeyReleased(int) {}
