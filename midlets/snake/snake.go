// Package snake is a built-in MIDlet: the classic snake game on a
// GameCanvas.
package snake

import (
	"fmt"
	"sync"
	"time"

	"midp/internal/logging"
	"midp/lcdui"
	"midp/midlet"
)

// Class is the entry point name suites refer to.
const Class = "midp.demo.Snake"

func init() { midlet.Register(Class, New) }

type dir uint8

const (
	dirUp dir = iota
	dirRight
	dirDown
	dirLeft
)

type point struct {
	x int
	y int
}

const (
	stepIntervalBase = 220 * time.Millisecond
	stepIntervalMin  = 80 * time.Millisecond
	stepPerScore     = 5 * time.Millisecond
)

// Game is the snake MIDlet. Keys arrive on the event goroutine while the
// game loop runs on its own, so state is guarded by mu.
type Game struct {
	env    midlet.Env
	canvas *lcdui.GameCanvas

	mu      sync.Mutex
	cell    int
	top     int
	gridW   int
	gridH   int
	snake   []point
	headDir dir
	nextDir dir
	food    point
	rng     uint32
	score   int
	alive   bool
	paused  bool
	dirty   bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func New(env midlet.Env) (midlet.MIDlet, error) {
	if env.Display == nil {
		return nil, fmt.Errorf("snake: no display")
	}
	return &Game{env: env, cell: 10, stop: make(chan struct{}), done: make(chan struct{})}, nil
}

func (g *Game) StartApp() error {
	g.canvas = lcdui.NewGameCanvas(g.env.Display, false)
	g.canvas.SetListener(g)
	g.mu.Lock()
	g.initGame(g.canvas.Width(), g.canvas.Height())
	g.mu.Unlock()
	g.env.Display.SetCurrent(g.canvas)
	go g.loop()
	return nil
}

func (g *Game) DestroyApp(bool) error {
	g.stopOnce.Do(func() { close(g.stop) })
	<-g.done
	return nil
}

func (g *Game) loop() {
	defer close(g.done)
	g.render()
	last := time.Now()
	t := time.NewTicker(20 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-g.stop:
			return
		case now := <-t.C:
			g.mu.Lock()
			if g.alive && !g.paused && now.Sub(last) >= g.stepInterval() {
				last = now
				g.step()
				g.dirty = true
			}
			dirty := g.dirty
			g.dirty = false
			g.mu.Unlock()
			if dirty {
				g.render()
			}
		}
	}
}

// KeyPressed steers with the game actions; 5 or fire pauses and 0 restarts.
// Only the game loop draws, so a key just marks the frame dirty.
func (g *Game) KeyPressed(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty = true
	switch lcdui.GameAction(code) {
	case lcdui.ActionUp:
		g.setDir(dirUp)
	case lcdui.ActionDown:
		g.setDir(dirDown)
	case lcdui.ActionLeft:
		g.setDir(dirLeft)
	case lcdui.ActionRight:
		g.setDir(dirRight)
	case lcdui.ActionFire:
		g.paused = !g.paused
	default:
		if code == lcdui.KeyNum0 || code == lcdui.KeyStar {
			g.initGame(g.canvas.Width(), g.canvas.Height())
		}
	}
}

func (g *Game) KeyReleased(int) {}

func (g *Game) setDir(d dir) {
	if !g.alive {
		return
	}
	if (g.headDir == dirUp && d == dirDown) ||
		(g.headDir == dirDown && d == dirUp) ||
		(g.headDir == dirLeft && d == dirRight) ||
		(g.headDir == dirRight && d == dirLeft) {
		return
	}
	g.nextDir = d
}

func (g *Game) stepInterval() time.Duration {
	return max(stepIntervalBase-time.Duration(g.score)*stepPerScore, stepIntervalMin)
}

func (g *Game) initGame(w, h int) {
	g.top = lcdui.DefaultFont().Height() + 2
	g.gridW = w / g.cell
	g.gridH = (h - 2*g.top) / g.cell
	if g.gridW < 8 || g.gridH < 8 {
		g.cell = 4
		g.gridW = w / g.cell
		g.gridH = max((h-2*g.top)/g.cell, 1)
	}
	start := point{x: g.gridW / 2, y: g.gridH / 2}
	g.snake = []point{
		start,
		{x: start.x - 1, y: start.y},
		{x: start.x - 2, y: start.y},
	}
	g.headDir = dirRight
	g.nextDir = dirRight
	g.score = 0
	g.alive = true
	g.paused = false
	g.rng = 0x12345678
	g.spawnFood()
}

func (g *Game) step() {
	if !g.alive || len(g.snake) == 0 {
		return
	}
	g.headDir = g.nextDir
	next := g.snake[0]
	switch g.headDir {
	case dirUp:
		next.y--
	case dirDown:
		next.y++
	case dirLeft:
		next.x--
	case dirRight:
		next.x++
	}
	next.x = (next.x + g.gridW) % g.gridW
	next.y = (next.y + g.gridH) % g.gridH

	willEat := next == g.food
	check := g.snake
	if !willEat && len(check) > 1 {
		check = check[:len(check)-1]
	}
	for _, p := range check {
		if p == next {
			g.alive = false
			g.tone(48, 400*time.Millisecond)
			logging.Logger().Debug("snake: game over", "score", g.score)
			return
		}
	}

	g.snake = append([]point{next}, g.snake...)
	if willEat {
		g.score++
		g.tone(76, 60*time.Millisecond)
		g.spawnFood()
		return
	}
	g.snake = g.snake[:len(g.snake)-1]
}

func (g *Game) tone(note int, d time.Duration) {
	if g.env.Tones == nil {
		return
	}
	if _, err := g.env.Tones.PlayTone(note, d, 60); err != nil {
		logging.Logger().Warn("snake: tone", "error", err)
	}
}

func (g *Game) spawnFood() {
	for tries := 0; tries < 1024; tries++ {
		g.rng = xorshift32(g.rng)
		x := int(g.rng % uint32(g.gridW))
		g.rng = xorshift32(g.rng)
		y := int(g.rng % uint32(g.gridH))
		p := point{x: x, y: y}
		if !g.occupied(p) {
			g.food = p
			return
		}
	}
	g.food = point{}
}

func (g *Game) occupied(p point) bool {
	for _, s := range g.snake {
		if s == p {
			return true
		}
	}
	return false
}

func xorshift32(x uint32) uint32 {
	if x == 0 {
		x = 0x6d2b79f5
	}
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return x
}

func (g *Game) render() {
	gc := g.canvas.Graphics()
	w, h := g.canvas.Width(), g.canvas.Height()

	g.mu.Lock()
	gc.SetColor(0x000000)
	gc.FillRect(0, 0, w, h)

	gc.SetColor(0xEEEEEE)
	gc.DrawString(fmt.Sprintf("SNAKE %d", g.score), 0, 0, lcdui.Top|lcdui.Left)
	msg := ""
	if !g.alive {
		msg = "GAME OVER (0)"
	} else if g.paused {
		msg = "PAUSED"
	}
	if msg != "" {
		gc.SetColor(0xFFD14A)
		gc.DrawString(msg, w/2, h-1, lcdui.Bottom|lcdui.HCenter)
	}

	gc.SetColor(0xFF5050)
	g.fillCell(gc, g.food)
	for i, p := range g.snake {
		if i == 0 {
			gc.SetColor(0x50D1FF)
		} else {
			gc.SetColor(0x50FF50)
		}
		g.fillCell(gc, p)
	}
	g.mu.Unlock()

	g.canvas.FlushGraphics()
}

func (g *Game) fillCell(gc *lcdui.Graphics, p point) {
	gc.FillRect(p.x*g.cell, g.top+p.y*g.cell, g.cell-1, g.cell-1)
}
