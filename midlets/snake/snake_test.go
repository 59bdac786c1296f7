package snake

import (
	"sync"
	"testing"
	"time"

	"midp/kernel"
	"midp/lcdui"
	"midp/midlet"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	g := &Game{cell: 10}
	g.initGame(200, 200)
	if !g.alive || len(g.snake) != 3 {
		t.Fatalf("initGame() alive=%v len=%d", g.alive, len(g.snake))
	}
	return g
}

func TestStepMovesAndWraps(t *testing.T) {
	g := newGame(t)
	g.food = point{x: -1, y: -1}
	head := g.snake[0]
	g.step()
	if g.snake[0] != (point{head.x + 1, head.y}) || len(g.snake) != 3 {
		t.Fatalf("after step head = %v len %d", g.snake[0], len(g.snake))
	}

	g.snake = []point{{g.gridW - 1, 0}, {g.gridW - 2, 0}}
	g.step()
	if g.snake[0] != (point{0, 0}) {
		t.Fatalf("wrapped head = %v, want (0, 0)", g.snake[0])
	}
}

func TestEatingGrows(t *testing.T) {
	g := newGame(t)
	head := g.snake[0]
	g.food = point{head.x + 1, head.y}
	g.step()
	if len(g.snake) != 4 || g.score != 1 {
		t.Fatalf("after eating len=%d score=%d, want 4 and 1", len(g.snake), g.score)
	}
	if g.occupied(g.food) {
		t.Fatalf("food respawned on the snake at %v", g.food)
	}
	if g.stepInterval() != stepIntervalBase-stepPerScore {
		t.Fatalf("stepInterval() = %v", g.stepInterval())
	}
}

func TestReverseIsIgnoredAndSelfHitKills(t *testing.T) {
	g := newGame(t)
	g.setDir(dirLeft)
	if g.nextDir != dirRight {
		t.Fatalf("reversing changed direction to %v", g.nextDir)
	}

	g.food = point{-1, -1}
	g.snake = []point{{5, 5}, {5, 6}, {4, 6}, {4, 5}, {4, 4}}
	g.headDir, g.nextDir = dirUp, dirLeft
	g.step()
	if g.alive {
		t.Fatalf("snake survived running into itself")
	}
}

type host struct {
	d *kernel.Dispatcher

	mu       sync.Mutex
	presents int
}

func (h *host) Dispatcher() *kernel.Dispatcher { return h.d }
func (h *host) QueuedPaint() bool              { return false }
func (h *host) KeyStates() int                 { return 0 }
func (h *host) ScreenSize() (int, int)         { return 120, 160 }
func (h *host) Present(*lcdui.Image, int, int, int, int) {
	h.mu.Lock()
	h.presents++
	h.mu.Unlock()
}

func (h *host) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presents
}

func TestStartPresentsFrames(t *testing.T) {
	h := &host{d: kernel.NewDispatcher(nil, nil, nil)}
	s := midlet.Builtin(Class)
	m, err := s.Start(midlet.Env{Display: lcdui.NewDisplay(h)})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.(midlet.Destroyer).DestroyApp(true)

	deadline := time.Now().Add(2 * time.Second)
	for h.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("presented %d frames, want at least 2", h.count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
