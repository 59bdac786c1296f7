package lcdui

import (
	"image"
	"sync"
)

// repaintQueue tracks a canvas's RepaintCanvas events that are queued but
// not yet delivered, so ServiceRepaints can paint them early and turn the
// events into no-ops.
type repaintQueue struct {
	mu      sync.Mutex
	region  image.Rectangle
	pending int
	skip    int
}

func (q *repaintQueue) add(x, y, w, h int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.region = q.region.Union(image.Rect(x, y, x+w, y+h))
	q.pending++
}

// deliver is called when one queued event reaches the canvas. It reports
// whether the event still has to paint.
func (q *repaintQueue) deliver() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending > 0 {
		q.pending--
	}
	if q.skip > 0 {
		q.skip--
		return false
	}
	if q.pending == q.skip {
		q.region = image.Rectangle{}
	}
	return true
}

// take claims every outstanding request. The events already queued for
// them are skipped on delivery.
func (q *repaintQueue) take() (image.Rectangle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == q.skip {
		return image.Rectangle{}, false
	}
	r := q.region
	q.region = image.Rectangle{}
	q.skip = q.pending
	return r, true
}
