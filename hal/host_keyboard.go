//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Held keys re-press after repeatDelay ticks and then every repeatInterval,
// which the platform reports as key repeats.
const (
	repeatDelay    = 30
	repeatInterval = 4
)

var windowKeys = []struct {
	eb  ebiten.Key
	key Key
}{
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
	{ebiten.KeyArrowLeft, KeyLeft},
	{ebiten.KeyArrowRight, KeyRight},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeySpace, KeySpace},
	{ebiten.KeyF1, KeyF1},
	{ebiten.KeyF2, KeyF2},
	{ebiten.KeyDigit0, Key0},
	{ebiten.KeyDigit1, Key1},
	{ebiten.KeyDigit2, Key2},
	{ebiten.KeyDigit3, Key3},
	{ebiten.KeyDigit4, Key4},
	{ebiten.KeyDigit5, Key5},
	{ebiten.KeyDigit6, Key6},
	{ebiten.KeyDigit7, Key7},
	{ebiten.KeyDigit8, Key8},
	{ebiten.KeyDigit9, Key9},
	{ebiten.KeyNumpad0, KeyNumpad0},
	{ebiten.KeyNumpad1, KeyNumpad1},
	{ebiten.KeyNumpad2, KeyNumpad2},
	{ebiten.KeyNumpad3, KeyNumpad3},
	{ebiten.KeyNumpad4, KeyNumpad4},
	{ebiten.KeyNumpad5, KeyNumpad5},
	{ebiten.KeyNumpad6, KeyNumpad6},
	{ebiten.KeyNumpad7, KeyNumpad7},
	{ebiten.KeyNumpad8, KeyNumpad8},
	{ebiten.KeyNumpad9, KeyNumpad9},
	{ebiten.KeyNumpadMultiply, KeyMultiply},
	{ebiten.KeyNumpadDivide, KeyDivide},
	{ebiten.KeyA, KeyA},
	{ebiten.KeyE, KeyE},
	{ebiten.KeyF, KeyF},
	{ebiten.KeyG, KeyG},
	{ebiten.KeyH, KeyH},
	{ebiten.KeyQ, KeyQ},
	{ebiten.KeyR, KeyR},
	{ebiten.KeyW, KeyW},
	{ebiten.KeyZ, KeyZ},
}

func pollKeys(sink InputSink) {
	for _, k := range windowKeys {
		switch {
		case inpututil.IsKeyJustPressed(k.eb):
			sink.KeyPressed(k.key)
		case inpututil.IsKeyJustReleased(k.eb):
			sink.KeyReleased(k.key)
		default:
			d := inpututil.KeyPressDuration(k.eb)
			if d > repeatDelay && (d-repeatDelay)%repeatInterval == 0 {
				sink.KeyPressed(k.key)
			}
		}
	}
}
