package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"midp/kernel"
	"midp/lcdui"
	"midp/lcdui/sysfont"

	"tinygo.org/x/tinyfont"
)

// faultScreen renders a recovered handler fault as text on white, wrapped
// to the screen width and cut off at the bottom.
func faultScreen(w, h int, f kernel.Fault, count uint64) *lcdui.Image {
	img, err := lcdui.NewImage(w, h)
	if err != nil {
		return nil
	}
	g := img.Graphics()
	g.SetColor(0xFFFFFF)
	g.FillRect(0, 0, w, h)

	font := sysfont.New(1)
	fontHeight, fontOffset := int16(sysfont.Height), int16(sysfont.Ascent)
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outboxWidth)
	if fontWidth <= 0 {
		return img
	}

	lines := []string{
		fmt.Sprintf("Fault %d:", count),
		fmt.Sprintf("event: #%d %s", f.Seq, f.Event.Kind),
	}
	if f.Err != nil {
		lines = append(lines, fmt.Sprintf("error: %v", f.Err))
	} else {
		lines = append(lines, fmt.Sprintf("panic: %v", f.Value))
	}
	if len(f.Stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(f.Stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, strings.TrimSpace(line))
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	fg := color.RGBA{R: 0, G: 0, B: 0, A: 255}
	cols := max(int16(w)/fontWidth, 1)
	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if int(y+fontHeight) > h {
				return img
			}
			chunk, rest := takeRunes(line, cols)
			drawTextLine(g, font, fontWidth, fontOffset, 0, y, chunk, fg)
			y += fontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	return img
}

func drawTextLine(
	d *lcdui.Graphics,
	font tinyfont.Fonter,
	fontWidth, fontOffset int16,
	x0, y0 int16,
	s string,
	fg color.RGBA,
) {
	drawX := x0
	for _, r := range s {
		tinyfont.DrawChar(d, font, drawX, y0+fontOffset, r, fg)
		drawX += fontWidth
	}
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
