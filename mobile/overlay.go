package mobile

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"midp/config"
	"midp/hal"
	"midp/internal/logging"
	"midp/kernel"
	"midp/lcdui"
)

type menuItem struct {
	id, label string
}

func items(ids ...string) []menuItem {
	out := make([]menuItem, len(ids))
	for i, id := range ids {
		out[i] = menuItem{id: id, label: id}
	}
	return out
}

var menus = map[string][]menuItem{
	"main": {
		{"back", "Return to Game"},
		{"size", "Display Size"},
		{"sound", "Sound"},
		{"fps", "Limit FPS"},
		{"phone", "Phone"},
		{"compat", "Compatibility"},
		{"rotate", "Rotate"},
		{"exit", "Exit"},
	},
	"size": items("96x65", "96x96", "104x80", "128x128", "132x176", "128x160", "176x208", "176x220",
		"208x208", "240x320", "320x240", "240x400", "352x416", "360x640", "640x360", "480x800", "800x480"),
	"rotate": items("On", "Off"),
	"phone": items(string(config.PhoneStandard), string(config.PhoneNokia), string(config.PhoneSiemens),
		string(config.PhoneMotorola), string(config.PhoneSonyEricsson)),
	"compat": {
		{"forceFullscreen", "Force fullscreen canvas"},
		{"queuedPaint", "Queue repaint calls"},
		{"dgFormat", "DG native format"},
	},
	"compat/dgFormat": {
		{"444", "444 RGB"},
		{"4444", "4444 ARGB (default)"},
		{"565", "565 RGB"},
		{"888", "888 RGB"},
		{"8888", "8888 RGB"},
	},
	"fps": {
		{"0", "Auto"},
		{"60", "60 - Fast"},
		{"30", "30 - Slow"},
		{"15", "15 - Turtle"},
	},
}

var menuTitles = map[string]string{
	"main":            "Game Options",
	"size":            "Screen Size",
	"rotate":          "Rotate",
	"phone":           "Phone type",
	"compat":          "Compatibility flags",
	"compat/dgFormat": "DirectGraphics pixel format",
	"fps":             "Max FPS",
}

// overlay is the modal settings screen opened with Esc. While it runs the
// painter shows its image instead of the LCD and input goes only to it.
type overlay struct {
	p *Platform

	mu   sync.Mutex
	on   bool
	img  *lcdui.Image
	g    *lcdui.Graphics
	menu string
	item int
}

func newOverlay(p *Platform) *overlay {
	return &overlay{p: p, menu: "main"}
}

func (o *overlay) running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.on
}

// present shows the overlay if it is open and reports whether it did.
func (o *overlay) present() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.on {
		return false
	}
	if s := o.p.deps.Screen; s != nil && o.img != nil {
		s.Present(o.img)
	}
	return true
}

// resize matches the overlay image to the host canvas.
func (o *overlay) resize() {
	w, h := o.p.Settings().CanvasSize()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.img != nil && o.img.Width() == w && o.img.Height() == h {
		return
	}
	img, err := lcdui.NewImage(w, h)
	if err != nil {
		return
	}
	o.img = img
	o.g = img.Graphics()
}

func (o *overlay) start() {
	o.mu.Lock()
	o.on = true
	o.menu, o.item = "main", 0
	o.mu.Unlock()
	logging.Logger().Debug("settings overlay opened")
	o.render()
}

func (o *overlay) stop() {
	o.mu.Lock()
	o.on = false
	o.mu.Unlock()
	o.p.paint()
}

func (o *overlay) keyPressed(ke kernel.KeyEvent) {
	o.mu.Lock()
	switch {
	case ke.NormalizedCode == NokiaUp:
		o.item--
	case ke.NormalizedCode == NokiaDown:
		o.item++
	case ke.NormalizedCode == NokiaSoft1 || hal.Key(ke.Code) == hal.KeyEscape:
		if o.menu == "main" {
			o.mu.Unlock()
			o.stop()
			return
		}
		last := o.menu
		if i := strings.LastIndexByte(o.menu, '/'); i >= 0 {
			last = o.menu[i+1:]
			o.menu = o.menu[:i]
		} else {
			o.menu = "main"
		}
		o.item = findItem(menus[o.menu], last)
	case ke.NormalizedCode == NokiaSoft3:
		o.mu.Unlock()
		o.action()
		o.render()
		return
	}
	o.item = max(0, min(o.item, len(menus[o.menu])-1))
	o.mu.Unlock()
	o.render()
}

func findItem(list []menuItem, id string) int {
	for i, it := range list {
		if it.id == id {
			return i
		}
	}
	return 0
}

// action runs the selected entry. Settings changes go through the platform.
func (o *overlay) action() {
	o.mu.Lock()
	menu := o.menu
	it := menus[menu][o.item]
	o.mu.Unlock()

	s := o.p.Settings()
	next := func(m, sel string) {
		o.mu.Lock()
		o.menu = m
		o.item = findItem(menus[m], sel)
		o.mu.Unlock()
	}

	switch menu {
	case "main":
		switch it.id {
		case "back":
			o.stop()
		case "size":
			next("size", fmt.Sprintf("%dx%d", s.Width, s.Height))
		case "sound":
			s.Sound = !s.Sound
			o.apply(s)
		case "fps":
			next("fps", strconv.Itoa(s.FPS))
		case "phone":
			next("phone", string(s.Phone))
		case "compat":
			next("compat", "")
		case "rotate":
			next("rotate", "")
		case "exit":
			if o.p.deps.Exit != nil {
				o.p.deps.Exit()
			}
		}
	case "size":
		var w, h int
		if _, err := fmt.Sscanf(it.id, "%dx%d", &w, &h); err == nil {
			s.Width, s.Height = w, h
			o.apply(s)
		}
		next("main", "size")
	case "phone":
		s.Phone = config.Phone(it.id)
		o.apply(s)
		next("main", "phone")
	case "rotate":
		s.Rotate = it.id == "On"
		o.apply(s)
		next("main", "rotate")
	case "fps":
		s.FPS, _ = strconv.Atoi(it.id)
		o.apply(s)
		next("main", "fps")
	case "compat":
		switch it.id {
		case "dgFormat":
			next("compat/dgFormat", strconv.Itoa(s.DGFormat))
		case "forceFullscreen":
			s.ForceFullscreen = !s.ForceFullscreen
			o.apply(s)
		case "queuedPaint":
			s.QueuedPaint = !s.QueuedPaint
			o.apply(s)
		}
	case "compat/dgFormat":
		s.DGFormat, _ = strconv.Atoi(it.id)
		o.apply(s)
		next("compat", "dgFormat")
	}
}

func (o *overlay) apply(s config.Settings) {
	o.p.SettingsChanged(s)
	if o.p.deps.Save != nil {
		if err := o.p.deps.Save(s); err != nil {
			logging.Logger().Warn("save settings", "error", err)
		}
	}
}

func (o *overlay) label(it menuItem, s config.Settings) string {
	switch o.menu {
	case "main":
		switch it.id {
		case "sound":
			return it.label + ": " + onOff(s.Sound)
		case "fps":
			return it.label + ": " + strconv.Itoa(s.FPS)
		case "phone":
			return it.label + ": " + string(s.Phone)
		case "rotate":
			return it.label + ": " + onOff(s.Rotate)
		}
	case "compat":
		switch it.id {
		case "forceFullscreen":
			return it.label + ": " + onOff(s.ForceFullscreen)
		case "queuedPaint":
			return it.label + ": " + onOff(s.QueuedPaint)
		case "dgFormat":
			return it.label + ": " + strconv.Itoa(s.DGFormat)
		}
	}
	return it.label
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (o *overlay) render() {
	s := o.p.Settings()
	o.mu.Lock()
	if !o.on || o.g == nil {
		o.mu.Unlock()
		return
	}
	g := o.g
	w, h := o.img.Width(), o.img.Height()
	list := menus[o.menu]

	g.SetClip(0, 0, w, h)
	g.SetColor(0x000080)
	g.FillRect(0, 0, w, h)
	g.SetColor(0xFFFFFF)
	g.DrawString(menuTitles[o.menu], w/2, 2, lcdui.HCenter|lcdui.Top)
	g.DrawLine(0, 20, w, 20)
	g.DrawLine(0, h-20, w, h-20)
	g.DrawString("Back", 3, h-17, lcdui.Left|lcdui.Top)

	ah := max((h-50)/(len(list)+1), 15)
	space := 0
	if ah > 15 {
		space = (ah - 15) / 2
	}
	perPage := max((h-50)/ah, 1)
	page := o.item / perPage
	start := perPage * page
	pages := (len(list) + perPage - 1) / perPage
	if pages > 1 {
		g.DrawString(fmt.Sprintf("Page %d of %d", page+1, pages), w-3, h-17, lcdui.Right|lcdui.Top)
	}

	for i := start; i < start+perPage && i < len(list); i++ {
		text := o.label(list[i], s)
		y := 25 + space + ah*(i-start)
		if i == o.item {
			g.SetColor(0xFFFF00)
			g.DrawString("> "+text+" <", w/2, y, lcdui.HCenter|lcdui.Top)
		} else {
			g.SetColor(0xFFFFFF)
			g.DrawString(text, w/2, y, lcdui.HCenter|lcdui.Top)
		}
	}
	o.mu.Unlock()
	o.p.paint()
}
