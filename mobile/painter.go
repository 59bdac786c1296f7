package mobile

import (
	"strconv"

	"midp/config"
	"midp/internal/logging"
	"midp/lcdui"

	"tinygo.org/x/drivers"
)

func (p *Platform) resizeLCD(w, h int) {
	lcd, err := lcdui.NewImage(w, h)
	if err != nil {
		logging.Logger().Error("resize lcd", "width", w, "height", h, "error", err)
		return
	}
	p.paintMu.Lock()
	p.lcd = lcd
	p.gc = lcd.Graphics()
	p.frame = nil
	p.paintMu.Unlock()
}

// LCD returns a copy of the current LCD contents.
func (p *Platform) LCD() *lcdui.Image {
	p.paintMu.Lock()
	defer p.paintMu.Unlock()
	return p.lcd.Copy()
}

// Present copies a region of img onto the LCD and shows the frame. This is
// both the canvas repaint and the GameCanvas flush path.
func (p *Platform) Present(img *lcdui.Image, x, y, w, h int) {
	p.paintMu.Lock()
	p.gc.DrawImagePart(img, x, y, w, h)
	p.paintMu.Unlock()
	p.paint()
}

// paint moves the LCD, or the overlay while it is open, to the host screen.
// Outside the overlay it then sleeps for the frame limit.
func (p *Platform) paint() {
	if p.overlay.present() {
		return
	}
	s := p.Settings()
	rot := p.Rotation()

	p.paintMu.Lock()
	src := p.lcd
	if rot == drivers.Rotation270 {
		w, h := p.lcd.Width(), p.lcd.Height()
		if p.frame == nil || p.frame.Width() != h || p.frame.Height() != w {
			p.frame, _ = lcdui.NewImage(h, w)
		}
		p.frame.Graphics().DrawRegion(p.lcd, 0, 0, w, h, lcdui.TransRot270, 0, 0, lcdui.Top|lcdui.Left)
		src = p.frame
	}
	if p.deps.Screen != nil {
		p.deps.Screen.Present(src)
	}
	p.paintMu.Unlock()

	if d := s.FrameDelay(); d > 0 {
		p.sleep(d)
	}
}

// SettingsChanged applies s: frame limit, keyset, rotation and repaint
// policy, the LCD and host canvas size, and phone system properties.
func (p *Platform) SettingsChanged(s config.Settings) {
	if err := s.Validate(); err != nil {
		logging.Logger().Warn("settings rejected", "error", err)
		return
	}
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()

	if w, h := p.ScreenSize(); w != s.Width || h != s.Height {
		p.resizeLCD(s.Width, s.Height)
		p.display.Resized()
	}

	p.setSystemProperty("midp.forceFullscreen", boolString(s.ForceFullscreen))
	if s.DGFormat != 0 {
		p.setSystemProperty("midp.dgFormat", strconv.Itoa(s.DGFormat))
	}

	if p.deps.Screen != nil {
		p.deps.Screen.SetCanvasSize(s.CanvasSize())
	}
	p.overlay.resize()
	p.paint()

	switch s.Phone {
	case config.PhoneNokia:
		p.addSystemProperty("microedition.platform", "Nokia6233/05.10")
	case config.PhoneSonyEricsson:
		p.addSystemProperty("microedition.platform", "SonyEricssonK750/JAVASDK")
		p.addSystemProperty("com.sonyericsson.imei", "IMEI 00460101-501594-5-00")
	case config.PhoneSiemens:
		p.addSystemProperty("com.siemens.OSVersion", "11")
		p.addSystemProperty("com.siemens.IMEI", "000000000000000")
		p.addSystemProperty("microedition.platform", "SL45i")
	}
	logging.Logger().Debug("settings changed", "phone", s.Phone, "rotate", s.Rotate, "fps", s.FPS)
}

// fontScale picks the glyph scale: explicit sizes 1 and 2 keep the native
// face, 3 doubles it, and 0 doubles it only on large screens.
func fontScale(size, w, h int) int {
	switch size {
	case 1, 2:
		return 1
	case 3:
		return 2
	}
	if min(w, h) >= 480 {
		return 2
	}
	return 1
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
