package mobile

import (
	"midp/config"
	"midp/hal"
	"midp/lcdui"
)

// Handset soft-key codes.
const (
	NokiaUp    = -1
	NokiaDown  = -2
	NokiaLeft  = -3
	NokiaRight = -4
	NokiaSoft1 = -6
	NokiaSoft2 = -7
	NokiaSoft3 = -5
	NokiaEnd   = -11
	NokiaSend  = -10

	SiemensUp    = -59
	SiemensDown  = -60
	SiemensLeft  = -61
	SiemensRight = -62
	SiemensSoft1 = -1
	SiemensSoft2 = -4
	SiemensFire  = -26

	MotorolaUp    = -1
	MotorolaDown  = -6
	MotorolaLeft  = -2
	MotorolaRight = -5
	MotorolaSoft1 = -21
	MotorolaSoft2 = -22
	MotorolaFire  = -20

	// Extra keys with no handset equivalent.
	XKeySelect = 20
	XKeySoft1  = 21
	XKeySoft2  = 22
	XKeySoft3  = 23
)

// MobileKey maps a host key to the code a handset of the given kind reports.
// Unmapped keys give 0.
func MobileKey(phone config.Phone, k hal.Key) int {
	switch phone {
	case config.PhoneNokia, config.PhoneSonyEricsson:
		switch k {
		case hal.KeyUp:
			return NokiaUp
		case hal.KeyDown:
			return NokiaDown
		case hal.KeyLeft:
			return NokiaLeft
		case hal.KeyRight:
			return NokiaRight
		case hal.KeyEnter:
			return NokiaSoft3
		}
	case config.PhoneSiemens:
		switch k {
		case hal.KeyUp:
			return SiemensUp
		case hal.KeyDown:
			return SiemensDown
		case hal.KeyLeft:
			return SiemensLeft
		case hal.KeyRight:
			return SiemensRight
		case hal.KeyF1, hal.KeyQ:
			return SiemensSoft1
		case hal.KeyF2, hal.KeyW:
			return SiemensSoft2
		case hal.KeyEnter:
			return SiemensFire
		}
	case config.PhoneMotorola:
		switch k {
		case hal.KeyUp:
			return MotorolaUp
		case hal.KeyDown:
			return MotorolaDown
		case hal.KeyLeft:
			return MotorolaLeft
		case hal.KeyRight:
			return MotorolaRight
		case hal.KeyF1, hal.KeyQ:
			return MotorolaSoft1
		case hal.KeyF2, hal.KeyW:
			return MotorolaSoft2
		case hal.KeyEnter:
			return MotorolaFire
		}
	}
	return standardKey(k)
}

func standardKey(k hal.Key) int {
	switch {
	case k >= hal.Key0 && k <= hal.Key9:
		return lcdui.KeyNum0 + int(k-hal.Key0)
	}
	switch k {
	case hal.KeyNumpad0:
		return lcdui.KeyNum0
	case hal.KeyNumpad7:
		return lcdui.KeyNum1
	case hal.KeyNumpad8:
		return lcdui.KeyNum2
	case hal.KeyNumpad9:
		return lcdui.KeyNum3
	case hal.KeyNumpad4:
		return lcdui.KeyNum4
	case hal.KeyNumpad5:
		return lcdui.KeyNum5
	case hal.KeyNumpad6:
		return lcdui.KeyNum6
	case hal.KeyNumpad1:
		return lcdui.KeyNum7
	case hal.KeyNumpad2:
		return lcdui.KeyNum8
	case hal.KeyNumpad3:
		return lcdui.KeyNum9
	case hal.KeyMultiply, hal.KeyE:
		return lcdui.KeyStar
	case hal.KeyDivide, hal.KeyR:
		return lcdui.KeyPound

	case hal.KeyUp:
		return lcdui.KeyNum2
	case hal.KeyDown:
		return lcdui.KeyNum8
	case hal.KeyLeft:
		return lcdui.KeyNum4
	case hal.KeyRight:
		return lcdui.KeyNum6
	case hal.KeyEnter:
		return lcdui.KeyNum5

	case hal.KeyF1, hal.KeyQ:
		return NokiaSoft1
	case hal.KeyF2, hal.KeyW:
		return NokiaSoft2
	case hal.KeyA:
		return NokiaUp
	case hal.KeyZ:
		return NokiaDown

	case hal.KeySpace:
		return XKeySelect
	case hal.KeyF:
		return XKeySoft1
	case hal.KeyG:
		return XKeySoft2
	case hal.KeyH:
		return XKeySoft3
	}
	return 0
}

// NormalizeKey folds a handset code onto the Nokia layout: the numeric
// navigation keys become arrows and fire, and Siemens or Motorola codes
// become their Nokia equivalents.
func NormalizeKey(phone config.Phone, code int) int {
	switch code {
	case lcdui.KeyNum2:
		return NokiaUp
	case lcdui.KeyNum8:
		return NokiaDown
	case lcdui.KeyNum4:
		return NokiaLeft
	case lcdui.KeyNum6:
		return NokiaRight
	case lcdui.KeyNum5:
		return NokiaSoft3
	}

	switch phone {
	case config.PhoneSiemens:
		switch code {
		case SiemensUp:
			return NokiaUp
		case SiemensDown:
			return NokiaDown
		case SiemensLeft:
			return NokiaLeft
		case SiemensRight:
			return NokiaRight
		case SiemensSoft1:
			return NokiaSoft1
		case SiemensSoft2:
			return NokiaSoft2
		case SiemensFire:
			return NokiaSoft3
		}
	case config.PhoneMotorola:
		switch code {
		case MotorolaUp:
			return NokiaUp
		case MotorolaDown:
			return NokiaDown
		case MotorolaLeft:
			return NokiaLeft
		case MotorolaRight:
			return NokiaRight
		case MotorolaSoft1:
			return NokiaSoft1
		case MotorolaSoft2:
			return NokiaSoft2
		case MotorolaFire:
			return NokiaSoft3
		}
	}
	return code
}

// keyStateBit maps a normalized code to its GameCanvas key-state bit.
func keyStateBit(code int) int {
	switch code {
	case lcdui.KeyNum2, NokiaUp:
		return lcdui.UpPressed
	case lcdui.KeyNum4, NokiaLeft:
		return lcdui.LeftPressed
	case lcdui.KeyNum6, NokiaRight:
		return lcdui.RightPressed
	case lcdui.KeyNum8, NokiaDown:
		return lcdui.DownPressed
	case lcdui.KeyNum5, NokiaSoft3:
		return lcdui.FirePressed
	case lcdui.KeyNum1:
		return lcdui.GameAPressed
	case lcdui.KeyNum3:
		return lcdui.GameBPressed
	case lcdui.KeyNum7:
		return lcdui.GameCPressed
	case lcdui.KeyNum9:
		return lcdui.GameDPressed
	}
	return 0
}
