package lcdui

// Standard key codes.
const (
	KeyNum0  = 48
	KeyNum1  = 49
	KeyNum2  = 50
	KeyNum3  = 51
	KeyNum4  = 52
	KeyNum5  = 53
	KeyNum6  = 54
	KeyNum7  = 55
	KeyNum8  = 56
	KeyNum9  = 57
	KeyStar  = 42
	KeyPound = 35
)

// Soft-key handset arrow codes (Nokia layout), shared by most devices.
const (
	KeyUp    = -1
	KeyDown  = -2
	KeyLeft  = -3
	KeyRight = -4
	KeyFire  = -5
)

// Game actions.
const (
	ActionUp    = 1
	ActionLeft  = 2
	ActionRight = 5
	ActionDown  = 6
	ActionFire  = 8
	GameA       = 9
	GameB       = 10
	GameC       = 11
	GameD       = 12
)

// GameCanvas key-state bits.
const (
	UpPressed    = 1 << ActionUp
	LeftPressed  = 1 << ActionLeft
	RightPressed = 1 << ActionRight
	DownPressed  = 1 << ActionDown
	FirePressed  = 1 << ActionFire
	GameAPressed = 1 << GameA
	GameBPressed = 1 << GameB
	GameCPressed = 1 << GameC
	GameDPressed = 1 << GameD
)

// GameAction maps a key code to its game action, or 0.
func GameAction(key int) int {
	switch key {
	case KeyNum2, KeyUp:
		return ActionUp
	case KeyNum8, KeyDown:
		return ActionDown
	case KeyNum4, KeyLeft:
		return ActionLeft
	case KeyNum6, KeyRight:
		return ActionRight
	case KeyNum5, KeyFire:
		return ActionFire
	case KeyNum1:
		return GameA
	case KeyNum3:
		return GameB
	case KeyNum7:
		return GameC
	case KeyNum9:
		return GameD
	}
	return 0
}

// KeyCode returns a key code that produces the game action, or 0.
func KeyCode(action int) int {
	switch action {
	case ActionUp:
		return KeyNum2
	case ActionDown:
		return KeyNum8
	case ActionLeft:
		return KeyNum4
	case ActionRight:
		return KeyNum6
	case ActionFire:
		return KeyNum5
	case GameA:
		return KeyNum1
	case GameB:
		return KeyNum3
	case GameC:
		return KeyNum7
	case GameD:
		return KeyNum9
	}
	return 0
}
