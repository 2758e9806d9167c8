package console

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Button bits, in shift-register order.
const (
	BUTTON_A = 1 << iota
	BUTTON_B
	BUTTON_SELECT
	BUTTON_START
	BUTTON_UP
	BUTTON_DOWN
	BUTTON_LEFT
	BUTTON_RIGHT
)

// Joypad implements the standard NES controller shift-register
// protocol: https://www.nesdev.org/wiki/Standard_controller
//
// The host sets the live button state (normally once per frame, from
// the frame callback). Writing $4016 with bit 0 high latches that
// state into the shift register; while strobe is held high every read
// returns the A button. The falling edge re-latches and resets the
// read index, and each subsequent read shifts the next button out.
// Reads past the 8th button return 1, not an error.
type Joypad struct {
	strobe  bool
	buttons uint8 // live state, set by the host
	shift   uint8 // latched copy the reads consume
	idx     uint8
}

// SetButtonState replaces the live button mask. If strobe is held
// high the shift register tracks it immediately, the way the real
// controller continuously re-latches.
func (j *Joypad) SetButtonState(mask uint8) {
	j.buttons = mask
	if j.strobe {
		j.shift = mask
	}
}

func (j *Joypad) write(val uint8) {
	strobeHigh := val&0x01 != 0

	if strobeHigh {
		j.shift = j.buttons
	} else if j.strobe {
		// falling edge: latch and restart the shift
		j.shift = j.buttons
		j.idx = 0
	}

	j.strobe = strobeHigh
}

func (j *Joypad) read() uint8 {
	if j.strobe {
		return j.buttons & 0x01
	}

	if j.idx > 7 {
		return 1
	}

	ret := (j.shift >> j.idx) & 0x01
	j.idx++
	return ret
}

// keys maps each button bit to its keyboard binding, in shift order.
var keys []ebiten.Key = []ebiten.Key{
	ebiten.KeyA,     // A
	ebiten.KeyB,     // B
	ebiten.KeySpace, // Select
	ebiten.KeyEnter, // Start
	ebiten.KeyUp,    // Up
	ebiten.KeyDown,  // Down
	ebiten.KeyLeft,  // Left
	ebiten.KeyRight, // Right
}

// isKeyPressed is a var so tests can stub out ebiten's input state,
// which is only meaningful inside a running Game loop.
var isKeyPressed = ebiten.IsKeyPressed

// pollKeys reads the keyboard into a button mask. The default frame
// callback feeds this to the player-1 joypad every frame.
func pollKeys() uint8 {
	var b uint8
	for i, key := range keys {
		if isKeyPressed(key) {
			b |= 1 << i
		}
	}
	return b
}
