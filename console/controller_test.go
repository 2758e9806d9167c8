package console

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestJoypadStrobeLatchesAndShifts(t *testing.T) {
	var j Joypad
	j.SetButtonState(BUTTON_A | BUTTON_SELECT | BUTTON_START)

	j.write(1) // strobe high: latches continuously
	j.write(0) // falling edge: latch and start shifting

	// A, Select, Start pressed -> bits 0, 2, 3 set.
	want := []uint8{1, 0, 1, 1, 0, 0, 0, 0}
	for i, w := range want {
		if got := j.read(); got != w {
			t.Errorf("read() #%d = %d, want %d", i, got, w)
		}
	}
}

func TestJoypadReadPastEighthButtonReturnsOne(t *testing.T) {
	var j Joypad
	j.write(1)
	j.write(0)

	for i := 0; i < 8; i++ {
		j.read()
	}
	if got := j.read(); got != 1 {
		t.Errorf("read() past 8th button = %d, want 1", got)
	}
}

func TestJoypadStrobeHighAlwaysReturnsButtonA(t *testing.T) {
	var j Joypad
	j.SetButtonState(BUTTON_A)
	j.write(1)

	if got := j.read(); got != 1 {
		t.Errorf("read() while strobe high = %d, want 1 (button A)", got)
	}
	if got := j.read(); got != 1 {
		t.Errorf("second read() while strobe high = %d, want 1 (no shifting)", got)
	}
}

func TestJoypadStateChangeWhileStrobed(t *testing.T) {
	var j Joypad
	j.write(1)
	j.SetButtonState(BUTTON_A) // pressed while strobe held high
	j.write(0)

	if got := j.read(); got != 1 {
		t.Errorf("read() = %d, want 1 (state set mid-strobe was latched)", got)
	}
}

func TestJoypadNoFalseLatchWithoutStrobeHighFirst(t *testing.T) {
	var j Joypad
	j.SetButtonState(BUTTON_A)
	j.write(0) // never saw strobe go high; should not reset the index

	j.idx = 3
	j.write(0)
	if j.idx != 3 {
		t.Errorf("idx = %d, want 3 (no latch occurred)", j.idx)
	}
}

// withPressed stubs isKeyPressed to report exactly the given keys as
// held, for the duration of fn.
func withPressed(t *testing.T, pressed []ebiten.Key, fn func()) {
	t.Helper()
	old := isKeyPressed
	defer func() { isKeyPressed = old }()

	set := make(map[ebiten.Key]bool, len(pressed))
	for _, k := range pressed {
		set[k] = true
	}
	isKeyPressed = func(k ebiten.Key) bool { return set[k] }

	fn()
}

func TestPollKeysMapsKeyboardToButtons(t *testing.T) {
	withPressed(t, []ebiten.Key{ebiten.KeyA, ebiten.KeySpace, ebiten.KeyEnter}, func() {
		if got, want := pollKeys(), uint8(BUTTON_A|BUTTON_SELECT|BUTTON_START); got != want {
			t.Errorf("pollKeys() = %#02x, want %#02x", got, want)
		}
	})

	withPressed(t, nil, func() {
		if got := pollKeys(); got != 0 {
			t.Errorf("pollKeys() with nothing held = %#02x, want 0", got)
		}
	})
}
