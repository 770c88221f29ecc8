package gridterm

import (
	"fmt"
	"unicode/utf8"
)

// MouseButton identifies a mouse button using xterm button codes.
type MouseButton int

const (
	MouseButtonNone      MouseButton = -1
	MouseButtonLeft      MouseButton = 0
	MouseButtonMiddle    MouseButton = 1
	MouseButtonRight     MouseButton = 2
	MouseButtonWheelUp   MouseButton = 64
	MouseButtonWheelDown MouseButton = 65
)

// IsWheel returns true for scroll wheel buttons.
func (b MouseButton) IsWheel() bool {
	return b == MouseButtonWheelUp || b == MouseButtonWheelDown
}

// MouseEvent describes a mouse interaction in terminal coordinates.
// Row and Col are zero-based cell coordinates. PixelX and PixelY are only
// consulted when SGR-pixels reporting (DECSET 1016) is active.
type MouseEvent struct {
	Button MouseButton
	Press  bool // press vs release; ignored for motion events
	Motion bool // cursor moved without a button transition

	Row, Col       int
	PixelX, PixelY int

	Shift bool
	Alt   bool
	Ctrl  bool
}

// EncodeMouseEvent converts a mouse event into the byte sequence the
// application asked for via DECSET, or nil when the event should not be
// reported under the current tracking mode.
//
// Tracking modes gate which events are reported: 1000 reports presses and
// releases, 1002 adds motion while a button is held, 1003 reports all motion.
// The encoding is chosen from SGR-pixels (1016), SGR (1006), UTF-8 (1005), or
// the legacy X10 byte encoding, in that order of preference.
//
// Wheel events on the alternate screen with alternate scroll (DECSET 1007)
// enabled are translated to arrow key sequences when no tracking mode is
// active.
func (t *Terminal) EncodeMouseEvent(ev MouseEvent) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	tracking := t.modes & (ModeReportMouseClicks | ModeReportCellMouseMotion | ModeReportAllMouseMotion)

	if tracking == 0 {
		if ev.Button.IsWheel() && ev.Press && t.altScreenActive() && t.modes&ModeAlternateScroll != 0 {
			return t.alternateScrollSequence(ev.Button)
		}
		return nil
	}

	if ev.Motion {
		switch {
		case t.modes&ModeReportAllMouseMotion != 0:
			// Report all motion, with or without a held button.
		case t.modes&ModeReportCellMouseMotion != 0:
			if t.heldMouseButton < 0 {
				return nil
			}
		default:
			return nil
		}
	}

	code := t.mouseButtonCode(ev)

	// Track held buttons so motion events can report the right code.
	if !ev.Motion && !ev.Button.IsWheel() {
		if ev.Press {
			t.heldMouseButton = int(ev.Button)
		} else if int(ev.Button) == t.heldMouseButton {
			t.heldMouseButton = -1
		}
	}

	switch {
	case t.modes&ModeSGRPixelsMouse != 0:
		return encodeSGRMouse(code, ev.PixelX, ev.PixelY, t.isMouseRelease(ev))
	case t.modes&ModeSGRMouse != 0:
		return encodeSGRMouse(code, ev.Col+1, ev.Row+1, t.isMouseRelease(ev))
	case t.modes&ModeUTF8Mouse != 0:
		return encodeUTF8Mouse(code, ev.Col+1, ev.Row+1, t.isMouseRelease(ev))
	default:
		return encodeX10Mouse(code, ev.Col+1, ev.Row+1, t.isMouseRelease(ev))
	}
}

// HeldMouseButton returns the button currently held down as tracked by
// EncodeMouseEvent, or MouseButtonNone.
func (t *Terminal) HeldMouseButton() MouseButton {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return MouseButton(t.heldMouseButton)
}

func (t *Terminal) isMouseRelease(ev MouseEvent) bool {
	return !ev.Motion && !ev.Press && !ev.Button.IsWheel()
}

func (t *Terminal) altScreenActive() bool {
	return t.activeBuffer == t.alternateBuffer
}

// mouseButtonCode computes the xterm button code including motion and
// modifier bits. Caller holds the lock.
func (t *Terminal) mouseButtonCode(ev MouseEvent) int {
	var code int
	switch {
	case ev.Motion:
		if t.heldMouseButton >= 0 {
			code = t.heldMouseButton
		} else {
			code = 3 // motion with no button
		}
		code += 32
	case ev.Button == MouseButtonNone:
		code = 3
	default:
		code = int(ev.Button)
	}

	if ev.Shift {
		code += 4
	}
	if ev.Alt {
		code += 8
	}
	if ev.Ctrl {
		code += 16
	}
	return code
}

// alternateScrollSequence maps wheel events to arrow keys, honoring the
// cursor keys application mode. Caller holds the lock.
func (t *Terminal) alternateScrollSequence(b MouseButton) []byte {
	final := byte('A')
	if b == MouseButtonWheelDown {
		final = 'B'
	}
	if t.modes&ModeCursorKeys != 0 {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

// encodeSGRMouse emits CSI < code ; x ; y M (press/motion) or m (release).
// The release form keeps the button code instead of folding it to 3.
func encodeSGRMouse(code, x, y int, release bool) []byte {
	final := byte('M')
	if release {
		final = 'm'
	}
	return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, x, y, final))
}

// encodeX10Mouse emits the legacy CSI M Cb Cx Cy encoding. Coordinates are
// offset by 32; values past the single-byte limit of 223 become a 0x00
// sentinel rather than wrapping.
func encodeX10Mouse(code, x, y int, release bool) []byte {
	if release {
		code = (code &^ 3) | 3
	}
	return []byte{0x1b, '[', 'M', byte(32 + code), clampMouseByte(x), clampMouseByte(y)}
}

// encodeUTF8Mouse is the 1005 variant of the X10 encoding: coordinates above
// 95 are written as multi-byte UTF-8, extending the range to 2015.
func encodeUTF8Mouse(code, x, y int, release bool) []byte {
	if release {
		code = (code &^ 3) | 3
	}
	out := []byte{0x1b, '[', 'M', byte(32 + code)}
	out = utf8.AppendRune(out, clampMouseRune(x))
	out = utf8.AppendRune(out, clampMouseRune(y))
	return out
}

func clampMouseByte(v int) byte {
	if v < 1 {
		v = 1
	}
	if v > 223 {
		return 0
	}
	return byte(32 + v)
}

func clampMouseRune(v int) rune {
	if v < 1 {
		v = 1
	}
	if v > 2015 {
		v = 2015
	}
	return rune(32 + v)
}
