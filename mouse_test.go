package gridterm

import (
	"bytes"
	"testing"
)

func TestEncodeMouseEvent_NoTrackingMode(t *testing.T) {
	term := New(WithSize(24, 80))

	out := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonLeft, Press: true})
	if out != nil {
		t.Errorf("expected nil without a tracking mode, got %q", out)
	}
}

func TestEncodeMouseEvent_X10Press(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h")

	out := term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  true,
		Row:    4,
		Col:    2,
	})

	// CSI M Cb Cx Cy with 32 added to each value, coordinates 1-based
	want := []byte{0x1b, '[', 'M', 32 + 0, 32 + 3, 32 + 5}
	if !bytes.Equal(out, want) {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestEncodeMouseEvent_X10ReleaseFoldsButton(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h")

	term.EncodeMouseEvent(MouseEvent{Button: MouseButtonLeft, Press: true})
	out := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonLeft, Press: false})

	// The legacy encoding cannot say which button was released
	want := []byte{0x1b, '[', 'M', 32 + 3, 32 + 1, 32 + 1}
	if !bytes.Equal(out, want) {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestEncodeMouseEvent_X10CoordinateOverflow(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h")

	out := term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  true,
		Row:    500,
		Col:    500,
	})

	// Coordinates past the single-byte range become a 0x00 sentinel
	// instead of wrapping into a bogus printable byte.
	want := []byte{0x1b, '[', 'M', 32 + 0, 0x00, 0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("expected %q, got %q", want, out)
	}

	// A coordinate exactly at the limit still encodes normally.
	out = term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  true,
		Row:    222,
		Col:    222,
	})
	want = []byte{0x1b, '[', 'M', 32 + 0, 32 + 223, 32 + 223}
	if !bytes.Equal(out, want) {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestEncodeMouseEvent_SGRRoundTrip(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1002h\x1b[?1006h")

	press := term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  true,
		Row:    10,
		Col:    20,
	})
	if string(press) != "\x1b[<0;21;11M" {
		t.Errorf("press: expected %q, got %q", "\x1b[<0;21;11M", press)
	}
	if term.HeldMouseButton() != MouseButtonLeft {
		t.Errorf("expected left button held, got %d", term.HeldMouseButton())
	}

	drag := term.EncodeMouseEvent(MouseEvent{
		Motion: true,
		Row:    11,
		Col:    21,
	})
	if string(drag) != "\x1b[<32;22;12M" {
		t.Errorf("drag: expected %q, got %q", "\x1b[<32;22;12M", drag)
	}

	release := term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  false,
		Row:    12,
		Col:    22,
	})
	// SGR keeps the button code on release and flips the final byte
	if string(release) != "\x1b[<0;23;13m" {
		t.Errorf("release: expected %q, got %q", "\x1b[<0;23;13m", release)
	}
	if term.HeldMouseButton() != MouseButtonNone {
		t.Errorf("expected no button held after release, got %d", term.HeldMouseButton())
	}
}

func TestEncodeMouseEvent_SGRModifiers(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h\x1b[?1006h")

	out := term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  true,
		Shift:  true,
		Ctrl:   true,
	})

	// shift adds 4, ctrl adds 16
	if string(out) != "\x1b[<20;1;1M" {
		t.Errorf("expected %q, got %q", "\x1b[<20;1;1M", out)
	}
}

func TestEncodeMouseEvent_SGRWheel(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h\x1b[?1006h")

	up := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonWheelUp, Press: true, Row: 2, Col: 3})
	if string(up) != "\x1b[<64;4;3M" {
		t.Errorf("wheel up: expected %q, got %q", "\x1b[<64;4;3M", up)
	}

	down := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonWheelDown, Press: true, Row: 2, Col: 3})
	if string(down) != "\x1b[<65;4;3M" {
		t.Errorf("wheel down: expected %q, got %q", "\x1b[<65;4;3M", down)
	}

	// Wheel events never become the held button
	if term.HeldMouseButton() != MouseButtonNone {
		t.Errorf("expected no held button after wheel, got %d", term.HeldMouseButton())
	}
}

func TestEncodeMouseEvent_SGRPixels(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h\x1b[?1016h")

	out := term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  true,
		Row:    2,
		Col:    3,
		PixelX: 37,
		PixelY: 21,
	})

	// 1016 reports pixel coordinates instead of cells
	if string(out) != "\x1b[<0;37;21M" {
		t.Errorf("expected %q, got %q", "\x1b[<0;37;21M", out)
	}
}

func TestEncodeMouseEvent_UTF8Coordinates(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h\x1b[?1005h")

	out := term.EncodeMouseEvent(MouseEvent{
		Button: MouseButtonLeft,
		Press:  true,
		Row:    0,
		Col:    200,
	})

	// x = 32+201 = 233 needs two UTF-8 bytes, y = 32+1 stays single byte
	want := append([]byte{0x1b, '[', 'M', 32 + 0}, []byte(string(rune(233)))...)
	want = append(want, 33)
	if !bytes.Equal(out, want) {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestEncodeMouseEvent_MotionGating(t *testing.T) {
	// 1000 reports no motion at all
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1000h\x1b[?1006h")

	if out := term.EncodeMouseEvent(MouseEvent{Motion: true}); out != nil {
		t.Errorf("1000: expected motion suppressed, got %q", out)
	}

	// 1002 reports motion only while a button is held
	term = New(WithSize(24, 80))
	term.WriteString("\x1b[?1002h\x1b[?1006h")

	if out := term.EncodeMouseEvent(MouseEvent{Motion: true}); out != nil {
		t.Errorf("1002: expected motion without held button suppressed, got %q", out)
	}

	term.EncodeMouseEvent(MouseEvent{Button: MouseButtonMiddle, Press: true})
	out := term.EncodeMouseEvent(MouseEvent{Motion: true, Row: 1, Col: 1})
	if string(out) != "\x1b[<33;2;2M" {
		t.Errorf("1002: expected held-button motion %q, got %q", "\x1b[<33;2;2M", out)
	}

	// 1003 reports motion with no button at all
	term = New(WithSize(24, 80))
	term.WriteString("\x1b[?1003h\x1b[?1006h")

	out = term.EncodeMouseEvent(MouseEvent{Motion: true, Row: 1, Col: 1})
	if string(out) != "\x1b[<35;2;2M" {
		t.Errorf("1003: expected buttonless motion %q, got %q", "\x1b[<35;2;2M", out)
	}
}

func TestEncodeMouseEvent_AlternateScroll(t *testing.T) {
	term := New(WithSize(24, 80))

	// Alternate scroll needs the alternate screen and DECSET 1007
	term.WriteString("\x1b[?1049h\x1b[?1007h")

	up := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonWheelUp, Press: true})
	if string(up) != "\x1b[A" {
		t.Errorf("expected %q, got %q", "\x1b[A", up)
	}

	down := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonWheelDown, Press: true})
	if string(down) != "\x1b[B" {
		t.Errorf("expected %q, got %q", "\x1b[B", down)
	}

	// Application cursor keys switch to SS3
	term.WriteString("\x1b[?1h")
	up = term.EncodeMouseEvent(MouseEvent{Button: MouseButtonWheelUp, Press: true})
	if string(up) != "\x1bOA" {
		t.Errorf("expected %q, got %q", "\x1bOA", up)
	}

	// Non-wheel buttons are not translated
	if out := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonLeft, Press: true}); out != nil {
		t.Errorf("expected nil for non-wheel button, got %q", out)
	}
}

func TestEncodeMouseEvent_AlternateScrollNeedsAltScreen(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1007h") // primary screen

	out := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonWheelUp, Press: true})
	if out != nil {
		t.Errorf("expected nil on primary screen, got %q", out)
	}
}

func TestEncodeMouseEvent_TrackingOverridesAlternateScroll(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[?1049h\x1b[?1007h\x1b[?1000h\x1b[?1006h")

	out := term.EncodeMouseEvent(MouseEvent{Button: MouseButtonWheelUp, Press: true})
	if string(out) != "\x1b[<64;1;1M" {
		t.Errorf("expected wheel report %q, got %q", "\x1b[<64;1;1M", out)
	}
}
