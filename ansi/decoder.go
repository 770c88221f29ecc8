// Package ansi decodes a terminal byte stream into calls on a Handler.
//
// The Decoder sits between the low level escape sequence parser and a
// terminal implementation: the parser recognizes sequence boundaries, the
// Decoder gives the sequences meaning (which CSI final is which cursor
// movement, how SGR parameters map to attributes, which OSC numbers carry
// titles, colors, clipboard data and shell integration marks).
package ansi

import (
	"log"

	"github.com/gridterm/gridterm/vte"
)

// Decoder decodes raw terminal output and drives a Handler. It implements
// io.Writer so it can be the destination of a pty read loop.
type Decoder struct {
	handler Handler
	parser  *vte.Parser

	// DCS state between Hook and Unhook.
	dcsFinal  rune
	dcsParams [][]uint16
	dcsData   []byte
}

// NewDecoder returns a Decoder feeding the given handler.
func NewDecoder(handler Handler) *Decoder {
	return &Decoder{
		handler: handler,
		parser:  vte.NewParser(),
	}
}

// Write decodes a chunk of terminal output. It never fails; partial escape
// sequences are carried over to the next call.
func (d *Decoder) Write(data []byte) (int, error) {
	d.parser.AdvanceBytes(d, data)
	return len(data), nil
}

// IsGround reports whether the decoder is between sequences, with no
// partial escape sequence pending.
func (d *Decoder) IsGround() bool {
	return d.parser.IsGround()
}

var _ vte.Performer = (*Decoder)(nil)

// Print implements vte.Performer.
func (d *Decoder) Print(r rune) {
	d.handler.Input(r)
}

// Execute implements vte.Performer. It dispatches C0 and C1 controls.
func (d *Decoder) Execute(b byte) {
	switch b {
	case 0x07: // BEL
		d.handler.Bell()
	case 0x08: // BS
		d.handler.Backspace()
	case 0x09: // HT
		d.handler.Tab(1)
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		d.handler.LineFeed()
	case 0x0D: // CR
		d.handler.CarriageReturn()
	case 0x0E: // SO
		d.handler.SetActiveCharset(1)
	case 0x0F: // SI
		d.handler.SetActiveCharset(0)
	case 0x1A: // SUB
		d.handler.Substitute()
	case 0x84: // IND
		d.handler.LineFeed()
	case 0x85: // NEL
		d.handler.LineFeed()
		d.handler.CarriageReturn()
	case 0x88: // HTS
		d.handler.HorizontalTabSet()
	case 0x8D: // RI
		d.handler.ReverseIndex()
	}
}

// Hook implements vte.Performer. It starts a DCS passthrough.
func (d *Decoder) Hook(params [][]uint16, intermediates []byte, ignore bool, final rune) {
	if ignore {
		d.dcsFinal = 0
		return
	}
	d.dcsFinal = final
	d.dcsParams = append([][]uint16(nil), params...)
	d.dcsData = d.dcsData[:0]
}

// Put implements vte.Performer. It accumulates DCS payload bytes.
func (d *Decoder) Put(b byte) {
	if d.dcsFinal == 0 {
		return
	}
	d.dcsData = append(d.dcsData, b)
}

// Unhook implements vte.Performer. It completes a DCS.
func (d *Decoder) Unhook() {
	final := d.dcsFinal
	d.dcsFinal = 0
	switch final {
	case 'q':
		d.handler.SixelReceived(d.dcsParams, d.dcsData)
	case 0:
		// overlong or ignored sequence
	default:
		log.Printf("ansi: unhandled DCS final %q", final)
	}
	d.dcsParams = nil
	d.dcsData = nil
}

// SosPmApcDispatch implements vte.Performer.
func (d *Decoder) SosPmApcDispatch(kind byte, data []byte) {
	switch kind {
	case 'X':
		d.handler.StartOfStringReceived(data)
	case '^':
		d.handler.PrivacyMessageReceived(data)
	case '_':
		d.handler.ApplicationCommandReceived(data)
	}
}

// param returns the first subparam of params[i], or def when the parameter
// is absent or omitted.
func param(params [][]uint16, i int, def int) int {
	if i >= len(params) || len(params[i]) == 0 {
		return def
	}
	return int(params[i][0])
}

// paramOrMin is param with a floor, for the many CSI commands where a
// count of zero means one.
func paramOrMin(params [][]uint16, i int, def, min int) int {
	v := param(params, i, def)
	if v < min {
		return min
	}
	return v
}
