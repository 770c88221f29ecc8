// Package vte implements the byte-level escape-sequence lexer used by
// terminal emulators: a table-driven DEC ANSI compatible state machine
// extended to assemble UTF-8 multi-byte sequences.
//
// The parser itself attaches no meaning to the sequences it recognizes;
// it calls back into a Performer with low-level actions (print a rune,
// execute a control code, dispatch a CSI/ESC sequence, deliver an
// OSC/DCS/SOS/PM/APC payload). Pair it with a command decoder to drive
// a terminal grid.
package vte

import "unicode/utf8"

const (
	// maxIntermediates bounds collected intermediate bytes per sequence.
	maxIntermediates = 2
	// maxParams bounds the number of CSI/DCS parameters; excess
	// parameters are dropped and reported via the ignore flag.
	maxParams = 32
	// maxSubparams bounds colon-separated subparameters per parameter.
	maxSubparams = 6
	// maxOscRaw bounds accumulated OSC payload bytes.
	maxOscRaw = 8192
	// maxOscParams bounds the number of semicolon-separated OSC fields.
	maxOscParams = 16
	// maxStringRaw bounds accumulated SOS/PM/APC payload bytes.
	maxStringRaw = 1 << 20
)

// Performer receives the actions recognized by a Parser.
//
// CSI and DCS parameters are passed as a slice of subparameter lists:
// params[i] holds the colon-separated values of the i-th
// semicolon-separated parameter. An omitted parameter is an empty list,
// distinct from an explicit zero.
type Performer interface {
	// Print draws a codepoint to the screen.
	Print(r rune)

	// Execute runs a C0 or C1 control code.
	Execute(b byte)

	// CsiDispatch handles a complete control sequence.
	CsiDispatch(params [][]uint16, intermediates []byte, ignore bool, final rune)

	// EscDispatch handles an escape sequence.
	EscDispatch(intermediates []byte, ignore bool, final byte)

	// OscDispatch handles an operating system command. bellTerminated
	// reports whether the sequence ended with BEL rather than ST.
	OscDispatch(params [][]byte, bellTerminated bool)

	// Hook marks the start of a device control string; the payload
	// follows via Put and ends with Unhook.
	Hook(params [][]uint16, intermediates []byte, ignore bool, final rune)

	// Put delivers one byte of a device control string payload.
	Put(b byte)

	// Unhook marks the end of a device control string.
	Unhook()

	// SosPmApcDispatch delivers a completed SOS (0x58), PM (0x5e) or
	// APC (0x5f) string, identified by its introducer byte.
	SosPmApcDispatch(kind byte, data []byte)
}

// Parser is the escape-sequence state machine. The zero value is not
// ready for use; call NewParser.
//
// State persists across Advance calls, so sequences split over read
// boundaries are reassembled transparently. All internal buffers are
// bounded and reused; steady-state parsing does not allocate.
type Parser struct {
	state state

	intermediates    [maxIntermediates]byte
	numIntermediates int
	ignoredExcess    bool

	params       [maxParams][maxSubparams]uint16
	subparamLens [maxParams]int
	numParams    int
	paramsFull   bool
	curDigits    bool // current parameter has at least one digit
	curSubparams int  // colon-separated values in the current parameter
	paramScratch [maxParams][]uint16

	oscRaw       []byte
	oscParamEnds [maxOscParams]int
	oscNumParams int
	oscScratch   [maxOscParams + 1][]byte

	stringKind byte // 0x58, 0x5e or 0x5f while in SosPmApcString
	stringRaw  []byte

	utf8Buf         [4]byte
	utf8Len         int
	utf8Need        int
	utf8ReturnState state
}

// NewParser returns a parser in the ground state.
func NewParser() *Parser {
	return &Parser{
		oscRaw:    make([]byte, 0, 256),
		stringRaw: make([]byte, 0, 256),
	}
}

// IsGround reports whether the parser holds no partial sequence.
func (p *Parser) IsGround() bool {
	return p.state == stateGround
}

// Advance feeds a single byte through the state machine, invoking
// performer callbacks for any completed actions.
func (p *Parser) Advance(performer Performer, b byte) {
	if p.state == stateUtf8Sequence {
		p.advanceUtf8(performer, b)
		return
	}

	act, next := unpack(transitions[p.state][b])

	if next == stateUtf8Sequence {
		// Entering UTF-8 assembly defers the current state's exit
		// action until the codepoint is complete.
		p.utf8ReturnState = p.state
		p.state = next
		p.beginUtf8(b)
		return
	}

	if next != p.state {
		p.perform(performer, exitActions[p.state], b)
		p.perform(performer, act, b)
		p.state = next
		p.perform(performer, entryActions[next], b)
	} else {
		p.perform(performer, act, b)
	}
}

// AdvanceBytes feeds a chunk of bytes through the state machine. The
// chunk need not contain complete sequences.
func (p *Parser) AdvanceBytes(performer Performer, data []byte) {
	for _, b := range data {
		p.Advance(performer, b)
	}
}

func (p *Parser) perform(performer Performer, act action, b byte) {
	switch act {
	case actionNone, actionIgnore:

	case actionPrint:
		performer.Print(rune(b))

	case actionExecute:
		performer.Execute(b)

	case actionClear:
		p.clear()

	case actionCollect:
		if p.numIntermediates < maxIntermediates {
			p.intermediates[p.numIntermediates] = b
			p.numIntermediates++
		} else {
			p.ignoredExcess = true
		}

	case actionParam:
		p.param(b)

	case actionEscDispatch:
		performer.EscDispatch(p.intermediates[:p.numIntermediates], p.ignoredExcess, b)

	case actionCsiDispatch:
		p.finishParam()
		performer.CsiDispatch(p.paramList(), p.intermediates[:p.numIntermediates], p.ignoredExcess, rune(b))

	case actionHook:
		p.finishParam()
		performer.Hook(p.paramList(), p.intermediates[:p.numIntermediates], p.ignoredExcess, rune(b))

	case actionPut:
		performer.Put(b)

	case actionUnhook:
		performer.Unhook()

	case actionOscStart:
		p.oscRaw = p.oscRaw[:0]
		p.oscNumParams = 0

	case actionOscPut:
		p.oscPut(b)

	case actionOscEnd:
		p.oscEnd(performer, b)

	case actionStringStart:
		p.stringKind = stringKindFor(b)
		p.stringRaw = p.stringRaw[:0]

	case actionStringPut:
		if len(p.stringRaw) < maxStringRaw {
			p.stringRaw = append(p.stringRaw, b)
		}

	case actionStringEnd:
		performer.SosPmApcDispatch(p.stringKind, p.stringRaw)
	}
}

// stringKindFor maps the byte that introduced a SOS/PM/APC string to
// its canonical 7-bit final (X, ^ or _).
func stringKindFor(b byte) byte {
	switch b {
	case 0x58, 0x98:
		return 'X'
	case 0x5e, 0x9e:
		return '^'
	case 0x5f, 0x9f:
		return '_'
	}
	return '_'
}

func (p *Parser) clear() {
	p.numIntermediates = 0
	p.ignoredExcess = false
	p.numParams = 0
	p.paramsFull = false
	p.curDigits = false
	p.curSubparams = 0
	for i := range p.params[0] {
		p.params[0][i] = 0
	}
}

// param accumulates one parameter byte: a digit, a subparameter
// separator (colon) or a parameter separator (semicolon).
func (p *Parser) param(b byte) {
	if p.paramsFull {
		p.ignoredExcess = true
		return
	}

	switch {
	case b >= '0' && b <= '9':
		if p.curSubparams == 0 {
			p.curSubparams = 1
		}
		sub := p.curSubparams - 1
		if sub < maxSubparams {
			v := p.params[p.numParams][sub]
			v = v*10 + uint16(b-'0')
			if v > 9999 {
				v = 9999
			}
			p.params[p.numParams][sub] = v
		}
		p.curDigits = true

	case b == ':':
		if p.curSubparams < maxSubparams {
			if p.curSubparams == 0 {
				p.curSubparams = 1
			}
			p.params[p.numParams][p.curSubparams] = 0
			p.curSubparams++
		} else {
			p.ignoredExcess = true
		}
		p.curDigits = true

	case b == ';':
		p.finishParam()
	}
}

// finishParam closes out the parameter under construction. A parameter
// with no digits and no colons records zero subparameters, preserving
// the omitted-vs-zero distinction for the dispatch consumer.
func (p *Parser) finishParam() {
	if p.numParams >= maxParams {
		p.paramsFull = true
		p.ignoredExcess = true
		return
	}
	if !p.curDigits && p.curSubparams == 0 {
		p.subparamLens[p.numParams] = 0
	} else {
		n := p.curSubparams
		if n > maxSubparams {
			n = maxSubparams
		}
		p.subparamLens[p.numParams] = n
	}
	p.numParams++
	if p.numParams >= maxParams {
		p.paramsFull = true
	} else {
		for i := range p.params[p.numParams] {
			p.params[p.numParams][i] = 0
		}
	}
	p.curDigits = false
	p.curSubparams = 0
}

// paramList builds the dispatch view of the accumulated parameters.
// The returned slices alias the parser's internal buffers and are only
// valid for the duration of the callback.
func (p *Parser) paramList() [][]uint16 {
	// A bare final byte ("CSI H") dispatches with no parameters at
	// all, but trailing separators ("CSI 1; H") still record the
	// final omitted parameter via finishParam.
	if p.numParams == 1 && p.subparamLens[0] == 0 {
		return p.paramScratch[:0]
	}
	for i := 0; i < p.numParams; i++ {
		p.paramScratch[i] = p.params[i][:p.subparamLens[i]]
	}
	return p.paramScratch[:p.numParams]
}

func (p *Parser) oscPut(b byte) {
	if b == ';' {
		if p.oscNumParams < maxOscParams {
			p.oscParamEnds[p.oscNumParams] = len(p.oscRaw)
			p.oscNumParams++
			return
		}
		// Past the field limit the separator becomes payload, so
		// the final field keeps the remainder intact.
	}
	if len(p.oscRaw) < maxOscRaw {
		p.oscRaw = append(p.oscRaw, b)
	}
}

func (p *Parser) oscEnd(performer Performer, terminator byte) {
	if len(p.oscRaw) == 0 && p.oscNumParams == 0 {
		performer.OscDispatch(nil, terminator == 0x07)
		return
	}
	n := p.oscNumParams
	start := 0
	for i := 0; i < n; i++ {
		p.oscScratch[i] = p.oscRaw[start:p.oscParamEnds[i]]
		start = p.oscParamEnds[i]
	}
	p.oscScratch[n] = p.oscRaw[start:]
	performer.OscDispatch(p.oscScratch[:n+1], terminator == 0x07)
}

// beginUtf8 records a UTF-8 lead byte. The table only routes lead
// bytes 0xC2-0xF4 here, so the expected length is always 2-4.
func (p *Parser) beginUtf8(b byte) {
	p.utf8Buf[0] = b
	p.utf8Len = 1
	switch {
	case b >= 0xf0:
		p.utf8Need = 4
	case b >= 0xe0:
		p.utf8Need = 3
	default:
		p.utf8Need = 2
	}
}

// advanceUtf8 consumes continuation bytes. Invalid or truncated
// sequences are dropped: the pending bytes are discarded and the
// offending byte is re-examined in the state we came from.
func (p *Parser) advanceUtf8(performer Performer, b byte) {
	if b < 0x80 || b > 0xbf {
		p.state = p.utf8ReturnState
		p.Advance(performer, b)
		return
	}

	p.utf8Buf[p.utf8Len] = b
	p.utf8Len++
	if p.utf8Len < p.utf8Need {
		return
	}

	p.state = p.utf8ReturnState
	r, size := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
	if r == utf8.RuneError && size <= 1 {
		return
	}

	// A UTF-8-encoded C1 control behaves like its raw 8-bit form, so it
	// goes back through the transition table instead of being printed.
	if r >= 0x80 && r <= 0x9f {
		p.Advance(performer, byte(r))
		return
	}

	switch p.utf8ReturnState {
	case stateGround:
		performer.Print(r)
	case stateOscString:
		for _, eb := range p.utf8Buf[:p.utf8Len] {
			p.oscPut(eb)
		}
	case stateSosPmApcString:
		if len(p.stringRaw)+p.utf8Len <= maxStringRaw {
			p.stringRaw = append(p.stringRaw, p.utf8Buf[:p.utf8Len]...)
		}
	}
}
