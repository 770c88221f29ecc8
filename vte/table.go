package vte

// state is the current position of the escape-sequence state machine.
// The set of states follows https://vt100.net/emu/dec_ansi_parser with
// one addition: Utf8Sequence, used to assemble multi-byte UTF-8
// codepoints encountered in Ground, OscString and SosPmApcString.
type state uint8

const (
	stateGround state = iota
	stateEscape
	stateEscapeIntermediate
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
	stateCsiIgnore
	stateDcsEntry
	stateDcsParam
	stateDcsIntermediate
	stateDcsPassthrough
	stateDcsIgnore
	stateOscString
	stateSosPmApcString
	stateUtf8Sequence
	stateCount
)

// action is what to do with the byte that caused a transition.
type action uint8

const (
	actionNone action = iota
	actionIgnore
	actionPrint
	actionExecute
	actionClear
	actionCollect
	actionParam
	actionEscDispatch
	actionCsiDispatch
	actionHook
	actionPut
	actionUnhook
	actionOscStart
	actionOscPut
	actionOscEnd
	actionStringStart
	actionStringPut
	actionStringEnd
	actionUtf8
)

// transitions maps state x byte -> packed (action<<8 | next state).
// Built once at init from the declarative rules below; lookups are a
// single array index per byte. The action enum no longer fits a nibble,
// so each cell is 16 bits wide.
var transitions [stateCount][256]uint16

// entryActions and exitActions fire when a state is entered or left.
var entryActions = [stateCount]action{
	stateEscape:         actionClear,
	stateCsiEntry:       actionClear,
	stateDcsEntry:       actionClear,
	stateDcsPassthrough: actionHook,
	stateOscString:      actionOscStart,
	stateSosPmApcString: actionStringStart,
}

var exitActions = [stateCount]action{
	stateDcsPassthrough: actionUnhook,
	stateOscString:      actionOscEnd,
	stateSosPmApcString: actionStringEnd,
}

func pack(a action, s state) uint16 {
	return uint16(a)<<8 | uint16(s)
}

func unpack(v uint16) (action, state) {
	return action(v >> 8), state(v & 0xff)
}

// rule assigns (action, next state) to an inclusive byte range.
type rule struct {
	lo, hi byte
	action action
	next   state
}

func fill(s state, rules []rule) {
	for _, r := range rules {
		for b := int(r.lo); b <= int(r.hi); b++ {
			transitions[s][b] = pack(r.action, r.next)
		}
	}
}

// anywhere transitions take precedence in every state: CAN/SUB abort
// the current sequence, ESC restarts one, and raw C1 controls act as
// their 7-bit introducer equivalents.
var anywhereRules = []rule{
	{0x18, 0x18, actionExecute, stateGround},
	{0x1a, 0x1a, actionExecute, stateGround},
	{0x1b, 0x1b, actionNone, stateEscape},
	{0x80, 0x8f, actionExecute, stateGround},
	{0x90, 0x90, actionNone, stateDcsEntry},
	{0x91, 0x97, actionExecute, stateGround},
	{0x98, 0x98, actionNone, stateSosPmApcString},
	{0x99, 0x9a, actionExecute, stateGround},
	{0x9b, 0x9b, actionNone, stateCsiEntry},
	{0x9c, 0x9c, actionNone, stateGround},
	{0x9d, 0x9d, actionNone, stateOscString},
	{0x9e, 0x9f, actionNone, stateSosPmApcString},
}

// utf8Rules route UTF-8 lead bytes into the assembly state. Applied to
// the states whose payload may legitimately contain multi-byte text.
var utf8Rules = []rule{
	{0xc2, 0xdf, actionUtf8, stateUtf8Sequence},
	{0xe0, 0xef, actionUtf8, stateUtf8Sequence},
	{0xf0, 0xf4, actionUtf8, stateUtf8Sequence},
}

func init() {
	stay := func(s state, a action) []rule {
		// C0 codes (minus the anywhere set) handled without leaving s.
		return []rule{
			{0x00, 0x17, a, s},
			{0x19, 0x19, a, s},
			{0x1c, 0x1f, a, s},
		}
	}

	fill(stateGround, append(stay(stateGround, actionExecute), []rule{
		{0x20, 0x7f, actionPrint, stateGround},
	}...))
	fill(stateGround, utf8Rules)

	fill(stateEscape, append(stay(stateEscape, actionExecute), []rule{
		{0x20, 0x2f, actionCollect, stateEscapeIntermediate},
		{0x30, 0x4f, actionEscDispatch, stateGround},
		{0x50, 0x50, actionNone, stateDcsEntry},
		{0x51, 0x57, actionEscDispatch, stateGround},
		{0x58, 0x58, actionNone, stateSosPmApcString},
		{0x59, 0x5a, actionEscDispatch, stateGround},
		{0x5b, 0x5b, actionNone, stateCsiEntry},
		{0x5c, 0x5c, actionEscDispatch, stateGround},
		{0x5d, 0x5d, actionNone, stateOscString},
		{0x5e, 0x5f, actionNone, stateSosPmApcString},
		{0x60, 0x7e, actionEscDispatch, stateGround},
		{0x7f, 0x7f, actionIgnore, stateEscape},
	}...))

	fill(stateEscapeIntermediate, append(stay(stateEscapeIntermediate, actionExecute), []rule{
		{0x20, 0x2f, actionCollect, stateEscapeIntermediate},
		{0x30, 0x7e, actionEscDispatch, stateGround},
		{0x7f, 0x7f, actionIgnore, stateEscapeIntermediate},
	}...))

	fill(stateCsiEntry, append(stay(stateCsiEntry, actionExecute), []rule{
		{0x20, 0x2f, actionCollect, stateCsiIntermediate},
		{0x30, 0x39, actionParam, stateCsiParam},
		{0x3a, 0x3a, actionParam, stateCsiParam},
		{0x3b, 0x3b, actionParam, stateCsiParam},
		{0x3c, 0x3f, actionCollect, stateCsiParam},
		{0x40, 0x7e, actionCsiDispatch, stateGround},
		{0x7f, 0x7f, actionIgnore, stateCsiEntry},
	}...))

	fill(stateCsiParam, append(stay(stateCsiParam, actionExecute), []rule{
		{0x20, 0x2f, actionCollect, stateCsiIntermediate},
		{0x30, 0x3b, actionParam, stateCsiParam},
		{0x3c, 0x3f, actionNone, stateCsiIgnore},
		{0x40, 0x7e, actionCsiDispatch, stateGround},
		{0x7f, 0x7f, actionIgnore, stateCsiParam},
	}...))

	fill(stateCsiIntermediate, append(stay(stateCsiIntermediate, actionExecute), []rule{
		{0x20, 0x2f, actionCollect, stateCsiIntermediate},
		{0x30, 0x3f, actionNone, stateCsiIgnore},
		{0x40, 0x7e, actionCsiDispatch, stateGround},
		{0x7f, 0x7f, actionIgnore, stateCsiIntermediate},
	}...))

	fill(stateCsiIgnore, append(stay(stateCsiIgnore, actionExecute), []rule{
		{0x20, 0x3f, actionIgnore, stateCsiIgnore},
		{0x40, 0x7e, actionNone, stateGround},
		{0x7f, 0x7f, actionIgnore, stateCsiIgnore},
	}...))

	fill(stateDcsEntry, append(stay(stateDcsEntry, actionIgnore), []rule{
		{0x20, 0x2f, actionCollect, stateDcsIntermediate},
		{0x30, 0x39, actionParam, stateDcsParam},
		{0x3a, 0x3a, actionNone, stateDcsIgnore},
		{0x3b, 0x3b, actionParam, stateDcsParam},
		{0x3c, 0x3f, actionCollect, stateDcsParam},
		{0x40, 0x7e, actionNone, stateDcsPassthrough},
		{0x7f, 0x7f, actionIgnore, stateDcsEntry},
	}...))

	fill(stateDcsParam, append(stay(stateDcsParam, actionIgnore), []rule{
		{0x20, 0x2f, actionCollect, stateDcsIntermediate},
		{0x30, 0x39, actionParam, stateDcsParam},
		{0x3a, 0x3a, actionNone, stateDcsIgnore},
		{0x3b, 0x3b, actionParam, stateDcsParam},
		{0x3c, 0x3f, actionNone, stateDcsIgnore},
		{0x40, 0x7e, actionNone, stateDcsPassthrough},
		{0x7f, 0x7f, actionIgnore, stateDcsParam},
	}...))

	fill(stateDcsIntermediate, append(stay(stateDcsIntermediate, actionIgnore), []rule{
		{0x20, 0x2f, actionCollect, stateDcsIntermediate},
		{0x30, 0x3f, actionNone, stateDcsIgnore},
		{0x40, 0x7e, actionNone, stateDcsPassthrough},
		{0x7f, 0x7f, actionIgnore, stateDcsIntermediate},
	}...))

	fill(stateDcsPassthrough, append(stay(stateDcsPassthrough, actionPut), []rule{
		{0x20, 0x7e, actionPut, stateDcsPassthrough},
		{0x7f, 0x7f, actionIgnore, stateDcsPassthrough},
	}...))

	fill(stateDcsIgnore, append(stay(stateDcsIgnore, actionIgnore), []rule{
		{0x20, 0x7f, actionIgnore, stateDcsIgnore},
	}...))

	fill(stateOscString, []rule{
		{0x00, 0x06, actionIgnore, stateOscString},
		// BEL terminates OSC strings in addition to ST, an xterm
		// extension relied on by most OSC emitters.
		{0x07, 0x07, actionIgnore, stateGround},
		{0x08, 0x17, actionIgnore, stateOscString},
		{0x19, 0x19, actionIgnore, stateOscString},
		{0x1c, 0x1f, actionIgnore, stateOscString},
		{0x20, 0x7f, actionOscPut, stateOscString},
	})
	fill(stateOscString, utf8Rules)

	fill(stateSosPmApcString, []rule{
		{0x00, 0x17, actionStringPut, stateSosPmApcString},
		{0x19, 0x19, actionStringPut, stateSosPmApcString},
		{0x1c, 0x1f, actionStringPut, stateSosPmApcString},
		// BEL termination accepted here for symmetry with OSC.
		{0x07, 0x07, actionIgnore, stateGround},
		{0x20, 0x7f, actionStringPut, stateSosPmApcString},
	})
	fill(stateSosPmApcString, utf8Rules)

	// The anywhere set wins over every state-specific rule.
	for s := stateGround; s < stateUtf8Sequence; s++ {
		fill(s, anywhereRules)
	}
}
