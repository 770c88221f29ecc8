package ansi

import "log"

// CsiDispatch implements vte.Performer. It routes a complete CSI sequence
// to the handler.
func (d *Decoder) CsiDispatch(params [][]uint16, intermediates []byte, ignore bool, final rune) {
	if ignore {
		return
	}

	h := d.handler
	var marker byte
	if len(intermediates) > 0 {
		marker = intermediates[0]
	}

	switch final {
	case '@':
		h.InsertBlank(paramOrMin(params, 0, 1, 1))
	case 'A':
		h.MoveUp(paramOrMin(params, 0, 1, 1))
	case 'B', 'e':
		h.MoveDown(paramOrMin(params, 0, 1, 1))
	case 'C', 'a':
		h.MoveForward(paramOrMin(params, 0, 1, 1))
	case 'D':
		h.MoveBackward(paramOrMin(params, 0, 1, 1))
	case 'E':
		h.MoveDownCr(paramOrMin(params, 0, 1, 1))
	case 'F':
		h.MoveUpCr(paramOrMin(params, 0, 1, 1))
	case 'G', '`':
		h.GotoCol(paramOrMin(params, 0, 1, 1) - 1)
	case 'H', 'f':
		h.Goto(paramOrMin(params, 0, 1, 1)-1, paramOrMin(params, 1, 1, 1)-1)
	case 'I':
		h.MoveForwardTabs(paramOrMin(params, 0, 1, 1))
	case 'J':
		switch param(params, 0, 0) {
		case 0:
			h.ClearScreen(ClearModeBelow)
		case 1:
			h.ClearScreen(ClearModeAbove)
		case 2:
			h.ClearScreen(ClearModeAll)
		case 3:
			h.ClearScreen(ClearModeSaved)
		}
	case 'K':
		switch param(params, 0, 0) {
		case 0:
			h.ClearLine(LineClearModeRight)
		case 1:
			h.ClearLine(LineClearModeLeft)
		case 2:
			h.ClearLine(LineClearModeAll)
		}
	case 'L':
		h.InsertBlankLines(paramOrMin(params, 0, 1, 1))
	case 'M':
		h.DeleteLines(paramOrMin(params, 0, 1, 1))
	case 'P':
		h.DeleteChars(paramOrMin(params, 0, 1, 1))
	case 'S':
		h.ScrollUp(paramOrMin(params, 0, 1, 1))
	case 'T':
		// CSI with five params selects highlight tracking, which is not
		// supported; plain SD has at most one.
		if len(params) <= 1 {
			h.ScrollDown(paramOrMin(params, 0, 1, 1))
		}
	case 'X':
		h.EraseChars(paramOrMin(params, 0, 1, 1))
	case 'Z':
		h.MoveBackwardTabs(paramOrMin(params, 0, 1, 1))
	case 'b':
		h.Repeat(paramOrMin(params, 0, 1, 1))
	case 'c':
		h.IdentifyTerminal(marker)
	case 'd':
		h.GotoLine(paramOrMin(params, 0, 1, 1) - 1)
	case 'g':
		switch param(params, 0, 0) {
		case 0:
			h.ClearTabs(TabulationClearModeCurrent)
		case 3:
			h.ClearTabs(TabulationClearModeAll)
		}
	case 'h':
		for i := range params {
			if mode, ok := terminalMode(param(params, i, 0), marker == '?'); ok {
				h.SetMode(mode)
			}
		}
	case 'l':
		for i := range params {
			if mode, ok := terminalMode(param(params, i, 0), marker == '?'); ok {
				h.UnsetMode(mode)
			}
		}
	case 'm':
		switch marker {
		case '>':
			if param(params, 0, 0) == 4 {
				h.SetModifyOtherKeys(ModifyOtherKeys(param(params, 1, 0)))
			}
		case '?':
			if param(params, 0, 0) == 4 {
				h.ReportModifyOtherKeys()
			}
		default:
			d.sgr(params)
		}
	case 'n':
		h.DeviceStatus(param(params, 0, 0))
	case 'p':
		if marker == '!' {
			h.ResetState()
		}
	case 'q':
		if marker == ' ' {
			if style, ok := cursorStyle(param(params, 0, 0)); ok {
				h.SetCursorStyle(style)
			}
		}
	case 'r':
		h.SetScrollingRegion(param(params, 0, 1), param(params, 1, 0))
	case 's':
		h.SaveCursorPosition()
	case 't':
		switch param(params, 0, 0) {
		case 14:
			h.TextAreaSizePixels()
		case 16:
			h.CellSizePixels()
		case 18:
			h.TextAreaSizeChars()
		case 22:
			h.PushTitle()
		case 23:
			h.PopTitle()
		}
	case 'u':
		switch marker {
		case 0:
			h.RestoreCursorPosition()
		case '?':
			h.ReportKeyboardMode()
		case '>':
			h.PushKeyboardMode(KeyboardMode(param(params, 0, 0)))
		case '<':
			h.PopKeyboardMode(paramOrMin(params, 0, 1, 1))
		case '=':
			mode := KeyboardMode(param(params, 0, 0))
			switch param(params, 1, 1) {
			case 1:
				h.SetKeyboardMode(mode, KeyboardModeBehaviorReplace)
			case 2:
				h.SetKeyboardMode(mode, KeyboardModeBehaviorUnion)
			case 3:
				h.SetKeyboardMode(mode, KeyboardModeBehaviorDifference)
			}
		}
	default:
		log.Printf("ansi: unhandled CSI final %q (intermediates %v)", final, intermediates)
	}
}

// terminalMode maps an SM/RM or DECSET/DECRST number to a TerminalMode.
func terminalMode(num int, private bool) (TerminalMode, bool) {
	if private {
		switch num {
		case 1:
			return TerminalModeCursorKeys, true
		case 3:
			return TerminalModeColumnMode, true
		case 6:
			return TerminalModeOrigin, true
		case 7:
			return TerminalModeLineWrap, true
		case 9:
			return TerminalModeX10Mouse, true
		case 12:
			return TerminalModeBlinkingCursor, true
		case 25:
			return TerminalModeShowCursor, true
		case 1000:
			return TerminalModeReportMouseClicks, true
		case 1002:
			return TerminalModeReportCellMouseMotion, true
		case 1003:
			return TerminalModeReportAllMouseMotion, true
		case 1004:
			return TerminalModeReportFocusInOut, true
		case 1005:
			return TerminalModeUTF8Mouse, true
		case 1006:
			return TerminalModeSGRMouse, true
		case 1007:
			return TerminalModeAlternateScroll, true
		case 1016:
			return TerminalModeSGRPixelsMouse, true
		case 1042:
			return TerminalModeUrgencyHints, true
		case 1049:
			return TerminalModeSwapScreenAndSetRestoreCursor, true
		case 2004:
			return TerminalModeBracketedPaste, true
		}
		return 0, false
	}

	switch num {
	case 4:
		return TerminalModeInsert, true
	case 20:
		return TerminalModeLineFeedNewLine, true
	}
	return 0, false
}

// cursorStyle maps a DECSCUSR parameter to a CursorStyle.
func cursorStyle(num int) (CursorStyle, bool) {
	switch num {
	case 0, 1:
		return CursorStyleBlinkingBlock, true
	case 2:
		return CursorStyleSteadyBlock, true
	case 3:
		return CursorStyleBlinkingUnderline, true
	case 4:
		return CursorStyleSteadyUnderline, true
	case 5:
		return CursorStyleBlinkingBar, true
	case 6:
		return CursorStyleSteadyBar, true
	}
	return 0, false
}
