package ansi

import "log"

// EscDispatch implements vte.Performer. It routes a complete ESC sequence
// to the handler.
func (d *Decoder) EscDispatch(intermediates []byte, ignore bool, final byte) {
	if ignore {
		return
	}

	h := d.handler
	var inter byte
	if len(intermediates) > 0 {
		inter = intermediates[0]
	}

	// Charset designation: ESC ( ) * + followed by the set identifier.
	if index, ok := charsetSlot(inter); ok {
		switch final {
		case 'B':
			h.ConfigureCharset(index, CharsetASCII)
		case '0':
			h.ConfigureCharset(index, CharsetLineDrawing)
		}
		return
	}

	switch final {
	case 'D': // IND
		h.LineFeed()
	case 'E': // NEL
		h.LineFeed()
		h.CarriageReturn()
	case 'H': // HTS
		h.HorizontalTabSet()
	case 'M': // RI
		h.ReverseIndex()
	case 'Z': // DECID
		h.IdentifyTerminal(0)
	case 'c': // RIS
		h.ResetState()
	case '7': // DECSC
		h.SaveCursorPosition()
	case '8':
		if inter == '#' { // DECALN
			h.Decaln()
		} else { // DECRC
			h.RestoreCursorPosition()
		}
	case '=': // DECKPAM
		h.SetKeypadApplicationMode()
	case '>': // DECKPNM
		h.UnsetKeypadApplicationMode()
	case '\\': // ST, already consumed as a terminator
	default:
		log.Printf("ansi: unhandled ESC final %q (intermediates %v)", final, intermediates)
	}
}

func charsetSlot(inter byte) (CharsetIndex, bool) {
	switch inter {
	case '(':
		return CharsetIndexG0, true
	case ')':
		return CharsetIndexG1, true
	case '*':
		return CharsetIndexG2, true
	case '+':
		return CharsetIndexG3, true
	}
	return 0, false
}
