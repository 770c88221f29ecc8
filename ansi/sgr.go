package ansi

// sgr applies a full SGR parameter list as a series of attribute calls.
func (d *Decoder) sgr(params [][]uint16) {
	if len(params) == 0 {
		d.attr(TerminalCharAttribute{Attr: CharAttributeReset})
		return
	}

	for i := 0; i < len(params); i++ {
		p := params[i]
		var n int
		if len(p) > 0 {
			n = int(p[0])
		}

		switch n {
		case 0:
			d.attr(TerminalCharAttribute{Attr: CharAttributeReset})
		case 1:
			d.attr(TerminalCharAttribute{Attr: CharAttributeBold})
		case 2:
			d.attr(TerminalCharAttribute{Attr: CharAttributeDim})
		case 3:
			d.attr(TerminalCharAttribute{Attr: CharAttributeItalic})
		case 4:
			// 4:x subparameter selects the underline style.
			style := 1
			if len(p) > 1 {
				style = int(p[1])
			}
			switch style {
			case 0:
				d.attr(TerminalCharAttribute{Attr: CharAttributeCancelUnderline})
			case 1:
				d.attr(TerminalCharAttribute{Attr: CharAttributeUnderline})
			case 2:
				d.attr(TerminalCharAttribute{Attr: CharAttributeDoubleUnderline})
			case 3:
				d.attr(TerminalCharAttribute{Attr: CharAttributeCurlyUnderline})
			case 4:
				d.attr(TerminalCharAttribute{Attr: CharAttributeDottedUnderline})
			case 5:
				d.attr(TerminalCharAttribute{Attr: CharAttributeDashedUnderline})
			}
		case 5:
			d.attr(TerminalCharAttribute{Attr: CharAttributeBlinkSlow})
		case 6:
			d.attr(TerminalCharAttribute{Attr: CharAttributeBlinkFast})
		case 7:
			d.attr(TerminalCharAttribute{Attr: CharAttributeReverse})
		case 8:
			d.attr(TerminalCharAttribute{Attr: CharAttributeHidden})
		case 9:
			d.attr(TerminalCharAttribute{Attr: CharAttributeStrike})
		case 21:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelBold})
		case 22:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelBoldDim})
		case 23:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelItalic})
		case 24:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelUnderline})
		case 25:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelBlink})
		case 27:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelReverse})
		case 28:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelHidden})
		case 29:
			d.attr(TerminalCharAttribute{Attr: CharAttributeCancelStrike})
		case 30, 31, 32, 33, 34, 35, 36, 37:
			named := NamedColor(n - 30)
			d.attr(TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &named})
		case 38:
			a, skip, ok := sgrColor(CharAttributeForeground, params, i)
			if !ok {
				return
			}
			d.attr(a)
			i += skip
		case 39:
			d.attr(TerminalCharAttribute{Attr: CharAttributeForeground})
		case 40, 41, 42, 43, 44, 45, 46, 47:
			named := NamedColor(n - 40)
			d.attr(TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &named})
		case 48:
			a, skip, ok := sgrColor(CharAttributeBackground, params, i)
			if !ok {
				return
			}
			d.attr(a)
			i += skip
		case 49:
			d.attr(TerminalCharAttribute{Attr: CharAttributeBackground})
		case 58:
			a, skip, ok := sgrColor(CharAttributeUnderlineColor, params, i)
			if !ok {
				return
			}
			d.attr(a)
			i += skip
		case 59:
			d.attr(TerminalCharAttribute{Attr: CharAttributeUnderlineColor})
		case 90, 91, 92, 93, 94, 95, 96, 97:
			named := NamedColor(n - 90 + 8)
			d.attr(TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &named})
		case 100, 101, 102, 103, 104, 105, 106, 107:
			named := NamedColor(n - 100 + 8)
			d.attr(TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &named})
		}
	}
}

func (d *Decoder) attr(a TerminalCharAttribute) {
	d.handler.SetTerminalCharAttribute(a)
}

// sgrColor parses the extended color forms of SGR 38, 48 and 58: the colon
// form carries the color in subparameters of params[i], the legacy
// semicolon form spreads it over the following parameters. It returns the
// attribute and how many extra parameters were consumed.
func sgrColor(attr CharAttribute, params [][]uint16, i int) (TerminalCharAttribute, int, bool) {
	p := params[i]

	if len(p) > 1 {
		// Colon form: 38:2:[colorspace:]r:g:b or 38:5:index.
		switch p[1] {
		case 2:
			var r, g, b uint16
			switch len(p) {
			case 5:
				r, g, b = p[2], p[3], p[4]
			case 6:
				r, g, b = p[3], p[4], p[5]
			default:
				return TerminalCharAttribute{}, 0, false
			}
			rgb := &RGBColor{R: uint8(r), G: uint8(g), B: uint8(b)}
			return TerminalCharAttribute{Attr: attr, RGBColor: rgb}, 0, true
		case 5:
			if len(p) < 3 {
				return TerminalCharAttribute{}, 0, false
			}
			idx := &IndexedColor{Index: uint8(p[2])}
			return TerminalCharAttribute{Attr: attr, IndexedColor: idx}, 0, true
		}
		return TerminalCharAttribute{}, 0, false
	}

	// Semicolon form: 38;2;r;g;b or 38;5;index.
	switch param(params, i+1, -1) {
	case 2:
		if i+4 >= len(params) {
			return TerminalCharAttribute{}, 0, false
		}
		rgb := &RGBColor{
			R: uint8(param(params, i+2, 0)),
			G: uint8(param(params, i+3, 0)),
			B: uint8(param(params, i+4, 0)),
		}
		return TerminalCharAttribute{Attr: attr, RGBColor: rgb}, 4, true
	case 5:
		if i+2 >= len(params) {
			return TerminalCharAttribute{}, 0, false
		}
		idx := &IndexedColor{Index: uint8(param(params, i+2, 0))}
		return TerminalCharAttribute{Attr: attr, IndexedColor: idx}, 2, true
	}
	return TerminalCharAttribute{}, 0, false
}
