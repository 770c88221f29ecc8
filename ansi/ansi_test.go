package ansi

import (
	"fmt"
	"image/color"
	"testing"
)

// recorder implements Handler and records each call as a readable string.
type recorder struct {
	calls []string
}

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Input(ch rune)            { r.log("Input(%q)", ch) }
func (r *recorder) Bell()                    { r.log("Bell") }
func (r *recorder) Backspace()               { r.log("Backspace") }
func (r *recorder) CarriageReturn()          { r.log("CarriageReturn") }
func (r *recorder) LineFeed()                { r.log("LineFeed") }
func (r *recorder) Substitute()              { r.log("Substitute") }
func (r *recorder) Tab(n int)                { r.log("Tab(%d)", n) }
func (r *recorder) HorizontalTabSet()        { r.log("HorizontalTabSet") }
func (r *recorder) MoveBackwardTabs(n int)   { r.log("MoveBackwardTabs(%d)", n) }
func (r *recorder) MoveForwardTabs(n int)    { r.log("MoveForwardTabs(%d)", n) }
func (r *recorder) Goto(row, col int)        { r.log("Goto(%d,%d)", row, col) }
func (r *recorder) GotoLine(row int)         { r.log("GotoLine(%d)", row) }
func (r *recorder) GotoCol(col int)          { r.log("GotoCol(%d)", col) }
func (r *recorder) MoveUp(n int)             { r.log("MoveUp(%d)", n) }
func (r *recorder) MoveDown(n int)           { r.log("MoveDown(%d)", n) }
func (r *recorder) MoveForward(n int)        { r.log("MoveForward(%d)", n) }
func (r *recorder) MoveBackward(n int)       { r.log("MoveBackward(%d)", n) }
func (r *recorder) MoveUpCr(n int)           { r.log("MoveUpCr(%d)", n) }
func (r *recorder) MoveDownCr(n int)         { r.log("MoveDownCr(%d)", n) }
func (r *recorder) InsertBlank(n int)        { r.log("InsertBlank(%d)", n) }
func (r *recorder) InsertBlankLines(n int)   { r.log("InsertBlankLines(%d)", n) }
func (r *recorder) DeleteChars(n int)        { r.log("DeleteChars(%d)", n) }
func (r *recorder) DeleteLines(n int)        { r.log("DeleteLines(%d)", n) }
func (r *recorder) EraseChars(n int)         { r.log("EraseChars(%d)", n) }
func (r *recorder) Repeat(n int)             { r.log("Repeat(%d)", n) }
func (r *recorder) ScrollUp(n int)           { r.log("ScrollUp(%d)", n) }
func (r *recorder) ScrollDown(n int)         { r.log("ScrollDown(%d)", n) }
func (r *recorder) SaveCursorPosition()      { r.log("SaveCursorPosition") }
func (r *recorder) RestoreCursorPosition()   { r.log("RestoreCursorPosition") }
func (r *recorder) ReverseIndex()            { r.log("ReverseIndex") }
func (r *recorder) SetKeypadApplicationMode() {
	r.log("SetKeypadApplicationMode")
}
func (r *recorder) UnsetKeypadApplicationMode() {
	r.log("UnsetKeypadApplicationMode")
}
func (r *recorder) SetActiveCharset(n int) { r.log("SetActiveCharset(%d)", n) }
func (r *recorder) ConfigureCharset(index CharsetIndex, charset Charset) {
	r.log("ConfigureCharset(%d,%d)", index, charset)
}
func (r *recorder) ClearLine(mode LineClearMode) { r.log("ClearLine(%d)", mode) }
func (r *recorder) ClearScreen(mode ClearMode)   { r.log("ClearScreen(%d)", mode) }
func (r *recorder) ClearTabs(mode TabulationClearMode) {
	r.log("ClearTabs(%d)", mode)
}
func (r *recorder) SetScrollingRegion(top, bottom int) {
	r.log("SetScrollingRegion(%d,%d)", top, bottom)
}
func (r *recorder) SetCursorStyle(style CursorStyle) { r.log("SetCursorStyle(%d)", style) }
func (r *recorder) SetMode(mode TerminalMode)        { r.log("SetMode(%d)", mode) }
func (r *recorder) UnsetMode(mode TerminalMode)      { r.log("UnsetMode(%d)", mode) }
func (r *recorder) SetTerminalCharAttribute(attr TerminalCharAttribute) {
	switch {
	case attr.RGBColor != nil:
		r.log("Attr(%d,rgb:%d/%d/%d)", attr.Attr, attr.RGBColor.R, attr.RGBColor.G, attr.RGBColor.B)
	case attr.IndexedColor != nil:
		r.log("Attr(%d,idx:%d)", attr.Attr, attr.IndexedColor.Index)
	case attr.NamedColor != nil:
		r.log("Attr(%d,named:%d)", attr.Attr, *attr.NamedColor)
	default:
		r.log("Attr(%d)", attr.Attr)
	}
}
func (r *recorder) IdentifyTerminal(b byte) { r.log("IdentifyTerminal(%d)", b) }
func (r *recorder) DeviceStatus(n int)      { r.log("DeviceStatus(%d)", n) }
func (r *recorder) ResetState()             { r.log("ResetState") }
func (r *recorder) Decaln()                 { r.log("Decaln") }
func (r *recorder) SetTitle(title string)   { r.log("SetTitle(%s)", title) }
func (r *recorder) PushTitle()              { r.log("PushTitle") }
func (r *recorder) PopTitle()               { r.log("PopTitle") }
func (r *recorder) SetHyperlink(h *Hyperlink) {
	if h == nil {
		r.log("SetHyperlink(nil)")
		return
	}
	r.log("SetHyperlink(%s,%s)", h.ID, h.URI)
}
func (r *recorder) SetColor(index int, c color.Color) {
	cr, cg, cb, _ := c.RGBA()
	r.log("SetColor(%d,%d/%d/%d)", index, cr>>8, cg>>8, cb>>8)
}
func (r *recorder) ResetColor(i int) { r.log("ResetColor(%d)", i) }
func (r *recorder) SetDynamicColor(prefix string, index int, terminator string) {
	r.log("SetDynamicColor(%s,%d,%q)", prefix, index, terminator)
}
func (r *recorder) ClipboardStore(clipboard byte, data []byte) {
	r.log("ClipboardStore(%c,%s)", clipboard, data)
}
func (r *recorder) ClipboardLoad(clipboard byte, terminator string) {
	r.log("ClipboardLoad(%c,%q)", clipboard, terminator)
}
func (r *recorder) SetWorkingDirectory(uri string) { r.log("SetWorkingDirectory(%s)", uri) }
func (r *recorder) ShellIntegrationMark(mark ShellIntegrationMark, exitCode int) {
	r.log("ShellIntegrationMark(%d,%d)", mark, exitCode)
}
func (r *recorder) SetUserVar(name, value string) { r.log("SetUserVar(%s,%s)", name, value) }
func (r *recorder) DesktopNotification(p *NotificationPayload) {
	r.log("DesktopNotification(%s,%s,%s)", p.ID, p.PayloadType, p.Data)
}
func (r *recorder) PushKeyboardMode(mode KeyboardMode) { r.log("PushKeyboardMode(%d)", mode) }
func (r *recorder) PopKeyboardMode(n int)              { r.log("PopKeyboardMode(%d)", n) }
func (r *recorder) SetKeyboardMode(mode KeyboardMode, behavior KeyboardModeBehavior) {
	r.log("SetKeyboardMode(%d,%d)", mode, behavior)
}
func (r *recorder) ReportKeyboardMode() { r.log("ReportKeyboardMode") }
func (r *recorder) SetModifyOtherKeys(m ModifyOtherKeys) {
	r.log("SetModifyOtherKeys(%d)", m)
}
func (r *recorder) ReportModifyOtherKeys() { r.log("ReportModifyOtherKeys") }
func (r *recorder) TextAreaSizeChars()     { r.log("TextAreaSizeChars") }
func (r *recorder) TextAreaSizePixels()    { r.log("TextAreaSizePixels") }
func (r *recorder) CellSizePixels()        { r.log("CellSizePixels") }
func (r *recorder) SixelReceived(params [][]uint16, data []byte) {
	r.log("SixelReceived(%d,%s)", len(params), data)
}
func (r *recorder) ApplicationCommandReceived(data []byte) {
	r.log("APC(%s)", data)
}
func (r *recorder) PrivacyMessageReceived(data []byte) { r.log("PM(%s)", data) }
func (r *recorder) StartOfStringReceived(data []byte)  { r.log("SOS(%s)", data) }

func decode(t *testing.T, input string) *recorder {
	t.Helper()
	rec := &recorder{}
	d := NewDecoder(rec)
	if _, err := d.Write([]byte(input)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return rec
}

func expectCalls(t *testing.T, input string, want ...string) {
	t.Helper()
	rec := decode(t, input)
	if len(rec.calls) != len(want) {
		t.Fatalf("input %q: got calls %v, want %v", input, rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("input %q: call %d = %q, want %q", input, i, rec.calls[i], want[i])
		}
	}
}

func TestDecodeCursorMovement(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"\x1b[A", "MoveUp(1)"},
		{"\x1b[5A", "MoveUp(5)"},
		{"\x1b[0B", "MoveDown(1)"},
		{"\x1b[3C", "MoveForward(3)"},
		{"\x1b[2D", "MoveBackward(2)"},
		{"\x1b[2E", "MoveDownCr(2)"},
		{"\x1b[2F", "MoveUpCr(2)"},
		{"\x1b[5G", "GotoCol(4)"},
		{"\x1b[H", "Goto(0,0)"},
		{"\x1b[10;20H", "Goto(9,19)"},
		{"\x1b[;5H", "Goto(0,4)"},
		{"\x1b[7d", "GotoLine(6)"},
		{"\x1b[3I", "MoveForwardTabs(3)"},
		{"\x1b[2Z", "MoveBackwardTabs(2)"},
	}
	for _, tt := range tests {
		expectCalls(t, tt.input, tt.want)
	}
}

func TestDecodeEditing(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"\x1b[4@", "InsertBlank(4)"},
		{"\x1b[2L", "InsertBlankLines(2)"},
		{"\x1b[3M", "DeleteLines(3)"},
		{"\x1b[5P", "DeleteChars(5)"},
		{"\x1b[6X", "EraseChars(6)"},
		{"\x1b[3b", "Repeat(3)"},
		{"\x1b[2S", "ScrollUp(2)"},
		{"\x1b[2T", "ScrollDown(2)"},
		{"\x1b[0J", "ClearScreen(0)"},
		{"\x1b[1J", "ClearScreen(1)"},
		{"\x1b[2J", "ClearScreen(2)"},
		{"\x1b[3J", "ClearScreen(3)"},
		{"\x1b[K", "ClearLine(0)"},
		{"\x1b[1K", "ClearLine(1)"},
		{"\x1b[2K", "ClearLine(2)"},
		{"\x1b[0g", "ClearTabs(0)"},
		{"\x1b[3g", "ClearTabs(1)"},
	}
	for _, tt := range tests {
		expectCalls(t, tt.input, tt.want)
	}
}

func TestDecodeScrollRegion(t *testing.T) {
	expectCalls(t, "\x1b[5;20r", "SetScrollingRegion(5,20)")
	expectCalls(t, "\x1b[r", "SetScrollingRegion(1,0)")
}

func TestDecodeModes(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"\x1b[?25h", []string{fmt.Sprintf("SetMode(%d)", TerminalModeShowCursor)}},
		{"\x1b[?25l", []string{fmt.Sprintf("UnsetMode(%d)", TerminalModeShowCursor)}},
		{"\x1b[?1049h", []string{fmt.Sprintf("SetMode(%d)", TerminalModeSwapScreenAndSetRestoreCursor)}},
		{"\x1b[?1000;1006h", []string{
			fmt.Sprintf("SetMode(%d)", TerminalModeReportMouseClicks),
			fmt.Sprintf("SetMode(%d)", TerminalModeSGRMouse),
		}},
		{"\x1b[?1016h", []string{fmt.Sprintf("SetMode(%d)", TerminalModeSGRPixelsMouse)}},
		{"\x1b[4h", []string{fmt.Sprintf("SetMode(%d)", TerminalModeInsert)}},
		{"\x1b[?9999h", nil}, // unknown numbers are dropped
	}
	for _, tt := range tests {
		expectCalls(t, tt.input, tt.want...)
	}
}

func TestDecodeSGRBasic(t *testing.T) {
	expectCalls(t, "\x1b[m", fmt.Sprintf("Attr(%d)", CharAttributeReset))
	expectCalls(t, "\x1b[0m", fmt.Sprintf("Attr(%d)", CharAttributeReset))
	expectCalls(t, "\x1b[1;3m",
		fmt.Sprintf("Attr(%d)", CharAttributeBold),
		fmt.Sprintf("Attr(%d)", CharAttributeItalic),
	)
	expectCalls(t, "\x1b[31m", fmt.Sprintf("Attr(%d,named:1)", CharAttributeForeground))
	expectCalls(t, "\x1b[94m", fmt.Sprintf("Attr(%d,named:12)", CharAttributeForeground))
	expectCalls(t, "\x1b[44m", fmt.Sprintf("Attr(%d,named:4)", CharAttributeBackground))
	expectCalls(t, "\x1b[39m", fmt.Sprintf("Attr(%d)", CharAttributeForeground))
	expectCalls(t, "\x1b[49m", fmt.Sprintf("Attr(%d)", CharAttributeBackground))
}

func TestDecodeSGRExtendedColors(t *testing.T) {
	expectCalls(t, "\x1b[38;2;10;20;30m",
		fmt.Sprintf("Attr(%d,rgb:10/20/30)", CharAttributeForeground))
	expectCalls(t, "\x1b[48;5;123m",
		fmt.Sprintf("Attr(%d,idx:123)", CharAttributeBackground))
	expectCalls(t, "\x1b[38:2:10:20:30m",
		fmt.Sprintf("Attr(%d,rgb:10/20/30)", CharAttributeForeground))
	expectCalls(t, "\x1b[38:2::10:20:30m",
		fmt.Sprintf("Attr(%d,rgb:10/20/30)", CharAttributeForeground))
	expectCalls(t, "\x1b[58:5:42m",
		fmt.Sprintf("Attr(%d,idx:42)", CharAttributeUnderlineColor))
	// Colors consumed by 38;2 must not be reinterpreted as attributes.
	expectCalls(t, "\x1b[38;2;1;2;3;1m",
		fmt.Sprintf("Attr(%d,rgb:1/2/3)", CharAttributeForeground),
		fmt.Sprintf("Attr(%d)", CharAttributeBold),
	)
}

func TestDecodeSGRUnderlineStyles(t *testing.T) {
	expectCalls(t, "\x1b[4m", fmt.Sprintf("Attr(%d)", CharAttributeUnderline))
	expectCalls(t, "\x1b[4:0m", fmt.Sprintf("Attr(%d)", CharAttributeCancelUnderline))
	expectCalls(t, "\x1b[4:3m", fmt.Sprintf("Attr(%d)", CharAttributeCurlyUnderline))
	expectCalls(t, "\x1b[4:5m", fmt.Sprintf("Attr(%d)", CharAttributeDashedUnderline))
	expectCalls(t, "\x1b[21m", fmt.Sprintf("Attr(%d)", CharAttributeCancelBold))
}

func TestDecodeCursorStyle(t *testing.T) {
	expectCalls(t, "\x1b[2 q", fmt.Sprintf("SetCursorStyle(%d)", CursorStyleSteadyBlock))
	expectCalls(t, "\x1b[ q", fmt.Sprintf("SetCursorStyle(%d)", CursorStyleBlinkingBlock))
	expectCalls(t, "\x1b[5 q", fmt.Sprintf("SetCursorStyle(%d)", CursorStyleBlinkingBar))
}

func TestDecodeDeviceRequests(t *testing.T) {
	expectCalls(t, "\x1b[c", "IdentifyTerminal(0)")
	expectCalls(t, "\x1b[>c", "IdentifyTerminal(62)")
	expectCalls(t, "\x1b[6n", "DeviceStatus(6)")
	expectCalls(t, "\x1b[!p", "ResetState")
}

func TestDecodeWindowOps(t *testing.T) {
	expectCalls(t, "\x1b[14t", "TextAreaSizePixels")
	expectCalls(t, "\x1b[16t", "CellSizePixels")
	expectCalls(t, "\x1b[18t", "TextAreaSizeChars")
	expectCalls(t, "\x1b[22;0t", "PushTitle")
	expectCalls(t, "\x1b[23;0t", "PopTitle")
}

func TestDecodeKittyKeyboard(t *testing.T) {
	expectCalls(t, "\x1b[?u", "ReportKeyboardMode")
	expectCalls(t, "\x1b[>5u", "PushKeyboardMode(5)")
	expectCalls(t, "\x1b[<2u", "PopKeyboardMode(2)")
	expectCalls(t, "\x1b[<u", "PopKeyboardMode(1)")
	expectCalls(t, "\x1b[=3;1u",
		fmt.Sprintf("SetKeyboardMode(3,%d)", KeyboardModeBehaviorReplace))
	expectCalls(t, "\x1b[=1;2u",
		fmt.Sprintf("SetKeyboardMode(1,%d)", KeyboardModeBehaviorUnion))
	expectCalls(t, "\x1b[u", "RestoreCursorPosition")
	expectCalls(t, "\x1b[s", "SaveCursorPosition")
}

func TestDecodeModifyOtherKeys(t *testing.T) {
	expectCalls(t, "\x1b[>4;2m", "SetModifyOtherKeys(2)")
	expectCalls(t, "\x1b[?4m", "ReportModifyOtherKeys")
}

func TestDecodeEscSequences(t *testing.T) {
	expectCalls(t, "\x1b7", "SaveCursorPosition")
	expectCalls(t, "\x1b8", "RestoreCursorPosition")
	expectCalls(t, "\x1b#8", "Decaln")
	expectCalls(t, "\x1bM", "ReverseIndex")
	expectCalls(t, "\x1bD", "LineFeed")
	expectCalls(t, "\x1bE", "LineFeed", "CarriageReturn")
	expectCalls(t, "\x1bH", "HorizontalTabSet")
	expectCalls(t, "\x1bc", "ResetState")
	expectCalls(t, "\x1b=", "SetKeypadApplicationMode")
	expectCalls(t, "\x1b>", "UnsetKeypadApplicationMode")
	expectCalls(t, "\x1b(0",
		fmt.Sprintf("ConfigureCharset(%d,%d)", CharsetIndexG0, CharsetLineDrawing))
	expectCalls(t, "\x1b)B",
		fmt.Sprintf("ConfigureCharset(%d,%d)", CharsetIndexG1, CharsetASCII))
}

func TestDecodeControls(t *testing.T) {
	expectCalls(t, "\a", "Bell")
	expectCalls(t, "\b", "Backspace")
	expectCalls(t, "\t", "Tab(1)")
	expectCalls(t, "\n", "LineFeed")
	expectCalls(t, "\v", "LineFeed")
	expectCalls(t, "\f", "LineFeed")
	expectCalls(t, "\r", "CarriageReturn")
	expectCalls(t, "\x0e", "SetActiveCharset(1)")
	expectCalls(t, "\x0f", "SetActiveCharset(0)")
}

func TestDecodeOscTitle(t *testing.T) {
	expectCalls(t, "\x1b]0;hello world\a", "SetTitle(hello world)")
	expectCalls(t, "\x1b]2;a;b;c\x1b\\", "SetTitle(a;b;c)")
}

func TestDecodeOscHyperlink(t *testing.T) {
	expectCalls(t, "\x1b]8;id=x1;https://example.com\x1b\\",
		"SetHyperlink(x1,https://example.com)")
	expectCalls(t, "\x1b]8;;https://example.com\a",
		"SetHyperlink(,https://example.com)")
	expectCalls(t, "\x1b]8;;\a", "SetHyperlink(nil)")
}

func TestDecodeOscColors(t *testing.T) {
	expectCalls(t, "\x1b]4;1;#ff0000\a", "SetColor(1,255/0/0)")
	expectCalls(t, "\x1b]4;2;rgb:ff/80/00\a", "SetColor(2,255/128/0)")
	expectCalls(t, "\x1b]4;7;?\a", `SetDynamicColor(4;7,7,"\a")`)
	expectCalls(t, "\x1b]10;#102030\a", "SetColor(256,16/32/48)")
	expectCalls(t, "\x1b]11;?\x1b\\", `SetDynamicColor(11,257,"\x1b\\")`)
	expectCalls(t, "\x1b]104;5\a", "ResetColor(5)")
	expectCalls(t, "\x1b]110\a", "ResetColor(256)")
	expectCalls(t, "\x1b]112\a", "ResetColor(258)")
}

func TestDecodeOscClipboard(t *testing.T) {
	// "hello" in base64.
	expectCalls(t, "\x1b]52;c;aGVsbG8=\a", "ClipboardStore(c,hello)")
	expectCalls(t, "\x1b]52;p;?\a", `ClipboardLoad(p,"\a")`)
	expectCalls(t, "\x1b]52;c;%%%\a") // invalid base64 dropped
}

func TestDecodeOscShellIntegration(t *testing.T) {
	expectCalls(t, "\x1b]133;A\a",
		fmt.Sprintf("ShellIntegrationMark(%d,-1)", PromptStart))
	expectCalls(t, "\x1b]133;B\a",
		fmt.Sprintf("ShellIntegrationMark(%d,-1)", CommandStart))
	expectCalls(t, "\x1b]133;C\a",
		fmt.Sprintf("ShellIntegrationMark(%d,-1)", CommandExecuted))
	expectCalls(t, "\x1b]133;D\a",
		fmt.Sprintf("ShellIntegrationMark(%d,-1)", CommandFinished))
	expectCalls(t, "\x1b]133;D;42\a",
		fmt.Sprintf("ShellIntegrationMark(%d,42)", CommandFinished))
}

func TestDecodeOscUserVar(t *testing.T) {
	// "alice" in base64.
	expectCalls(t, "\x1b]1337;SetUserVar=LOGNAME=YWxpY2U=\a",
		"SetUserVar(LOGNAME,alice)")
	expectCalls(t, "\x1b]1337;SetUserVar=bad\a")
}

func TestDecodeOscNotification(t *testing.T) {
	expectCalls(t, "\x1b]99;i=n1:p=body;the text\a",
		"DesktopNotification(n1,body,the text)")
	// e=1 marks a base64 payload.
	expectCalls(t, "\x1b]99;i=n2:e=1;aGVsbG8=\a",
		"DesktopNotification(n2,title,hello)")
	expectCalls(t, "\x1b]9;plain message\a",
		"DesktopNotification(,title,plain message)")
}

func TestDecodeWorkingDirectory(t *testing.T) {
	expectCalls(t, "\x1b]7;file://host/tmp\x1b\\",
		"SetWorkingDirectory(file://host/tmp)")
}

func TestDecodeSixel(t *testing.T) {
	expectCalls(t, "\x1bP1;2q#0;2;0;0;0~~\x1b\\", "SixelReceived(2,#0;2;0;0;0~~)")
}

func TestDecodeStringCommands(t *testing.T) {
	expectCalls(t, "\x1b_Gi=1\x1b\\", "APC(Gi=1)")
	expectCalls(t, "\x1b^secret\x1b\\", "PM(secret)")
	expectCalls(t, "\x1bXdata\x1b\\", "SOS(data)")
}

func TestDecodeSplitWrites(t *testing.T) {
	rec := &recorder{}
	d := NewDecoder(rec)
	for _, chunk := range []string{"\x1b[", "38;2;1", ";2;3", "m"} {
		d.Write([]byte(chunk))
	}
	want := fmt.Sprintf("Attr(%d,rgb:1/2/3)", CharAttributeForeground)
	if len(rec.calls) != 1 || rec.calls[0] != want {
		t.Fatalf("got %v, want [%s]", rec.calls, want)
	}
	if !d.IsGround() {
		t.Error("decoder should be back in ground state")
	}
}

func TestParseColorSpec(t *testing.T) {
	tests := []struct {
		spec    string
		r, g, b uint8
		ok      bool
	}{
		{"#ff8000", 255, 128, 0, true},
		{"rgb:ff/80/00", 255, 128, 0, true},
		{"rgb:f/8/0", 255, 136, 0, true},
		{"rgb:ffff/8080/0000", 255, 128, 0, true},
		{"rgbi:1.0/0.5/0.0", 255, 128, 0, true},
		{"rgb:ff/80", 0, 0, 0, false},
		{"notacolor", 0, 0, 0, false},
		{"", 0, 0, 0, false},
	}
	for _, tt := range tests {
		c, ok := parseColorSpec(tt.spec)
		if ok != tt.ok {
			t.Errorf("parseColorSpec(%q) ok = %v, want %v", tt.spec, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		r, g, b, _ := c.RGBA()
		if uint8(r>>8) != tt.r || uint8(g>>8) != tt.g || uint8(b>>8) != tt.b {
			t.Errorf("parseColorSpec(%q) = %d/%d/%d, want %d/%d/%d",
				tt.spec, r>>8, g>>8, b>>8, tt.r, tt.g, tt.b)
		}
	}
}
