package ansi

import "image/color"

// Handler receives decoded terminal commands. A Decoder turns a raw byte
// stream into calls on this interface; the zero obligation for an
// implementation is to ignore what it does not support.
type Handler interface {
	// Input is called for each printable character, after charset
	// translation is left to the handler.
	Input(r rune)

	// Bell rings the bell (BEL).
	Bell()
	// Backspace moves the cursor left one column (BS).
	Backspace()
	// CarriageReturn moves the cursor to column zero (CR).
	CarriageReturn()
	// LineFeed moves the cursor down one row, scrolling if needed (LF, VT, FF).
	LineFeed()
	// Substitute handles SUB in the middle of a sequence.
	Substitute()
	// Tab moves the cursor to the n-th next tab stop (HT, CHT).
	Tab(n int)
	// HorizontalTabSet sets a tab stop at the cursor column (HTS).
	HorizontalTabSet()
	// MoveBackwardTabs moves the cursor to the n-th previous tab stop (CBT).
	MoveBackwardTabs(n int)
	// MoveForwardTabs moves the cursor to the n-th next tab stop (CHT).
	MoveForwardTabs(n int)

	// Goto moves the cursor to an absolute position, zero-based (CUP, HVP).
	Goto(row, col int)
	// GotoLine moves the cursor to an absolute row (VPA).
	GotoLine(row int)
	// GotoCol moves the cursor to an absolute column (CHA, HPA).
	GotoCol(col int)
	// MoveUp moves the cursor up n rows (CUU).
	MoveUp(n int)
	// MoveDown moves the cursor down n rows (CUD, VPR).
	MoveDown(n int)
	// MoveForward moves the cursor right n columns (CUF, HPR).
	MoveForward(n int)
	// MoveBackward moves the cursor left n columns (CUB).
	MoveBackward(n int)
	// MoveUpCr moves the cursor up n rows and to column zero (CPL).
	MoveUpCr(n int)
	// MoveDownCr moves the cursor down n rows and to column zero (CNL).
	MoveDownCr(n int)

	// InsertBlank inserts n blank cells at the cursor (ICH).
	InsertBlank(n int)
	// InsertBlankLines inserts n blank rows at the cursor (IL).
	InsertBlankLines(n int)
	// DeleteChars deletes n cells at the cursor (DCH).
	DeleteChars(n int)
	// DeleteLines deletes n rows at the cursor (DL).
	DeleteLines(n int)
	// EraseChars erases n cells at the cursor without shifting (ECH).
	EraseChars(n int)
	// Repeat re-inserts the last printed character n times (REP).
	Repeat(n int)

	// ClearLine erases part or all of the cursor row (EL).
	ClearLine(mode LineClearMode)
	// ClearScreen erases part or all of the screen (ED).
	ClearScreen(mode ClearMode)
	// ClearTabs removes tab stops (TBC).
	ClearTabs(mode TabulationClearMode)

	// ScrollUp scrolls the scroll region up n rows (SU).
	ScrollUp(n int)
	// ScrollDown scrolls the scroll region down n rows (SD).
	ScrollDown(n int)
	// SetScrollingRegion sets the scroll region, one-based inclusive (DECSTBM).
	SetScrollingRegion(top, bottom int)

	// SaveCursorPosition saves the cursor and its attributes (DECSC, SCOSC).
	SaveCursorPosition()
	// RestoreCursorPosition restores a saved cursor (DECRC, SCORC).
	RestoreCursorPosition()
	// ReverseIndex moves the cursor up, scrolling down at the region top (RI).
	ReverseIndex()

	// SetCursorStyle changes the cursor shape (DECSCUSR).
	SetCursorStyle(style CursorStyle)
	// SetMode enables a terminal mode (SM, DECSET).
	SetMode(mode TerminalMode)
	// UnsetMode disables a terminal mode (RM, DECRST).
	UnsetMode(mode TerminalMode)
	// SetKeypadApplicationMode switches the keypad to application mode (DECKPAM).
	SetKeypadApplicationMode()
	// UnsetKeypadApplicationMode switches the keypad to numeric mode (DECKPNM).
	UnsetKeypadApplicationMode()

	// SetActiveCharset shifts to the given charset slot (SI, SO).
	SetActiveCharset(n int)
	// ConfigureCharset designates a charset into a slot (SCS).
	ConfigureCharset(index CharsetIndex, charset Charset)

	// SetTerminalCharAttribute applies a single SGR attribute.
	SetTerminalCharAttribute(attr TerminalCharAttribute)

	// IdentifyTerminal answers a device attributes request (DA). The
	// intermediate byte is zero for primary DA.
	IdentifyTerminal(b byte)
	// DeviceStatus answers a device status request (DSR).
	DeviceStatus(n int)

	// ResetState resets the terminal to its initial state (RIS, DECSTR).
	ResetState()
	// Decaln fills the screen with E for alignment testing (DECALN).
	Decaln()

	// SetTitle sets the window title (OSC 0/2).
	SetTitle(title string)
	// PushTitle pushes the current title onto the title stack (XTWINOPS 22).
	PushTitle()
	// PopTitle pops the title stack (XTWINOPS 23).
	PopTitle()

	// SetHyperlink starts or, with nil, ends a hyperlink range (OSC 8).
	SetHyperlink(hyperlink *Hyperlink)
	// SetColor redefines a palette or dynamic color (OSC 4/10/11/12).
	SetColor(index int, c color.Color)
	// ResetColor restores a palette or dynamic color to its default
	// (OSC 104/110/111/112).
	ResetColor(i int)
	// SetDynamicColor answers a color query. The prefix and terminator are
	// echoed back verbatim in the response.
	SetDynamicColor(prefix string, index int, terminator string)

	// ClipboardStore writes data into a clipboard (OSC 52).
	ClipboardStore(clipboard byte, data []byte)
	// ClipboardLoad answers a clipboard query (OSC 52 with "?").
	ClipboardLoad(clipboard byte, terminator string)

	// SetWorkingDirectory records the shell working directory (OSC 7).
	SetWorkingDirectory(uri string)
	// ShellIntegrationMark records a prompt boundary (OSC 133). The exit
	// code is meaningful only for CommandFinished.
	ShellIntegrationMark(mark ShellIntegrationMark, exitCode int)
	// SetUserVar records a user variable (OSC 1337 SetUserVar).
	SetUserVar(name, value string)
	// DesktopNotification delivers a desktop notification (OSC 99, OSC 9).
	DesktopNotification(payload *NotificationPayload)

	// PushKeyboardMode pushes a kitty keyboard mode (CSI > u).
	PushKeyboardMode(mode KeyboardMode)
	// PopKeyboardMode pops n kitty keyboard modes (CSI < u).
	PopKeyboardMode(n int)
	// SetKeyboardMode replaces or combines the kitty keyboard mode (CSI = u).
	SetKeyboardMode(mode KeyboardMode, behavior KeyboardModeBehavior)
	// ReportKeyboardMode answers a kitty keyboard query (CSI ? u).
	ReportKeyboardMode()
	// SetModifyOtherKeys sets the xterm modifyOtherKeys level (CSI > 4 m).
	SetModifyOtherKeys(modify ModifyOtherKeys)
	// ReportModifyOtherKeys answers a modifyOtherKeys query (CSI ? 4 m).
	ReportModifyOtherKeys()

	// TextAreaSizeChars answers XTWINOPS 18.
	TextAreaSizeChars()
	// TextAreaSizePixels answers XTWINOPS 14.
	TextAreaSizePixels()
	// CellSizePixels answers XTWINOPS 16.
	CellSizePixels()

	// SixelReceived delivers a complete sixel DCS payload.
	SixelReceived(params [][]uint16, data []byte)
	// ApplicationCommandReceived delivers an APC payload (kitty graphics).
	ApplicationCommandReceived(data []byte)
	// PrivacyMessageReceived delivers a PM payload.
	PrivacyMessageReceived(data []byte)
	// StartOfStringReceived delivers a SOS payload.
	StartOfStringReceived(data []byte)
}

// LineClearMode selects which part of the cursor row EL erases.
type LineClearMode int

const (
	// LineClearModeRight erases from the cursor to the end of the row.
	LineClearModeRight LineClearMode = iota
	// LineClearModeLeft erases from the start of the row through the cursor.
	LineClearModeLeft
	// LineClearModeAll erases the whole row.
	LineClearModeAll
)

// ClearMode selects which part of the screen ED erases.
type ClearMode int

const (
	// ClearModeBelow erases from the cursor to the end of the screen.
	ClearModeBelow ClearMode = iota
	// ClearModeAbove erases from the start of the screen through the cursor.
	ClearModeAbove
	// ClearModeAll erases the whole screen.
	ClearModeAll
	// ClearModeSaved erases the whole screen and the scrollback.
	ClearModeSaved
)

// TabulationClearMode selects which tab stops TBC removes.
type TabulationClearMode int

const (
	// TabulationClearModeCurrent removes the tab stop at the cursor column.
	TabulationClearModeCurrent TabulationClearMode = iota
	// TabulationClearModeAll removes every tab stop.
	TabulationClearModeAll
)

// TerminalMode is a mode togglable through SM/RM and DECSET/DECRST.
type TerminalMode int

const (
	// TerminalModeCursorKeys makes cursor keys send application sequences (DECCKM, ?1).
	TerminalModeCursorKeys TerminalMode = iota
	// TerminalModeColumnMode switches between 80 and 132 columns (DECCOLM, ?3).
	TerminalModeColumnMode
	// TerminalModeInsert shifts existing cells right on input (IRM, 4).
	TerminalModeInsert
	// TerminalModeOrigin makes cursor addressing relative to the scroll region (DECOM, ?6).
	TerminalModeOrigin
	// TerminalModeLineWrap wraps the cursor at the last column (DECAWM, ?7).
	TerminalModeLineWrap
	// TerminalModeBlinkingCursor blinks the cursor (?12).
	TerminalModeBlinkingCursor
	// TerminalModeLineFeedNewLine makes LF also return the carriage (LNM, 20).
	TerminalModeLineFeedNewLine
	// TerminalModeShowCursor makes the cursor visible (DECTCEM, ?25).
	TerminalModeShowCursor
	// TerminalModeReportMouseClicks reports button presses only (?1000).
	TerminalModeReportMouseClicks
	// TerminalModeReportCellMouseMotion also reports motion while a button is held (?1002).
	TerminalModeReportCellMouseMotion
	// TerminalModeReportAllMouseMotion reports all motion (?1003).
	TerminalModeReportAllMouseMotion
	// TerminalModeReportFocusInOut reports focus changes (?1004).
	TerminalModeReportFocusInOut
	// TerminalModeUTF8Mouse encodes mouse coordinates as UTF-8 (?1005).
	TerminalModeUTF8Mouse
	// TerminalModeSGRMouse encodes mouse reports as CSI < sequences (?1006).
	TerminalModeSGRMouse
	// TerminalModeAlternateScroll turns wheel events into arrow keys on the
	// alternate screen (?1007).
	TerminalModeAlternateScroll
	// TerminalModeUrgencyHints raises the urgency hint on bell (?1042).
	TerminalModeUrgencyHints
	// TerminalModeSwapScreenAndSetRestoreCursor switches to the alternate
	// screen, saving the cursor first (?1049).
	TerminalModeSwapScreenAndSetRestoreCursor
	// TerminalModeSGRPixelsMouse reports mouse coordinates in pixels (?1016).
	TerminalModeSGRPixelsMouse
	// TerminalModeX10Mouse reports button presses with no modifiers or
	// releases (?9).
	TerminalModeX10Mouse
	// TerminalModeBracketedPaste wraps pastes in begin/end markers (?2004).
	TerminalModeBracketedPaste
)

// CursorStyle is the cursor shape set by DECSCUSR.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Charset is a designated character set.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// CharsetIndex is one of the four charset slots G0 through G3.
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

// CharAttribute identifies a single SGR attribute.
type CharAttribute int

const (
	CharAttributeReset CharAttribute = iota
	CharAttributeBold
	CharAttributeDim
	CharAttributeItalic
	CharAttributeUnderline
	CharAttributeDoubleUnderline
	CharAttributeCurlyUnderline
	CharAttributeDottedUnderline
	CharAttributeDashedUnderline
	CharAttributeBlinkSlow
	CharAttributeBlinkFast
	CharAttributeReverse
	CharAttributeHidden
	CharAttributeStrike
	CharAttributeCancelBold
	CharAttributeCancelBoldDim
	CharAttributeCancelItalic
	CharAttributeCancelUnderline
	CharAttributeCancelBlink
	CharAttributeCancelReverse
	CharAttributeCancelHidden
	CharAttributeCancelStrike
	CharAttributeForeground
	CharAttributeBackground
	CharAttributeUnderlineColor
)

// RGBColor is a direct true color value.
type RGBColor struct {
	R uint8
	G uint8
	B uint8
}

// IndexedColor is a 256-color palette reference.
type IndexedColor struct {
	Index uint8
}

// NamedColor is a well-known color slot: 0-15 are the standard palette,
// 256 and up are the dynamic colors (foreground, background, cursor).
type NamedColor int

const (
	NamedColorForeground NamedColor = 256
	NamedColorBackground NamedColor = 257
	NamedColorCursor     NamedColor = 258
)

// TerminalCharAttribute is one decoded SGR attribute. For the color
// attributes exactly one of RGBColor, IndexedColor or NamedColor is set;
// all nil means the attribute's default color.
type TerminalCharAttribute struct {
	Attr         CharAttribute
	RGBColor     *RGBColor
	IndexedColor *IndexedColor
	NamedColor   *NamedColor
}

// Hyperlink is an OSC 8 hyperlink range opener.
type Hyperlink struct {
	ID  string
	URI string
}

// ShellIntegrationMark is a shell prompt boundary reported through OSC 133.
type ShellIntegrationMark int

const (
	// PromptStart marks the start of the shell prompt (OSC 133;A).
	PromptStart ShellIntegrationMark = iota
	// CommandStart marks the start of user input (OSC 133;B).
	CommandStart
	// CommandExecuted marks the start of command output (OSC 133;C).
	CommandExecuted
	// CommandFinished marks the end of a command, with its exit code (OSC 133;D).
	CommandFinished
)

// KeyboardMode is a kitty keyboard protocol progressive enhancement bitset.
type KeyboardMode uint8

const (
	KeyboardModeNoMode                 KeyboardMode = 0
	KeyboardModeDisambiguateEscCodes   KeyboardMode = 1 << 0
	KeyboardModeReportEventTypes       KeyboardMode = 1 << 1
	KeyboardModeReportAlternateKeys    KeyboardMode = 1 << 2
	KeyboardModeReportAllKeysAsEscapes KeyboardMode = 1 << 3
	KeyboardModeReportAssociatedText   KeyboardMode = 1 << 4
)

// KeyboardModeBehavior is how CSI = u combines a mode with the current one.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys is the xterm modifyOtherKeys resource level.
type ModifyOtherKeys int

const (
	ModifyOtherKeysReset ModifyOtherKeys = iota
	ModifyOtherKeysEnableExceptWellDefined
	ModifyOtherKeysEnableAll
)

// NotificationPayload is a kitty desktop notification (OSC 99) accumulated
// across chunks. OSC 9 notifications are delivered as a payload with only
// Data set.
type NotificationPayload struct {
	// ID is the notification identifier (i= key).
	ID string
	// Done reports whether this is the final chunk (d= key).
	Done bool
	// PayloadType is what Data carries: "title", "body", "close", "alive",
	// "icon", "?" for capability queries (p= key).
	PayloadType string
	// Encoding is "1" when Data arrived base64 encoded (e= key).
	Encoding string
	// Actions requested on activation (a= key).
	Actions []string
	// TrackClose requests a close event report (c= key).
	TrackClose bool
	// Timeout in milliseconds, negative for never (w= key).
	Timeout int
	// AppName is the sending application (f= key).
	AppName string
	// Type is the notification type (t= key).
	Type string
	// IconName is a named icon (n= key).
	IconName string
	// IconCacheID keys icon data for reuse (g= key).
	IconCacheID string
	// Sound to play (s= key).
	Sound string
	// Urgency 0-2 (u= key).
	Urgency int
	// Occasion filters when to honor the notification (o= key).
	Occasion string
	// Data is the decoded payload.
	Data []byte
}
