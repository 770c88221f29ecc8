//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	gridterm "github.com/gridterm/gridterm"
	"github.com/gridterm/gridterm/ansi"
)

// Global terminal registry
var terminals = make(map[int]*terminalInstance)
var nextTerminalID = 1

// terminalInstance wraps a terminal with its JS handlers
type terminalInstance struct {
	term     *gridterm.Terminal
	handlers *jsHandlers
}

func main() {
	// Register all exported functions
	js.Global().Set("GridTerm", js.ValueOf(map[string]interface{}{
		// Terminal lifecycle
		"create":  js.FuncOf(createTerminal),
		"destroy": js.FuncOf(destroyTerminal),

		// Input processing
		"write":       js.FuncOf(write),
		"writeString": js.FuncOf(writeString),

		// Dimensions
		"resize": js.FuncOf(resize),
		"rows":   js.FuncOf(rows),
		"cols":   js.FuncOf(cols),

		// Cursor
		"cursorPos":     js.FuncOf(cursorPos),
		"cursorVisible": js.FuncOf(cursorVisible),
		"cursorStyle":   js.FuncOf(cursorStyle),

		// Content
		"getString":    js.FuncOf(getString),
		"lineContent":  js.FuncOf(lineContent),
		"cell":         js.FuncOf(cell),
		"isWrapped":    js.FuncOf(isWrapped),
		"snapshot":     js.FuncOf(snapshot),
		"snapshotJSON": js.FuncOf(snapshotJSON),

		// State inspection
		"title":             js.FuncOf(title),
		"hasMode":           js.FuncOf(hasMode),
		"isAlternateScreen": js.FuncOf(isAlternateScreen),
		"scrollRegion":      js.FuncOf(scrollRegion),

		// Damage tracking
		"currentSeqno":      js.FuncOf(currentSeqno),
		"lineSeqno":         js.FuncOf(lineSeqno),
		"linesChangedSince": js.FuncOf(linesChangedSince),
		"hasDirty":          js.FuncOf(hasDirty),
		"dirtyCells":        js.FuncOf(dirtyCells),
		"clearDirty":        js.FuncOf(clearDirty),

		// Stable row indexing
		"stableRowIndex": js.FuncOf(stableRowIndex),
		"rowForStable":   js.FuncOf(rowForStable),

		// Scrollback
		"scrollbackLen":   js.FuncOf(scrollbackLen),
		"scrollbackLine":  js.FuncOf(scrollbackLine),
		"clearScrollback": js.FuncOf(clearScrollback),

		// Selection
		"setSelection":    js.FuncOf(setSelection),
		"clearSelection":  js.FuncOf(clearSelection),
		"hasSelection":    js.FuncOf(hasSelection),
		"getSelectedText": js.FuncOf(getSelectedText),

		// Search
		"search":           js.FuncOf(search),
		"searchScrollback": js.FuncOf(searchScrollback),

		// Mouse reporting
		"encodeMouseEvent": js.FuncOf(encodeMouseEvent),
		"heldMouseButton":  js.FuncOf(heldMouseButton),

		// Working directory & user vars
		"workingDirectory":     js.FuncOf(workingDirectory),
		"workingDirectoryPath": js.FuncOf(workingDirectoryPath),
		"getUserVar":           js.FuncOf(getUserVar),
		"getUserVars":          js.FuncOf(getUserVars),

		// Shell integration
		"promptMarks":          js.FuncOf(promptMarks),
		"getPromptMarkAt":      js.FuncOf(getPromptMarkAt),
		"nextPromptRow":        js.FuncOf(nextPromptRow),
		"prevPromptRow":        js.FuncOf(prevPromptRow),
		"getLastCommandOutput": js.FuncOf(getLastCommandOutput),

		// Images
		"imageCount":          js.FuncOf(imageCount),
		"imagePlacementCount": js.FuncOf(imagePlacementCount),
		"imageUsedMemory":     js.FuncOf(imageUsedMemory),
		"sixelEnabled":        js.FuncOf(sixelEnabled),
		"kittyEnabled":        js.FuncOf(kittyEnabled),

		// Handler registration
		"onBell":             js.FuncOf(onBell),
		"onTitle":            js.FuncOf(onTitle),
		"onClipboard":        js.FuncOf(onClipboard),
		"onNotification":     js.FuncOf(onNotification),
		"onResponse":         js.FuncOf(onResponse),
		"onSize":             js.FuncOf(onSize),
		"onShellIntegration": js.FuncOf(onShellIntegration),
		"onAPC":              js.FuncOf(onAPC),
		"onPM":               js.FuncOf(onPM),
		"onSOS":              js.FuncOf(onSOS),
		"onScrollback":       js.FuncOf(onScrollback),
		"onRecording":        js.FuncOf(onRecording),
		"onError":            js.FuncOf(onError),
	}))

	// Keep the program running
	select {}
}

// ============================================================================
// Terminal Lifecycle
// ============================================================================

func createTerminal(_ js.Value, args []js.Value) interface{} {
	rows := 24
	cols := 80
	if len(args) >= 2 {
		rows = args[0].Int()
		cols = args[1].Int()
	}

	handlers := newJSHandlers()

	opts := []gridterm.Option{
		gridterm.WithSize(rows, cols),
		gridterm.WithScrollback(handlers.scrollback),
		gridterm.WithBell(handlers.bell),
		gridterm.WithTitle(handlers.title),
		gridterm.WithClipboard(handlers.clipboard),
		gridterm.WithNotification(handlers.notification),
		gridterm.WithResponse(handlers.response),
		gridterm.WithSizeProvider(handlers.size),
		gridterm.WithShellIntegration(handlers.shellIntegration),
		gridterm.WithAPC(handlers.apc),
		gridterm.WithPM(handlers.pm),
		gridterm.WithSOS(handlers.sos),
		gridterm.WithRecording(handlers.recording),
		gridterm.WithErrorProvider(handlers.errors),
	}

	term := gridterm.New(opts...)
	id := nextTerminalID
	nextTerminalID++
	terminals[id] = &terminalInstance{
		term:     term,
		handlers: handlers,
	}

	return id
}

func destroyTerminal(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	id := args[0].Int()
	delete(terminals, id)
	return nil
}

func getInstance(id int) *terminalInstance {
	return terminals[id]
}

func getTerminal(id int) *gridterm.Terminal {
	inst := getInstance(id)
	if inst == nil {
		return nil
	}
	return inst.term
}

// ============================================================================
// Input Processing
// ============================================================================

func write(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return -1
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return -1
	}

	// Get Uint8Array from JS
	data := make([]byte, args[1].Length())
	js.CopyBytesToGo(data, args[1])

	n, _ := term.Write(data)
	return n
}

func writeString(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return -1
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return -1
	}

	n, _ := term.WriteString(args[1].String())
	return n
}

// ============================================================================
// Dimensions
// ============================================================================

func resize(_ js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	term.Resize(args[1].Int(), args[2].Int())
	return nil
}

func rows(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return term.Rows()
}

func cols(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return term.Cols()
}

// ============================================================================
// Cursor
// ============================================================================

func cursorPos(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	row, col := term.CursorPos()
	return map[string]interface{}{
		"row": row,
		"col": col,
	}
}

func cursorVisible(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.CursorVisible()
}

func cursorStyle(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return int(term.CursorStyle())
}

// ============================================================================
// Content
// ============================================================================

func getString(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}
	return term.String()
}

func lineContent(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}
	return term.LineContent(args[1].Int())
}

func cell(_ js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	c := term.Cell(args[1].Int(), args[2].Int())
	if c == nil {
		return nil
	}
	return cellToJS(c)
}

func isWrapped(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.IsWrapped(args[1].Int())
}

func cellToJS(c *gridterm.Cell) map[string]interface{} {
	fg := gridterm.ResolveDefaultColor(c.Fg, true)
	bg := gridterm.ResolveDefaultColor(c.Bg, false)

	result := map[string]interface{}{
		"char": string(c.Char),
		"fg": map[string]interface{}{
			"r": fg.R,
			"g": fg.G,
			"b": fg.B,
			"a": fg.A,
		},
		"bg": map[string]interface{}{
			"r": bg.R,
			"g": bg.G,
			"b": bg.B,
			"a": bg.A,
		},
		"bold":      c.Flags&gridterm.CellFlagBold != 0,
		"dim":       c.Flags&gridterm.CellFlagDim != 0,
		"italic":    c.Flags&gridterm.CellFlagItalic != 0,
		"underline": c.Flags&gridterm.CellFlagUnderline != 0,
		"blink":     c.Flags&gridterm.CellFlagBlinkSlow != 0 || c.Flags&gridterm.CellFlagBlinkFast != 0,
		"reverse":   c.Flags&gridterm.CellFlagReverse != 0,
		"hidden":    c.Flags&gridterm.CellFlagHidden != 0,
		"strike":    c.Flags&gridterm.CellFlagStrike != 0,
		"wideChar":  c.Flags&gridterm.CellFlagWideChar != 0,
	}

	if c.Hyperlink != nil {
		result["hyperlink"] = map[string]interface{}{
			"id":  c.Hyperlink.ID,
			"uri": c.Hyperlink.URI,
		}
	}

	return result
}

func snapshotDetail(args []js.Value) gridterm.SnapshotDetail {
	detail := gridterm.SnapshotDetailStyled
	if len(args) >= 2 {
		switch args[1].String() {
		case "text":
			detail = gridterm.SnapshotDetailText
		case "styled":
			detail = gridterm.SnapshotDetailStyled
		case "full":
			detail = gridterm.SnapshotDetailFull
		}
	}
	return detail
}

func snapshot(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}

	snap := term.Snapshot(snapshotDetail(args))
	return snapshotToJS(snap)
}

func snapshotJSON(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}

	snap := term.Snapshot(snapshotDetail(args))
	data, err := json.Marshal(snap)
	if err != nil {
		return ""
	}
	return string(data)
}

func snapshotToJS(snap *gridterm.Snapshot) map[string]interface{} {
	lines := make([]interface{}, len(snap.Lines))
	for i, line := range snap.Lines {
		lines[i] = map[string]interface{}{
			"text":    line.Text,
			"wrapped": line.Wrapped,
		}
	}

	return map[string]interface{}{
		"size": map[string]interface{}{
			"rows": snap.Size.Rows,
			"cols": snap.Size.Cols,
		},
		"cursor": map[string]interface{}{
			"row":     snap.Cursor.Row,
			"col":     snap.Cursor.Col,
			"visible": snap.Cursor.Visible,
			"style":   snap.Cursor.Style,
		},
		"lines": lines,
	}
}

// ============================================================================
// State Inspection
// ============================================================================

func title(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}
	return term.Title()
}

func hasMode(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.HasMode(gridterm.TerminalMode(args[1].Int()))
}

func isAlternateScreen(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.IsAlternateScreen()
}

func scrollRegion(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	top, bottom := term.ScrollRegion()
	return map[string]interface{}{
		"top":    top,
		"bottom": bottom,
	}
}

// ============================================================================
// Damage Tracking
// ============================================================================

func currentSeqno(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return int64(term.CurrentSeqno())
}

func lineSeqno(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return int64(term.LineSeqno(args[1].Int()))
}

// linesChangedSince returns [{start, end}, ...] half-open stable row ranges
// touched after the given seqno. Renderers poll currentSeqno, draw, then
// ask for what changed since the last drawn seqno.
func linesChangedSince(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	changed := term.LinesChangedSince(uint64(args[1].Int()))
	ranges := changed.Ranges()
	result := make([]interface{}, len(ranges))
	for i, r := range ranges {
		result[i] = map[string]interface{}{
			"start": r.Start,
			"end":   r.End,
		}
	}
	return result
}

func hasDirty(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.HasDirty()
}

func dirtyCells(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	cells := term.DirtyCells()
	result := make([]interface{}, len(cells))
	for i, pos := range cells {
		result[i] = map[string]interface{}{
			"row": pos.Row,
			"col": pos.Col,
		}
	}
	return result
}

func clearDirty(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	term.ClearDirty()
	return nil
}

// ============================================================================
// Stable Row Indexing
// ============================================================================

func stableRowIndex(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return term.StableRowIndex(args[1].Int())
}

// rowForStable maps a stable index back to a viewport row, or -1 when the
// line has scrolled out of the visible screen.
func rowForStable(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return -1
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return -1
	}
	row, ok := term.RowForStable(int64(args[1].Int()))
	if !ok {
		return -1
	}
	return row
}

// ============================================================================
// Scrollback
// ============================================================================

func scrollbackLen(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return term.ScrollbackLen()
}

func scrollbackLine(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	cells := term.ScrollbackLine(args[1].Int())
	if cells == nil {
		return nil
	}

	result := make([]interface{}, len(cells))
	for i, c := range cells {
		result[i] = cellToJS(&c)
	}
	return result
}

func clearScrollback(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	term.ClearScrollback()
	return nil
}

// ============================================================================
// Selection
// ============================================================================

func setSelection(_ js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	term.SetSelection(
		gridterm.Position{Row: args[1].Int(), Col: args[2].Int()},
		gridterm.Position{Row: args[3].Int(), Col: args[4].Int()},
	)
	return nil
}

func clearSelection(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	term.ClearSelection()
	return nil
}

func hasSelection(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.HasSelection()
}

func getSelectedText(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}
	return term.GetSelectedText()
}

// ============================================================================
// Search
// ============================================================================

func search(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	positions := term.Search(args[1].String())
	result := make([]interface{}, len(positions))
	for i, pos := range positions {
		result[i] = map[string]interface{}{
			"row": pos.Row,
			"col": pos.Col,
		}
	}
	return result
}

func searchScrollback(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	positions := term.SearchScrollback(args[1].String())
	result := make([]interface{}, len(positions))
	for i, pos := range positions {
		result[i] = map[string]interface{}{
			"row": pos.Row,
			"col": pos.Col,
		}
	}
	return result
}

// ============================================================================
// Mouse Reporting
// ============================================================================

// encodeMouseEvent takes { button, press, motion, row, col, pixelX, pixelY,
// shift, alt, ctrl } and returns the report bytes as a Uint8Array, or null
// when the application did not request this event.
func encodeMouseEvent(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}

	obj := args[1]
	ev := gridterm.MouseEvent{Button: gridterm.MouseButtonNone}
	if v := obj.Get("button"); !v.IsUndefined() && !v.IsNull() {
		ev.Button = gridterm.MouseButton(v.Int())
	}
	if v := obj.Get("press"); !v.IsUndefined() {
		ev.Press = v.Truthy()
	}
	if v := obj.Get("motion"); !v.IsUndefined() {
		ev.Motion = v.Truthy()
	}
	if v := obj.Get("row"); !v.IsUndefined() {
		ev.Row = v.Int()
	}
	if v := obj.Get("col"); !v.IsUndefined() {
		ev.Col = v.Int()
	}
	if v := obj.Get("pixelX"); !v.IsUndefined() {
		ev.PixelX = v.Int()
	}
	if v := obj.Get("pixelY"); !v.IsUndefined() {
		ev.PixelY = v.Int()
	}
	if v := obj.Get("shift"); !v.IsUndefined() {
		ev.Shift = v.Truthy()
	}
	if v := obj.Get("alt"); !v.IsUndefined() {
		ev.Alt = v.Truthy()
	}
	if v := obj.Get("ctrl"); !v.IsUndefined() {
		ev.Ctrl = v.Truthy()
	}

	seq := term.EncodeMouseEvent(ev)
	if seq == nil {
		return nil
	}
	jsArray := js.Global().Get("Uint8Array").New(len(seq))
	js.CopyBytesToJS(jsArray, seq)
	return jsArray
}

func heldMouseButton(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return int(gridterm.MouseButtonNone)
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return int(gridterm.MouseButtonNone)
	}
	return int(term.HeldMouseButton())
}

// ============================================================================
// Working Directory & User Vars
// ============================================================================

func workingDirectory(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}
	return term.WorkingDirectory()
}

func workingDirectoryPath(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}
	return term.WorkingDirectoryPath()
}

func getUserVar(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	val, ok := term.GetUserVar(args[1].String())
	if !ok {
		return nil
	}
	return val
}

func getUserVars(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	vars := term.GetUserVars()
	result := make(map[string]interface{})
	for k, v := range vars {
		result[k] = v
	}
	return result
}

// ============================================================================
// Shell Integration
// ============================================================================

func promptMarks(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	marks := term.PromptMarks()
	result := make([]interface{}, len(marks))
	for i, mark := range marks {
		result[i] = map[string]interface{}{
			"type":     int(mark.Type),
			"row":      mark.Row,
			"exitCode": mark.ExitCode,
		}
	}
	return result
}

func getPromptMarkAt(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return nil
	}
	mark := term.GetPromptMarkAt(int64(args[1].Int()))
	if mark == nil {
		return nil
	}
	return map[string]interface{}{
		"type":     int(mark.Type),
		"row":      mark.Row,
		"exitCode": mark.ExitCode,
	}
}

// nextPromptRow returns the stable row of the next mark of the given type
// after the given row, or -1 when there is none. prevPromptRow is the
// mirror image, searching backwards. Both drive prompt-jump navigation.
func nextPromptRow(_ js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return -1
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return -1
	}
	return term.NextPromptRow(int64(args[1].Int()), ansi.ShellIntegrationMark(args[2].Int()))
}

func prevPromptRow(_ js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return -1
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return -1
	}
	return term.PrevPromptRow(int64(args[1].Int()), ansi.ShellIntegrationMark(args[2].Int()))
}

func getLastCommandOutput(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return ""
	}
	return term.GetLastCommandOutput()
}

// ============================================================================
// Images
// ============================================================================

func imageCount(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return term.ImageCount()
}

func imagePlacementCount(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return term.ImagePlacementCount()
}

func imageUsedMemory(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return 0
	}
	return term.ImageUsedMemory()
}

func sixelEnabled(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.SixelEnabled()
}

func kittyEnabled(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return false
	}
	term := getTerminal(args[0].Int())
	if term == nil {
		return false
	}
	return term.KittyEnabled()
}

// ============================================================================
// Handler Registration
// ============================================================================

func onBell(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.bell.callback = args[1]
	return nil
}

func onTitle(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.title.callback = args[1]
	return nil
}

func onClipboard(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.clipboard.callback = args[1]
	return nil
}

func onNotification(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.notification.callback = args[1]
	return nil
}

func onResponse(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.response.callback = args[1]
	return nil
}

func onSize(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.size.callback = args[1]
	return nil
}

func onShellIntegration(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.shellIntegration.callback = args[1]
	return nil
}

func onAPC(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.apc.callback = args[1]
	return nil
}

func onPM(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.pm.callback = args[1]
	return nil
}

func onSOS(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.sos.callback = args[1]
	return nil
}

func onScrollback(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.scrollback.callback = args[1]
	return nil
}

func onRecording(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.recording.callback = args[1]
	return nil
}

func onError(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	inst := getInstance(args[0].Int())
	if inst == nil {
		return nil
	}
	inst.handlers.errors.callback = args[1]
	return nil
}
