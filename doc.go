// Package gridterm provides a headless VT220/xterm-compatible terminal emulator.
//
// The emulator maintains a cell grid without any display attached, making it
// useful for:
//   - Testing terminal applications without a GUI
//   - Building terminal multiplexers and recorders
//   - Creating terminal-based web applications
//   - Automated testing of CLI tools
//   - Screen scraping and automation
//
// # Quick Start
//
// Create a terminal and write ANSI sequences to it:
//
//	term := gridterm.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.String()) // "Hello World!"
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Terminal]: The main emulator that processes ANSI sequences
//   - [Buffer]: A 2D grid of lines with scrollback and change tracking
//   - [Line]: A row of cells with a wrap flag and a change sequence number
//   - [Cell]: A single grapheme with colors and attributes
//   - [Cursor]: Tracks position and rendering style
//
// Escape sequence recognition lives in the [github.com/gridterm/gridterm/vte]
// and [github.com/gridterm/gridterm/ansi] subpackages; Terminal wires them
// together and interprets the decoded commands against the grid.
//
// # Terminal
//
// Terminal is the main entry point. It implements [io.Writer] so you can write
// raw bytes containing ANSI escape sequences:
//
//	term := gridterm.New(
//	    gridterm.WithSize(24, 80),           // 24 rows, 80 columns
//	    gridterm.WithScrollback(storage),    // Enable scrollback
//	    gridterm.WithResponse(ptyWriter),    // Handle terminal responses
//	)
//
//	// Process output from a command
//	cmd := exec.Command("ls", "-la", "--color")
//	cmd.Stdout = term
//	cmd.Run()
//
//	// Read the result
//	for row := 0; row < term.Rows(); row++ {
//	    fmt.Println(term.LineContent(row))
//	}
//
// For pull-based sources, [Terminal.FeedLoop] reads from an [io.Reader] under
// a [context.Context] with optional rate limiting.
//
// # Dual Buffers
//
// Terminal maintains two buffers:
//
//   - Primary buffer: Normal mode with optional scrollback storage
//   - Alternate buffer: Used by full-screen apps (vim, less, htop), no scrollback
//
// Applications switch buffers via ANSI sequences (CSI ?1049h/l). Check which
// buffer is active:
//
//	if term.IsAlternateScreen() {
//	    // Full-screen app is running
//	}
//
// # Cells and Attributes
//
// Each cell stores a base character, any attached combining marks, and styling:
//
//	cell := term.Cell(row, col)
//	if cell != nil {
//	    fmt.Printf("Text: %s\n", cell.Text())
//	    fmt.Printf("Bold: %v\n", cell.HasFlag(gridterm.CellFlagBold))
//	    fmt.Printf("FG: %v\n", cell.Fg)
//	    fmt.Printf("BG: %v\n", cell.Bg)
//	}
//
// Cell flags include: Bold, Dim, Italic, Underline, Blink, Reverse, Hidden, Strike.
//
// # Colors
//
// Colors are stored using Go's [image/color] interface. The package supports:
//
//   - Named colors (indices 0-15 for standard ANSI colors)
//   - 256-color palette (indices 0-255)
//   - True color (24-bit RGB via [color.RGBA])
//
// Cleared cells inherit the current SGR background (background color erase), so
// "\x1b[44m\x1b[2J" paints the whole screen blue.
//
// # Stable Rows and Change Tracking
//
// Every line carries a sequence number that is bumped whenever its content
// changes, and every viewport row has a stable index that does not move when
// lines scroll into or out of scrollback:
//
//	seq := term.CurrentSeqno()
//	term.WriteString("hello\r\n")
//
//	// Which stable rows changed since seq?
//	changed := term.LinesChangedSince(seq)
//	for _, r := range changed.Ranges() {
//	    // r.Start..r.End-1 are stable row indices
//	}
//
//	// Map between viewport rows and stable indices
//	stable := term.StableRowIndex(0)
//	row, onScreen := term.RowForStable(stable)
//
// Stable indices stay valid even after the scrollback trims old lines, which
// makes them safe anchors for marks, selections, and incremental renderers.
//
// # Scrollback
//
// Lines scrolled off the top of the primary buffer can be stored for later access.
// Implement [ScrollbackProvider] or use the built-in memory storage:
//
//	// In-memory scrollback with 10000 line limit
//	storage := gridterm.NewMemoryScrollback(10000)
//	term := gridterm.New(gridterm.WithScrollback(storage))
//
//	// Access scrollback
//	for i := 0; i < term.ScrollbackLen(); i++ {
//	    line := term.ScrollbackLine(i) // []Cell
//	}
//
// # Providers
//
// Providers handle terminal events and queries. All are optional with no-op
// defaults:
//
//   - [BellProvider]: Handles bell/beep events
//   - [TitleProvider]: Handles window title changes (OSC 0/1/2)
//   - [ClipboardProvider]: Handles clipboard operations (OSC 52)
//   - [ScrollbackProvider]: Stores lines scrolled off screen
//   - [RecordingProvider]: Captures raw input for replay
//   - [SizeProvider]: Provides pixel dimensions for queries
//   - [ShellIntegrationProvider]: Handles shell integration marks (OSC 133)
//   - [NotificationProvider]: Handles desktop notifications (OSC 9/777)
//   - [ErrorProvider]: Receives errors from response writes and feed loops
//
// Example with providers:
//
//	term := gridterm.New(
//	    gridterm.WithResponse(ptyWriter),
//	    gridterm.WithBell(&MyBellHandler{}),
//	    gridterm.WithTitle(&MyTitleHandler{}),
//	)
//
// # Middleware
//
// Middleware intercepts ANSI handler calls for custom behavior:
//
//	mw := &gridterm.Middleware{
//	    Input: func(r rune, next func(rune)) {
//	        log.Printf("Input: %c", r)
//	        next(r) // Call default handler
//	    },
//	    Bell: func(next func()) {
//	        log.Println("Bell!")
//	        // Don't call next() to suppress the bell
//	    },
//	}
//	term := gridterm.New(gridterm.WithMiddleware(mw))
//
// # Terminal Modes
//
// Various terminal behaviors are controlled by mode flags:
//
//	term.HasMode(gridterm.ModeLineWrap)       // Auto line wrap enabled?
//	term.HasMode(gridterm.ModeShowCursor)     // Cursor visible?
//	term.HasMode(gridterm.ModeBracketedPaste) // Bracketed paste enabled?
//
// See [TerminalMode] for all available modes.
//
// # Mouse Reporting
//
// When an application enables a mouse tracking mode, [Terminal.EncodeMouseEvent]
// converts a [MouseEvent] into the byte sequence the application expects,
// honoring the active tracking mode (clicks, cell motion, all motion) and
// encoding (X10, UTF-8, SGR, SGR-pixels):
//
//	seq := term.EncodeMouseEvent(gridterm.MouseEvent{
//	    Button: gridterm.MouseButtonLeft,
//	    Press:  true,
//	    Row:    4,
//	    Col:    10,
//	})
//	pty.Write(seq)
//
// On the alternate screen with alternate scroll enabled, wheel events are
// translated to arrow key sequences.
//
// # Dirty Tracking
//
// Track which cells changed for efficient rendering:
//
//	if term.HasDirty() {
//	    for _, pos := range term.DirtyCells() {
//	        // Redraw cell at pos.Row, pos.Col
//	    }
//	    term.ClearDirty()
//	}
//
// For line-granular incremental updates prefer [Terminal.LinesChangedSince].
//
// # Selection
//
// Manage text selections for copy/paste:
//
//	term.SetSelection(
//	    gridterm.Position{Row: 0, Col: 0},
//	    gridterm.Position{Row: 2, Col: 10},
//	)
//	text := term.GetSelectedText()
//	term.ClearSelection()
//
// # Search
//
// Find text in the visible screen or scrollback:
//
//	matches := term.Search("error")
//	for _, pos := range matches {
//	    fmt.Printf("Found at row %d, col %d\n", pos.Row, pos.Col)
//	}
//
//	// Search scrollback (returns negative row numbers)
//	scrollbackMatches := term.SearchScrollback("error")
//
// # Snapshots
//
// Capture the terminal state for serialization or rendering:
//
//	// Text only (smallest)
//	snap := term.Snapshot(gridterm.SnapshotDetailText)
//
//	// With style segments (good for HTML rendering)
//	snap := term.Snapshot(gridterm.SnapshotDetailStyled)
//
//	// Full cell data (complete state, includes image references)
//	snap := term.Snapshot(gridterm.SnapshotDetailFull)
//
//	// Convert to JSON
//	data, _ := json.Marshal(snap)
//
// # Image Support
//
// The terminal supports inline images via Sixel and Kitty graphics protocols
// when enabled:
//
//	term := gridterm.New(
//	    gridterm.WithSixel(true),
//	    gridterm.WithKitty(true),
//	)
//
//	// Access stored images
//	for _, placement := range term.ImagePlacements() {
//	    img := term.Image(placement.ImageID)
//	    // img.Data contains RGBA pixels
//	}
//
//	// Configure image memory budget
//	term.SetImageMaxMemory(100 * 1024 * 1024) // 100MB
//
// # Shell Integration
//
// Track shell prompts and command output (OSC 133). Marks are anchored to
// stable row indices, so they survive scrolling and scrollback trimming:
//
//	term := gridterm.New(
//	    gridterm.WithShellIntegration(&MyHandler{}),
//	)
//
//	// Navigate between prompts
//	next := term.NextPromptRow(term.StableRowIndex(0), -1)
//	prev := term.PrevPromptRow(term.StableRowIndex(0), -1)
//
//	// Get last command output
//	output := term.GetLastCommandOutput()
//
// # Auto-Resize Mode
//
// In auto-resize mode, the buffer grows instead of scrolling:
//
//	term := gridterm.New(gridterm.WithAutoResize())
//
//	// Capture complete output without truncation
//	cmd.Stdout = term
//	cmd.Run()
//
//	// Buffer has grown to fit all output
//	fmt.Printf("Total rows: %d\n", term.Rows())
//
// # Thread Safety
//
// All Terminal methods are safe for concurrent use. The terminal uses internal
// locking to protect state. However, if you need to perform multiple operations
// atomically, you should use your own synchronization.
//
// # Supported ANSI Sequences
//
// The terminal supports a comprehensive set of ANSI escape sequences including:
//
//   - Cursor movement (CUU, CUD, CUF, CUB, CUP, HVP, etc.)
//   - Cursor save/restore (DECSC, DECRC)
//   - Erase commands (ED, EL, ECH) with background color erase
//   - Insert/delete (ICH, DCH, IL, DL)
//   - Repeat (REP)
//   - Scrolling (SU, SD, DECSTBM)
//   - Character attributes (SGR) with full color support
//   - Terminal modes (DECSET, DECRST)
//   - Device status reports (DSR)
//   - Alternate screen buffer
//   - Bracketed paste mode
//   - Mouse reporting (X10, UTF-8, SGR, SGR-pixels)
//   - Window title (OSC 0/1/2)
//   - Clipboard (OSC 52)
//   - Hyperlinks (OSC 8)
//   - Shell integration (OSC 133)
//   - Desktop notifications (OSC 9, OSC 777)
//   - User variables (OSC 1337 SetUserVar)
//   - Sixel and Kitty graphics
//
// For the complete list of decoded sequences, see the
// [github.com/gridterm/gridterm/ansi] package documentation.
package gridterm
