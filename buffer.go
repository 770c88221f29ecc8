package gridterm

import "strings"

// Line is one row of the grid. Each line carries a sequence number stamped
// from the buffer's monotonic counter on every mutation, plus a flag
// recording whether the line was soft-wrapped onto the next row.
type Line struct {
	cells   []Cell
	seqno   uint64
	wrapped bool
}

func newLine(cols int) *Line {
	l := &Line{cells: make([]Cell, cols)}
	for i := range l.cells {
		l.cells[i] = NewCell()
	}
	return l
}

// Cells returns the line's cells. The slice is shared with the buffer;
// callers must not grow it.
func (l *Line) Cells() []Cell {
	return l.cells
}

// Seqno returns the value of the buffer's mutation counter when this line
// was last changed.
func (l *Line) Seqno() uint64 {
	return l.seqno
}

// IsWrapped returns true if the line was soft-wrapped due to column overflow
// rather than terminated by an explicit newline.
func (l *Line) IsWrapped() bool {
	return l.wrapped
}

// Buffer stores a 2D grid of lines and tracks per-line change sequence
// numbers and line wrapping state. Supports optional scrollback storage for
// lines scrolled off the top. Rows that scroll into scrollback advance the
// stable row base, so a stable index keeps identifying the same logical line
// as the display scrolls.
type Buffer struct {
	rows       int
	cols       int
	lines      []*Line
	tabStop    []bool
	scrollback ScrollbackProvider
	hasDirty   bool
	seqno      uint64
	stableBase int64
}

// NewBuffer creates a buffer with the given dimensions and no scrollback.
func NewBuffer(rows, cols int) *Buffer {
	return NewBufferWithStorage(rows, cols, NoopScrollback{})
}

// NewBufferWithStorage creates a buffer with custom scrollback storage.
// Tab stops are initialized every 8 columns.
func NewBufferWithStorage(rows, cols int, storage ScrollbackProvider) *Buffer {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	b := &Buffer{
		rows:       rows,
		cols:       cols,
		lines:      make([]*Line, rows),
		tabStop:    make([]bool, cols),
		scrollback: storage,
	}

	for i := range b.lines {
		b.lines[i] = newLine(cols)
	}

	// Set default tab stops every 8 columns
	for i := 0; i < cols; i += 8 {
		b.tabStop[i] = true
	}

	return b
}

// Rows returns the buffer height in character rows.
func (b *Buffer) Rows() int {
	return b.rows
}

// Cols returns the buffer width in character columns.
func (b *Buffer) Cols() int {
	return b.cols
}

// Line returns the line at the given row, or nil if out of bounds.
func (b *Buffer) Line(row int) *Line {
	if row < 0 || row >= b.rows {
		return nil
	}
	return b.lines[row]
}

// Cell returns a pointer to the cell at (row, col).
// Returns nil if coordinates are out of bounds.
func (b *Buffer) Cell(row, col int) *Cell {
	if row < 0 || row >= b.rows || col < 0 || col >= len(b.lines[row].cells) {
		return nil
	}
	return &b.lines[row].cells[col]
}

// bumpLine stamps the line with the next sequence number. Every mutation
// path funnels through here; commands rejected during validation never reach
// it, so the counter only moves when the grid actually changes.
func (b *Buffer) bumpLine(row int) {
	b.seqno++
	b.lines[row].seqno = b.seqno
	b.hasDirty = true
}

// CurrentSeqno returns the buffer's mutation counter. A renderer snapshots
// this value and later asks LinesChangedSince for everything newer.
func (b *Buffer) CurrentSeqno() uint64 {
	return b.seqno
}

// StableBase returns the stable index of viewport row 0. It starts at zero
// and advances by one for every line that scrolls off the top into
// scrollback, so stable indices are durable across scrolling.
func (b *Buffer) StableBase() int64 {
	return b.stableBase
}

// StableRowIndex returns the stable index of a viewport row.
func (b *Buffer) StableRowIndex(row int) int64 {
	return b.stableBase + int64(row)
}

// RowForStable maps a stable index back to a viewport row. Returns false if
// the index refers to a scrollback line or beyond the bottom of the screen.
func (b *Buffer) RowForStable(stable int64) (int, bool) {
	row := stable - b.stableBase
	if row < 0 || row >= int64(b.rows) {
		return 0, false
	}
	return int(row), true
}

// StableRowForScrollback returns the stable index of a scrollback line,
// where index 0 is the oldest retained line. Trimming old scrollback lines
// never shifts the stable indices of the lines that remain.
func (b *Buffer) StableRowForScrollback(index int) int64 {
	return b.stableBase - int64(b.ScrollbackLen()) + int64(index)
}

// LinesChangedSince returns the stable indices of viewport lines whose
// sequence number is greater than seqno. Passing 0 returns every line that
// was ever touched.
func (b *Buffer) LinesChangedSince(seqno uint64) *RangeSet {
	set := NewRangeSet()
	for row, line := range b.lines {
		if line.seqno > seqno {
			set.Add(b.StableRowIndex(row))
		}
	}
	return set
}

// SetCell replaces the cell at (row, col) and marks it dirty.
// Does nothing if coordinates are out of bounds.
func (b *Buffer) SetCell(row, col int, cell Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= len(b.lines[row].cells) {
		return
	}
	cell.MarkDirty()
	b.lines[row].cells[col] = cell
	b.bumpLine(row)
}

// MarkDirty marks the cell at (row, col) as modified.
// Does nothing if coordinates are out of bounds.
func (b *Buffer) MarkDirty(row, col int) {
	if row < 0 || row >= b.rows || col < 0 || col >= len(b.lines[row].cells) {
		return
	}
	b.lines[row].cells[col].MarkDirty()
	b.bumpLine(row)
}

// HasDirty returns true if any cell has been modified since the last ClearAllDirty call.
func (b *Buffer) HasDirty() bool {
	return b.hasDirty
}

// DirtyCells returns positions of all modified cells.
func (b *Buffer) DirtyCells() []Position {
	var positions []Position
	for row := range b.lines {
		for col := range b.lines[row].cells {
			if b.lines[row].cells[col].IsDirty() {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

// ClearAllDirty resets the dirty state of all cells. Sequence numbers are
// untouched; they record history, not pending-redraw state.
func (b *Buffer) ClearAllDirty() {
	for row := range b.lines {
		for col := range b.lines[row].cells {
			b.lines[row].cells[col].ClearDirty()
		}
	}
	b.hasDirty = false
}

// ClearRow fills the row with copies of blank and marks it dirty.
// The blank cell carries the erase background, so background color erase
// works for every clear path.
func (b *Buffer) ClearRow(row int, blank Cell) {
	if row < 0 || row >= b.rows {
		return
	}
	for col := range b.lines[row].cells {
		b.lines[row].cells[col] = blank
		b.lines[row].cells[col].MarkDirty()
	}
	b.bumpLine(row)
}

// ClearRowRange fills cells in the row from startCol (inclusive) to endCol (exclusive) with blank.
func (b *Buffer) ClearRowRange(row, startCol, endCol int, blank Cell) {
	if row < 0 || row >= b.rows {
		return
	}
	if startCol < 0 {
		startCol = 0
	}
	if endCol > len(b.lines[row].cells) {
		endCol = len(b.lines[row].cells)
	}
	if startCol >= endCol {
		return
	}
	for col := startCol; col < endCol; col++ {
		b.lines[row].cells[col] = blank
		b.lines[row].cells[col].MarkDirty()
	}
	b.bumpLine(row)
}

// ClearAll fills every cell in the buffer with blank.
func (b *Buffer) ClearAll(blank Cell) {
	for row := range b.lines {
		b.ClearRow(row, blank)
	}
}

// ScrollUp shifts lines up by n positions within [top, bottom).
// Lines scrolled off the top are pushed to scrollback if enabled and top==0,
// and the stable row base advances by one per pushed line.
// Bottom lines are filled with blank and marked dirty.
func (b *Buffer) ScrollUp(top, bottom, n int, blank Cell) {
	if n <= 0 || top >= bottom {
		return
	}
	if top < 0 {
		top = 0
	}
	if bottom > b.rows {
		bottom = b.rows
	}

	if n > bottom-top {
		n = bottom - top
	}

	// Lines leaving the top of the screen become scrollback history.
	if top == 0 {
		if b.scrollback != nil && b.scrollback.MaxLines() > 0 {
			for i := 0; i < n; i++ {
				b.scrollback.Push(b.lines[i].cells)
			}
		}
		b.stableBase += int64(n)
	}

	// Move lines up
	for row := top; row < bottom-n; row++ {
		b.lines[row] = b.lines[row+n]
		for col := range b.lines[row].cells {
			b.lines[row].cells[col].MarkDirty()
		}
		b.bumpLine(row)
	}

	// Fill the bottom lines
	for row := bottom - n; row < bottom; row++ {
		b.lines[row] = newLine(b.cols)
		b.ClearRow(row, blank)
	}
}

// ScrollDown shifts lines down by n positions within [top, bottom).
// Top lines are filled with blank and marked dirty.
func (b *Buffer) ScrollDown(top, bottom, n int, blank Cell) {
	if n <= 0 || top >= bottom {
		return
	}
	if top < 0 {
		top = 0
	}
	if bottom > b.rows {
		bottom = b.rows
	}

	if n > bottom-top {
		n = bottom - top
	}

	// Move lines down
	for row := bottom - 1; row >= top+n; row-- {
		b.lines[row] = b.lines[row-n]
		for col := range b.lines[row].cells {
			b.lines[row].cells[col].MarkDirty()
		}
		b.bumpLine(row)
	}

	// Fill the top lines
	for row := top; row < top+n; row++ {
		b.lines[row] = newLine(b.cols)
		b.ClearRow(row, blank)
	}
}

// InsertLines inserts n blank lines at row, shifting existing lines down.
// Equivalent to ScrollDown(row, bottom, n).
func (b *Buffer) InsertLines(row, n, bottom int, blank Cell) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	b.ScrollDown(row, bottom, n, blank)
}

// DeleteLines removes n lines at row, shifting remaining lines up.
// Equivalent to ScrollUp(row, bottom, n).
func (b *Buffer) DeleteLines(row, n, bottom int, blank Cell) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	b.ScrollUp(row, bottom, n, blank)
}

// InsertBlanks inserts n blank cells at (row, col), shifting existing characters right.
// Characters pushed past the right margin are discarded.
func (b *Buffer) InsertBlanks(row, col, n int, blank Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= len(b.lines[row].cells) || n <= 0 {
		return
	}

	cells := b.lines[row].cells
	width := len(cells)
	if n > width-col {
		n = width - col
	}

	// Shift characters to the right
	for c := width - 1; c >= col+n; c-- {
		cells[c] = cells[c-n]
		cells[c].MarkDirty()
	}

	// Fill the opened gap
	for c := col; c < col+n; c++ {
		cells[c] = blank
		cells[c].MarkDirty()
	}
	b.bumpLine(row)
}

// DeleteChars removes n characters at (row, col), shifting remaining characters left.
// The vacated cells at the end of the line are filled with blank.
func (b *Buffer) DeleteChars(row, col, n int, blank Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= len(b.lines[row].cells) || n <= 0 {
		return
	}

	cells := b.lines[row].cells
	width := len(cells)
	if n > width-col {
		n = width - col
	}

	// Shift characters to the left
	for c := col; c < width-n; c++ {
		cells[c] = cells[c+n]
		cells[c].MarkDirty()
	}

	// Fill the end of the line
	for c := width - n; c < width; c++ {
		cells[c] = blank
		cells[c].MarkDirty()
	}
	b.bumpLine(row)
}

// Resize changes buffer dimensions, preserving existing cells where possible.
// Content is kept at the top-left corner. When shrinking, bottom/right content is lost.
// When growing, new empty cells are added at the bottom/right.
// Dimensions are clamped to a minimum of 1x1. Tab stops are extended if columns increase.
func (b *Buffer) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if rows == b.rows && cols == b.cols {
		return
	}

	newLines := make([]*Line, rows)
	for i := range newLines {
		line := newLine(cols)
		if i < b.rows {
			old := b.lines[i]
			copy(line.cells, old.cells)
			line.wrapped = old.wrapped
		}
		for j := range line.cells {
			line.cells[j].MarkDirty()
		}
		newLines[i] = line
	}

	b.lines = newLines
	b.rows = rows
	b.cols = cols

	// Resize tab stops
	newTabStop := make([]bool, cols)
	copy(newTabStop, b.tabStop)
	for i := len(b.tabStop); i < cols; i += 8 {
		newTabStop[i] = true
	}
	b.tabStop = newTabStop

	for row := range b.lines {
		b.bumpLine(row)
	}
}

// SetTabStop enables a tab stop at the specified column.
func (b *Buffer) SetTabStop(col int) {
	if col >= 0 && col < b.cols {
		b.tabStop[col] = true
	}
}

// ClearTabStop disables the tab stop at the specified column.
func (b *Buffer) ClearTabStop(col int) {
	if col >= 0 && col < b.cols {
		b.tabStop[col] = false
	}
}

// ClearAllTabStops disables all tab stops.
func (b *Buffer) ClearAllTabStops() {
	for i := range b.tabStop {
		b.tabStop[i] = false
	}
}

// NextTabStop returns the column index of the next enabled tab stop after col.
// Returns the last column if no tab stop is found.
func (b *Buffer) NextTabStop(col int) int {
	for c := col + 1; c < b.cols; c++ {
		if b.tabStop[c] {
			return c
		}
	}
	return b.cols - 1
}

// PrevTabStop returns the column index of the previous enabled tab stop before col.
// Returns 0 if no tab stop is found.
func (b *Buffer) PrevTabStop(col int) int {
	for c := col - 1; c >= 0; c-- {
		if b.tabStop[c] {
			return c
		}
	}
	return 0
}

// FillWithE fills all cells with 'E' (used by DECALN alignment test pattern).
func (b *Buffer) FillWithE() {
	for row := range b.lines {
		for col := range b.lines[row].cells {
			b.lines[row].cells[col].Reset()
			b.lines[row].cells[col].Char = 'E'
			b.lines[row].cells[col].MarkDirty()
		}
		b.bumpLine(row)
	}
}

// ScrollbackLen returns the number of lines stored in scrollback.
func (b *Buffer) ScrollbackLen() int {
	if b.scrollback == nil {
		return 0
	}
	return b.scrollback.Len()
}

// ScrollbackLine returns a line from scrollback, where 0 is the oldest line.
// Returns nil if index is out of range or scrollback is disabled.
func (b *Buffer) ScrollbackLine(index int) []Cell {
	if b.scrollback == nil {
		return nil
	}
	return b.scrollback.Line(index)
}

// ClearScrollback removes all stored scrollback lines.
func (b *Buffer) ClearScrollback() {
	if b.scrollback != nil {
		b.scrollback.Clear()
	}
}

// SetMaxScrollback sets the maximum number of scrollback lines to retain.
func (b *Buffer) SetMaxScrollback(max int) {
	if b.scrollback != nil {
		b.scrollback.SetMaxLines(max)
	}
}

// MaxScrollback returns the current maximum scrollback capacity.
func (b *Buffer) MaxScrollback() int {
	if b.scrollback == nil {
		return 0
	}
	return b.scrollback.MaxLines()
}

// SetScrollbackProvider replaces the scrollback storage implementation.
func (b *Buffer) SetScrollbackProvider(storage ScrollbackProvider) {
	b.scrollback = storage
}

// ScrollbackProvider returns the current scrollback storage implementation.
func (b *Buffer) ScrollbackProvider() ScrollbackProvider {
	return b.scrollback
}

// LineContent returns the text content of a line, trimming trailing spaces.
// Wide character spacers are skipped and combining marks are included.
// Returns empty string if the line is empty or out of bounds.
func (b *Buffer) LineContent(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}

	cells := b.lines[row].cells

	// Find the last non-space character
	lastNonSpace := -1
	for col := len(cells) - 1; col >= 0; col-- {
		cell := &cells[col]
		if cell.Char != ' ' && cell.Char != 0 && !cell.IsWideSpacer() {
			lastNonSpace = col
			break
		}
	}

	if lastNonSpace < 0 {
		return ""
	}

	var sb strings.Builder
	for col := 0; col <= lastNonSpace; col++ {
		cell := &cells[col]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			sb.WriteRune(' ')
		} else {
			sb.WriteString(cell.Text())
		}
	}

	return sb.String()
}

// --- Auto Resize ---

// GrowRows appends n new rows to the bottom of the buffer.
// New cells are initialized to default state and marked dirty.
func (b *Buffer) GrowRows(n int) {
	if n <= 0 {
		return
	}

	oldRows := b.rows
	for i := 0; i < n; i++ {
		line := newLine(b.cols)
		for j := range line.cells {
			line.cells[j].MarkDirty()
		}
		b.lines = append(b.lines, line)
	}
	b.rows += n

	for row := oldRows; row < b.rows; row++ {
		b.bumpLine(row)
	}
}

// GrowCols expands a single row to at least minCols columns.
// Does nothing if the row is already wider. Tab stops are extended if needed.
func (b *Buffer) GrowCols(row, minCols int) {
	if row < 0 || row >= b.rows {
		return
	}
	line := b.lines[row]
	if minCols <= len(line.cells) {
		return
	}

	// Expand just this row
	newCells := make([]Cell, minCols)
	copy(newCells, line.cells)
	for j := len(line.cells); j < minCols; j++ {
		newCells[j] = NewCell()
		newCells[j].MarkDirty()
	}
	line.cells = newCells

	// Track max cols for reference
	if minCols > b.cols {
		b.cols = minCols
		// Expand tabstops
		newTabStop := make([]bool, minCols)
		copy(newTabStop, b.tabStop)
		for i := len(b.tabStop); i < minCols; i += 8 {
			newTabStop[i] = true
		}
		b.tabStop = newTabStop
	}

	b.bumpLine(row)
}

// --- Wrapped Line Tracking ---

// IsWrapped returns true if the line was wrapped due to column overflow.
func (b *Buffer) IsWrapped(row int) bool {
	if row < 0 || row >= b.rows {
		return false
	}
	return b.lines[row].wrapped
}

// SetWrapped sets whether the line was wrapped or ended with an explicit newline.
func (b *Buffer) SetWrapped(row int, wrapped bool) {
	if row < 0 || row >= b.rows {
		return
	}
	b.lines[row].wrapped = wrapped
}

// Position identifies a cell location in the terminal grid (0-based).
type Position struct {
	Row int
	Col int
}

// Before returns true if this position comes before other in reading order (top-to-bottom, left-to-right).
func (p Position) Before(other Position) bool {
	if p.Row < other.Row {
		return true
	}
	if p.Row == other.Row && p.Col < other.Col {
		return true
	}
	return false
}

// Equal returns true if both row and column match.
func (p Position) Equal(other Position) bool {
	return p.Row == other.Row && p.Col == other.Col
}
