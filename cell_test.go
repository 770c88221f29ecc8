package gridterm

import (
	"testing"
)

func TestNewCell(t *testing.T) {
	cell := NewCell()

	if cell.Char != ' ' {
		t.Errorf("expected space, got '%c'", cell.Char)
	}
	if fg, ok := cell.Fg.(*NamedColor); !ok || fg.Name != NamedColorForeground {
		t.Errorf("expected default foreground, got %v", cell.Fg)
	}
	if bg, ok := cell.Bg.(*NamedColor); !ok || bg.Name != NamedColorBackground {
		t.Errorf("expected default background, got %v", cell.Bg)
	}
	if cell.Flags != 0 {
		t.Error("expected no flags")
	}
	if cell.Semantic != SemanticOutput {
		t.Error("expected output semantic by default")
	}
}

func TestCellReset(t *testing.T) {
	cell := NewCell()
	cell.Char = 'A'
	cell.SetFlag(CellFlagBold)
	cell.AppendCombining(0x0301)
	cell.Semantic = SemanticPrompt

	cell.Reset()

	if cell.Char != ' ' {
		t.Errorf("expected space after reset, got '%c'", cell.Char)
	}
	if cell.HasFlag(CellFlagBold) {
		t.Error("expected no flags after reset")
	}
	if len(cell.Combining) != 0 {
		t.Error("expected combining marks cleared after reset")
	}
	if cell.Semantic != SemanticOutput {
		t.Error("expected semantic cleared after reset")
	}
}

func TestCellFlags(t *testing.T) {
	cell := NewCell()

	cell.SetFlag(CellFlagBold)
	if !cell.HasFlag(CellFlagBold) {
		t.Error("expected bold flag")
	}

	cell.SetFlag(CellFlagItalic)
	if !cell.HasFlag(CellFlagBold) || !cell.HasFlag(CellFlagItalic) {
		t.Error("expected both flags")
	}

	cell.ClearFlag(CellFlagBold)
	if cell.HasFlag(CellFlagBold) {
		t.Error("expected bold flag to be cleared")
	}
	if !cell.HasFlag(CellFlagItalic) {
		t.Error("expected italic flag to remain")
	}
}

func TestCellDirty(t *testing.T) {
	cell := NewCell()

	if cell.IsDirty() {
		t.Error("expected cell not dirty initially")
	}

	cell.MarkDirty()
	if !cell.IsDirty() {
		t.Error("expected cell to be dirty")
	}

	cell.ClearDirty()
	if cell.IsDirty() {
		t.Error("expected cell not dirty after clear")
	}
}

func TestCellWide(t *testing.T) {
	cell := NewCell()

	cell.SetFlag(CellFlagWideChar)
	if !cell.IsWide() {
		t.Error("expected cell to be wide")
	}

	spacer := NewCell()
	spacer.SetFlag(CellFlagWideCharSpacer)
	if !spacer.IsWideSpacer() {
		t.Error("expected cell to be spacer")
	}
}

func TestCellText(t *testing.T) {
	cell := NewCell()
	cell.Char = 'e'

	if cell.Text() != "e" {
		t.Errorf("expected 'e', got %q", cell.Text())
	}

	cell.AppendCombining(0x0301)
	cell.AppendCombining(0x0308)

	if cell.Text() != "é̈" {
		t.Errorf("expected combined grapheme, got %q", cell.Text())
	}
}

func TestCellCopy(t *testing.T) {
	cell := NewCell()
	cell.Char = 'X'
	cell.SetFlag(CellFlagBold | CellFlagItalic)
	cell.AppendCombining(0x0301)

	copied := cell.Copy()

	if copied.Char != 'X' {
		t.Errorf("expected 'X', got '%c'", copied.Char)
	}
	if !copied.HasFlag(CellFlagBold) || !copied.HasFlag(CellFlagItalic) {
		t.Error("expected flags to be copied")
	}

	// Modify original, copy should be unchanged
	cell.Char = 'Y'
	cell.AppendCombining(0x0302)
	if copied.Char != 'X' {
		t.Error("copy should be independent")
	}
	if len(copied.Combining) != 1 {
		t.Error("expected combining marks to be deep copied")
	}
}

func TestCellTemplateBlankCell(t *testing.T) {
	tmpl := NewCellTemplate()
	tmpl.Bg = &IndexedColor{Index: 4}
	tmpl.Flags = CellFlagBold | CellFlagUnderline

	blank := tmpl.BlankCell()

	if blank.Char != ' ' {
		t.Errorf("expected space, got '%c'", blank.Char)
	}
	// Only the background survives into erased cells.
	if blank.Bg != tmpl.Bg {
		t.Error("expected template background on blank cell")
	}
	if blank.Flags != 0 {
		t.Error("expected no attributes on blank cell")
	}
}
