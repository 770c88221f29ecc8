package gridterm

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontFinder locates font files by name (useful for avoiding font library dependencies).
type FontFinder interface {
	// Find returns the filesystem path to a font file matching the given name.
	Find(name string) (string, error)
}

// ScreenshotConfig controls how the terminal is rendered to an image.
type ScreenshotConfig struct {
	// Font face to use for rendering. If nil and FontName is empty, uses basicfont.Face7x13.
	Font font.Face

	// FontFinder is used to find fonts by name. Optional.
	FontFinder FontFinder

	// FontName is the font name to find using FontFinder.
	FontName string

	// FontSize is the font size when using FontFinder. Default 14.
	FontSize float64

	// CellWidth and CellHeight override the cell dimensions.
	// If zero, derived from font metrics.
	CellWidth  int
	CellHeight int

	// Palette is the 256-color palette. If nil, uses DefaultPalette.
	Palette *[256]color.RGBA

	// DefaultFG is the default foreground color. If nil, uses DefaultForeground.
	DefaultFG *color.RGBA

	// DefaultBG is the default background color. If nil, uses DefaultBackground.
	DefaultBG *color.RGBA

	// CursorColor is the cursor color. If nil, uses inverted colors.
	CursorColor *color.RGBA

	// ShowCursor controls whether to render the cursor. Default true.
	ShowCursor *bool
}

// LoadFont loads a TrueType or OpenType font from a file path.
func LoadFont(path string, size float64) (font.Face, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadFontFromReader(f, size)
}

// LoadFontFromReader loads a TrueType or OpenType font from an io.Reader.
func LoadFontFromReader(r io.Reader, size float64) (font.Face, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return LoadFontFromBytes(data, size)
}

// LoadFontFromBytes loads a TrueType or OpenType font from raw bytes.
func LoadFontFromBytes(data []byte, size float64) (font.Face, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// cellRenderer carries the resolved rendering parameters for one pass.
type cellRenderer struct {
	img       *image.RGBA
	face      font.Face
	cellW     int
	cellH     int
	ascent    int
	palette   *[256]color.RGBA
	defaultFG *color.RGBA
	defaultBG *color.RGBA
}

// Screenshot renders the terminal to an RGBA image using default settings (basicfont, default palette).
func (t *Terminal) Screenshot() *image.RGBA {
	return t.ScreenshotWithConfig(&ScreenshotConfig{})
}

// ScreenshotWithConfig renders the terminal to an RGBA image with custom font, colors, and cursor settings.
func (t *Terminal) ScreenshotWithConfig(cfg *ScreenshotConfig) *image.RGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()

	face := cfg.Font
	if face == nil && cfg.FontFinder != nil && cfg.FontName != "" {
		size := cfg.FontSize
		if size == 0 {
			size = 14
		}
		if path, err := cfg.FontFinder.Find(cfg.FontName); err == nil {
			if loaded, err := LoadFont(path, size); err == nil {
				face = loaded
			}
		}
	}
	if face == nil {
		face = basicfont.Face7x13
	}

	metrics := face.Metrics()
	cellW, cellH := cfg.CellWidth, cfg.CellHeight
	if cellW == 0 {
		adv, _ := face.GlyphAdvance('M')
		if cellW = adv.Ceil(); cellW == 0 {
			cellW = 7
		}
	}
	if cellH == 0 {
		cellH = metrics.Height.Ceil()
	}

	r := &cellRenderer{
		face:      face,
		cellW:     cellW,
		cellH:     cellH,
		ascent:    metrics.Ascent.Ceil(),
		palette:   cfg.Palette,
		defaultFG: cfg.DefaultFG,
		defaultBG: cfg.DefaultBG,
	}
	if r.palette == nil {
		r.palette = &DefaultPalette
	}
	if r.defaultFG == nil {
		r.defaultFG = &DefaultForeground
	}
	if r.defaultBG == nil {
		r.defaultBG = &DefaultBackground
	}

	r.img = image.NewRGBA(image.Rect(0, 0, t.cols*cellW, t.rows*cellH))
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(*r.defaultBG), image.Point{}, draw.Src)

	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell == nil || cell.IsWideSpacer() {
				continue
			}
			r.drawCell(cell, col*cellW, row*cellH)
		}
	}

	showCursor := true
	if cfg.ShowCursor != nil {
		showCursor = *cfg.ShowCursor
	}
	if showCursor && t.cursor.Visible {
		r.drawCursor(t.cursor.Col*cellW, t.cursor.Row*cellH, cfg.CursorColor)
	}

	return r.img
}

func (r *cellRenderer) fillRect(x, y, w, h int, c color.RGBA) {
	rect := image.Rect(x, y, x+w, y+h).Intersect(r.img.Bounds())
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *cellRenderer) drawCell(cell *Cell, x, y int) {
	fg := resolveColorWithPalette(cell.Fg, true, r.palette, r.defaultFG, r.defaultBG)
	bg := resolveColorWithPalette(cell.Bg, false, r.palette, r.defaultFG, r.defaultBG)

	if cell.HasFlag(CellFlagReverse) {
		fg, bg = bg, fg
	}
	if cell.HasFlag(CellFlagDim) {
		fg = dimmed(fg)
	}

	r.fillRect(x, y, r.cellW, r.cellH, bg)

	if cell.Char == 0 || (cell.Char == ' ' && len(cell.Combining) == 0) {
		return
	}

	baseline := y + r.ascent
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(fg),
		Face: r.face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(cell.Text())

	if underlineStyleName(cell) != "" {
		c := fg
		if cell.UnderlineColor != nil {
			c = resolveColorWithPalette(cell.UnderlineColor, true, r.palette, r.defaultFG, r.defaultBG)
		}
		r.fillRect(x, baseline+2, r.cellW, 1, c)
	}
	if cell.HasFlag(CellFlagStrike) {
		r.fillRect(x, y+r.cellH/2, r.cellW, 1, fg)
	}
}

func (r *cellRenderer) drawCursor(x, y int, override *color.RGBA) {
	if override != nil {
		r.fillRect(x, y, r.cellW, r.cellH, *override)
		return
	}

	// No explicit cursor color: invert whatever is already rendered.
	rect := image.Rect(x, y, x+r.cellW, y+r.cellH).Intersect(r.img.Bounds())
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		for px := rect.Min.X; px < rect.Max.X; px++ {
			c := r.img.RGBAAt(px, py)
			r.img.SetRGBA(px, py, color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: 255})
		}
	}
}

// dimmed applies the SGR 2 intensity reduction.
func dimmed(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.66),
		G: uint8(float64(c.G) * 0.66),
		B: uint8(float64(c.B) * 0.66),
		A: c.A,
	}
}

// resolveColorWithPalette resolves a color using a custom palette.
func resolveColorWithPalette(c color.Color, fg bool, palette *[256]color.RGBA, defaultFG, defaultBG *color.RGBA) color.RGBA {
	fallback := func() color.RGBA {
		if fg {
			return *defaultFG
		}
		return *defaultBG
	}

	switch v := c.(type) {
	case nil:
		return fallback()
	case color.RGBA:
		return v
	case *IndexedColor:
		if v.Index >= 0 && v.Index < 256 {
			return palette[v.Index]
		}
		return fallback()
	case *NamedColor:
		return resolveNamedColorWithPalette(v.Name, fg, palette, defaultFG, defaultBG)
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
}

// resolveNamedColorWithPalette resolves a named color using a custom palette.
func resolveNamedColorWithPalette(name int, fg bool, palette *[256]color.RGBA, defaultFG, defaultBG *color.RGBA) color.RGBA {
	switch {
	case name >= 0 && name < 16:
		return palette[name]
	case name == NamedColorForeground:
		return *defaultFG
	case name == NamedColorBackground:
		return *defaultBG
	case name == NamedColorCursor:
		return *defaultFG
	case name >= NamedColorDimBlack && name <= NamedColorDimWhite:
		return dimmed(palette[name-NamedColorDimBlack])
	case name == NamedColorBrightForeground:
		return palette[15]
	case name == NamedColorDimForeground:
		return dimmed(*defaultFG)
	default:
		if fg {
			return *defaultFG
		}
		return *defaultBG
	}
}
