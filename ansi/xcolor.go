package ansi

import (
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// parseColorSpec parses the color specifications accepted by the OSC color
// commands: "#RRGGBB" hex values and the X11 "rgb:RR/GG/BB" form with one
// to four hex digits per component.
func parseColorSpec(spec string) (color.Color, bool) {
	spec = strings.TrimSpace(spec)

	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(spec)
		if err != nil {
			return nil, false
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xFF}, true
	}

	if rest, ok := strings.CutPrefix(spec, "rgb:"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) != 3 {
			return nil, false
		}
		var scaled [3]uint8
		for i, part := range parts {
			v, ok := scaleHexComponent(part)
			if !ok {
				return nil, false
			}
			scaled[i] = v
		}
		return color.RGBA{R: scaled[0], G: scaled[1], B: scaled[2], A: 0xFF}, true
	}

	if rest, ok := strings.CutPrefix(spec, "rgbi:"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) != 3 {
			return nil, false
		}
		var comps [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil || v < 0 || v > 1 {
				return nil, false
			}
			comps[i] = v
		}
		c := colorful.Color{R: comps[0], G: comps[1], B: comps[2]}
		r, g, b := c.Clamped().RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xFF}, true
	}

	return nil, false
}

// scaleHexComponent scales an X11 hex component of one to four digits to
// eight bits: "f" means 0xFF, "fff" means the top byte of 0xFFF0-scaled.
func scaleHexComponent(s string) (uint8, bool) {
	if len(s) < 1 || len(s) > 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	max := uint64(1)<<(4*uint(len(s))) - 1
	return uint8(v * 255 / max), true
}
