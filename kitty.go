package gridterm

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"io"
	"strconv"
	"strings"
)

// KittyAction represents the action to perform.
type KittyAction byte

const (
	KittyActionTransmit        KittyAction = 't' // Transmit image data
	KittyActionTransmitDisplay KittyAction = 'T' // Transmit and display
	KittyActionQuery           KittyAction = 'q' // Query terminal support
	KittyActionDisplay         KittyAction = 'p' // Display (put) image
	KittyActionDelete          KittyAction = 'd' // Delete image(s)
	KittyActionFrame           KittyAction = 'f' // Transmit animation frame
	KittyActionAnimate         KittyAction = 'a' // Control animation
	KittyActionCompose         KittyAction = 'c' // Compose animation frames
)

// KittyTransmission represents how image data is transmitted.
type KittyTransmission byte

const (
	KittyTransmitDirect    KittyTransmission = 'd' // Direct (inline base64)
	KittyTransmitFile      KittyTransmission = 'f' // File path
	KittyTransmitTempFile  KittyTransmission = 't' // Temporary file
	KittyTransmitSharedMem KittyTransmission = 's' // Shared memory
)

// KittyFormat represents the image format.
type KittyFormat uint32

const (
	KittyFormatRGB  KittyFormat = 24  // 24-bit RGB
	KittyFormatRGBA KittyFormat = 32  // 32-bit RGBA (default)
	KittyFormatPNG  KittyFormat = 100 // PNG encoded
)

// KittyDelete represents what to delete.
type KittyDelete byte

const (
	KittyDeleteAll          KittyDelete = 'a' // All visible placements
	KittyDeleteAllWithData  KittyDelete = 'A' // All visible + image data
	KittyDeleteByID         KittyDelete = 'i' // By image ID
	KittyDeleteByIDWithData KittyDelete = 'I' // By image ID + image data
	KittyDeleteByNumber     KittyDelete = 'n' // By image number
	KittyDeleteByNumData    KittyDelete = 'N' // By image number + data
	KittyDeleteAtCursor     KittyDelete = 'c' // At cursor position
	KittyDeleteAtCursorData KittyDelete = 'C' // At cursor + data
	KittyDeleteAtPos        KittyDelete = 'p' // At specific position
	KittyDeleteAtPosData    KittyDelete = 'P' // At position + data
	KittyDeleteByCol        KittyDelete = 'x' // By column
	KittyDeleteByColData    KittyDelete = 'X' // By column + data
	KittyDeleteByRow        KittyDelete = 'y' // By row
	KittyDeleteByRowData    KittyDelete = 'Y' // By row + data
	KittyDeleteByZIndex     KittyDelete = 'z' // By z-index
	KittyDeleteByZIndexData KittyDelete = 'Z' // By z-index + data
)

// KittyCommand represents a parsed Kitty graphics command.
type KittyCommand struct {
	Action       KittyAction
	Transmission KittyTransmission
	Format       KittyFormat
	Compression  byte // 'z' for zlib

	// Image identification
	ImageID     uint32 // i=
	ImageNumber uint32 // I=
	PlacementID uint32 // p=

	// Transmission parameters
	Width  uint32 // s= (source width in pixels)
	Height uint32 // v= (source height in pixels)
	Size   uint32 // S= (data size for file/shm)
	Offset uint32 // O= (data offset for file/shm)
	More   bool   // m= (more data chunks coming)

	// Display parameters
	SrcX, SrcY      uint32 // x=, y= (source region origin)
	SrcW, SrcH      uint32 // w=, h= (source region size)
	Cols, Rows      uint32 // c=, r= (target cell size)
	CellOffsetX     uint32 // X= (x offset within cell)
	CellOffsetY     uint32 // Y= (y offset within cell)
	ZIndex          int32  // z= (z-index for layering)
	DoNotMoveCursor bool   // C= (1 = don't move cursor)

	// Delete parameters
	Delete KittyDelete // d=

	// Query/response
	Quiet uint32 // q= (0=normal, 1=suppress OK, 2=suppress all)

	// Payload data (base64 decoded)
	Payload []byte
}

// applyKey folds a single control-data key into the command. Unknown keys
// are ignored, as the protocol requires.
func (cmd *KittyCommand) applyKey(key byte, value []byte) {
	letter := func() byte {
		if len(value) == 0 {
			return 0
		}
		return value[0]
	}

	switch key {
	case 'a':
		if b := letter(); b != 0 {
			cmd.Action = KittyAction(b)
		}
	case 't':
		if b := letter(); b != 0 {
			cmd.Transmission = KittyTransmission(b)
		}
	case 'f':
		cmd.Format = KittyFormat(kittyUint(value))
	case 'o':
		cmd.Compression = letter()
	case 'i':
		cmd.ImageID = kittyUint(value)
	case 'I':
		cmd.ImageNumber = kittyUint(value)
	case 'p':
		cmd.PlacementID = kittyUint(value)
	case 's':
		cmd.Width = kittyUint(value)
	case 'v':
		cmd.Height = kittyUint(value)
	case 'S':
		cmd.Size = kittyUint(value)
	case 'O':
		cmd.Offset = kittyUint(value)
	case 'm':
		cmd.More = kittyUint(value) == 1
	case 'x':
		cmd.SrcX = kittyUint(value)
	case 'y':
		cmd.SrcY = kittyUint(value)
	case 'w':
		cmd.SrcW = kittyUint(value)
	case 'h':
		cmd.SrcH = kittyUint(value)
	case 'c':
		cmd.Cols = kittyUint(value)
	case 'r':
		cmd.Rows = kittyUint(value)
	case 'X':
		cmd.CellOffsetX = kittyUint(value)
	case 'Y':
		cmd.CellOffsetY = kittyUint(value)
	case 'z':
		cmd.ZIndex = kittyInt(value)
	case 'C':
		cmd.DoNotMoveCursor = kittyUint(value) == 1
	case 'd':
		if b := letter(); b != 0 {
			cmd.Delete = KittyDelete(b)
		}
	case 'q':
		cmd.Quiet = kittyUint(value)
	}
}

// ParseKittyGraphics parses a Kitty graphics APC sequence. The input is
// everything between ESC _ G and the terminating ST; a leading 'G' is
// tolerated for callers that pass the raw APC body.
func ParseKittyGraphics(data []byte) (*KittyCommand, error) {
	cmd := &KittyCommand{
		Action:       KittyActionTransmitDisplay,
		Transmission: KittyTransmitDirect,
		Format:       KittyFormatRGBA,
	}

	if len(data) > 0 && data[0] == 'G' {
		data = data[1:]
	}

	// Control data ends at the first ';'; the remainder is base64 payload.
	control := data
	var payload []byte
	if i := bytes.IndexByte(data, ';'); i >= 0 {
		control, payload = data[:i], data[i+1:]
	}

	for len(control) > 0 {
		pair := control
		if i := bytes.IndexByte(control, ','); i >= 0 {
			pair, control = control[:i], control[i+1:]
		} else {
			control = nil
		}
		eq := bytes.IndexByte(pair, '=')
		if eq < 1 {
			continue
		}
		cmd.applyKey(pair[0], pair[eq+1:])
	}

	if len(payload) > 0 {
		decoded, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			// Some emitters drop the padding.
			decoded, err = base64.RawStdEncoding.DecodeString(string(payload))
			if err != nil {
				return nil, fmt.Errorf("kitty payload not base64: %w", err)
			}
		}
		cmd.Payload = decoded
	}

	return cmd, nil
}

// DecodeImageData decodes the image payload based on format and compression.
// Returns RGBA pixel data, width, and height.
func (cmd *KittyCommand) DecodeImageData() ([]byte, uint32, uint32, error) {
	data := cmd.Payload

	if cmd.Compression == 'z' && len(data) > 0 {
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("open zlib stream: %w", err)
		}
		defer r.Close()

		data, err = io.ReadAll(r)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("inflate payload: %w", err)
		}
	}

	switch cmd.Format {
	case KittyFormatPNG:
		return decodeEncodedImage(data)
	case KittyFormatRGB:
		return rawPixels(data, cmd.Width, cmd.Height, 3)
	case KittyFormatRGBA:
		return rawPixels(data, cmd.Width, cmd.Height, 4)
	default:
		return nil, 0, 0, fmt.Errorf("unsupported kitty format %d", cmd.Format)
	}
}

// rawPixels validates an uncompressed pixel payload and widens RGB to RGBA.
func rawPixels(data []byte, width, height uint32, bpp int) ([]byte, uint32, uint32, error) {
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("raw pixel data needs s= and v= dimensions")
	}
	pixels := int(width) * int(height)
	if len(data) < pixels*bpp {
		return nil, 0, 0, fmt.Errorf("raw pixel data truncated: %d bytes for %dx%d", len(data), width, height)
	}

	if bpp == 4 {
		return data[:pixels*4], width, height, nil
	}

	rgba := make([]byte, pixels*4)
	for i := 0; i < pixels; i++ {
		copy(rgba[i*4:], data[i*3:i*3+3])
		rgba[i*4+3] = 0xff
	}
	return rgba, width, height, nil
}

// decodeEncodedImage decodes a PNG (or any registered format) payload into
// tightly packed RGBA.
func decodeEncodedImage(data []byte) ([]byte, uint32, uint32, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image payload: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	return dst.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), nil
}

func kittyUint(b []byte) uint32 {
	n, _ := strconv.ParseUint(string(b), 10, 32)
	return uint32(n)
}

func kittyInt(b []byte) int32 {
	n, _ := strconv.ParseInt(string(b), 10, 32)
	return int32(n)
}

// FormatKittyResponse formats a Kitty graphics response: an APC carrying
// "OK" or an error code, echoing the image id when one is known.
func FormatKittyResponse(imageID uint32, message string, isError bool) string {
	var sb strings.Builder
	sb.WriteString("\x1b_G")
	if imageID > 0 {
		fmt.Fprintf(&sb, "i=%d", imageID)
	}
	sb.WriteByte(';')
	if isError {
		sb.WriteString(message)
	} else {
		sb.WriteString("OK")
	}
	sb.WriteString("\x1b\\")
	return sb.String()
}
