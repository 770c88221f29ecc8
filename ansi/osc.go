package ansi

import (
	"bytes"
	"encoding/base64"
	"log"
	"strconv"
	"strings"
)

// OscDispatch implements vte.Performer. It routes a complete OSC to the
// handler. The dispatcher preserves the terminator so query responses can
// echo it back the way the application sent it.
func (d *Decoder) OscDispatch(params [][]byte, bellTerminated bool) {
	if len(params) == 0 {
		return
	}

	terminator := "\x1b\\"
	if bellTerminated {
		terminator = "\a"
	}

	num, err := strconv.Atoi(string(params[0]))
	if err != nil {
		return
	}

	h := d.handler
	switch num {
	case 0, 2:
		h.SetTitle(joinOsc(params[1:]))
	case 1:
		// Icon name; treated as a title like most emulators do.
		h.SetTitle(joinOsc(params[1:]))

	case 4:
		for i := 1; i+1 < len(params); i += 2 {
			index, err := strconv.Atoi(string(params[i]))
			if err != nil || index < 0 || index > 255 {
				continue
			}
			spec := string(params[i+1])
			if spec == "?" {
				h.SetDynamicColor("4;"+strconv.Itoa(index), index, terminator)
			} else if c, ok := parseColorSpec(spec); ok {
				h.SetColor(index, c)
			}
		}

	case 7:
		h.SetWorkingDirectory(joinOsc(params[1:]))

	case 8:
		d.oscHyperlink(params)

	case 9:
		h.DesktopNotification(&NotificationPayload{
			PayloadType: "title",
			Done:        true,
			Data:        []byte(joinOsc(params[1:])),
		})

	case 10, 11, 12:
		index := int(NamedColorForeground) + num - 10
		for i := 1; i < len(params); i++ {
			spec := string(params[i])
			if spec == "?" {
				h.SetDynamicColor(strconv.Itoa(num+i-1), index+i-1, terminator)
			} else if c, ok := parseColorSpec(spec); ok {
				h.SetColor(index+i-1, c)
			}
		}

	case 52:
		d.oscClipboard(params, terminator)

	case 99:
		d.oscNotification(params)

	case 104:
		if len(params) == 1 {
			for i := 0; i < 256; i++ {
				h.ResetColor(i)
			}
			return
		}
		for _, p := range params[1:] {
			if index, err := strconv.Atoi(string(p)); err == nil && index >= 0 && index <= 255 {
				h.ResetColor(index)
			}
		}
	case 110:
		h.ResetColor(int(NamedColorForeground))
	case 111:
		h.ResetColor(int(NamedColorBackground))
	case 112:
		h.ResetColor(int(NamedColorCursor))

	case 133:
		d.oscShellIntegration(params)

	case 1337:
		d.oscITerm(params)

	default:
		log.Printf("ansi: unhandled OSC %d", num)
	}
}

// joinOsc reassembles a payload that the parser split on semicolons.
func joinOsc(params [][]byte) string {
	return string(bytes.Join(params, []byte{';'}))
}

func (d *Decoder) oscHyperlink(params [][]byte) {
	if len(params) < 3 {
		d.handler.SetHyperlink(nil)
		return
	}

	uri := joinOsc(params[2:])
	if uri == "" {
		d.handler.SetHyperlink(nil)
		return
	}

	var id string
	for _, kv := range strings.Split(string(params[1]), ":") {
		if v, ok := strings.CutPrefix(kv, "id="); ok {
			id = v
		}
	}
	d.handler.SetHyperlink(&Hyperlink{ID: id, URI: uri})
}

func (d *Decoder) oscClipboard(params [][]byte, terminator string) {
	if len(params) < 3 {
		return
	}

	clipboard := byte('c')
	if len(params[1]) > 0 {
		clipboard = params[1][0]
	}

	payload := string(params[2])
	if payload == "?" {
		d.handler.ClipboardLoad(clipboard, terminator)
		return
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return
	}
	d.handler.ClipboardStore(clipboard, data)
}

func (d *Decoder) oscShellIntegration(params [][]byte) {
	if len(params) < 2 || len(params[1]) == 0 {
		return
	}

	// An exit code of -1 means the sequence carried none.
	switch params[1][0] {
	case 'A':
		d.handler.ShellIntegrationMark(PromptStart, -1)
	case 'B':
		d.handler.ShellIntegrationMark(CommandStart, -1)
	case 'C':
		d.handler.ShellIntegrationMark(CommandExecuted, -1)
	case 'D':
		exitCode := -1
		if len(params) > 2 {
			if n, err := strconv.Atoi(string(params[2])); err == nil {
				exitCode = n
			}
		}
		d.handler.ShellIntegrationMark(CommandFinished, exitCode)
	}
}

// oscNotification parses a kitty desktop notification: the first field is
// colon separated key=value metadata, the rest is the payload.
func (d *Decoder) oscNotification(params [][]byte) {
	if len(params) < 2 {
		return
	}

	payload := &NotificationPayload{
		Done:        true,
		PayloadType: "title",
	}

	for _, kv := range strings.Split(string(params[1]), ":") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch key {
		case "i":
			payload.ID = value
		case "d":
			payload.Done = value != "0"
		case "p":
			payload.PayloadType = value
		case "e":
			payload.Encoding = value
		case "a":
			payload.Actions = strings.Split(value, ",")
		case "c":
			payload.TrackClose = value == "1"
		case "w":
			if n, err := strconv.Atoi(value); err == nil {
				payload.Timeout = n
			}
		case "f":
			payload.AppName = value
		case "t":
			payload.Type = value
		case "n":
			payload.IconName = value
		case "g":
			payload.IconCacheID = value
		case "s":
			payload.Sound = value
		case "u":
			if n, err := strconv.Atoi(value); err == nil {
				payload.Urgency = n
			}
		case "o":
			payload.Occasion = value
		}
	}

	data := []byte(joinOsc(params[2:]))
	if payload.Encoding == "1" {
		if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
			data = decoded
		}
	}
	payload.Data = data

	d.handler.DesktopNotification(payload)
}

// oscITerm handles the iTerm2 OSC 1337 family; only SetUserVar is
// recognized (name=base64value).
func (d *Decoder) oscITerm(params [][]byte) {
	if len(params) < 2 {
		return
	}

	key, value, ok := strings.Cut(joinOsc(params[1:]), "=")
	if !ok || key != "SetUserVar" {
		return
	}

	name, encoded, ok := strings.Cut(value, "=")
	if !ok {
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return
	}
	d.handler.SetUserVar(name, string(decoded))
}
