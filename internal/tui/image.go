package tui

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// TerminalImageProtocol represents the image protocol supported by the terminal
type TerminalImageProtocol int

// Terminal image protocol types
const (
	ProtocolNone TerminalImageProtocol = iota
	ProtocolKitty
	ProtocolITerm2
)

// DetectImageProtocol detects which terminal image protocol is supported.
func DetectImageProtocol() TerminalImageProtocol {
	termProgram := os.Getenv("TERM_PROGRAM")

	switch {
	case strings.Contains(os.Getenv("TERM"), "kitty"), termProgram == "ghostty":
		return ProtocolKitty
	case termProgram == "iTerm.app", termProgram == "WezTerm":
		return ProtocolITerm2
	}
	return ProtocolNone
}

// RenderCover returns the escape sequence that draws the cover image at
// path, cols cells wide, or "" when the terminal cannot show images or the
// file is unreadable.
func RenderCover(path string, protocol TerminalImageProtocol, cols int) string {
	if protocol == ProtocolNone || path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return ""
	}
	if cols <= 0 {
		cols = 20
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	switch protocol {
	case ProtocolKitty:
		return kittyChunks(encoded, cols)
	case ProtocolITerm2:
		return fmt.Sprintf("\x1b]1337;File=inline=1;width=%d;preserveAspectRatio=1:%s\x07", cols, encoded)
	}
	return ""
}

// kittyChunks splits the payload into the 4096-byte chunks the kitty
// graphics protocol requires for direct transmission.
func kittyChunks(encoded string, cols int) string {
	const chunk = 4096
	var b strings.Builder
	for i := 0; i < len(encoded); i += chunk {
		end := min(i+chunk, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}
		if i == 0 {
			// a=T transmit and display, f=100 lets the terminal decode the format.
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,c=%d,m=%d;%s\x1b\\", cols, more, encoded[i:end])
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, encoded[i:end])
		}
	}
	return b.String()
}
