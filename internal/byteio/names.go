package byteio

import (
	"fmt"
	"strconv"
)

// c0Names are the classic mnemonics of the ASCII control characters.
var c0Names = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "NL", "VT", "NP", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// Quote returns a printable name for b: a quoted character for printable
// ASCII, a mnemonic like <NL> or <SP> for control characters and space, and
// a hex literal for anything above <DEL>.
func Quote(b byte) string {
	switch {
	case b < 0x20:
		return "<" + c0Names[b] + ">"
	case b == 0x20:
		return "<SP>"
	case b == 0x7f:
		return "<DEL>"
	case b > 0x7f:
		return "0x" + strconv.FormatUint(uint64(b), 16)
	default:
		return strconv.QuoteRune(rune(b))
	}
}

// Unquote parses the forms produced by Quote, plus caret forms like ^J.
func Unquote(s string) (byte, error) {
	if len(s) >= 3 && s[0] == '<' && s[len(s)-1] == '>' {
		switch name := s[1 : len(s)-1]; name {
		case "SP":
			return 0x20, nil
		case "DEL":
			return 0x7f, nil
		default:
			for i, n := range c0Names {
				if n == name {
					return byte(i), nil
				}
			}
		}
	}
	if len(s) == 2 && s[0] == '^' && s[1] >= '@' && s[1] <= '_' {
		return s[1] ^ 0x40, nil
	}
	if len(s) > 2 && s[:2] == "0x" {
		n, err := strconv.ParseUint(s[2:], 16, 8)
		return byte(n), err
	}
	if r, err := strconv.Unquote(s); err == nil && len(r) == 1 {
		return r[0], nil
	}
	return 0, fmt.Errorf("invalid byte literal %q, must be 'X', <NAME>, ^X, or 0xNN", s)
}

func typeName(obj interface{}) string { return fmt.Sprintf("%T", obj) }
