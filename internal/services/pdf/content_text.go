package pdf

import (
	"strings"
)

// decodeContentText recovers shown text from a decoded PDF content stream.
// Inside BT/ET text objects every string operand belongs to a text-showing
// operator (Tj, TJ, ', "), so collecting string literals between BT and ET
// yields the page text. Each shown string becomes one output line, which
// matches how writers emit one string per rendered line.
//
// This handles simple (Type1/TrueType, WinAnsi-encoded) streams, which is
// what office and report generators produce. Composite-font documents come
// out garbled and are caught upstream by the empty-text checks.
func decodeContentText(stream []byte) string {
	var out strings.Builder
	inText := false

	i := 0
	for i < len(stream) {
		c := stream[i]
		switch {
		case c == '%':
			// Comment runs to end of line
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case c == '(':
			text, next := parseLiteralString(stream, i)
			if inText && text != "" {
				out.WriteString(text)
				out.WriteByte('\n')
			}
			i = next
		case c == '<':
			if i+1 < len(stream) && stream[i+1] == '<' {
				// Dictionary open, not a string
				i += 2
				continue
			}
			text, next := parseHexString(stream, i)
			if inText && text != "" {
				out.WriteString(text)
				out.WriteByte('\n')
			}
			i = next
		case isPDFDelimiter(c) || isPDFWhitespace(c):
			i++
		default:
			token, next := readToken(stream, i)
			switch token {
			case "BT":
				inText = true
			case "ET":
				inText = false
			}
			i = next
		}
	}

	return strings.TrimRight(out.String(), "\n")
}

// parseLiteralString decodes a PDF literal string starting at the opening
// parenthesis. Returns the decoded text and the index after the closing
// parenthesis. Balanced unescaped parentheses are legal inside strings.
func parseLiteralString(stream []byte, start int) (string, int) {
	var b strings.Builder
	depth := 1

	i := start + 1
	for i < len(stream) && depth > 0 {
		c := stream[i]
		switch c {
		case '\\':
			if i+1 >= len(stream) {
				i++
				continue
			}
			i++
			esc := stream[i]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '(', ')', '\\':
				b.WriteByte(esc)
			case '\n':
				// Line continuation, emits nothing
			case '\r':
				if i+1 < len(stream) && stream[i+1] == '\n' {
					i++
				}
			default:
				if esc >= '0' && esc <= '7' {
					// Octal escape, up to three digits
					value := int(esc - '0')
					for n := 0; n < 2 && i+1 < len(stream) && stream[i+1] >= '0' && stream[i+1] <= '7'; n++ {
						i++
						value = value*8 + int(stream[i]-'0')
					}
					writeEncodedByte(&b, byte(value))
				} else {
					b.WriteByte(esc)
				}
			}
			i++
		case '(':
			depth++
			b.WriteByte(c)
			i++
		case ')':
			depth--
			if depth > 0 {
				b.WriteByte(c)
			}
			i++
		default:
			writeEncodedByte(&b, c)
			i++
		}
	}

	return b.String(), i
}

// parseHexString decodes a PDF hex string starting at '<'. Returns the
// decoded text and the index after the closing '>'.
func parseHexString(stream []byte, start int) (string, int) {
	var b strings.Builder

	i := start + 1
	var hi byte
	haveHi := false
	for i < len(stream) && stream[i] != '>' {
		c := stream[i]
		v, ok := hexValue(c)
		if ok {
			if haveHi {
				writeEncodedByte(&b, hi<<4|v)
				haveHi = false
			} else {
				hi = v
				haveHi = true
			}
		}
		i++
	}
	if haveHi {
		// Odd digit count implies a trailing zero
		writeEncodedByte(&b, hi<<4)
	}
	if i < len(stream) {
		i++ // consume '>'
	}

	return b.String(), i
}

// writeEncodedByte maps a string byte to text. Low bytes are ASCII; high
// bytes are approximated as Latin-1, which matches WinAnsi for the letters
// that matter.
func writeEncodedByte(b *strings.Builder, c byte) {
	if c < 0x80 {
		b.WriteByte(c)
	} else {
		b.WriteRune(rune(c))
	}
}

func readToken(stream []byte, start int) (string, int) {
	i := start
	for i < len(stream) && !isPDFWhitespace(stream[i]) && !isPDFDelimiter(stream[i]) {
		i++
	}
	if i == start {
		return "", start + 1
	}
	return string(stream[start:i]), i
}

func isPDFWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
