package status

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// MarshalASCII encodes v as JSON and escapes every non-ASCII rune as \uXXXX,
// using surrogate pairs outside the basic multilingual plane. The result
// decodes to the same value as json.Marshal would produce.
func MarshalASCII(v any) (Raw, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status document: %w", err)
	}
	return EscapeNonASCII(b), nil
}

// EscapeNonASCII rewrites valid JSON text so it contains only ASCII bytes.
// Non-ASCII bytes can only occur inside JSON strings, so escaping them in
// place never changes the structure of the document.
func EscapeNonASCII(b []byte) []byte {
	if isASCII(b) {
		return b
	}

	var buf bytes.Buffer
	buf.Grow(len(b) + len(b)/2)
	for len(b) > 0 {
		c := b[0]
		if c < utf8.RuneSelf {
			buf.WriteByte(c)
			b = b[1:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			writeEscape(&buf, hi)
			writeEscape(&buf, lo)
			continue
		}
		// Invalid bytes decode to utf8.RuneError and come out as \ufffd.
		writeEscape(&buf, r)
	}
	return buf.Bytes()
}

func writeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xF])
	buf.WriteByte(hexDigits[(r>>8)&0xF])
	buf.WriteByte(hexDigits[(r>>4)&0xF])
	buf.WriteByte(hexDigits[r&0xF])
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
