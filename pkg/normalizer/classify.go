package normalizer

import (
	"bytes"
	"strings"
)

// Kind is the classification of a gateway response body.
type Kind int

const (
	// KindEmpty is a body that is empty after trimming whitespace.
	KindEmpty Kind = iota
	// KindJSON is a body declared as JSON or shaped like a JSON object or array.
	KindJSON
	// KindHTML is an HTML dashboard page.
	KindHTML
	// KindUnknown is any other non-empty body.
	KindUnknown
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindJSON:
		return "json"
	case KindHTML:
		return "html"
	default:
		return "unknown"
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Classify decides how a response body should be treated. Rules are applied
// in order and the first match wins:
//
//  1. empty after trimming: KindEmpty
//  2. JSON content type, or body starting with '{' or '[': KindJSON
//  3. HTML content type, or body starting with a doctype or <html tag: KindHTML
//  4. anything else: KindUnknown
func Classify(contentType string, body []byte) Kind {
	trimmed := trimBody(body)
	if len(trimmed) == 0 {
		return KindEmpty
	}

	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "application/json") || trimmed[0] == '{' || trimmed[0] == '[' {
		return KindJSON
	}
	if strings.Contains(ct, "text/html") || looksLikeHTML(trimmed) {
		return KindHTML
	}
	return KindUnknown
}

func trimBody(body []byte) []byte {
	return bytes.TrimSpace(stripBOM(body))
}

// stripBOM drops a leading byte order mark and any whitespace before it.
// Bodies without one are returned unchanged.
func stripBOM(body []byte) []byte {
	rest := bytes.TrimLeft(body, " \t\r\n")
	if bytes.HasPrefix(rest, utf8BOM) {
		return rest[len(utf8BOM):]
	}
	return body
}

func looksLikeHTML(body []byte) bool {
	head := body
	if len(head) > 16 {
		head = head[:16]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html"))
}
