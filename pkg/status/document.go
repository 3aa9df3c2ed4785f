package status

import (
	"encoding/json"
	"time"
)

// HeartbeatDisabled is the heartbeat value agents report when they have no
// periodic task scheduled.
const HeartbeatDisabled = "disabled"

// Raw holds the wire bytes of a status document exactly as they are served.
type Raw []byte

// String returns the document text.
func (r Raw) String() string {
	return string(r)
}

// Valid reports whether r is a syntactically valid JSON value.
func (r Raw) Valid() bool {
	return len(r) > 0 && json.Valid(r)
}

// Document is the typed view of a status document. Field order matches the
// order dashboard clients have always received.
//
// Counters are never omitted so that clients decoding into non-optional
// integers keep working; GatewayLatencyMs is the only nullable field.
type Document struct {
	Summary          string      `json:"summary"`
	Gateway          string      `json:"gateway"`
	GatewayStatus    string      `json:"gatewayStatus"`
	GatewayLatencyMs *int        `json:"gatewayLatencyMs"`
	Telegram         string      `json:"telegram"`
	TelegramStatus   string      `json:"telegramStatus"`
	Agents           int         `json:"agents"`
	Sessions         int         `json:"sessions"`
	MemoryChunks     int         `json:"memoryChunks"`
	UpdateAvailable  bool        `json:"updateAvailable"`
	AgentList        []AgentInfo `json:"agentList"`
	HeartbeatTasks   int         `json:"heartbeatTasks"`
	UpdatedAt        string      `json:"updatedAt"`
	UpdatedAtJST     string      `json:"updatedAtJST"`
	UpdatedTime      string      `json:"updatedTime"`
	Host             string      `json:"host"`
	Version          string      `json:"version"`

	// Note is set only on synthesized documents.
	Note string `json:"_note,omitempty"`
}

// AgentInfo describes one agent known to the gateway.
type AgentInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Heartbeat string `json:"heartbeat"`
}

// HeartbeatEnabled reports whether the agent runs a heartbeat task.
func (a AgentInfo) HeartbeatEnabled() bool {
	return a.Heartbeat != HeartbeatDisabled
}

// Synthetic reports whether the document was fabricated by the proxy.
func (d *Document) Synthetic() bool {
	return d.Note != ""
}

// Online reports whether the gateway glyph signals a healthy gateway.
func (d *Document) Online() bool {
	return d.Gateway == GlyphOnline
}

// Marshal encodes the document as ASCII-safe JSON.
func (d *Document) Marshal() (Raw, error) {
	doc := *d
	if doc.AgentList == nil {
		doc.AgentList = []AgentInfo{}
	}
	return MarshalASCII(&doc)
}

// placeholder is served before the first refresh completes.
type placeholder struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var placeholderBody = mustMarshal(placeholder{
	Status:  "starting",
	Message: "Proxy initializing...",
})

// Placeholder returns the document served while the proxy is starting.
// A fresh copy is returned on every call.
func Placeholder() Raw {
	out := make(Raw, len(placeholderBody))
	copy(out, placeholderBody)
	return out
}

// jst is the fixed zone dashboards display timestamps in. It has no DST.
var jst = time.FixedZone("JST", 9*60*60)

// Timestamps returns the updatedAt, updatedAtJST and updatedTime values for t.
func Timestamps(t time.Time) (iso, jstText, updated string) {
	utc := t.UTC()
	iso = utc.Format("2006-01-02T15:04:05.000Z")
	jstText = t.In(jst).Format("2006-01-02 15:04:05") + " JST"
	return iso, jstText, iso
}

func mustMarshal(v any) Raw {
	b, err := MarshalASCII(v)
	if err != nil {
		panic(err)
	}
	return b
}
