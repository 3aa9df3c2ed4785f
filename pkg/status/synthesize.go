package status

import (
	"fmt"
	"time"
)

// Glyphs used by dashboards to render gateway and channel state.
const (
	GlyphOnline  = "🟢"
	GlyphUnknown = "❓"
)

const (
	// DefaultHost is used for synthesized documents when no hostname is configured.
	DefaultHost = "AAI"

	// SyntheticVersion marks documents built by the proxy instead of the gateway.
	SyntheticVersion = "proxy-synthetic"

	summaryDashboard       = "Gateway reachable (dashboard mode)"
	gatewayStatusDashboard = "reachable (HTML dashboard)"
	telegramStatusUnknown  = "unknown"
)

// Synthesize builds the document reported when the gateway answers with an
// HTML dashboard instead of a JSON API. path is the candidate path that
// returned the HTML and ends up in the note.
func Synthesize(host, path string, now time.Time) *Document {
	if host == "" {
		host = DefaultHost
	}
	iso, jstText, updated := Timestamps(now)

	return &Document{
		Summary:          summaryDashboard,
		Gateway:          GlyphOnline,
		GatewayStatus:    gatewayStatusDashboard,
		GatewayLatencyMs: nil,
		Telegram:         GlyphUnknown,
		TelegramStatus:   telegramStatusUnknown,
		AgentList:        []AgentInfo{},
		UpdatedAt:        iso,
		UpdatedAtJST:     jstText,
		UpdatedTime:      updated,
		Host:             host,
		Version:          SyntheticVersion,
		Note:             syntheticNote(path),
	}
}

func syntheticNote(path string) string {
	if path == "" {
		return "Gateway returns HTML dashboard. JSON API not available. Proxy built synthetic response."
	}
	return fmt.Sprintf("Gateway returns HTML dashboard at %s. JSON API not available. Proxy built synthetic response.", path)
}
