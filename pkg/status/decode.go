package status

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrNotObject is returned by Decode when the document is not a JSON object.
var ErrNotObject = errors.New("status document is not a JSON object")

// Decode parses a gateway document into the typed view the way dashboard
// clients do: every field is optional, unknown fields are ignored, and a
// field with an unexpected type is left at its zero value. Gateways that
// report agents or sessions as lists instead of counts are counted.
//
// Decode never changes the bytes that are served; it exists for logging and
// diagnostics.
func Decode(raw []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode status document: %w", err)
	}

	doc := &Document{AgentList: []AgentInfo{}}
	doc.Summary = decodeString(fields["summary"])
	doc.Gateway = decodeString(fields["gateway"])
	doc.GatewayStatus = decodeString(fields["gatewayStatus"])
	if ms, ok := decodeInt(fields["gatewayLatencyMs"]); ok {
		doc.GatewayLatencyMs = &ms
	}
	doc.Telegram = decodeString(fields["telegram"])
	doc.TelegramStatus = decodeString(fields["telegramStatus"])
	doc.Agents = decodeCount(fields["agents"], fields["agentCount"])
	doc.Sessions = decodeCount(fields["sessions"], fields["sessionCount"])
	doc.MemoryChunks, _ = decodeInt(fields["memoryChunks"])
	doc.HeartbeatTasks, _ = decodeInt(fields["heartbeatTasks"])
	doc.UpdateAvailable = decodeBool(fields["updateAvailable"])
	doc.AgentList = decodeAgents(fields["agentList"])
	doc.UpdatedAt = decodeString(fields["updatedAt"])
	doc.UpdatedAtJST = decodeString(fields["updatedAtJST"])
	doc.UpdatedTime = decodeString(fields["updatedTime"])
	doc.Host = decodeString(fields["host"])
	doc.Version = decodeString(fields["version"])
	doc.Note = decodeString(fields["_note"])

	return doc, nil
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeBool(raw json.RawMessage) bool {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}

// decodeInt accepts any JSON number that fits an int, truncating fractions.
func decodeInt(raw json.RawMessage) (int, bool) {
	var f float64
	if len(raw) == 0 || string(raw) == "null" || json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// decodeCount reads a count given either as a number or as a list. The
// fallback field is consulted when the primary one is missing or unusable.
func decodeCount(primary, fallback json.RawMessage) int {
	if n, ok := decodeInt(primary); ok {
		return n
	}
	var list []json.RawMessage
	if len(primary) > 0 && json.Unmarshal(primary, &list) == nil {
		return len(list)
	}
	n, _ := decodeInt(fallback)
	return n
}

func decodeAgents(raw json.RawMessage) []AgentInfo {
	var items []map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []AgentInfo{}
	}

	agents := make([]AgentInfo, 0, len(items))
	for _, item := range items {
		agent := AgentInfo{
			ID:        decodeString(item["id"]),
			Name:      decodeString(item["name"]),
			Heartbeat: decodeString(item["heartbeat"]),
		}
		// Some gateways send the interval as a bare number of seconds.
		if agent.Heartbeat == "" {
			if secs, ok := decodeInt(item["heartbeat"]); ok {
				agent.Heartbeat = fmt.Sprintf("%ds", secs)
			}
		}
		agents = append(agents, agent)
	}
	return agents
}
