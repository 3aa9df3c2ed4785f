package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"miyabi-hq/statusproxy/pkg/cache"
	"miyabi-hq/statusproxy/pkg/proxy"
	"miyabi-hq/statusproxy/pkg/refresher"
)

// Source returns the snapshot to serve. *refresher.Refresher implements it.
type Source interface {
	Current(ctx context.Context) (*cache.Snapshot, error)
}

// ServedRecorder counts served documents by source. *metrics.Collector
// implements it.
type ServedRecorder interface {
	RecordServed(source string)
}

// StatusHandler serves the current status document.
type StatusHandler struct {
	source   Source
	recorder ServedRecorder
}

// NewStatusHandler creates a status handler. recorder may be nil.
func NewStatusHandler(source Source, recorder ServedRecorder) *StatusHandler {
	return &StatusHandler{source: source, recorder: recorder}
}

// ServeHTTP implements http.Handler for GET and HEAD.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap, err := h.source.Current(r.Context())

	var unavailable *refresher.UnavailableError
	if errors.As(err, &unavailable) {
		slog.WarnContext(r.Context(), "no status document available",
			"error", unavailable.Message,
			"details", unavailable.Details,
		)
		_ = proxy.WriteErrorResponse(w, r, proxy.HandleError(err))
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load status document", "error", err)
		_ = proxy.WriteErrorResponse(w, r, proxy.HandleError(err))
		return
	}

	w.Header().Set(proxy.HeaderStatusSource, string(snap.Source))
	if !snap.UpdatedAt.IsZero() {
		w.Header().Set(proxy.HeaderStatusUpdatedAt, snap.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if h.recorder != nil {
		h.recorder.RecordServed(string(snap.Source))
	}

	if err := proxy.WriteRawResponse(w, r, http.StatusOK, snap.Body); err != nil {
		slog.DebugContext(r.Context(), "client went away", "error", err)
	}
}
