package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// sseWriter emits server-sent events, flushing after each one so clients
// see progress as it happens.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &sseWriter{w: w, flusher: flusher}, nil
}

// send writes one event as a data: line. Encode failures are logged and the
// event dropped; the stream itself stays usable.
func (s *sseWriter) send(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Warn("encode sse event failed", "error", err)
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", payload)
	s.flusher.Flush()
}
