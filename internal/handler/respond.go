package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// writeJSON serializes v with the given status. Encoding failures are logged;
// by then the status line is already on the wire.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

// plainError writes the bare `{"error": ...}` shape used by the product
// endpoints.
func plainError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// envelopeError writes the `{"success": false, "error": ...}` shape used by
// the order and user endpoints.
func envelopeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]any{"success": false, "error": msg})
}

// internalError logs the cause and responds with a generic message, leaking
// no internal detail to the caller.
func internalError(w http.ResponseWriter, r *http.Request, err error, envelope bool) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	if envelope {
		envelopeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	plainError(w, r, http.StatusInternalServerError, "internal server error")
}
