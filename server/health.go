package server

import (
	"encoding/json"
	"net/http"
)

// ReadinessSource reports whether the evaluator backend is currently usable.
type ReadinessSource interface {
	Healthy() bool
}

// NewHealthHandler returns the liveness/readiness HTTP handler. /healthz is
// pure liveness; /readyz is gated on the evaluator health probe.
func NewHealthHandler(readiness ReadinessSource) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if readiness == nil || !readiness.Healthy() {
			writeHealth(w, http.StatusServiceUnavailable, "evaluator unavailable")
			return
		}
		writeHealth(w, http.StatusOK, "ready")
	})

	return mux
}

func writeHealth(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
