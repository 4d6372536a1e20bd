package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthProbeTimeout = 2 * time.Second

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// Pinger is satisfied by every record store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreHealthService reports the record store as the readiness signal.
type StoreHealthService struct {
	Store Pinger
}

// Probe implements the HealthService interface.
func (s StoreHealthService) Probe(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Ping(ctx)
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// healthHandler answers 200 when the probe passes and 503 otherwise. A nil
// probe always passes.
func healthHandler(logger *slog.Logger, probe HealthService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet, http.MethodHead)
			return
		}
		if probe == nil {
			respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		if err := probe.Probe(ctx); err != nil {
			logger.Error("health probe failed", "error", err, "request_id", RequestID(r.Context()))
			respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Error: err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
}
