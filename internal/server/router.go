package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter wires the HTTP routes exposed by the backend API. Every API route
// except /sync identifies the caller through the X-User-Email header.
//
// Middleware order, outermost first: CORS, request id, access log, panic
// recovery.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", healthHandler(logger, deps.Health))
	if deps.API != nil {
		deps.API.register(mux)
	}

	handler := recoverMiddleware(logger, mux)
	handler = loggingMiddleware(logger, handler)
	handler = requestIDMiddleware(handler)
	if len(deps.AllowedOrigins) > 0 {
		handler = corsMiddleware(deps.AllowedOrigins, deps.AllowCredentials)(handler)
	}
	return handler
}

// register mounts the API routes on mux.
func (h *APIHandlers) register(mux *http.ServeMux) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"/sync", h.handleSync},
		{"/sync/messages", h.handleSyncMessages},
		{"/analysis", h.handleAnalysis},
		{"/records", h.handleRecords},
		{"/records/", h.handleRecordAction},
		{"/export/records", h.handleExportRecords},
		{"/profile", h.handleProfile},
		{"/profile/salary", h.handleSalary},
	}
	for _, route := range routes {
		mux.HandleFunc(route.pattern, route.handler)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}
