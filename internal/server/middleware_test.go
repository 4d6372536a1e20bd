package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vanshika/bnpltrace/backend/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestIDIsEchoedOrMinted(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "trace-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != "trace-1" || rr.Header().Get(requestIDHeader) != "trace-1" {
		t.Fatalf("expected caller id to be reused, got %q / %q", seen, rr.Header().Get(requestIDHeader))
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 || rr.Header().Get(requestIDHeader) != seen {
		t.Fatalf("expected a minted uuid, got %q", seen)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	handler := recoverMiddleware(discardLogger(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/records", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestCORS(t *testing.T) {
	router := NewRouter(discardLogger(), RouterDependencies{
		AllowedOrigins:   []string{"http://app.test/"},
		AllowCredentials: true,
	})

	preflight := httptest.NewRequest(http.MethodOptions, "/records", nil)
	preflight.Header.Set("Origin", "http://app.test")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, preflight)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != corsAllowHeaders {
		t.Fatalf("unexpected allow headers %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials to be allowed")
	}

	foreign := httptest.NewRequest(http.MethodOptions, "/records", nil)
	foreign.Header.Set("Origin", "http://evil.test")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, foreign)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}

	simple := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	simple.Header.Set("Origin", "http://evil.test")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, simple)
	if rr.Code != http.StatusOK || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected plain response without CORS headers, got %d %q", rr.Code, rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestServerRunAndShutdown(t *testing.T) {
	cfg := config.HTTPConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}
	srv := New(discardLogger(), cfg, NewRouter(discardLogger(), RouterDependencies{}))
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
