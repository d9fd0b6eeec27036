package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freeeve/pacgrid/internal/logger"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		wantStatus int
		wantInner  bool
	}{
		{"get passes through", http.MethodGet, http.StatusOK, true},
		{"preflight short-circuits", http.MethodOptions, http.StatusNoContent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := CORS("https://watch.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				ok(w, r)
			}))
			rec := serve(h, tt.method, "/api/matches/m1")
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != tt.wantInner {
				t.Errorf("inner called = %v, want %v", called, tt.wantInner)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://watch.example" {
				t.Errorf("unexpected origin header %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
				t.Errorf("unexpected methods header %q", got)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	rec := serve(JSON(http.HandlerFunc(ok)), http.MethodGet, "/")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

func TestLoggerTagsRequest(t *testing.T) {
	var seen string
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := serve(h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status to pass through, got %d", rec.Code)
	}
	if seen == "" {
		t.Error("expected a request ID in the handler context")
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := serve(h, http.MethodGet, "/api/matches/m1")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal error") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestChainRunsFirstOutermost(t *testing.T) {
	var trace []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trace = append(trace, name+">")
				next.ServeHTTP(w, r)
				trace = append(trace, "<"+name)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = append(trace, "h")
	}), tag("a"), tag("b"))
	serve(h, http.MethodGet, "/")

	if got := strings.Join(trace, " "); got != "a> b> h <b <a" {
		t.Errorf("unexpected order %q", got)
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	sr.WriteHeader(http.StatusNotFound)
	sr.Write([]byte("gone"))

	if sr.status != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 recorded and forwarded, got %d / %d", sr.status, rec.Code)
	}
	if sr.bytes != 4 {
		t.Errorf("expected 4 bytes, got %d", sr.bytes)
	}
	if _, _, err := sr.Hijack(); err == nil {
		t.Error("expected hijack to fail on a recorder")
	}
}
