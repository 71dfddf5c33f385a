package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/log"
)

func TestMiddleware_RequestID(t *testing.T) {
	m := NewMiddleware(func(r *http.Request) string { return "10.0.0.1" }, log.Discard())

	var fromCtx string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetRequestID(r.Context())
		if log.FromContext(r.Context()).Component() != log.ComponentTrace {
			t.Error("request logger not stored in context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{"generated", "", false},
		{"propagated", "abc-123", true},
		{"too long", strings.Repeat("x", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if got != fromCtx {
				t.Errorf("header id %q differs from context id %q", got, fromCtx)
			}
			if tt.reuse && got != tt.incoming {
				t.Errorf("request id = %q, want %q", got, tt.incoming)
			}
			if !tt.reuse && !strings.HasPrefix(got, "req_") {
				t.Errorf("request id = %q, want generated id", got)
			}
		})
	}

	if got := m.GetMetrics().TotalRequests; got != 3 {
		t.Errorf("TotalRequests = %d, want 3", got)
	}
}

func TestMiddleware_CountsServerErrors(t *testing.T) {
	m := NewMiddleware(nil, log.Discard())
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got := m.GetMetrics().ServerErrors; got != 1 {
		t.Errorf("ServerErrors = %d, want 1", got)
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate request id %s", id)
		}
		seen[id] = true
	}
}
