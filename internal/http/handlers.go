package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.start).String(),
	})
}

// handleReady checks that the ledger store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.deps.Store == nil {
		checks["store"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else if err := s.deps.Store.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.deps.Sweeps == nil {
		checks["sweep_trigger"] = "not_configured"
	} else {
		checks["sweep_trigger"] = "ok"
	}
	checks["dashboard_cache"] = map[string]any{"entries": s.dashboardCache.Size()}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides request and security counters in plain text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	fmt.Fprintf(w, "# HELP fintrack_http_requests_total Total HTTP requests\n")
	fmt.Fprintf(w, "fintrack_http_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "fintrack_http_server_errors_total %d\n", traceMetrics.ServerErrors)
	fmt.Fprintf(w, "fintrack_http_last_response_time_microseconds %d\n", traceMetrics.AverageResponseTime)
	fmt.Fprintf(w, "fintrack_rate_limit_hits_total %d\n", rateMetrics.TotalHits)
	fmt.Fprintf(w, "fintrack_rate_limit_active_clients %d\n", rateMetrics.ClientCount)
	fmt.Fprintf(w, "fintrack_security_suspicious_requests_total %d\n", securityMetrics.SuspiciousRequests)
	fmt.Fprintf(w, "fintrack_security_blocked_requests_total %d\n", securityMetrics.BlockedRequests)
	fmt.Fprintf(w, "fintrack_dashboard_cache_entries %d\n", s.dashboardCache.Size())
	fmt.Fprintf(w, "fintrack_uptime_seconds %.0f\n", s.now().Sub(s.start).Seconds())
}
