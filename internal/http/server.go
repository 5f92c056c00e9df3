// Package http exposes the JSON API: authentication, accounts, goals,
// categories, transactions and their summary, plus an admin overview.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/services"
	"bilancio/internal/storage"
)

type Server struct {
	http.Server

	auth         *services.AuthService
	transactions *services.TransactionService
	storage      *storage.Repository

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, auth *services.AuthService, transactions *services.TransactionService, repo *storage.Repository) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		auth:         auth,
		transactions: transactions,
		storage:      repo,
		rateLimiter:  newRateLimiter(),
		metrics:      &securityMetrics{},
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/auth/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("/api/auth/login", s.withMiddleware(s.handleLogin))

	mux.HandleFunc("/api/transactions", s.withMiddleware(s.requireAuth(s.handleTransactions)))
	mux.HandleFunc("/api/transactions/", s.withMiddleware(s.requireAuth(s.handleTransactionByID)))
	mux.HandleFunc("/api/transactions/summary", s.withMiddleware(s.requireAuth(s.handleSummary)))

	mux.HandleFunc("/api/accounts", s.withMiddleware(s.requireAuth(s.handleAccounts)))
	mux.HandleFunc("/api/accounts/", s.withMiddleware(s.requireAuth(s.handleAccountByID)))
	mux.HandleFunc("/api/goals", s.withMiddleware(s.requireAuth(s.handleGoals)))
	mux.HandleFunc("/api/goals/", s.withMiddleware(s.requireAuth(s.handleGoalByID)))
	mux.HandleFunc("/api/categories", s.withMiddleware(s.requireAuth(s.handleCategories)))

	mux.HandleFunc("/api/admin/overview", s.withMiddleware(s.requireAuth(s.requireAdmin(s.handleAdminOverview))))

	return s
}

// Shutdown stops the HTTP server and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready only when the database answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
