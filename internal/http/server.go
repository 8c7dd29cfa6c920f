package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"budgettracker/internal/core"
	applog "budgettracker/internal/log"
	"budgettracker/internal/services"
	"budgettracker/internal/storage"
)

// Ledger is the read/write surface the API needs from the ledger service.
type Ledger interface {
	AddTransaction(ctx context.Context, raw core.RawTransaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Transactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
	Categories(ctx context.Context, kind core.Kind) ([]string, error)
	Balance(ctx context.Context, month string) (core.Balance, error)
	SpendByCategory(ctx context.Context, month string) ([]core.CategoryAmount, error)
	Summary(ctx context.Context, month string) (services.Summary, error)
	Trend(ctx context.Context, n int) ([]core.MonthTotals, error)
	RecentMonths(n int) []string
	Backup(ctx context.Context) (string, error)
}

type Server struct {
	http.Server
	ledger      Ledger
	logger      *applog.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer wires the JSON API routes around ledger.
func NewServer(addr string, ledger Ledger, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})
	}

	s := &Server{
		ledger:      ledger,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(defaultRateLimit, time.Minute),
		metrics:     &securityMetrics{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/spending", s.handleSpending)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/trend", s.handleTrend)
	mux.HandleFunc("GET /api/months", s.handleMonths)
	mux.HandleFunc("POST /api/backup", s.handleBackup)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger)(s.withSecurity(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// withSecurity adds security headers, flags suspicious traffic and rate
// limits writes per client IP.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := extractClientIP(r, s.metrics)

		if detectSuspiciousRequest(r, s.metrics) {
			applog.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			if ok, retry := s.rateLimiter.allow(clientIP); !ok {
				atomic.AddInt64(&s.metrics.rateLimitHits, 1)
				applog.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
					applog.FieldClientIP, clientIP,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", retryAfterSeconds(retry))
				ErrorResponse(http.StatusTooManyRequests, "Troppe richieste, riprova più tardi").Write(w)
				return
			}
		}

		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background work and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.logger.InfoContext(ctx, "Security summary",
			"rate_limit_hits", atomic.LoadInt64(&s.metrics.rateLimitHits),
			"invalid_ip_attempts", atomic.LoadInt64(&s.metrics.invalidIPAttempts),
			"suspicious_requests", atomic.LoadInt64(&s.metrics.suspiciousRequests))
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}
