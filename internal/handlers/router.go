package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	mw "github.com/ruralpay/ledger/internal/middleware"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Accounts       *AccountHandler
	Ledger         *LedgerHandler
	JWTSecret      []byte
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Health         func(ctx context.Context) error
	Log            zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.AccessLog(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.IdempotencyKeyHeader},
		ExposedHeaders:   []string{mw.IdempotentReplayHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Liveness only says the process is serving; readiness checks the database.
	r.Get("/live", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
	r.Get("/ready", readiness(cfg, "ready", "not_ready"))
	r.Get("/health", readiness(cfg, "healthy", "unhealthy"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(cfg.JWTSecret))
		r.Use(mw.Idempotency(cfg.Redis, cfg.IdempotencyTTL, cfg.Log))

		r.Post("/accounts", cfg.Accounts.CreateAccount)
		r.Get("/accounts/me", cfg.Accounts.ListMyAccounts)

		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Get("/", cfg.Accounts.GetAccount)
			r.Get("/transactions", cfg.Accounts.ListTransactions)
			r.Post("/transactions/deposit", cfg.Ledger.Deposit)
			r.Post("/transactions/withdraw", cfg.Ledger.Withdraw)
			r.Get("/statement", cfg.Accounts.GetStatement)
			r.Get("/reconciliation", cfg.Accounts.Reconcile)
		})

		r.Post("/transfers", cfg.Ledger.Transfer)
	})

	return r
}

func readiness(cfg RouterConfig, up, down string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				cfg.Log.Warn().Err(err).Str("path", r.URL.Path).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": down})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": up})
	}
}
