package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/config"
	"github.com/ruralpay/ledger/internal/database"
	"github.com/ruralpay/ledger/internal/handlers"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/ruralpay/ledger/internal/services"
)

// @title Ledger API
// @version 1.0
// @description Accounts, deposits, withdrawals, transfers and statements
// @BasePath /api/v1
// @schemes http https

func main() {
	configPath := flag.String("config", "", "optional config file (.env, yaml, json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	log := logger.New(cfg.Log)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, logger.Component(log, "database"))
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := database.OpenRedis(ctx, cfg.Redis, logger.Component(log, "redis"))
	if redisClient != nil {
		defer redisClient.Close()
	}

	numbers, err := services.NewRandomAccountNumberGenerator(cfg.Ledger)
	if err != nil {
		return err
	}

	accountService := services.NewAccountService(db, cfg.Ledger, numbers, logger.Component(log, "accounts"))
	ledgerService := services.NewLedgerService(db, logger.Component(log, "ledger"))
	statementService := services.NewStatementService(db, logger.Component(log, "statements"))

	httpLog := logger.Component(log, "http")
	router := handlers.NewRouter(handlers.RouterConfig{
		Accounts:       handlers.NewAccountHandler(accountService, ledgerService, statementService, httpLog),
		Ledger:         handlers.NewLedgerHandler(accountService, ledgerService, httpLog),
		JWTSecret:      []byte(cfg.JWT.SecretKey),
		Redis:          redisClient,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		Health:         db.PingContext,
		Log:            httpLog,
	})

	server := newServer(cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Dur("grace", cfg.Server.ShutdownTimeout).Msg("server stopped")
	return nil
}

func newServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
