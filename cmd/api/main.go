package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artifact-cache/internal/auth"
	"artifact-cache/internal/config"
	"artifact-cache/internal/httpapi"
	"artifact-cache/internal/identity"
	"artifact-cache/internal/store"
	"artifact-cache/internal/usage"
	"artifact-cache/pkg/logger"
	"artifact-cache/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	// A store that can never serve is a misconfiguration, not a per-request
	// condition; fail at boot rather than answering 400 forever.
	st, err := store.New(cfg.Store)
	if err != nil {
		log.Error("store init failed", "type", cfg.Store.Type, "err", err)
		os.Exit(1)
	}

	verifier, closeDB, err := buildVerifier(rootCtx, cfg)
	if err != nil {
		log.Error("identity init failed", "mode", cfg.Identity.Mode, "err", err)
		os.Exit(1)
	}
	defer closeDB()

	var rdb *redis.Client
	if cfg.Limits.UploadConcurrency > 0 {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	h := httpapi.Handlers{
		Auth:     authManager,
		Verifier: verifier,
		Store:    st,
		Usage:    usage.NewService(usage.NewMemoryRepo()),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager), rdb, cfg.Limits)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No ReadTimeout/WriteTimeout: artifact transfers are unbounded in
		// size and must not be cut mid-stream by a wall clock.
	}

	go func() {
		log.Info("gateway listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// buildVerifier wires the credential collaborator for the configured mode.
// The returned closer is a no-op unless a DB connection was opened.
func buildVerifier(ctx context.Context, cfg config.Config) (identity.Verifier, func(), error) {
	switch cfg.Identity.Mode {
	case "postgres":
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return nil, func() {}, err
		}
		return identity.NewPostgres(db), func() { _ = db.Close() }, nil
	default:
		return identity.AllowAny{}, func() {}, nil
	}
}
