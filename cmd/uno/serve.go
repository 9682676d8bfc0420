// cmd/uno/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/urfave/cli/v3"
)

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := cmd.String("port"); port != "" {
		cfg.Port = port
	}

	var repo *database.GameRepository
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		repo = database.NewGameRepository(pool)
		logger.Info("recording finished games to postgres")
	}

	mem := game.NewMemoryStore()
	if repo != nil {
		// continue numbering after games recorded by earlier runs
		next, err := repo.NextGameID(ctx)
		if err != nil {
			return err
		}
		mem.SeedNextID(next)
	}
	var store game.Store = mem
	var publisher handlers.ActionPublisher
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publisher = cache.NewPublisher(rdb, cfg.HistorianQueue)
		if cfg.GameStore == "redis" {
			store = cache.NewRedisStore(rdb, cfg.RedisKeyPrefix, cfg.FinishedTTL)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	}

	gs := handlers.NewGameServer(store, logger)
	gs.Publisher = publisher
	gs.OriginPatterns = cfg.Origins()
	gs.FinishedRetention = cfg.FinishedTTL
	if repo != nil {
		gs.Recorder = repo
	}

	var handler http.Handler = middleware.LogMiddleware(logger)(gs.Routes())
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(logger),
		gorillahandlers.PrintRecoveryStack(true),
	)(handler)
	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.Origins()),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		gorillahandlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s (store: %s)", srv.Addr, cfg.GameStore)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server exited: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
