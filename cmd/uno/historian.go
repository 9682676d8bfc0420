// cmd/uno/historian.go
package main

import (
	"context"
	"errors"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/historian"
	"github.com/urfave/cli/v3"
)

func runHistorian(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		return errors.New("historian needs both REDIS_ADDR and DATABASE_URL")
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	hs := historian.NewHistorianService(rdb, database.NewGameRepository(pool), logger, historian.Options{
		Queue:         cfg.HistorianQueue,
		BatchSize:     cfg.HistorianBatchSize,
		FlushInterval: cfg.HistorianFlush,
		Inactivity:    cfg.InactivityTimeout,
	})
	return hs.Run(ctx)
}
