package kv

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/wallboard/wallboard-server/internal/config"
	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

// Select picks the key-value backend once at process start: it attempts to
// reach the networked backend and permanently degrades to the in-process
// store when that fails. There is no automatic reconnection; the choice
// holds for the process lifetime and callers stay backend-agnostic.
func Select(ctx context.Context, cfg config.Redis, logger *logger.Logger) (model.KeyValue, model.BackendKind) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis unreachable, degrading to in-memory store",
			"addr", cfg.Addr,
			"error", err.Error())
		_ = client.Close()
		return NewMemory(), model.BackendMemory
	}

	logger.Info("using redis key-value backend", "addr", cfg.Addr)
	return NewRedis(client), model.BackendRedis
}
