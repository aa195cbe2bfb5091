package history

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

type redisHistory struct {
	client *redis.Client
	logger *applog.Logger
}

// GetRedisHistory connects to Redis and returns the history cache, or nil
// when Redis is offline (the caller falls back to the in-memory store).
// The client closes when ctx is cancelled at shutdown.
func GetRedisHistory(ctx context.Context, addr string) MessageHistory {
	logger := applog.NewLogger("HistoryCache")

	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		DB:                    config.HistoryRedisDB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis is offline", "addr", addr, "error", err)
		return nil
	}

	h := &redisHistory{client: client, logger: logger}
	go h.closeOnShutdown(ctx)
	logger.Info("history cache connected", "addr", addr)
	return h
}

// NewTestHistory wires an externally supplied client, for miniredis tests.
func NewTestHistory(client *redis.Client) MessageHistory {
	return &redisHistory{client: client, logger: applog.NewLogger("HistoryCache")}
}

func (h *redisHistory) closeOnShutdown(ctx context.Context) {
	<-ctx.Done()
	if err := h.client.Close(); err != nil {
		h.logger.Error("could not close redis client", "error", err)
	}
}

func (h *redisHistory) Append(ctx context.Context, sessionID, entry string) error {
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, sessionID, entry)
	pipe.LTrim(ctx, sessionID, int64(-config.HistoryDepth), -1)
	pipe.Expire(ctx, sessionID, config.HistoryTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (h *redisHistory) Recent(ctx context.Context, sessionID string, n int) ([]string, error) {
	entries, err := h.client.LRange(ctx, sessionID, int64(-n), -1).Result()
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (h *redisHistory) Clear(ctx context.Context, sessionID string) error {
	return h.client.Del(ctx, sessionID).Err()
}
