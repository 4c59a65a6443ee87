package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/redis/go-redis/v9"
)

func NewRedisClient(cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pong, err := rdb.Ping(context.Background()).Result()
	if err != nil {
		slog.Error("Error while connecting Redis", slog.String("error", err.Error()), slog.String("addr", rdb.Options().Addr))
		panic(err)
	}
	slog.Info("Redis connected", slog.String("pong", pong), slog.Int("db", cfg.Redis.DB))

	return rdb
}
