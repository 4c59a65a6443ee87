package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/quoteModel"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func priceKey(assetClass, symbol string) string {
	return fmt.Sprintf("price:%s:%s", assetClass, strings.ToUpper(symbol))
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes []quoteModel.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetQuotes", slog.String("rqID", rqID), slog.Int("count", len(quotes)))

	if len(quotes) == 0 {
		return nil
	}

	pipe := r.redis.Pipeline()
	for _, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error(
				"can't marshall quote in SetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("quote", quote),
			)
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, priceKey(quote.AssetClass, quote.Symbol), quoteJson, r.cfg.Cache.PricesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

// GetQuotes returns cached quotes keyed by upper case symbol. Missing symbols are absent from the map.
func (r *RedisCache) GetQuotes(ctx context.Context, assetClass string, symbols []string) (map[string]quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuotes start", slog.String("rqID", rqID), slog.String("assetClass", assetClass), slog.Any("symbols", symbols))

	quotes := make(map[string]quoteModel.Quote, len(symbols))
	if len(symbols) == 0 {
		return quotes, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, priceKey(assetClass, symbol))
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		quote := quoteModel.Quote{}
		if err = json.Unmarshal([]byte(raw), &quote); err != nil {
			slog.Warn(
				"can't unmarshall quote in GetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.String("key", keys[i]),
			)
			continue
		}
		quotes[strings.ToUpper(symbols[i])] = quote
	}

	slog.Debug("GetQuotes finished", slog.String("rqID", rqID), slog.Int("hits", len(quotes)))

	return quotes, nil
}
