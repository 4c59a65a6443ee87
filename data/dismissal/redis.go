package dismissal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/redis/go-redis/v9"
)

const maxAppendRetries = 5

// RedisStore keeps one JSON record of dismissed insight ids per chat.
type RedisStore struct {
	redis *redis.Client
	cfg   *config.Config
	now   func() time.Time
}

func NewRedisStore(redisClient *redis.Client, cfg *config.Config) *RedisStore {
	return &RedisStore{redis: redisClient, cfg: cfg, now: time.Now}
}

func (s *RedisStore) key(chatID int64) string {
	return fmt.Sprintf("%s:%d", s.cfg.Insights.DismissedKeyPrefix, chatID)
}

// Load never fails on a missing or corrupt record, both read as an empty set.
func (s *RedisStore) Load(ctx context.Context, chatID int64) (model.DismissalSet, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStore.Load"
	slog.Debug("Load start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))

	raw, err := s.redis.Get(ctx, s.key(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.DismissalSet{}, nil
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.DismissalSet{}, err
	}

	set, ok := decodeDismissalSet(raw)
	if !ok {
		slog.Warn("corrupt dismissal record, treating as empty", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	}

	slog.Debug("Load completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(set.Dismissed)))
	return set, nil
}

// Append adds id to the chat record. Concurrent appends are serialised with WATCH.
func (s *RedisStore) Append(ctx context.Context, chatID int64, id string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStore.Append"
	key := s.key(chatID)
	slog.Debug("Append start", slog.String("rqID", rqID), slog.String("op", op), slog.String("insightID", id))

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		set, _ := decodeDismissalSet(raw)
		set = appendDismissed(set, id, s.now())

		data, err := json.Marshal(set)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	var err error
	for range maxAppendRetries {
		err = s.redis.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		slog.Error("Append failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Append completed", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStore.Clear"

	if err := s.redis.Del(ctx, s.key(chatID)).Err(); err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Clear completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	return nil
}

// decodeDismissalSet reports false when raw is not a valid record.
// An empty raw string is a missing record and is valid.
func decodeDismissalSet(raw string) (model.DismissalSet, bool) {
	if raw == "" {
		return model.DismissalSet{}, true
	}

	var set model.DismissalSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return model.DismissalSet{}, false
	}

	return set, true
}

func appendDismissed(set model.DismissalSet, id string, now time.Time) model.DismissalSet {
	if !set.Contains(id) {
		set.Dismissed = append(set.Dismissed, id)
	}
	set.LastUpdated = now.UnixMilli()
	return set
}
