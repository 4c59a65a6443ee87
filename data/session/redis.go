package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func sessionKey(chatID int64) string {
	return "session:" + strconv.FormatInt(chatID, 10)
}

func (r *RedisSession) GetSession(ctx context.Context, chatID int64) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, sessionKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	session := model.Session{}
	if err = json.Unmarshal([]byte(res), &session); err != nil {
		slog.Error("can't unmarshall session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, ErrNotFound
	}

	return session, nil
}

// SetSession refreshes the session TTL on every write.
func (r *RedisSession) SetSession(ctx context.Context, chatID int64, session model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err = r.redis.Set(ctx, sessionKey(chatID), data, r.cfg.SessionExpiration).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("session saved", slog.String("rqID", rqID), slog.Int64("chatID", chatID), slog.Any("session", session))
	return nil
}
