package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

// Logger tags the update with a rqID and logs its lifetime.
func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			attrs := []any{slog.String("rqID", rqID), slog.Int("updateID", c.Update().ID)}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chatID", chat.ID))
			}
			if cb := c.Callback(); cb != nil {
				attrs = append(attrs, slog.String("callback", cb.Data))
			} else if msg := c.Message(); msg != nil {
				attrs = append(attrs, slog.String("text", msg.Text))
			}

			slog.Info("start request", attrs...)

			err := next(c)

			finished := append(attrs, slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())))
			if err != nil {
				slog.Error("request failed", append(finished, slog.String("err", err.Error()))...)
			} else {
				slog.Info("request finished", finished...)
			}

			return err
		}
	}
}
