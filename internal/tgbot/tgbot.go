package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/portfolio_insight_bot/internal/transport/telegram/middleware"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot  *tele.Bot
	ctrl *telegram.Controller
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		// the chat session decides which step the text belongs to
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)

		chatSession, err := b.ctrl.GetSession(ctx, c)
		if err != nil {
			return c.Send("Something went wrong, please try again later.")
		}

		c.Set("session", chatSession)

		switch chatSession.Action {
		case model.ExpectingHolding:
			return b.ctrl.ProcessAddHolding(c)
		case model.ExpectingPriceAlert:
			return b.ctrl.ProcessPriceAlert(c)
		default:
			slog.Debug("text without pending action", slog.String("rqID", rqID))
			return c.Send("Pick a command first, see /start.")
		}
	})

	b.bot.Handle(tele.OnCallback, b.ctrl.HandleCallback)

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/add_holding", b.ctrl.InitAddHolding)
	b.bot.Handle("/holdings", b.ctrl.Holdings)
	b.bot.Handle("/remove_holding", b.ctrl.RemoveHolding)
	b.bot.Handle("/health", b.ctrl.Health)
	b.bot.Handle("/insights", b.ctrl.Insights)
	b.bot.Handle("/live", b.ctrl.ToggleLiveMode)
	b.bot.Handle("/alert", b.ctrl.InitPriceAlert)
	b.bot.Handle("/reset_insights", b.ctrl.ResetInsights)
	b.bot.Handle("/export", b.ctrl.Export)
}
