package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/data/session"
	"github.com/KotFed0t/portfolio_insight_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg     = "Something went wrong, please try again later."
	notRegisteredMsg   = "Send /start first."
	maxInsightMessages = 10
)

type PortfolioService interface {
	RegUser(ctx context.Context, chatID int64) error
	AddHolding(ctx context.Context, chatID int64, in portfolioService.HoldingInput) (model.Holding, error)
	RemoveHolding(ctx context.Context, chatID int64, holdingID string) error
	ListHoldings(ctx context.Context, chatID int64, page int) (model.HoldingsPage, error)
	GetReport(ctx context.Context, chatID int64, liveMode bool) (model.PortfolioReport, error)
	DismissInsight(ctx context.Context, chatID int64, insightID string) error
	ResetDismissed(ctx context.Context, chatID int64) error
	AddPriceAlert(ctx context.Context, chatID int64, in portfolioService.PriceAlertInput) (model.PriceAlert, error)
	ExportReport(ctx context.Context, chatID int64, liveMode bool) (string, error)
}

type Session interface {
	GetSession(ctx context.Context, chatID int64) (model.Session, error)
	SetSession(ctx context.Context, chatID int64, session model.Session) error
}

type Controller struct {
	cfg              *config.Config
	portfolioService PortfolioService
	session          Session
}

func NewController(cfg *config.Config, portfolioService PortfolioService, session Session) *Controller {
	return &Controller{
		cfg:              cfg,
		portfolioService: portfolioService,
		session:          session,
	}
}

func send(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if markup == nil {
		return c.Send(text, tele.ModeHTML)
	}
	return c.Send(text, markup, tele.ModeHTML)
}

// GetSession returns the stored chat session or a fresh one.
func (ctrl *Controller) GetSession(ctx context.Context, c tele.Context) (model.Session, error) {
	if chatSession, ok := c.Get("session").(model.Session); ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, c.Chat().ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Session{LiveMode: ctrl.cfg.Insights.LiveModeByDefault}, nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}
	return chatSession, nil
}

func (ctrl *Controller) setAction(ctx context.Context, c tele.Context, action model.Action) error {
	chatSession, err := ctrl.GetSession(ctx, c)
	if err != nil {
		return err
	}

	chatSession.Action = action
	if err = ctrl.session.SetSession(ctx, c.Chat().ID, chatSession); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return err
	}
	return nil
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.portfolioService.RegUser(ctx, c.Chat().ID); err != nil {
		return c.Send(internalErrMsg)
	}
	return c.Send(
		"👋 Hi! I track your crypto and stock holdings, score the health of your portfolio and suggest what to look at.\n\n"+
			"/add_holding - add a position\n"+
			"/holdings - list positions\n"+
			"/health - portfolio health\n"+
			"/insights - personalised insights\n"+
			"/live - toggle live prices\n"+
			"/alert - add a price alert\n"+
			"/reset_insights - show dismissed insights again\n"+
			"/export - export report to xlsx",
		telebotConverter.MainMenu(),
	)
}

func (ctrl *Controller) InitAddHolding(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.setAction(ctx, c, model.ExpectingHolding); err != nil {
		return c.Send(internalErrMsg)
	}
	return c.Send("Send the holding as: CLASS SYMBOL QUANTITY PRICE\nfor example: crypto BTC 0.5 30000 or stock SBER 10 250")
}

func (ctrl *Controller) ProcessAddHolding(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	in, err := parseHoldingInput(c.Text())
	if err != nil {
		return c.Send("⚠️ " + err.Error())
	}

	holding, err := ctrl.portfolioService.AddHolding(ctx, c.Chat().ID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidHolding):
			return c.Send("⚠️ " + err.Error())
		case errors.Is(err, service.ErrNotFound):
			return c.Send("Unknown symbol or user. Check the ticker or send /start.")
		}
		slog.Error("got error from portfolioService.AddHolding", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	_ = ctrl.setAction(ctx, c, model.DefaultAction)

	return c.Send("✅ " + holding.Symbol + ": " + strconv.FormatFloat(holding.Quantity, 'f', -1, 64) + " @ " + strconv.FormatFloat(holding.PurchasePrice, 'f', 2, 64))
}

func (ctrl *Controller) Holdings(c tele.Context) error {
	return ctrl.showHoldingsPage(c, 1, false)
}

func (ctrl *Controller) showHoldingsPage(c tele.Context, page int, edit bool) error {
	ctx := utils.CreateCtxWithRqID(c)

	holdingsPage, err := ctrl.portfolioService.ListHoldings(ctx, c.Chat().ID, page)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send(notRegisteredMsg)
		}
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.HoldingsResponse(holdingsPage)
	if edit {
		return c.Edit(text, markup, tele.ModeHTML)
	}
	return send(c, text, markup)
}

func (ctrl *Controller) RemoveHolding(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /remove_holding <id>, ids are shown in /holdings")
	}
	return ctrl.removeHolding(c, args[0])
}

func (ctrl *Controller) removeHolding(c tele.Context, holdingID string) error {
	ctx := utils.CreateCtxWithRqID(c)

	err := ctrl.portfolioService.RemoveHolding(ctx, c.Chat().ID, holdingID)
	switch {
	case errors.Is(err, service.ErrInvalidHolding), errors.Is(err, service.ErrNotFound):
		return c.Send("Holding #" + holdingID + " not found.")
	case err != nil:
		return c.Send(internalErrMsg)
	}

	return c.Send("🗑 Holding #" + holdingID + " removed.")
}

func (ctrl *Controller) report(ctx context.Context, c tele.Context) (model.PortfolioReport, bool, error) {
	chatSession, err := ctrl.GetSession(ctx, c)
	if err != nil {
		return model.PortfolioReport{}, false, c.Send(internalErrMsg)
	}

	report, err := ctrl.portfolioService.GetReport(ctx, c.Chat().ID, chatSession.LiveMode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return model.PortfolioReport{}, false, c.Send(notRegisteredMsg)
		}
		return model.PortfolioReport{}, false, c.Send(internalErrMsg)
	}

	return report, true, nil
}

func (ctrl *Controller) Health(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	report, ok, err := ctrl.report(ctx, c)
	if !ok {
		return err
	}

	text, markup := telebotConverter.HealthResponse(report)
	return send(c, text, markup)
}

func (ctrl *Controller) Insights(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	report, ok, err := ctrl.report(ctx, c)
	if !ok {
		return err
	}

	if len(report.Insights) == 0 {
		return c.Send("💡 No new insights. Use /reset_insights to see dismissed ones again.")
	}

	for i, insight := range report.Insights {
		if i == maxInsightMessages {
			break
		}
		text, markup := telebotConverter.InsightResponse(insight)
		if err = send(c, text, markup); err != nil {
			return err
		}
	}

	return nil
}

func (ctrl *Controller) dismissInsight(c tele.Context, insightID string) error {
	ctx := utils.CreateCtxWithRqID(c)

	if err := ctrl.portfolioService.DismissInsight(ctx, c.Chat().ID, insightID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	_ = c.Respond(&tele.CallbackResponse{Text: "Dismissed"})
	return c.Delete()
}

func (ctrl *Controller) ResetInsights(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	if err := ctrl.portfolioService.ResetDismissed(ctx, c.Chat().ID); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send("💡 Dismissed insights will be shown again.")
}

func (ctrl *Controller) ToggleLiveMode(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.GetSession(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession.LiveMode = !chatSession.LiveMode
	if err = ctrl.session.SetSession(ctx, c.Chat().ID, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	if chatSession.LiveMode {
		return c.Send("⚡ Live prices on: reports use fresh quotes.")
	}
	return c.Send("Live prices off: reports use cached quotes.")
}

func (ctrl *Controller) InitPriceAlert(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.setAction(ctx, c, model.ExpectingPriceAlert); err != nil {
		return c.Send(internalErrMsg)
	}
	return c.Send("Send the alert as: CLASS SYMBOL above|below PRICE\nfor example: stock SBER below 250")
}

func (ctrl *Controller) ProcessPriceAlert(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	in, err := parsePriceAlertInput(c.Text())
	if err != nil {
		return c.Send("⚠️ " + err.Error())
	}

	alert, err := ctrl.portfolioService.AddPriceAlert(ctx, c.Chat().ID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAlert):
			return c.Send("⚠️ " + err.Error())
		case errors.Is(err, service.ErrNotFound):
			return c.Send(notRegisteredMsg)
		}
		return c.Send(internalErrMsg)
	}

	_ = ctrl.setAction(ctx, c, model.DefaultAction)

	return c.Send("🔔 Alert set: " + alert.Symbol + " " + string(alert.Direction) + " " + alert.Threshold.String())
}

func (ctrl *Controller) Export(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.GetSession(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	_ = c.Notify(tele.UploadingDocument)

	link, err := ctrl.portfolioService.ExportReport(ctx, c.Chat().ID, chatSession.LiveMode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPortfolio):
			return c.Send("Your portfolio is empty, add a holding first.")
		case errors.Is(err, service.ErrNotFound):
			return c.Send(notRegisteredMsg)
		}
		return c.Send(internalErrMsg)
	}

	return c.Send("📄 Report: " + link)
}

// HandleCallback routes inline button presses by their data.
func (ctrl *Controller) HandleCallback(c tele.Context) error {
	data := c.Callback().Data
	rqID := utils.GetRequestIDFromCtx(utils.CreateCtxWithRqID(c))

	if insightID, ok := strings.CutPrefix(data, tgCallback.DismissInsightPrefix); ok {
		return ctrl.dismissInsight(c, insightID)
	}

	_ = c.Respond()

	switch {
	case data == tgCallback.AddHolding:
		return ctrl.InitAddHolding(c)
	case data == tgCallback.ShowHealth:
		return ctrl.Health(c)
	case data == tgCallback.ShowInsights:
		return ctrl.Insights(c)
	case data == tgCallback.ToggleLiveMode:
		return ctrl.ToggleLiveMode(c)
	case data == tgCallback.ExportReport:
		return ctrl.Export(c)
	case strings.HasPrefix(data, tgCallback.RemoveHoldingPrefix):
		return ctrl.removeHolding(c, strings.TrimPrefix(data, tgCallback.RemoveHoldingPrefix))
	case strings.HasPrefix(data, tgCallback.PrevPagePrefix), strings.HasPrefix(data, tgCallback.NextPagePrefix):
		page, err := strconv.Atoi(data[strings.Index(data, ":")+1:])
		if err != nil {
			return nil
		}
		return ctrl.showHoldingsPage(c, page, true)
	default:
		slog.Warn("unknown callback", slog.String("rqID", rqID), slog.String("data", data))
		return nil
	}
}
