package telebotConverter

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/tg/tgCallback"
	tele "gopkg.in/telebot.v4"
)

// callbackBtn keeps data as is, without the telebot unique prefix, so callbacks are routed by prefix.
func callbackBtn(text, data string) tele.Btn {
	return tele.Btn{Text: text, Data: data}
}

func MainMenu() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(callbackBtn("➕ Add holding", tgCallback.AddHolding)),
		markup.Row(
			callbackBtn("🩺 Health", tgCallback.ShowHealth),
			callbackBtn("💡 Insights", tgCallback.ShowInsights),
		),
		markup.Row(
			callbackBtn("⚡ Live prices", tgCallback.ToggleLiveMode),
			callbackBtn("📄 Export", tgCallback.ExportReport),
		),
	)
	return markup
}

func formatPrice(price *float64) string {
	if price == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *price)
}

func HoldingsResponse(page model.HoldingsPage) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	if len(page.Holdings) == 0 {
		sb.WriteString("📋 You have no holdings yet. Use /add_holding to add one.")
		markup.Inline(markup.Row(callbackBtn("➕ Add holding", tgCallback.AddHolding)))
		return sb.String(), markup
	}

	sb.WriteString(fmt.Sprintf("📋 <b>Holdings</b>, page %d\n\n", page.CurPage))

	removeBtns := make([]tele.Btn, 0, len(page.Holdings))
	for _, h := range page.Holdings {
		sb.WriteString(fmt.Sprintf("#%s <b>%s</b> (%s)\n", h.ID, html.EscapeString(h.Symbol), h.AssetClass))
		sb.WriteString(fmt.Sprintf("   ▸ Quantity: %g\n", h.Quantity))
		sb.WriteString(fmt.Sprintf("   ▸ Bought at: %.2f\n", h.PurchasePrice))
		sb.WriteString(fmt.Sprintf("   ▸ Price: %s\n", formatPrice(h.CurrentPrice)))
		if h.CurrentPrice != nil {
			sb.WriteString(fmt.Sprintf("   ▸ Value: %.2f (%+.1f%%)\n", h.CurrentValue, h.GainLossPct))
		}
		sb.WriteString("\n")

		removeBtns = append(removeBtns, callbackBtn("🗑 "+h.Symbol, tgCallback.RemoveHoldingPrefix+h.ID))
	}

	paginationBtns := make([]tele.Btn, 0, 2)
	if page.CurPage > 1 {
		paginationBtns = append(paginationBtns, callbackBtn("⬅ previous", tgCallback.PrevPagePrefix+strconv.Itoa(page.CurPage-1)))
	}
	if page.HasNextPage {
		paginationBtns = append(paginationBtns, callbackBtn("next ➡", tgCallback.NextPagePrefix+strconv.Itoa(page.CurPage+1)))
	}

	rows := []tele.Row{markup.Row(callbackBtn("➕ Add holding", tgCallback.AddHolding)), markup.Row(removeBtns...)}
	if len(paginationBtns) > 0 {
		rows = append(rows, markup.Row(paginationBtns...))
	}
	markup.Inline(rows...)

	return sb.String(), markup
}

var riskEmoji = map[model.RiskLevel]string{
	model.RiskLow:    "🟢",
	model.RiskMedium: "🟡",
	model.RiskHigh:   "🔴",
}

func HealthResponse(report model.PortfolioReport) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	health := report.Health
	sb.WriteString(fmt.Sprintf("🩺 <b>Portfolio health: %d/100</b>\n", health.OverallScore))
	sb.WriteString(fmt.Sprintf("%s Risk level: %s\n", riskEmoji[health.RiskLevel], health.RiskLevel))
	if report.LiveMode {
		sb.WriteString("⚡ Live prices\n")
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("💰 Value: %.2f\n", report.Summary.TotalValue))
	sb.WriteString(fmt.Sprintf("   ▸ Invested: %.2f\n", report.Summary.TotalInvested))
	sb.WriteString(fmt.Sprintf("   ▸ Gain/loss: %.2f (%+.1f%%)\n", report.Summary.TotalGainLoss, report.Summary.TotalGainLossPct))
	sb.WriteString(fmt.Sprintf("   ▸ Crypto %.1f%% / Stocks %.1f%%\n\n", report.Risk.CryptoPct, report.Risk.StockPct))

	sb.WriteString(fmt.Sprintf("Diversification: %d\n", health.Diversification))
	sb.WriteString(fmt.Sprintf("Performance: %d\n", health.Performance))
	sb.WriteString(fmt.Sprintf("Risk management: %d\n", health.RiskManagement))
	sb.WriteString(fmt.Sprintf("Activity: %d\n", health.Activity))

	if len(health.Suggestions) > 0 {
		sb.WriteString("\n📌 Suggestions:\n")
		for _, suggestion := range health.Suggestions {
			sb.WriteString("• " + html.EscapeString(suggestion) + "\n")
		}
	}

	markup.Inline(markup.Row(
		callbackBtn(fmt.Sprintf("💡 Insights (%d)", len(report.Insights)), tgCallback.ShowInsights),
		callbackBtn("📄 Export", tgCallback.ExportReport),
	))

	return sb.String(), markup
}

var priorityEmoji = map[model.Priority]string{
	model.PriorityHigh:   "❗",
	model.PriorityMedium: "⚠️",
	model.PriorityLow:    "ℹ️",
}

// InsightResponse renders one insight with its dismiss button and, when actionable, its action button.
func InsightResponse(insight model.Insight) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", priorityEmoji[insight.Priority], html.EscapeString(insight.Title)))
	sb.WriteString(html.EscapeString(insight.Message) + "\n")
	if insight.Explanation != "" {
		sb.WriteString("\n<i>" + html.EscapeString(insight.Explanation) + "</i>\n")
	}
	if insight.Actionable && insight.ActionTarget != "" {
		sb.WriteString(fmt.Sprintf("\n👉 %s: %s", html.EscapeString(insight.ActionLabel), insight.ActionTarget))
	}

	markup.Inline(markup.Row(callbackBtn("✖ Dismiss", tgCallback.DismissInsightPrefix+insight.ID)))

	return sb.String(), markup
}
