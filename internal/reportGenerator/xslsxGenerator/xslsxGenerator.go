package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/xuri/excelize/v2"
)

const (
	SheetHoldings   = "Holdings"
	SheetHealth     = "Health"
	SheetInsights   = "Insights"
	SheetOperations = "Operations"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	fillers := []struct {
		sheet string
		fill  func(f *excelize.File, sheet string, report model.PortfolioReport) error
	}{
		{SheetHoldings, g.fillHoldings},
		{SheetHealth, g.fillHealth},
		{SheetInsights, g.fillInsights},
		{SheetOperations, g.fillOperations},
	}

	for _, filler := range fillers {
		if _, err = f.NewSheet(filler.sheet); err != nil {
			slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", err
		}
		if err = filler.fill(f, filler.sheet, report); err != nil {
			slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("sheet", filler.sheet), slog.String("err", err.Error()))
			return nil, "", err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

// writeTitle merges fromCell:toCell and writes a bold colored title there.
func writeTitle(f *excelize.File, sheet, fromCell, toCell, title, color string) error {
	if err := f.MergeCell(sheet, fromCell, toCell); err != nil {
		return err
	}

	if err := f.SetCellStr(sheet, fromCell, title); err != nil {
		return err
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, fromCell, fromCell, styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func (g *XSLSXGenerator) fillHoldings(f *excelize.File, sheet string, report model.PortfolioReport) error {
	if err := writeTitle(f, sheet, "A1", "H1", "Holdings", "#cfe2f3"); err != nil {
		return err
	}

	if err := writeRow(f, sheet, 2, "id", "class", "symbol", "quantity", "purchase price", "current price", "value", "gain/loss %"); err != nil {
		return err
	}

	row := 3
	for _, h := range append(append([]model.Holding{}, report.Crypto.Holdings...), report.Stocks.Holdings...) {
		var price any = ""
		if h.CurrentPrice != nil {
			price = *h.CurrentPrice
		}
		if err := writeRow(f, sheet, row, h.ID, string(h.AssetClass), h.Symbol, h.Quantity, h.PurchasePrice, price, h.CurrentValue, h.GainLossPct); err != nil {
			return err
		}
		row++
	}

	row++
	if err := writeTitle(f, sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), "Summary", "#d9ead3"); err != nil {
		return err
	}

	summary := [][]any{
		{"crypto value", report.Summary.CryptoValue},
		{"stock value", report.Summary.StockValue},
		{"total value", report.Summary.TotalValue},
		{"total invested", report.Summary.TotalInvested},
		{"total gain/loss", report.Summary.TotalGainLoss},
		{"total gain/loss %", report.Summary.TotalGainLossPct},
	}
	for _, line := range summary {
		row++
		if err := writeRow(f, sheet, row, line...); err != nil {
			return err
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillHealth(f *excelize.File, sheet string, report model.PortfolioReport) error {
	if err := writeTitle(f, sheet, "A1", "B1", "Portfolio health", "#f9cb9c"); err != nil {
		return err
	}

	rows := [][]any{
		{"overall score", report.Health.OverallScore},
		{"diversification", report.Health.Diversification},
		{"performance", report.Health.Performance},
		{"risk management", report.Health.RiskManagement},
		{"activity", report.Health.Activity},
		{"risk level", string(report.Health.RiskLevel)},
		{"concentration %", report.Risk.ConcentrationRisk},
		{"largest position", report.Risk.ConcentrationAsset},
		{"crypto %", report.Risk.CryptoPct},
		{"stock %", report.Risk.StockPct},
		{"volatility score", report.Risk.VolatilityScore},
		{"suggestions", strings.Join(report.Health.Suggestions, "\n")},
	}

	for i, line := range rows {
		if err := writeRow(f, sheet, i+2, line...); err != nil {
			return err
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillInsights(f *excelize.File, sheet string, report model.PortfolioReport) error {
	if err := writeTitle(f, sheet, "A1", "E1", "Insights", "#f4cccc"); err != nil {
		return err
	}

	if err := writeRow(f, sheet, 2, "priority", "category", "title", "message", "action"); err != nil {
		return err
	}

	for i, insight := range report.Insights {
		if err := writeRow(f, sheet, i+3, string(insight.Priority), string(insight.Category), insight.Title, insight.Message, insight.ActionTarget); err != nil {
			return err
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillOperations(f *excelize.File, sheet string, report model.PortfolioReport) error {
	if err := writeTitle(f, sheet, "A1", "F1", "Recent operations", "#cccccc"); err != nil {
		return err
	}

	if err := writeRow(f, sheet, 2, "date", "class", "symbol", "quantity", "price", "total"); err != nil {
		return err
	}

	for i, operation := range report.Operations {
		err := writeRow(
			f,
			sheet,
			i+3,
			operation.DtCreate,
			string(operation.AssetClass),
			operation.Symbol,
			operation.Quantity.InexactFloat64(),
			operation.Price.InexactFloat64(),
			operation.TotalPrice.InexactFloat64(),
		)
		if err != nil {
			return err
		}
	}

	return nil
}
