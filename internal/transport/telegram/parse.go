package telegram

import (
	"errors"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service/portfolioService"
	"github.com/shopspring/decimal"
)

var (
	errHoldingFormat = errors.New("expected: CLASS SYMBOL QUANTITY PRICE")
	errAlertFormat   = errors.New("expected: CLASS SYMBOL above|below PRICE")
)

// parseDecimal accepts both "1.5" and "1,5".
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// parseHoldingInput parses "crypto BTC 0.5 30000". Semantic checks are left to the service.
func parseHoldingInput(text string) (portfolioService.HoldingInput, error) {
	fields := strings.Fields(text)
	if len(fields) != 4 {
		return portfolioService.HoldingInput{}, errHoldingFormat
	}

	quantity, err := parseDecimal(fields[2])
	if err != nil {
		return portfolioService.HoldingInput{}, errHoldingFormat
	}

	price, err := parseDecimal(fields[3])
	if err != nil {
		return portfolioService.HoldingInput{}, errHoldingFormat
	}

	return portfolioService.HoldingInput{
		AssetClass: model.AssetClass(fields[0]),
		Symbol:     fields[1],
		Quantity:   quantity,
		Price:      price,
	}, nil
}

// parsePriceAlertInput parses "stock SBER below 250".
func parsePriceAlertInput(text string) (portfolioService.PriceAlertInput, error) {
	fields := strings.Fields(text)
	if len(fields) != 4 {
		return portfolioService.PriceAlertInput{}, errAlertFormat
	}

	threshold, err := parseDecimal(fields[3])
	if err != nil {
		return portfolioService.PriceAlertInput{}, errAlertFormat
	}

	return portfolioService.PriceAlertInput{
		AssetClass: model.AssetClass(fields[0]),
		Symbol:     fields[1],
		Direction:  model.AlertDirection(fields[2]),
		Threshold:  threshold,
	}, nil
}
