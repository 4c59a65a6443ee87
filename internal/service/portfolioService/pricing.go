package portfolioService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_insight_bot/internal/insightEngine"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/quoteModel"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
)

var assetClasses = []model.AssetClass{model.AssetClassCrypto, model.AssetClassStock}

// RefreshPrices reloads quotes for every symbol held by any user into the price cache.
func (s *PortfolioService) RefreshPrices(ctx context.Context) error {
	ctx = utils.WithNewRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshPrices"

	slog.Debug("RefreshPrices start", slog.String("rqID", rqID), slog.String("op", op))

	tracked, err := s.repo.GetTrackedSymbols(ctx)
	if err != nil {
		return err
	}

	bySymbol := make(map[model.AssetClass][]string, len(assetClasses))
	for _, h := range tracked {
		class := model.AssetClass(h.AssetClass)
		bySymbol[class] = append(bySymbol[class], h.Symbol)
	}

	var errs []error
	for _, class := range assetClasses {
		symbols := bySymbol[class]
		if len(symbols) == 0 {
			continue
		}

		quotes, err := s.quoteApi(class).GetQuotes(ctx, symbols)
		if err != nil {
			slog.Error("can't fetch quotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("assetClass", string(class)), slog.String("err", err.Error()))
			errs = append(errs, err)
			continue
		}

		if err = s.cache.SetQuotes(ctx, quotes); err != nil {
			errs = append(errs, err)
			continue
		}

		slog.Info("prices refreshed", slog.String("rqID", rqID), slog.String("assetClass", string(class)), slog.Int("symbols", len(symbols)), slog.Int("quotes", len(quotes)))
	}

	return errors.Join(errs...)
}

func symbolsOf(holdings []model.Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}

func splitByClass(holdings []model.Holding) (crypto, stocks []model.Holding) {
	crypto = make([]model.Holding, 0, len(holdings))
	stocks = make([]model.Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.AssetClass == model.AssetClassCrypto {
			crypto = append(crypto, h)
		} else {
			stocks = append(stocks, h)
		}
	}
	return crypto, stocks
}

func quotesToPrices(quotes []quoteModel.Quote) map[string]float64 {
	prices := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		prices[q.Symbol] = q.Price.InexactFloat64()
	}
	return prices
}

// cachedPrices reads quotes for one asset class from the cache and fills misses from the API.
func (s *PortfolioService) cachedPrices(ctx context.Context, class model.AssetClass, symbols []string) map[string]float64 {
	rqID := utils.GetRequestIDFromCtx(ctx)
	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices
	}

	cached, err := s.cache.GetQuotes(ctx, string(class), symbols)
	if err != nil {
		slog.Warn("can't get quotes from cache", slog.String("rqID", rqID), slog.String("err", err.Error()))
		cached = nil
	}

	misses := make([]string, 0)
	for _, symbol := range symbols {
		if q, ok := cached[symbol]; ok {
			prices[symbol] = q.Price.InexactFloat64()
		} else {
			misses = append(misses, symbol)
		}
	}

	if len(misses) == 0 {
		return prices
	}

	quotes, err := s.quoteApi(class).GetQuotes(ctx, misses)
	if err != nil {
		slog.Warn("can't get quotes from api, holdings stay unpriced", slog.String("rqID", rqID), slog.Any("symbols", misses), slog.String("err", err.Error()))
		return prices
	}

	for symbol, price := range quotesToPrices(quotes) {
		prices[symbol] = price
	}

	if err = s.cache.SetQuotes(ctx, quotes); err != nil {
		slog.Warn("can't save quotes to cache", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	return prices
}

// priceHoldings prices holdings from the cache. Holdings without a quote keep a nil price.
func (s *PortfolioService) priceHoldings(ctx context.Context, holdings []model.Holding) []model.Holding {
	crypto, stocks := splitByClass(holdings)
	prices := map[model.AssetClass]map[string]float64{
		model.AssetClassCrypto: s.cachedPrices(ctx, model.AssetClassCrypto, symbolsOf(crypto)),
		model.AssetClassStock:  s.cachedPrices(ctx, model.AssetClassStock, symbolsOf(stocks)),
	}

	priced := make([]model.Holding, 0, len(holdings))
	for _, h := range holdings {
		if price, ok := prices[h.AssetClass][h.Symbol]; ok {
			h = insightEngine.PriceHolding(h, price)
		}
		priced = append(priced, h)
	}
	return priced
}

// livePrices fetches fresh quotes for the snapshot symbols straight from the API.
// An API failure gives an empty map, which leaves the snapshot untouched.
func (s *PortfolioService) livePrices(ctx context.Context, class model.AssetClass, snapshot model.PortfolioSnapshot) map[string]float64 {
	rqID := utils.GetRequestIDFromCtx(ctx)

	symbols := symbolsOf(snapshot.Holdings)
	if len(symbols) == 0 {
		return map[string]float64{}
	}

	quotes, err := s.quoteApi(class).GetQuotes(ctx, symbols)
	if err != nil {
		slog.Warn("can't get live quotes", slog.String("rqID", rqID), slog.String("assetClass", string(class)), slog.String("err", err.Error()))
		return map[string]float64{}
	}

	return quotesToPrices(quotes)
}
