package coinGeckoApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/internal/externalApi"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/quoteModel"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const simplePriceUrl = "/api/v3/simple/price"

var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"DOGE":  "dogecoin",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"TON":   "the-open-network",
	"BNB":   "binancecoin",
	"LTC":   "litecoin",
	"TRX":   "tron",
	"USDT":  "tether",
	"USDC":  "usd-coin",
}

// CoinID maps a ticker to its CoinGecko id.
func CoinID(symbol string) (string, bool) {
	id, ok := coinIDs[strings.ToUpper(strings.TrimSpace(symbol))]
	return id, ok
}

type CoinGeckoApi struct {
	client     *resty.Client
	vsCurrency string
}

func New(cfg *config.Config) *CoinGeckoApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.CoinGeckoApi.Url)
	return &CoinGeckoApi{client: client, vsCurrency: strings.ToLower(cfg.API.CoinGeckoApi.VsCurrency)}
}

// GetQuotes prices the given tickers. Unknown tickers and tickers missing from the response are skipped.
func (a *CoinGeckoApi) GetQuotes(ctx context.Context, symbols []string) ([]quoteModel.Quote, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)

	ids := coinIDsFor(symbols)
	if len(ids) == 0 {
		return []quoteModel.Quote{}, nil
	}

	slog.Debug("start CoinGeckoApi.GetQuotes request", slog.String("rqID", rqId), slog.Any("ids", ids))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"ids":           strings.Join(ids, ","),
			"vs_currencies": a.vsCurrency,
		}).
		Get(simplePriceUrl)
	if err != nil {
		slog.Error("error while dialing CoinGeckoApi", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	if resp.IsError() {
		slog.Error("CoinGeckoApi bad status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqId))
		return nil, fmt.Errorf("%w: %d", externalApi.ErrBadStatusCode, resp.StatusCode())
	}

	prices := quoteModel.CoinGeckoPrices{}
	if err = json.Unmarshal(resp.Body(), &prices); err != nil {
		slog.Error("can't unmarshall response into quoteModel.CoinGeckoPrices", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	quotes := pricesToQuotes(symbols, prices, a.vsCurrency, time.Now())

	slog.Debug("CoinGeckoApi.GetQuotes request complete", slog.String("rqID", rqId), slog.Int("count", len(quotes)))

	return quotes, nil
}

func (a *CoinGeckoApi) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	if _, ok := CoinID(symbol); !ok {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}

	quotes, err := a.GetQuotes(ctx, []string{symbol})
	if err != nil {
		return quoteModel.Quote{}, err
	}
	if len(quotes) == 0 {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}

	return quotes[0], nil
}

func coinIDsFor(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	ids := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		id, ok := CoinID(symbol)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func pricesToQuotes(symbols []string, prices quoteModel.CoinGeckoPrices, vsCurrency string, now time.Time) []quoteModel.Quote {
	quotes := make([]quoteModel.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		id, ok := CoinID(symbol)
		if !ok {
			continue
		}
		price, ok := prices[id][vsCurrency]
		if !ok || price <= 0 {
			continue
		}
		quotes = append(quotes, quoteModel.Quote{
			AssetClass: string(model.AssetClassCrypto),
			Symbol:     strings.ToUpper(strings.TrimSpace(symbol)),
			Price:      decimal.NewFromFloat(price),
			UpdatedAt:  now,
		})
	}
	return quotes
}
