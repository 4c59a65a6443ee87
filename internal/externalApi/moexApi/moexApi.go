package moexApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/internal/externalApi"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/moexModel"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/quoteModel"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const securitiesUrl = "/iss/engines/stock/markets/shares/boards/TQBR/securities.json"

type MoexApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *MoexApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.MoexApi.Url)
	return &MoexApi{client: client}
}

func (a *MoexApi) fetch(ctx context.Context, tickers []string) (moexModel.RawStocksInfo, error) {
	params := map[string]string{
		"iss.meta":           "off",
		"securities.columns": "SECID,SHORTNAME,LOTSIZE,CURRENCYID,STATUS",
		"marketdata.columns": "SECID,MARKETPRICE",
	}
	if len(tickers) > 0 {
		params["securities"] = strings.Join(tickers, ",")
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(securitiesUrl)
	if err != nil {
		return moexModel.RawStocksInfo{}, err
	}

	if resp.IsError() {
		return moexModel.RawStocksInfo{}, fmt.Errorf("%w: %d", externalApi.ErrBadStatusCode, resp.StatusCode())
	}

	rawStocksInfo := moexModel.RawStocksInfo{}
	if err = json.Unmarshal(resp.Body(), &rawStocksInfo); err != nil {
		return moexModel.RawStocksInfo{}, fmt.Errorf("can't unmarshall response into moexModel.RawStocksInfo: %w", err)
	}

	return rawStocksInfo, nil
}

// GetStocksInfo returns info for the given tickers, or for the whole board when tickers is empty.
func (a *MoexApi) GetStocksInfo(ctx context.Context, tickers []string) ([]moexModel.StockInfo, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start MoexApi.GetStocksInfo request", slog.String("rqID", rqId), slog.Any("tickers", tickers))

	rawStocksInfo, err := a.fetch(ctx, tickers)
	if err != nil {
		slog.Error("MoexApi.GetStocksInfo request failed", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	res, err := parseRawStocksInfoToSlice(rawStocksInfo)
	if err != nil {
		slog.Error("can't parse raw data", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	slog.Debug("MoexApi.GetStocksInfo request complete", slog.String("rqID", rqId), slog.Int("count", len(res)))

	return res, nil
}

func (a *MoexApi) GetStockInfo(ctx context.Context, ticker string) (moexModel.StockInfo, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start MoexApi.GetStockInfo request", slog.String("rqID", rqId), slog.String("ticker", ticker))

	rawStocksInfo, err := a.fetch(ctx, []string{ticker})
	if err != nil {
		slog.Error("MoexApi.GetStockInfo request failed", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return moexModel.StockInfo{}, err
	}

	res, err := parseRawStocksInfoSingle(rawStocksInfo)
	if err != nil {
		if !errors.Is(err, externalApi.ErrNotFound) {
			slog.Error("can't parse raw data", slog.String("err", err.Error()), slog.String("rqID", rqId))
		}
		return moexModel.StockInfo{}, err
	}

	slog.Debug("MoexApi.GetStockInfo request complete", slog.String("rqID", rqId))

	return res, nil
}

// GetQuotes returns last market prices for tickers. Tickers without a price are skipped.
func (a *MoexApi) GetQuotes(ctx context.Context, tickers []string) ([]quoteModel.Quote, error) {
	if len(tickers) == 0 {
		return []quoteModel.Quote{}, nil
	}

	stocks, err := a.GetStocksInfo(ctx, tickers)
	if err != nil {
		return nil, err
	}

	return stocksToQuotes(stocks, time.Now()), nil
}

// GetQuote returns ErrNotFound for unknown tickers and for tickers that are not traded.
func (a *MoexApi) GetQuote(ctx context.Context, ticker string) (quoteModel.Quote, error) {
	stock, err := a.GetStockInfo(ctx, ticker)
	if err != nil {
		return quoteModel.Quote{}, err
	}

	quotes := stocksToQuotes([]moexModel.StockInfo{stock}, time.Now())
	if !stock.Status || len(quotes) == 0 {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}

	return quotes[0], nil
}

func stocksToQuotes(stocks []moexModel.StockInfo, now time.Time) []quoteModel.Quote {
	quotes := make([]quoteModel.Quote, 0, len(stocks))
	for _, stock := range stocks {
		if !stock.Priced() {
			continue
		}
		quotes = append(quotes, quoteModel.Quote{
			AssetClass: string(model.AssetClassStock),
			Symbol:     stock.Ticker,
			Price:      stock.Price,
			UpdatedAt:  now,
		})
	}
	return quotes
}

func parseRawStocksInfoToSlice(rawStocksInfo moexModel.RawStocksInfo) ([]moexModel.StockInfo, error) {
	res := make([]moexModel.StockInfo, 0, len(rawStocksInfo.Marketdata.Data))

	err := handleRawStocksInfo(rawStocksInfo, func(stock moexModel.StockInfo) {
		res = append(res, stock)
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func parseRawStocksInfoSingle(rawStocksInfo moexModel.RawStocksInfo) (moexModel.StockInfo, error) {
	res, err := parseRawStocksInfoToSlice(rawStocksInfo)
	if err != nil {
		return moexModel.StockInfo{}, err
	}

	if len(res) == 0 {
		return moexModel.StockInfo{}, externalApi.ErrNotFound
	}

	if len(res) != 1 {
		return moexModel.StockInfo{}, errors.New("unexpected slice length, expected only 1 element")
	}

	return res[0], nil
}

func handleRawStocksInfo(rawStocksInfo moexModel.RawStocksInfo, handleFn func(stock moexModel.StockInfo)) error {
	if len(rawStocksInfo.Marketdata.Data) != len(rawStocksInfo.Securities.Data) {
		return errors.New("lengths Marketdata != Securities")
	}

	for i := range rawStocksInfo.Marketdata.Data {
		if !rawStocksInfo.Marketdata.RowComplete(i) {
			return errors.New("invalid Marketdata")
		}

		if !rawStocksInfo.Securities.RowComplete(i) {
			return errors.New("invalid Securities")
		}

		stockInfo := moexModel.StockInfo{}

		for j, column := range rawStocksInfo.Marketdata.Columns {
			value := rawStocksInfo.Marketdata.Data[i][j]
			ok := true
			switch column {
			case "SECID":
				stockInfo.Ticker, ok = value.(string)
			case "MARKETPRICE":
				if value != nil {
					var price float64
					price, ok = value.(float64)
					if ok {
						stockInfo.Price = decimal.NewFromFloat(price)
					}
				}
			default:
				return fmt.Errorf("unknown column %s", column)
			}

			if !ok {
				return fmt.Errorf("invalid type %s = %v", column, value)
			}
		}

		for j, column := range rawStocksInfo.Securities.Columns {
			value := rawStocksInfo.Securities.Data[i][j]
			ok := true
			switch column {
			case "SECID":
				if value != stockInfo.Ticker {
					return fmt.Errorf("secID in securities and market data is not equal %v and %s", value, stockInfo.Ticker)
				}
			case "SHORTNAME":
				stockInfo.Shortname, ok = value.(string)
			case "LOTSIZE":
				var f float64
				f, ok = value.(float64)
				if ok {
					stockInfo.Lotsize = int(f)
				}
			case "CURRENCYID":
				stockInfo.CurrencyID, ok = value.(string)
				if ok && stockInfo.CurrencyID == "SUR" {
					stockInfo.CurrencyID = "RUB"
				}
			case "STATUS":
				var status string
				status, ok = value.(string)
				if ok && status == "A" {
					stockInfo.Status = true
				}
			default:
				return fmt.Errorf("unknown column %s", column)
			}

			if !ok {
				return fmt.Errorf("invalid type %s = %v", column, value)
			}
		}
		handleFn(stockInfo)
	}
	return nil
}
