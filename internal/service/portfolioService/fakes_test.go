package portfolioService

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/data/repository"
	"github.com/KotFed0t/portfolio_insight_bot/internal/externalApi"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/quoteModel"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	users      map[int64]int64
	holdings   []dbModel.Holding
	operations []dbModel.HoldingOperation
	alerts     []dbModel.PriceAlert
	nextID     int64
	txCalls    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]int64{}}
}

func (r *fakeRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	r.txCalls++
	return tFunc(ctx)
}

func (r *fakeRepo) InsertUser(_ context.Context, chatID int64) (int64, error) {
	if _, ok := r.users[chatID]; ok {
		return 0, repository.ErrAlreadyExists
	}
	r.users[chatID] = r.id()
	return r.users[chatID], nil
}

func (r *fakeRepo) GetUserID(_ context.Context, chatID int64) (int64, error) {
	userID, ok := r.users[chatID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return userID, nil
}

func (r *fakeRepo) GetHoldings(_ context.Context, userID int64) ([]dbModel.Holding, error) {
	res := make([]dbModel.Holding, 0)
	for _, h := range r.holdings {
		if h.UserID == userID {
			res = append(res, h)
		}
	}
	return res, nil
}

func (r *fakeRepo) GetPageHoldings(ctx context.Context, userID int64, limit, offset int) ([]dbModel.Holding, bool, error) {
	all, _ := r.GetHoldings(ctx, userID)
	if offset >= len(all) {
		return []dbModel.Holding{}, false, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all) > end, nil
}

func (r *fakeRepo) GetHoldingForUpdate(_ context.Context, userID int64, assetClass, symbol string) (dbModel.Holding, error) {
	for _, h := range r.holdings {
		if h.UserID == userID && h.AssetClass == assetClass && h.Symbol == symbol {
			return h, nil
		}
	}
	return dbModel.Holding{}, repository.ErrNotFound
}

func (r *fakeRepo) InsertHolding(_ context.Context, holding dbModel.Holding) (int64, error) {
	holding.HoldingID = r.id()
	r.holdings = append(r.holdings, holding)
	return holding.HoldingID, nil
}

func (r *fakeRepo) UpdateHolding(_ context.Context, holdingID int64, quantity, purchasePrice decimal.Decimal) error {
	for i := range r.holdings {
		if r.holdings[i].HoldingID == holdingID {
			r.holdings[i].Quantity = quantity
			r.holdings[i].PurchasePrice = purchasePrice
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) DeleteHolding(_ context.Context, userID, holdingID int64) error {
	for i, h := range r.holdings {
		if h.UserID == userID && h.HoldingID == holdingID {
			r.holdings = slices.Delete(r.holdings, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) GetTrackedSymbols(_ context.Context) ([]dbModel.Holding, error) {
	seen := map[string]bool{}
	res := make([]dbModel.Holding, 0)
	for _, h := range r.holdings {
		key := h.AssetClass + ":" + h.Symbol
		if seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, dbModel.Holding{AssetClass: h.AssetClass, Symbol: h.Symbol})
	}
	return res, nil
}

func (r *fakeRepo) InsertHoldingOperation(_ context.Context, operation dbModel.HoldingOperation) error {
	r.operations = append(r.operations, operation)
	return nil
}

func (r *fakeRepo) GetOperationsSince(_ context.Context, userID int64, since time.Time) ([]dbModel.HoldingOperation, error) {
	res := make([]dbModel.HoldingOperation, 0)
	for _, o := range r.operations {
		if o.UserID == userID && !o.DtCreate.Before(since) {
			res = append(res, o)
		}
	}
	return res, nil
}

func (r *fakeRepo) InsertPriceAlert(_ context.Context, alert dbModel.PriceAlert) (int64, error) {
	alert.AlertID = r.id()
	r.alerts = append(r.alerts, alert)
	return alert.AlertID, nil
}

func (r *fakeRepo) CountPriceAlerts(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, a := range r.alerts {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) addHolding(userID int64, class model.AssetClass, symbol, qty, price string) int64 {
	id := r.id()
	r.holdings = append(r.holdings, dbModel.Holding{
		HoldingID:     id,
		UserID:        userID,
		AssetClass:    string(class),
		Symbol:        symbol,
		Quantity:      decimal.RequireFromString(qty),
		PurchasePrice: decimal.RequireFromString(price),
	})
	return id
}

type fakeCache struct {
	quotes map[string]quoteModel.Quote
	err    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{quotes: map[string]quoteModel.Quote{}}
}

func (c *fakeCache) SetQuotes(_ context.Context, quotes []quoteModel.Quote) error {
	if c.err != nil {
		return c.err
	}
	for _, q := range quotes {
		c.quotes[q.AssetClass+":"+q.Symbol] = q
	}
	return nil
}

func (c *fakeCache) GetQuotes(_ context.Context, assetClass string, symbols []string) (map[string]quoteModel.Quote, error) {
	if c.err != nil {
		return nil, c.err
	}
	res := map[string]quoteModel.Quote{}
	for _, symbol := range symbols {
		if q, ok := c.quotes[assetClass+":"+symbol]; ok {
			res[symbol] = q
		}
	}
	return res, nil
}

func (c *fakeCache) put(class model.AssetClass, symbol string, price float64) {
	c.quotes[string(class)+":"+symbol] = quoteModel.Quote{
		AssetClass: string(class),
		Symbol:     symbol,
		Price:      decimal.NewFromFloat(price),
	}
}

type fakeQuoteApi struct {
	class  model.AssetClass
	prices map[string]float64
	err    error
	calls  [][]string
}

func newFakeQuoteApi(class model.AssetClass, prices map[string]float64) *fakeQuoteApi {
	return &fakeQuoteApi{class: class, prices: prices}
}

func (a *fakeQuoteApi) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	quotes, err := a.GetQuotes(ctx, []string{symbol})
	if err != nil {
		return quoteModel.Quote{}, err
	}
	if len(quotes) == 0 {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}
	return quotes[0], nil
}

func (a *fakeQuoteApi) GetQuotes(_ context.Context, symbols []string) ([]quoteModel.Quote, error) {
	a.calls = append(a.calls, symbols)
	if a.err != nil {
		return nil, a.err
	}
	res := make([]quoteModel.Quote, 0)
	for _, symbol := range symbols {
		if price, ok := a.prices[symbol]; ok {
			res = append(res, quoteModel.Quote{AssetClass: string(a.class), Symbol: symbol, Price: decimal.NewFromFloat(price)})
		}
	}
	return res, nil
}

type fakeDismissals struct {
	sets map[int64]model.DismissalSet
	err  error
}

func newFakeDismissals() *fakeDismissals {
	return &fakeDismissals{sets: map[int64]model.DismissalSet{}}
}

func (d *fakeDismissals) Load(_ context.Context, chatID int64) (model.DismissalSet, error) {
	if d.err != nil {
		return model.DismissalSet{}, d.err
	}
	return d.sets[chatID], nil
}

func (d *fakeDismissals) Append(_ context.Context, chatID int64, id string) error {
	if d.err != nil {
		return d.err
	}
	set := d.sets[chatID]
	if !set.Contains(id) {
		set.Dismissed = append(set.Dismissed, id)
	}
	d.sets[chatID] = set
	return nil
}

func (d *fakeDismissals) Clear(_ context.Context, chatID int64) error {
	delete(d.sets, chatID)
	return nil
}

type fakeGenerator struct {
	report model.PortfolioReport
}

func (g *fakeGenerator) Generate(_ context.Context, report model.PortfolioReport) ([]byte, string, error) {
	g.report = report
	return []byte("xlsx"), ".xlsx", nil
}

type fakeCloudStorage struct {
	filenames []string
	content   []byte
	deleted   int
}

func (c *fakeCloudStorage) UploadFile(_ context.Context, reader io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	c.content = data
	c.filenames = append(c.filenames, filename)
	return "https://drive.google.com/file/d/" + filename + "/view", nil
}

func (c *fakeCloudStorage) DeleteOldFiles(_ context.Context) error {
	c.deleted++
	return nil
}

type testEnv struct {
	svc        *PortfolioService
	repo       *fakeRepo
	cache      *fakeCache
	stockApi   *fakeQuoteApi
	cryptoApi  *fakeQuoteApi
	dismissals *fakeDismissals
	generator  *fakeGenerator
	storage    *fakeCloudStorage
}

const testChatID int64 = 1001

func newTestEnv() *testEnv {
	cfg := &config.Config{
		HoldingsPerPage: 2,
		Insights: config.Insights{
			ActivityWindow: 30 * 24 * time.Hour,
		},
	}

	env := &testEnv{
		repo:       newFakeRepo(),
		cache:      newFakeCache(),
		stockApi:   newFakeQuoteApi(model.AssetClassStock, map[string]float64{"SBER": 300, "GAZP": 150}),
		cryptoApi:  newFakeQuoteApi(model.AssetClassCrypto, map[string]float64{"BTC": 30000, "ETH": 3000}),
		dismissals: newFakeDismissals(),
		generator:  &fakeGenerator{},
		storage:    &fakeCloudStorage{},
	}

	env.svc = New(cfg, env.repo, env.cache, env.stockApi, env.cryptoApi, env.dismissals, env.generator, env.storage)
	env.svc.now = func() time.Time { return testNow }
	return env
}

func (e *testEnv) registeredUser() int64 {
	userID, _ := e.repo.InsertUser(context.Background(), testChatID)
	return userID
}

func insightIDs(insights []model.Insight) []string {
	ids := make([]string, 0, len(insights))
	for _, insight := range insights {
		ids = append(ids, insight.ID)
	}
	return ids
}
