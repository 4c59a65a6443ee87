package portfolioService

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/data/repository"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/quoteModel"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/shopspring/decimal"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	InsertUser(ctx context.Context, chatID int64) (userID int64, err error)
	GetUserID(ctx context.Context, chatID int64) (userID int64, err error)
	GetHoldings(ctx context.Context, userID int64) ([]dbModel.Holding, error)
	GetPageHoldings(ctx context.Context, userID int64, limit, offset int) ([]dbModel.Holding, bool, error)
	GetHoldingForUpdate(ctx context.Context, userID int64, assetClass, symbol string) (dbModel.Holding, error)
	InsertHolding(ctx context.Context, holding dbModel.Holding) (holdingID int64, err error)
	UpdateHolding(ctx context.Context, holdingID int64, quantity, purchasePrice decimal.Decimal) error
	DeleteHolding(ctx context.Context, userID, holdingID int64) error
	GetTrackedSymbols(ctx context.Context) ([]dbModel.Holding, error)
	InsertHoldingOperation(ctx context.Context, operation dbModel.HoldingOperation) error
	GetOperationsSince(ctx context.Context, userID int64, since time.Time) ([]dbModel.HoldingOperation, error)
	InsertPriceAlert(ctx context.Context, alert dbModel.PriceAlert) (alertID int64, err error)
	CountPriceAlerts(ctx context.Context, userID int64) (int, error)
}

type PriceCache interface {
	SetQuotes(ctx context.Context, quotes []quoteModel.Quote) error
	GetQuotes(ctx context.Context, assetClass string, symbols []string) (map[string]quoteModel.Quote, error)
}

type QuoteApi interface {
	GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) ([]quoteModel.Quote, error)
}

type DismissalStore interface {
	Load(ctx context.Context, chatID int64) (model.DismissalSet, error)
	Append(ctx context.Context, chatID int64, id string) error
	Clear(ctx context.Context, chatID int64) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type PortfolioService struct {
	cfg          *config.Config
	repo         Repository
	cache        PriceCache
	stockApi     QuoteApi
	cryptoApi    QuoteApi
	dismissals   DismissalStore
	generator    ReportGenerator
	cloudStorage CloudStorage
	now          func() time.Time
}

func New(
	cfg *config.Config,
	repo Repository,
	cache PriceCache,
	stockApi QuoteApi,
	cryptoApi QuoteApi,
	dismissals DismissalStore,
	generator ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:          cfg,
		repo:         repo,
		cache:        cache,
		stockApi:     stockApi,
		cryptoApi:    cryptoApi,
		dismissals:   dismissals,
		generator:    generator,
		cloudStorage: cloudStorage,
		now:          time.Now,
	}
}

func (s *PortfolioService) RegUser(ctx context.Context, chatID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RegUser"

	slog.Debug("RegUser start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	defer func() {
		slog.Debug("RegUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	}()

	_, err := s.repo.InsertUser(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		slog.Error("got error from repo.InsertUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *PortfolioService) getUserID(ctx context.Context, chatID int64) (int64, error) {
	userID, err := s.repo.GetUserID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, service.ErrNotFound
		}
		return 0, err
	}
	return userID, nil
}

func (s *PortfolioService) quoteApi(assetClass model.AssetClass) QuoteApi {
	if assetClass == model.AssetClassCrypto {
		return s.cryptoApi
	}
	return s.stockApi
}
