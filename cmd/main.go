package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/data"
	"github.com/KotFed0t/portfolio_insight_bot/data/cache"
	"github.com/KotFed0t/portfolio_insight_bot/data/dismissal"
	"github.com/KotFed0t/portfolio_insight_bot/data/repository/postgres"
	"github.com/KotFed0t/portfolio_insight_bot/data/session"
	"github.com/KotFed0t/portfolio_insight_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_insight_bot/internal/externalApi/coinGeckoApi"
	"github.com/KotFed0t/portfolio_insight_bot/internal/externalApi/moexApi"
	"github.com/KotFed0t/portfolio_insight_bot/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/portfolio_insight_bot/internal/scheduler"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_insight_bot/internal/tgbot"
	"github.com/KotFed0t/portfolio_insight_bot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)
	dismissalStore := dismissal.NewRedisStore(redisClient, cfg)

	moexApiClient := moexApi.New(cfg)
	coinGeckoApiClient := coinGeckoApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	portfolioSrv := portfolioService.New(
		cfg,
		pgRepo,
		redisCache,
		moexApiClient,
		coinGeckoApiClient,
		dismissalStore,
		reportGenerator,
		googleCloudStorage,
	)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh prices", portfolioSrv.RefreshPrices, cfg.Jobs.RefreshPricesInterval, true)
	sched.NewCrontabJob("delete old reports", portfolioSrv.DeleteOldReports, cfg.Jobs.DeleteOldFilesCrontab, false)
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(cfg, portfolioSrv, redisSession)

	tgBot := tgbot.New(cfg, tgController)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
