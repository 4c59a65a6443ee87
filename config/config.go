package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL"`
	Postgres          Postgres
	Telegram          Telegram
	Redis             Redis
	API               API
	Cache             Cache
	Jobs              Jobs
	GoogleDrive       GoogleDrive
	Insights          Insights
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION"`
	HoldingsPerPage   int           `env:"HOLDINGS_PER_PAGE"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type API struct {
	Debug        bool          `env:"API_DEBUG"`
	Timeout      time.Duration `env:"API_TIMEOUT"`
	MoexApi      MoexApi
	CoinGeckoApi CoinGeckoApi
}

type MoexApi struct {
	Url string `env:"MOEX_API_URL"`
}

type CoinGeckoApi struct {
	Url        string `env:"COINGECKO_API_URL"`
	VsCurrency string `env:"COINGECKO_VS_CURRENCY" envDefault:"usd"`
}

type Cache struct {
	PricesExpiration time.Duration `env:"CACHE_PRICES_EXPIRATION"`
}

type Jobs struct {
	RefreshPricesInterval time.Duration `env:"REFRESH_PRICES_JOB_INTERVAL"`
	DeleteOldFilesCrontab string        `env:"DELETE_OLD_FILES_JOB_CRONTAB" envDefault:"0 3 * * *"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL"`
}

type Insights struct {
	DismissedKeyPrefix string        `env:"INSIGHTS_DISMISSED_KEY_PREFIX" envDefault:"portfolio-insights-dismissed"`
	ActivityWindow     time.Duration `env:"INSIGHTS_ACTIVITY_WINDOW" envDefault:"720h"`
	LiveModeByDefault  bool          `env:"INSIGHTS_LIVE_MODE_BY_DEFAULT" envDefault:"false"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
