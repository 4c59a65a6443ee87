package data

import (
	"testing"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/stretchr/testify/assert"
)

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(config.Postgres{
		Host:     "db",
		Port:     5433,
		User:     "bot",
		DbName:   "portfolio",
		Password: "secret",
	})

	assert.Equal(t, "host=db port=5433 user=bot dbname=portfolio sslmode=disable password=secret", dsn)
}
