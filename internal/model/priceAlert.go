package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertDirection string

const (
	AlertAbove AlertDirection = "above"
	AlertBelow AlertDirection = "below"
)

type PriceAlert struct {
	AlertID    int64
	AssetClass AssetClass
	Symbol     string
	Direction  AlertDirection
	Threshold  decimal.Decimal
	DtCreate   time.Time
}

type HoldingOperation struct {
	AssetClass AssetClass
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	TotalPrice decimal.Decimal
	DtCreate   time.Time
}
