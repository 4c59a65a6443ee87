package moexModel

import "github.com/shopspring/decimal"

// RawStocksInfo is the ISS response for /securities.json with the securities and marketdata blocks.
type RawStocksInfo struct {
	Securities Table `json:"securities"`
	Marketdata Table `json:"marketdata"`
}

// Table is the ISS columnar block: column names plus rows of values in the same order.
type Table struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// RowComplete reports whether row i has a value for every column.
func (t Table) RowComplete(i int) bool {
	return i >= 0 && i < len(t.Data) && len(t.Data[i]) == len(t.Columns)
}

type StockInfo struct {
	Ticker     string
	Shortname  string
	Lotsize    int
	CurrencyID string
	Status     bool
	Price      decimal.Decimal
}

// Priced reports whether the stock has a usable market price.
func (s StockInfo) Priced() bool {
	return s.Price.IsPositive()
}
