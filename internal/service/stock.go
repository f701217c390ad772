package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockProvider answers current-stock queries for a material by name. It is
// backed by the external inventory aggregator and may be stale between
// calls, which is why sale settlements re-check stock inside the commit
// transaction.
type StockProvider interface {
	CurrentStock(ctx context.Context, material string) (decimal.Decimal, error)
}
