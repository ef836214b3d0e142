package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the database row shape of a tracked currency.
// Rate is NUMERIC(15,7) in Postgres; the BIGSERIAL id preserves creation order.
type Currency struct {
	ID             int64
	CurrencyCode   string
	Rate           decimal.Decimal
	AsOfDate       time.Time
	DeletedAt      *time.Time
	ManuallyEdited bool
}
