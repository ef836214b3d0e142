package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for as-of comparisons and
// everywhere a date crosses a package boundary as a string.
const DateLayout = "2006-01-02"

// Currency represents one tracked currency and its rate against the base
// currency (1 base unit = Rate units of Code).
type Currency struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"` // uppercase, unique among active records
	Rate           decimal.Decimal `json:"rate"`
	AsOfDate       time.Time       `json:"asOfDate"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
	ManuallyEdited bool            `json:"manuallyEdited"`
}

// Deleted reports whether the record is soft-deleted.
func (c Currency) Deleted() bool {
	return c.DeletedAt != nil
}

// RateSnapshot is one observation of the upstream feed: a single as-of date
// and, for that date, every quoted rate keyed by uppercase currency code.
type RateSnapshot struct {
	AsOf  time.Time
	Rates map[string]decimal.Decimal
}
