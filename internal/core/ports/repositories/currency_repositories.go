package repositories

import (
	"context"
	"time"

	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateUpdate is one reconciler-driven rate refresh for an existing record.
// Applying it never touches the manually_edited flag.
type RateUpdate struct {
	Code     string
	Rate     decimal.Decimal
	AsOfDate time.Time
}

// CurrencyPatch carries the caller-editable fields of a currency record.
// Nil fields are left unchanged.
type CurrencyPatch struct {
	Rate     *decimal.Decimal
	AsOfDate *time.Time
}

// Empty reports whether the patch changes nothing.
func (p CurrencyPatch) Empty() bool {
	return p.Rate == nil && p.AsOfDate == nil
}

// CurrencyReader defines read operations over active currency records.
// Single-record reads go through the reconciled set, so listing is the only
// read the store needs to answer.
type CurrencyReader interface {
	// ListActive retrieves all non-deleted records in creation order.
	ListActive(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations over currency records.
type CurrencyWriter interface {
	// CreateMany inserts the given records in a single transaction.
	// The whole batch fails with apperrors.ErrDuplicate if any code
	// collides with an existing active record.
	CreateMany(ctx context.Context, currencies []domain.Currency) error

	// UpdateFields applies the non-nil patch fields to an active record and
	// marks it manually edited. Returns the updated record.
	UpdateFields(ctx context.Context, code string, patch CurrencyPatch) (*domain.Currency, error)

	// BulkUpdateRates applies reconciler rate refreshes in a single
	// transaction without marking records manually edited. Records that are
	// soft-deleted or manually edited are never matched.
	BulkUpdateRates(ctx context.Context, updates []RateUpdate) error

	// SoftDelete marks an active record deleted as of today and manually
	// edited. Returns apperrors.ErrNotFound when no active record matches.
	SoftDelete(ctx context.Context, code string) error

	// PurgeExpiredDeletions permanently removes soft-deleted records whose
	// deletion date is older than the retention window. Returns the number
	// of purged rows.
	PurgeExpiredDeletions(ctx context.Context, retentionDays int) (int64, error)
}

// CurrencyRepositoryFacade combines all currency repository interfaces.
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
