package ports

import "github.com/fxmirror/fxmirror/internal/core/domain"

// RateSetCache memoizes the reconciled active rate set as a single
// process-wide entry with a time-to-live. The cached slice is a read-only
// snapshot; callers must not mutate it.
type RateSetCache interface {
	// Get returns the cached set and whether a fresh entry was present.
	Get() ([]domain.Currency, bool)

	// Set stores the set for the configured time-to-live.
	Set(currencies []domain.Currency)

	// Invalidate unconditionally drops the cached set.
	Invalidate()
}
