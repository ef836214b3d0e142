package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fxmirror/fxmirror/internal/apperrors"
	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/fxmirror/fxmirror/internal/core/ports"
	portsrepo "github.com/fxmirror/fxmirror/internal/core/ports/repositories"
	portssvc "github.com/fxmirror/fxmirror/internal/core/ports/services"
	"github.com/fxmirror/fxmirror/internal/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseCurrency is the sentinel code all stored rates are quoted
	// against. It is never stored as a record itself.
	DefaultBaseCurrency = "EUR"

	// DefaultRetentionDays is how long soft-deleted records are kept before
	// the purge step removes them for good.
	DefaultRetentionDays = 30
)

// reconcileKey is the single singleflight key guarding reconciliation;
// the cache holds one global entry, so one key suffices.
const reconcileKey = "active-rate-set"

// CurrencyServiceOptions tune the service. Zero values fall back to defaults.
type CurrencyServiceOptions struct {
	BaseCurrency  string
	RetentionDays int
	Now           func() time.Time
}

// CurrencyService owns the rate reconciliation and caching engine: it decides
// when the store is stale against the upstream feed, merges feed data without
// clobbering manual edits, memoizes the resulting rate set and performs
// conversions against it.
type CurrencyService struct {
	repo          portsrepo.CurrencyRepositoryFacade
	feed          ports.RateFeed
	cache         ports.RateSetCache
	base          string
	retentionDays int
	now           func() time.Time

	reconciling singleflight.Group

	// cacheMu guards the invalidation counter together with cache writes so
	// a reconciliation that overlapped a mutation can never repopulate the
	// cache with pre-mutation data.
	cacheMu       sync.Mutex
	invalidations uint64
}

var _ portssvc.CurrencySvcFacade = (*CurrencyService)(nil)

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(
	repo portsrepo.CurrencyRepositoryFacade,
	feed ports.RateFeed,
	cache ports.RateSetCache,
	opts CurrencyServiceOptions,
) *CurrencyService {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = DefaultBaseCurrency
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = DefaultRetentionDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CurrencyService{
		repo:          repo,
		feed:          feed,
		cache:         cache,
		base:          strings.ToUpper(opts.BaseCurrency),
		retentionDays: opts.RetentionDays,
		now:           opts.Now,
	}
}

// ListCurrencies returns the reconciled active rate set, served from cache
// when fresh.
func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return s.getOrReconcile(ctx)
}

// GetCurrencyByCode returns one active currency from the reconciled set.
// Lookup is case-insensitive; soft-deleted records are never visible here.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	code = normalizeCode(code)
	set, err := s.getOrReconcile(ctx)
	if err != nil {
		return nil, err
	}
	for i := range set {
		if set[i].Code == code {
			found := set[i]
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, code)
}

// UpdateCurrency applies a manual edit to an active record. The store marks
// the record manually edited, which shields it from reconciliation from then
// on. The cache is invalidated before the call returns so the next read
// observes the edit.
func (s *CurrencyService) UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest) (*domain.Currency, error) {
	code = normalizeCode(code)

	patch := portsrepo.CurrencyPatch{}
	if req.Rate != nil {
		if req.Rate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: rate must be positive", apperrors.ErrValidation)
		}
		patch.Rate = req.Rate
	}
	if req.AsOfDate != nil {
		asOf, err := time.Parse(domain.DateLayout, *req.AsOfDate)
		if err != nil {
			return nil, fmt.Errorf("%w: asOfDate must be %s formatted", apperrors.ErrValidation, domain.DateLayout)
		}
		patch.AsOfDate = &asOf
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no updatable fields provided", apperrors.ErrValidation)
	}

	updated, err := s.repo.UpdateFields(ctx, code, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update currency %s: %w", code, err)
	}

	s.invalidate()
	return updated, nil
}

// DeleteCurrency soft-deletes an active record; it stays in the store for the
// retention window but disappears from the active set immediately.
func (s *CurrencyService) DeleteCurrency(ctx context.Context, code string) error {
	code = normalizeCode(code)

	if err := s.repo.SoftDelete(ctx, code); err != nil {
		return fmt.Errorf("failed to delete currency %s: %w", code, err)
	}

	s.invalidate()
	return nil
}

// getOrReconcile serves the cached rate set when fresh; on a miss it runs one
// reconciliation and caches the result. Concurrent misses coalesce into a
// single reconciliation via singleflight. A mutation landing while a
// reconciliation is in flight marks that flight stale: its result is neither
// cached nor returned, and reconciliation runs again, so a read that starts
// after a mutation completes always observes it. Failed reconciliations are
// never cached.
func (s *CurrencyService) getOrReconcile(ctx context.Context) ([]domain.Currency, error) {
	for {
		if set, ok := s.cache.Get(); ok {
			return set, nil
		}

		v, err, _ := s.reconciling.Do(reconcileKey, func() (interface{}, error) {
			gen := s.generation()
			set, err := s.refresh(ctx)
			if err != nil {
				return nil, err
			}
			return reconcileResult{set: set, stale: !s.commit(set, gen)}, nil
		})
		if err != nil {
			return nil, err
		}
		if res := v.(reconcileResult); !res.stale {
			return res.set, nil
		}
	}
}

// reconcileResult carries one reconciliation outcome through singleflight.
// stale means an invalidation landed mid-flight and the set was discarded.
type reconcileResult struct {
	set   []domain.Currency
	stale bool
}

func (s *CurrencyService) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.invalidations
}

// commit stores the set unless an invalidation happened since gen was read,
// and reports whether the store took place.
func (s *CurrencyService) commit(set []domain.Currency, gen uint64) bool {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.invalidations != gen {
		return false
	}
	s.cache.Set(set)
	return true
}

// invalidate drops the cached set and bumps the invalidation counter so any
// in-flight reconciliation is marked stale.
func (s *CurrencyService) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.invalidations++
	s.cache.Invalidate()
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
