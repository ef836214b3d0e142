package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fxmirror/fxmirror/internal/core/domain"
	portsrepo "github.com/fxmirror/fxmirror/internal/core/ports/repositories"
)

// refresh produces a consistent active rate set reflecting the more
// authoritative of store and upstream, per record:
//
//  1. purge soft-deletions older than the retention window
//  2. empty store: bootstrap every upstream entry as a new record
//  3. no comparable reference date (every record manually edited): return the
//     store as-is without fetching
//  4. store date equals upstream date: return the store as-is, zero writes
//  5. dates differ: overwrite rate/asOfDate of eligible records from upstream
//     in one transaction, then return the refreshed set
//
// Any upstream failure aborts the attempt before a single store write.
func (s *CurrencyService) refresh(ctx context.Context) ([]domain.Currency, error) {
	if _, err := s.repo.PurgeExpiredDeletions(ctx, s.retentionDays); err != nil {
		return nil, fmt.Errorf("failed to purge expired deletions: %w", err)
	}

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active currencies: %w", err)
	}

	if len(active) == 0 {
		return s.bootstrap(ctx)
	}

	refDate, ok := referenceDate(active)
	if !ok {
		return active, nil
	}

	snapshot, err := s.feed.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if sameDate(refDate, snapshot.AsOf) {
		return active, nil
	}

	updates := PlanRateUpdates(active, snapshot)
	if len(updates) > 0 {
		if err := s.repo.BulkUpdateRates(ctx, updates); err != nil {
			return nil, fmt.Errorf("failed to apply rate updates: %w", err)
		}
	}

	refreshed, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list refreshed currencies: %w", err)
	}
	return refreshed, nil
}

// bootstrap treats the upstream snapshot as the sole source and creates one
// record per entry. Only an empty store ever creates records; codes appearing
// upstream later are deliberately not onboarded.
func (s *CurrencyService) bootstrap(ctx context.Context) ([]domain.Currency, error) {
	snapshot, err := s.feed.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	records := recordsFromSnapshot(snapshot)
	if len(records) == 0 {
		return []domain.Currency{}, nil
	}

	if err := s.repo.CreateMany(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to create currencies from snapshot: %w", err)
	}

	created, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bootstrapped currencies: %w", err)
	}
	return created, nil
}

// referenceDate returns the as-of date of the first active record without a
// manual edit. Non-edited records are expected to share one date, so the
// first found is authoritative. ok is false when every record carries a
// manual edit, meaning the store has no date comparable to the feed.
func referenceDate(records []domain.Currency) (time.Time, bool) {
	for _, r := range records {
		if !r.ManuallyEdited {
			return r.AsOfDate, true
		}
	}
	return time.Time{}, false
}

// PlanRateUpdates is the pure merge step: given the active store records and
// an upstream snapshot, it selects every record that is not manually edited
// and whose code appears in the snapshot, and yields its new rate and as-of
// date. Manually edited records are immune regardless of snapshot content,
// and snapshot codes missing from the store yield nothing.
func PlanRateUpdates(records []domain.Currency, snapshot domain.RateSnapshot) []portsrepo.RateUpdate {
	updates := make([]portsrepo.RateUpdate, 0, len(records))
	for _, r := range records {
		if r.ManuallyEdited || r.Deleted() {
			continue
		}
		rate, ok := snapshot.Rates[r.Code]
		if !ok {
			continue
		}
		updates = append(updates, portsrepo.RateUpdate{
			Code:     r.Code,
			Rate:     rate,
			AsOfDate: snapshot.AsOf,
		})
	}
	return updates
}

// recordsFromSnapshot builds fresh records from an upstream snapshot in
// deterministic (alphabetical) order.
func recordsFromSnapshot(snapshot domain.RateSnapshot) []domain.Currency {
	codes := make([]string, 0, len(snapshot.Rates))
	for code := range snapshot.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	records := make([]domain.Currency, 0, len(codes))
	for _, code := range codes {
		records = append(records, domain.Currency{
			Code:           code,
			Rate:           snapshot.Rates[code],
			AsOfDate:       snapshot.AsOf,
			ManuallyEdited: false,
		})
	}
	return records
}

func sameDate(a, b time.Time) bool {
	return a.Format(domain.DateLayout) == b.Format(domain.DateLayout)
}
