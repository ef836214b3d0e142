package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxmirror/fxmirror/internal/apperrors"
	"github.com/fxmirror/fxmirror/internal/core/domain"
	portsrepo "github.com/fxmirror/fxmirror/internal/core/ports/repositories"
	"github.com/fxmirror/fxmirror/internal/models"
	"github.com/fxmirror/fxmirror/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// PgxCurrencyRepository implements the currency store contract using pgxpool.
// Active-code uniqueness is enforced by a partial unique index over
// non-deleted rows, so a soft-deleted code can be recreated after purge.
type PgxCurrencyRepository struct {
	db *pgxpool.Pool
}

// NewCurrencyRepository creates a new repository for currency data.
func NewCurrencyRepository(db *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{db: db}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

// ListActive retrieves all non-deleted currencies in creation order.
func (r *PgxCurrencyRepository) ListActive(ctx context.Context) ([]domain.Currency, error) {
	query := `
		SELECT id, currency_code, rate, as_of_date, deleted_at, manually_edited
		FROM currencies
		WHERE deleted_at IS NULL
		ORDER BY id;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active currencies: %w", err)
	}
	defer rows.Close()

	modelCurrencies, err := pgx.CollectRows(rows, scanCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to scan active currencies: %w", err)
	}

	return mapping.ToDomainCurrencySlice(modelCurrencies), nil
}

// CreateMany inserts the given currencies inside one transaction. A code
// collision with an existing active row fails the whole batch.
func (r *PgxCurrencyRepository) CreateMany(ctx context.Context, currencies []domain.Currency) error {
	if len(currencies) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO currencies (currency_code, rate, as_of_date, manually_edited)
		VALUES ($1, $2, $3, $4);
	`
	for _, c := range currencies {
		m := mapping.ToModelCurrency(c)
		if _, err := tx.Exec(ctx, query, m.CurrencyCode, m.Rate, m.AsOfDate, m.ManuallyEdited); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return fmt.Errorf("%w: currency %s", apperrors.ErrDuplicate, m.CurrencyCode)
			}
			return fmt.Errorf("failed to insert currency %s: %w", m.CurrencyCode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit currency batch: %w", err)
	}
	return nil
}

// UpdateFields applies the non-nil patch fields to an active row and marks it
// manually edited. Nil fields keep their stored value via COALESCE.
func (r *PgxCurrencyRepository) UpdateFields(ctx context.Context, code string, patch portsrepo.CurrencyPatch) (*domain.Currency, error) {
	query := `
		UPDATE currencies
		SET rate            = COALESCE($2, rate),
		    as_of_date      = COALESCE($3, as_of_date),
		    manually_edited = TRUE
		WHERE currency_code = $1 AND deleted_at IS NULL
		RETURNING id, currency_code, rate, as_of_date, deleted_at, manually_edited;
	`
	var m models.Currency
	err := r.db.QueryRow(ctx, query, code, patch.Rate, patch.AsOfDate).Scan(
		&m.ID,
		&m.CurrencyCode,
		&m.Rate,
		&m.AsOfDate,
		&m.DeletedAt,
		&m.ManuallyEdited,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update currency %s: %w", code, err)
	}

	domainCurr := mapping.ToDomainCurrency(m)
	return &domainCurr, nil
}

// BulkUpdateRates applies reconciler rate refreshes in a single transaction.
// The WHERE clause re-checks eligibility so a record edited between plan and
// apply is skipped rather than clobbered.
func (r *PgxCurrencyRepository) BulkUpdateRates(ctx context.Context, updates []portsrepo.RateUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE currencies
		SET rate = $2, as_of_date = $3
		WHERE currency_code = $1
		  AND deleted_at IS NULL
		  AND manually_edited = FALSE;
	`
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.Code, u.Rate, u.AsOfDate)
	}

	results := tx.SendBatch(ctx, batch)
	for range updates {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to apply rate update batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close rate update batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rate update batch: %w", err)
	}
	return nil
}

// SoftDelete marks an active row deleted as of today and manually edited.
func (r *PgxCurrencyRepository) SoftDelete(ctx context.Context, code string) error {
	query := `
		UPDATE currencies
		SET deleted_at = CURRENT_DATE, manually_edited = TRUE
		WHERE currency_code = $1 AND deleted_at IS NULL;
	`
	tag, err := r.db.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to soft-delete currency %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// PurgeExpiredDeletions hard-deletes rows soft-deleted longer ago than the
// retention window.
func (r *PgxCurrencyRepository) PurgeExpiredDeletions(ctx context.Context, retentionDays int) (int64, error) {
	query := `
		DELETE FROM currencies
		WHERE deleted_at IS NOT NULL
		  AND deleted_at <= CURRENT_DATE - $1::int;
	`
	tag, err := r.db.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired deletions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanCurrency(row pgx.CollectableRow) (models.Currency, error) {
	var m models.Currency
	err := row.Scan(
		&m.ID,
		&m.CurrencyCode,
		&m.Rate,
		&m.AsOfDate,
		&m.DeletedAt,
		&m.ManuallyEdited,
	)
	return m, err
}
