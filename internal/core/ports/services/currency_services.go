package services

import (
	"context"

	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/fxmirror/fxmirror/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data.
type CurrencyReaderSvc interface {
	// ListCurrencies retrieves the reconciled active rate set.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// GetCurrencyByCode retrieves one active currency, case-insensitively.
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// Convert converts an amount between two currencies at the current rates.
	Convert(ctx context.Context, req dto.ConvertRequest) (*dto.ConvertResponse, error)
}

// CurrencyWriterSvc defines write operations for currency data.
type CurrencyWriterSvc interface {
	// UpdateCurrency applies a manual edit to an active currency.
	UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest) (*domain.Currency, error)

	// DeleteCurrency soft-deletes an active currency.
	DeleteCurrency(ctx context.Context, code string) error
}

// CurrencySvcFacade combines all currency service interfaces.
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
