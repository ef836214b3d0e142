package mapping

import (
	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/fxmirror/fxmirror/internal/models"
)

// ToDomainCurrency converts a database row to the domain representation.
func ToDomainCurrency(m models.Currency) domain.Currency {
	return domain.Currency{
		ID:             m.ID,
		Code:           m.CurrencyCode,
		Rate:           m.Rate,
		AsOfDate:       m.AsOfDate,
		DeletedAt:      m.DeletedAt,
		ManuallyEdited: m.ManuallyEdited,
	}
}

// ToModelCurrency converts a domain currency to its database row shape.
func ToModelCurrency(d domain.Currency) models.Currency {
	return models.Currency{
		ID:             d.ID,
		CurrencyCode:   d.Code,
		Rate:           d.Rate,
		AsOfDate:       d.AsOfDate,
		DeletedAt:      d.DeletedAt,
		ManuallyEdited: d.ManuallyEdited,
	}
}

// ToDomainCurrencySlice converts a slice of rows preserving order.
func ToDomainCurrencySlice(ms []models.Currency) []domain.Currency {
	out := make([]domain.Currency, len(ms))
	for i, m := range ms {
		out[i] = ToDomainCurrency(m)
	}
	return out
}
