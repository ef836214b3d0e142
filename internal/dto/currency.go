package dto

import (
	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateCurrencyRequest defines the caller-editable fields of a currency.
// The code itself is immutable; any accepted update marks the record as
// manually edited and shields it from automatic reconciliation.
type UpdateCurrencyRequest struct {
	Rate     *decimal.Decimal `json:"rate" binding:"omitempty"`
	AsOfDate *string          `json:"asOfDate" binding:"omitempty,datetime=2006-01-02"`
}

// CurrencyResponse defines the data returned for a currency record.
type CurrencyResponse struct {
	ID             int64   `json:"id"`
	Code           string  `json:"code"`
	Rate           string  `json:"rate"`
	AsOfDate       string  `json:"asOfDate"`
	DeletedAt      *string `json:"deletedAt"`
	ManuallyEdited bool    `json:"manuallyEdited"`
}

// ToCurrencyResponse converts a domain.Currency to its response DTO.
// Rates render with exactly 7 fractional digits, matching storage precision.
func ToCurrencyResponse(c *domain.Currency) CurrencyResponse {
	resp := CurrencyResponse{
		ID:             c.ID,
		Code:           c.Code,
		Rate:           c.Rate.StringFixed(7),
		AsOfDate:       c.AsOfDate.Format(domain.DateLayout),
		ManuallyEdited: c.ManuallyEdited,
	}
	if c.DeletedAt != nil {
		deleted := c.DeletedAt.Format(domain.DateLayout)
		resp.DeletedAt = &deleted
	}
	return resp
}

// ToListCurrencyResponse converts a slice of domain currencies preserving order.
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i])
	}
	return res
}
