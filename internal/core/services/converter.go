package services

import (
	"context"
	"fmt"

	"github.com/fxmirror/fxmirror/internal/apperrors"
	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/fxmirror/fxmirror/internal/dto"
	"github.com/shopspring/decimal"
)

// Convert converts an amount between two currencies using the reconciled
// active rate set. The base currency converts at rate 1 by definition and
// needs no record lookup. The result carries exactly 7 fractional digits.
func (s *CurrencyService) Convert(ctx context.Context, req dto.ConvertRequest) (*dto.ConvertResponse, error) {
	from := normalizeCode(req.FromCurrency)
	to := normalizeCode(req.ToCurrency)

	if from == to {
		return nil, fmt.Errorf("%w: identical source and target currencies", apperrors.ErrValidation)
	}
	if req.Amount == nil {
		return nil, fmt.Errorf("%w: amount is required", apperrors.ErrValidation)
	}

	set, err := s.getOrReconcile(ctx)
	if err != nil {
		return nil, err
	}

	result, err := convertAmount(set, s.base, from, to, *req.Amount)
	if err != nil {
		return nil, err
	}

	return &dto.ConvertResponse{Result: result.StringFixed(7)}, nil
}

// convertAmount applies the rate arithmetic against an already materialized
// rate set. Each record maps its code to units of that currency per 1 base
// unit, so:
//
//	base -> X: rate(X) * amount
//	X -> base: amount / rate(X)
//	X -> Y:    rate(Y) / rate(X) * amount
func convertAmount(records []domain.Currency, base, from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case from == base:
		toRate, err := rateFor(records, to)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return toRate.Mul(amount), nil

	case to == base:
		fromRate, err := rateFor(records, from)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return amount.Div(fromRate), nil

	default:
		fromRate, err := rateFor(records, from)
		if err != nil {
			return decimal.Decimal{}, err
		}
		toRate, err := rateFor(records, to)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return toRate.Div(fromRate).Mul(amount), nil
	}
}

func rateFor(records []domain.Currency, code string) (decimal.Decimal, error) {
	for _, r := range records {
		if r.Code == code {
			if r.Rate.LessThanOrEqual(decimal.Zero) {
				return decimal.Decimal{}, fmt.Errorf("%w: currency %s has a non-positive rate", apperrors.ErrValidation, code)
			}
			return r.Rate, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, code)
}
