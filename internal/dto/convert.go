package dto

import "github.com/shopspring/decimal"

// ConvertRequest defines a currency conversion request. Codes are accepted
// case-insensitively and normalized to uppercase by the service. Amount is a
// pointer so a missing field fails the required rule instead of binding as a
// zero decimal.
type ConvertRequest struct {
	FromCurrency string           `json:"fromCurrency" binding:"required,currencycode"`
	ToCurrency   string           `json:"toCurrency" binding:"required,currencycode"`
	Amount       *decimal.Decimal `json:"amount" binding:"required"`
}

// ConvertResponse carries the conversion result as a fixed-point decimal
// string with exactly 7 fractional digits.
type ConvertResponse struct {
	Result string `json:"result"`
}
