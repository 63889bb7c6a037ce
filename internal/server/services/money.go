package services

import (
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(12,2).
const moneyScale = 2

var moneyLimit = decimal.New(1, 10)

// checkMoney rejects amounts the money columns would round or overflow.
func checkMoney(field string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return common.Validationf("%s must not be negative", field)
	case !d.Equal(d.Truncate(moneyScale)):
		return common.Validationf("%s must have at most %d decimal places", field, moneyScale)
	case d.GreaterThanOrEqual(moneyLimit):
		return common.Validationf("%s must be less than %s", field, moneyLimit)
	}
	return nil
}
