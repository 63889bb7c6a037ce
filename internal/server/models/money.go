package models

import "github.com/shopspring/decimal"

// Money fields are JSON numbers ("price":9.99). decimal writes the exact
// digits, so no float rounding is involved.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
