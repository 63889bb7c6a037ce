package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Products    []*Product `json:"products,omitempty"`
}

// Product is a catalog entry. Image is an opaque URL returned by the
// object store.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	CategoryID  int64           `json:"categoryId"`
	CreatedAt   time.Time       `json:"createdAt"`
}
