package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is created once from a non-empty item list. Status is the only
// field that changes afterwards.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []*OrderItem    `json:"orderItems"`
	User      *Profile        `json:"user,omitempty"`
}

// OrderItem is a snapshot of the product at submission time; it does not
// follow later catalog edits.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderFilter narrows the administrative order listing. Empty fields do not
// filter. Ascending sorts oldest first.
type OrderFilter struct {
	Status    string
	Search    string
	Ascending bool
}
