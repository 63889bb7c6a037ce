package models

// Cart is the per-user collection of selected products. A user owns at most
// one cart.
type Cart struct {
	ID     int64       `json:"id"`
	UserID int64       `json:"userId"`
	Items  []*CartItem `json:"items"`
}

// CartItem is unique per (CartID, ProductID); Quantity is at least 1.
type CartItem struct {
	ID        int64    `json:"id"`
	CartID    int64    `json:"cartId"`
	ProductID int64    `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}
