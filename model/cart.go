package models

import "time"

// CartItem is a product snapshot captured at add-to-cart time. The
// snapshot is deliberately not refreshed while the item sits in the
// cart; availability is re-checked against the backend at confirmation.
type CartItem struct {
	Product Product   `json:"product"`
	AddedAt time.Time `json:"added_at"`
}

// RentalRecord is a committed rental. Created only after the backend
// accepted the sale; never mutated afterwards.
type RentalRecord struct {
	ID          string    `json:"id"`
	ProductID   int64     `json:"product_id"`
	BackendID   int64     `json:"backend_id"`
	Total       float64   `json:"total"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
