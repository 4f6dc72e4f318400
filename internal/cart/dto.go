package cart

import (
	"github.com/google/uuid"
)

// AddItemRequest puts an item in the cart or tops up an existing line.
type AddItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
}

// AdjustItemRequest changes a line quantity by a signed delta.
type AdjustItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// LineDTO is one cart entry priced against the live catalog.
type LineDTO struct {
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Name           string    `json:"name"`
	Emoji          string    `json:"emoji"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	TotalCents     int       `json:"total_cents"`
	Available      bool      `json:"available"`
}

// CartDTO is the customer's current cart with a live subtotal.
type CartDTO struct {
	Items         []LineDTO `json:"items"`
	SubtotalCents int       `json:"subtotal_cents"`
	ItemCount     int       `json:"item_count"`
}
