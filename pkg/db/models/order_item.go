package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots one cart line at checkout time. Name and unit price
// are frozen here so later catalog edits never change a placed order.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID     *uuid.UUID `gorm:"column:menu_item_id;type:uuid"`
	ItemName       string     `gorm:"column:item_name;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	TotalCents     int        `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
