package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// Order is created from a cart snapshot at checkout. Line items are
// immutable once written; SettledAt gates inventory settlement to at
// most one run per order.
type Order struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string               `gorm:"column:order_number;not null;uniqueIndex"`
	UserID              uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Status              enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	DeliveryMethod      enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null"`
	DeliveryAddress     *string              `gorm:"column:delivery_address"`
	PickupTime          *string              `gorm:"column:pickup_time"`
	Phone               string               `gorm:"column:phone;not null;default:''"`
	SpecialInstructions *string              `gorm:"column:special_instructions"`
	SubtotalCents       int                  `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeCents    int                  `gorm:"column:delivery_fee_cents;not null;default:0"`
	TotalCents          int                  `gorm:"column:total_cents;not null"`
	PrepMinutes         int                  `gorm:"column:prep_minutes;not null"`
	ExpectedReadyAt     time.Time            `gorm:"column:expected_ready_at;not null"`
	SettledAt           *time.Time           `gorm:"column:settled_at"`
	Items               []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory       []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
