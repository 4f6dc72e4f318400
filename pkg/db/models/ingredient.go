package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is a stocked raw material. Stock may go negative when oversold;
// shortfalls surface through the low-stock report rather than blocking sales.
type Ingredient struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null;uniqueIndex"`
	Unit         string          `gorm:"column:unit;not null"`
	CurrentStock decimal.Decimal `gorm:"column:current_stock;type:numeric(12,3);not null"`
	CostPerUnit  decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,4);not null"`
	ReorderLevel decimal.Decimal `gorm:"column:reorder_level;type:numeric(12,3);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
