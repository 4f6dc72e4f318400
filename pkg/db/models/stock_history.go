package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// StockHistory is the append-only audit trail of every ingredient stock
// movement: usage on settlement, purchase/adjustment on manual updates.
type StockHistory struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IngredientID uuid.UUID             `gorm:"column:ingredient_id;type:uuid;not null;index"`
	ChangeType   enums.StockChangeType `gorm:"column:change_type;type:text;not null"`
	Quantity     decimal.Decimal       `gorm:"column:quantity;type:numeric(12,3);not null"`
	Note         *string               `gorm:"column:note"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (StockHistory) TableName() string { return "stock_history" }
