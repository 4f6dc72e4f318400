package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeItem maps one menu item to the quantity of one ingredient consumed
// per unit sold. Static after seeding.
type RecipeItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID   uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null;uniqueIndex:idx_recipe_item_pair"`
	IngredientID uuid.UUID       `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:idx_recipe_item_pair"`
	QuantityUsed decimal.Decimal `gorm:"column:quantity_used;type:numeric(12,3);not null"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
