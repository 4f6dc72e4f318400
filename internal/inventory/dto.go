package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// AdjustStockRequest records a manual stock movement. Usage rows are written
// only by order settlement, so only purchase and adjustment are accepted here.
type AdjustStockRequest struct {
	ChangeType string          `json:"change_type" validate:"required,oneof=purchase adjustment"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
	Note       *string         `json:"note,omitempty" validate:"omitempty,max=500"`
}

// IngredientDTO is the inventory view of one stocked ingredient.
type IngredientDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	LowStock     bool            `json:"low_stock"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockMovementDTO is one row of the stock audit trail.
type StockMovementDTO struct {
	ID             uuid.UUID             `json:"id"`
	IngredientID   uuid.UUID             `json:"ingredient_id"`
	IngredientName string                `json:"ingredient_name,omitempty"`
	ChangeType     enums.StockChangeType `json:"change_type"`
	Quantity       decimal.Decimal       `json:"quantity"`
	Note           *string               `json:"note,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

func ingredientFromModel(ingredient *models.Ingredient) *IngredientDTO {
	if ingredient == nil {
		return nil
	}
	return &IngredientDTO{
		ID:           ingredient.ID,
		Name:         ingredient.Name,
		Unit:         ingredient.Unit,
		CurrentStock: ingredient.CurrentStock,
		CostPerUnit:  ingredient.CostPerUnit,
		ReorderLevel: ingredient.ReorderLevel,
		LowStock:     ingredient.CurrentStock.LessThanOrEqual(ingredient.ReorderLevel),
		UpdatedAt:    ingredient.UpdatedAt,
	}
}

func ingredientsFromModels(ingredients []models.Ingredient) []IngredientDTO {
	out := make([]IngredientDTO, 0, len(ingredients))
	for i := range ingredients {
		out = append(out, *ingredientFromModel(&ingredients[i]))
	}
	return out
}

func movementFromModel(row *models.StockHistory, ingredientName string) StockMovementDTO {
	return StockMovementDTO{
		ID:             row.ID,
		IngredientID:   row.IngredientID,
		IngredientName: ingredientName,
		ChangeType:     row.ChangeType,
		Quantity:       row.Quantity,
		Note:           row.Note,
		CreatedAt:      row.CreatedAt,
	}
}
