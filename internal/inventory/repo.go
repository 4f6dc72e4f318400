package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
)

// Repository exposes ingredient ledger persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	FindIngredientByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ListLowStock(ctx context.Context) ([]models.Ingredient, error)
	AddToStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (int64, error)
	AppendStockHistory(ctx context.Context, row *models.StockHistory) error
	ListStockHistory(ctx context.Context, ingredientID *uuid.UUID, since time.Time) ([]models.StockHistory, error)
	RecipesForMenuItems(ctx context.Context, menuItemIDs []uuid.UUID) ([]models.RecipeItem, error)
	IncrementSales(ctx context.Context, menuItemID uuid.UUID, soldDelta, revenueCentsDelta int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *repository) FindIngredientByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := r.db.WithContext(ctx).
		Where("current_stock <= reorder_level").
		Order("name ASC").
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *repository) AddToStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ?", id).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *repository) AppendStockHistory(ctx context.Context, row *models.StockHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListStockHistory(ctx context.Context, ingredientID *uuid.UUID, since time.Time) ([]models.StockHistory, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockHistory{}).
		Where("created_at >= ?", since).
		Order("created_at DESC")
	if ingredientID != nil {
		query = query.Where("ingredient_id = ?", *ingredientID)
	}

	var rows []models.StockHistory
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RecipesForMenuItems(ctx context.Context, menuItemIDs []uuid.UUID) ([]models.RecipeItem, error) {
	if len(menuItemIDs) == 0 {
		return nil, nil
	}
	var rows []models.RecipeItem
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("menu_item_id IN ?", menuItemIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) IncrementSales(ctx context.Context, menuItemID uuid.UUID, soldDelta, revenueCentsDelta int) error {
	return r.db.WithContext(ctx).
		Model(&models.MenuItem{}).
		Where("id = ?", menuItemID).
		Updates(map[string]any{
			"total_sold":          gorm.Expr("total_sold + ?", soldDelta),
			"total_revenue_cents": gorm.Expr("total_revenue_cents + ?", revenueCentsDelta),
		}).Error
}
