package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// PopularRow is one best-seller row, summed over order lines by item name.
type PopularRow struct {
	ItemName          string
	TotalSold         int
	TotalRevenueCents int
}

// Repository exposes the read-side queries behind the analytics views.
type Repository interface {
	CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)
	TopSellingItems(ctx context.Context, limit int) ([]PopularRow, error)
	ItemsWithRecipes(ctx context.Context) ([]models.MenuItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	type statusCount struct {
		Status enums.OrderStatus
		Count  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// TopSellingItems counts every order line regardless of order status, so
// the ranking reflects demand, not just settled sales.
func (r *repository) TopSellingItems(ctx context.Context, limit int) ([]PopularRow, error) {
	var rows []PopularRow
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("item_name, SUM(quantity) AS total_sold, SUM(total_cents) AS total_revenue_cents").
		Group("item_name").
		Order("SUM(quantity) DESC, item_name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ItemsWithRecipes(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Preload("Recipe.Ingredient").
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
