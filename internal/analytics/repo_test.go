package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
)

func setupAnalyticsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_method TEXT NOT NULL,
  delivery_address TEXT,
  pickup_time TEXT,
  phone TEXT NOT NULL DEFAULT '',
  special_instructions TEXT,
  subtotal_cents INTEGER NOT NULL,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  prep_minutes INTEGER NOT NULL,
  expected_ready_at DATETIME NOT NULL,
  settled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT,
  item_name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertPendingOrder(t *testing.T, db *gorm.DB, number string, lines []models.OrderItem) {
	t.Helper()

	order := models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		UserID:          uuid.New(),
		Status:          enums.OrderStatusPending,
		DeliveryMethod:  enums.DeliveryMethodPickup,
		SubtotalCents:   0,
		TotalCents:      0,
		PrepMinutes:     20,
		ExpectedReadyAt: time.Now().UTC(),
	}
	for i := range lines {
		lines[i].ID = uuid.New()
	}
	order.Items = lines
	require.NoError(t, db.Create(&order).Error)
}

func TestTopSellingItemsCountsEveryOrderLine(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	repo := NewRepository(db)

	// None of these orders is settled; the ranking still counts them.
	insertPendingOrder(t, db, "QP-20260831120000-001", []models.OrderItem{
		{ItemName: "Burger", UnitPriceCents: 999, Quantity: 2, TotalCents: 1998},
	})
	insertPendingOrder(t, db, "QP-20260831120000-002", []models.OrderItem{
		{ItemName: "Burger", UnitPriceCents: 999, Quantity: 1, TotalCents: 999},
	})
	insertPendingOrder(t, db, "QP-20260831120000-003", []models.OrderItem{
		{ItemName: "Pizza", UnitPriceCents: 1299, Quantity: 3, TotalCents: 3897},
	})

	rows, err := repo.TopSellingItems(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Burger", rows[0].ItemName)
	assert.Equal(t, 3, rows[0].TotalSold)
	assert.Equal(t, 2997, rows[0].TotalRevenueCents)

	assert.Equal(t, "Pizza", rows[1].ItemName)
	assert.Equal(t, 3, rows[1].TotalSold)
}

func TestTopSellingItemsRespectsLimit(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	repo := NewRepository(db)

	insertPendingOrder(t, db, "QP-20260831120000-001", []models.OrderItem{
		{ItemName: "Burger", UnitPriceCents: 999, Quantity: 4, TotalCents: 3996},
		{ItemName: "Pizza", UnitPriceCents: 1299, Quantity: 2, TotalCents: 2598},
		{ItemName: "Salad", UnitPriceCents: 599, Quantity: 1, TotalCents: 599},
	})

	rows, err := repo.TopSellingItems(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Burger", rows[0].ItemName)
	assert.Equal(t, "Pizza", rows[1].ItemName)
}
