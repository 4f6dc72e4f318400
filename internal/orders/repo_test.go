package orders

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
	"github.com/quickplate/quickplate-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
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
);`, `
CREATE TABLE order_status_history (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  note TEXT,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertOrder(t *testing.T, repo Repository, userID uuid.UUID, number string, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		DeliveryMethod:  enums.DeliveryMethodPickup,
		Phone:           "555-0100",
		SubtotalCents:   2597,
		TotalCents:      2597,
		PrepMinutes:     20,
		ExpectedReadyAt: createdAt.Add(20 * time.Minute),
		CreatedAt:       createdAt,
		Items: []models.OrderItem{
			{ID: uuid.New(), ItemName: "Classic Burger", UnitPriceCents: 999, Quantity: 2, TotalCents: 1998},
			{ID: uuid.New(), ItemName: "Garden Salad", UnitPriceCents: 599, Quantity: 1, TotalCents: 599},
		},
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	userID := uuid.New()

	created := insertOrder(t, repo, userID, "QP-20260831120000-001", time.Now().UTC())

	note := "Order received"
	require.NoError(t, repo.AppendStatusHistory(context.Background(), &models.OrderStatusHistory{
		ID:      uuid.New(),
		OrderID: created.ID,
		Status:  enums.OrderStatusPending,
		Note:    &note,
	}))

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.OrderNumber, found.OrderNumber)
	assert.Equal(t, userID, found.UserID)
	assert.Len(t, found.Items, 2)
	require.Len(t, found.StatusHistory, 1)
	assert.Equal(t, enums.OrderStatusPending, found.StatusHistory[0].Status)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByUserKeysetPagination(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	userID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	insertOrder(t, repo, userID, "QP-20260831120000-001", base.Add(-2*time.Hour))
	insertOrder(t, repo, userID, "QP-20260831120000-002", base.Add(-1*time.Hour))
	newest := insertOrder(t, repo, userID, "QP-20260831120000-003", base)
	insertOrder(t, repo, uuid.New(), "QP-20260831120000-004", base)

	page, err := repo.ListByUser(context.Background(), userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, newest.ID, page[0].ID)

	cursor := &pagination.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	rest, err := repo.ListByUser(context.Background(), userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "QP-20260831120000-001", rest[0].OrderNumber)
}

func TestRepositoryListActiveSkipsTerminalOrders(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	userID := uuid.New()
	base := time.Now().UTC()

	open := insertOrder(t, repo, userID, "QP-20260831120000-001", base.Add(-time.Minute))
	done := insertOrder(t, repo, userID, "QP-20260831120000-002", base)
	require.NoError(t, repo.UpdateStatus(context.Background(), done.ID, enums.OrderStatusCancelled))

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].ID)
}

func TestRepositoryMarkSettledIsIdempotent(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := insertOrder(t, repo, uuid.New(), "QP-20260831120000-001", time.Now().UTC())

	first := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.MarkSettled(context.Background(), order.ID, first))

	// A second call must not move the settlement timestamp.
	require.NoError(t, repo.MarkSettled(context.Background(), order.ID, first.Add(time.Hour)))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.SettledAt)
	assert.WithinDuration(t, first, *found.SettledAt, time.Second)
}
