package orders

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/internal/cart"
	"github.com/quickplate/quickplate-backend/pkg/config"
	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	pkgerrors "github.com/quickplate/quickplate-backend/pkg/errors"
	"github.com/quickplate/quickplate-backend/pkg/pagination"
)

var testOrderingCfg = config.OrderingConfig{
	OrderNumberPrefix:  "QP",
	DeliveryFeeCents:   299,
	PickupPrepMinMins:  15,
	PickupPrepMaxMins:  30,
	DeliverPrepMinMins: 20,
	DeliverPrepMaxMins: 40,
}

type stubRepo struct {
	orders      map[uuid.UUID]*models.Order
	history     map[uuid.UUID][]models.OrderStatusHistory
	createErrs  []error
	createCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orders:  map[uuid.UUID]*models.Order{},
		history: map[uuid.UUID][]models.OrderStatusHistory{},
	}
}

func (s *stubRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, order *models.Order) error {
	s.createCalls++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now().UTC()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	s.orders[order.ID] = order
	return nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.StatusHistory = append([]models.OrderStatusHistory(nil), s.history[id]...)
	return &copied, nil
}

func (s *stubRepo) ListByUser(_ context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		if cursor != nil && !order.CreatedAt.Before(cursor.CreatedAt) {
			continue
		}
		rows = append(rows, *order)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *stubRepo) ListActive(_ context.Context) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if !order.Status.IsTerminal() {
			rows = append(rows, *order)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) error {
	order, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (s *stubRepo) MarkSettled(_ context.Context, id uuid.UUID, at time.Time) error {
	order, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if order.SettledAt == nil {
		order.SettledAt = &at
	}
	return nil
}

func (s *stubRepo) AppendStatusHistory(_ context.Context, entry *models.OrderStatusHistory) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	s.history[entry.OrderID] = append(s.history[entry.OrderID], *entry)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCart struct {
	dto     *cart.CartDTO
	cleared int
}

func (s *stubCart) Get(context.Context, uuid.UUID) (*cart.CartDTO, error) {
	if s.dto == nil {
		return &cart.CartDTO{Items: []cart.LineDTO{}}, nil
	}
	return s.dto, nil
}

func (s *stubCart) Clear(context.Context, uuid.UUID) error {
	s.cleared++
	return nil
}

type stubSettler struct {
	calls int
	err   error
}

func (s *stubSettler) Settle(context.Context, *gorm.DB, *models.Order) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.calls++
	return true, nil
}

func fullCart() *cart.CartDTO {
	burger := uuid.New()
	salad := uuid.New()
	return &cart.CartDTO{
		Items: []cart.LineDTO{
			{MenuItemID: burger, Name: "Classic Burger", UnitPriceCents: 999, Quantity: 2, TotalCents: 1998, Available: true},
			{MenuItemID: salad, Name: "Garden Salad", UnitPriceCents: 599, Quantity: 1, TotalCents: 599, Available: true},
		},
		SubtotalCents: 2597,
		ItemCount:     3,
	}
}

func newTestService(t *testing.T, repo *stubRepo, cartStub *stubCart, settler *stubSettler) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTx{},
		Cart:     cartStub,
		Settler:  settler,
		Ordering: testOrderingCfg,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func addr(s string) *string { return &s }

func TestCheckoutDeliveryAddsFeeAndFreezesLines(t *testing.T) {
	repo := newStubRepo()
	cartStub := &stubCart{dto: fullCart()}
	svc := newTestService(t, repo, cartStub, &stubSettler{})
	userID := uuid.New()

	order, err := svc.Checkout(context.Background(), userID, CheckoutRequest{
		DeliveryMethod:  "delivery",
		DeliveryAddress: addr("12 Main St"),
		Phone:           "555-0100",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.SubtotalCents != 2597 {
		t.Fatalf("expected subtotal 2597, got %d", order.SubtotalCents)
	}
	if order.DeliveryFeeCents != 299 {
		t.Fatalf("expected delivery fee 299, got %d", order.DeliveryFeeCents)
	}
	if order.TotalCents != 2896 {
		t.Fatalf("expected total 2896, got %d", order.TotalCents)
	}
	if order.PrepMinutes < 20 || order.PrepMinutes > 40 {
		t.Fatalf("delivery prep %d outside 20..40", order.PrepMinutes)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 frozen lines, got %d", len(order.Items))
	}
	if len(order.StatusHistory) != 1 || *order.StatusHistory[0].Note != "Order received" {
		t.Fatalf("expected one 'Order received' history row, got %+v", order.StatusHistory)
	}
	if cartStub.cleared != 1 {
		t.Fatalf("expected cart cleared once, got %d", cartStub.cleared)
	}

	pattern := regexp.MustCompile(`^QP-\d{14}-\d{3}$`)
	if !pattern.MatchString(order.OrderNumber) {
		t.Fatalf("order number %q does not match expected format", order.OrderNumber)
	}
}

func TestCheckoutPickupHasNoFee(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, &stubSettler{})

	order, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod: "pickup",
		Phone:          "555-0100",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if order.DeliveryFeeCents != 0 {
		t.Fatalf("expected no fee for pickup, got %d", order.DeliveryFeeCents)
	}
	if order.TotalCents != 2597 {
		t.Fatalf("expected total 2597, got %d", order.TotalCents)
	}
	if order.PrepMinutes < 15 || order.PrepMinutes > 30 {
		t.Fatalf("pickup prep %d outside 15..30", order.PrepMinutes)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubCart{}, &stubSettler{})

	_, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod: "pickup",
		Phone:          "555-0100",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutRejectsUnavailableLine(t *testing.T) {
	dto := fullCart()
	dto.Items[1].Available = false
	svc := newTestService(t, newStubRepo(), &stubCart{dto: dto}, &stubSettler{})

	_, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod: "pickup",
		Phone:          "555-0100",
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCheckoutRequiresAddressForDelivery(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubCart{dto: fullCart()}, &stubSettler{})

	_, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod: "delivery",
		Phone:          "555-0100",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutRetriesOrderNumberCollision(t *testing.T) {
	repo := newStubRepo()
	repo.createErrs = []error{
		errors.New(`pq: duplicate key value violates unique constraint "idx_orders_order_number"`),
	}
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, &stubSettler{})

	order, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod: "pickup",
		Phone:          "555-0100",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if order == nil {
		t.Fatal("expected order after retry")
	}
	if repo.createCalls != 2 {
		t.Fatalf("expected 2 create attempts, got %d", repo.createCalls)
	}
}

func TestCheckoutRetriesCollisionUnderSQLite(t *testing.T) {
	// sqlite names the column, not the index, in its duplicate-key error.
	repo := newStubRepo()
	repo.createErrs = []error{
		errors.New("UNIQUE constraint failed: orders.order_number"),
	}
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, &stubSettler{})

	order, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod: "pickup",
		Phone:          "555-0100",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if order == nil {
		t.Fatal("expected order after retry")
	}
	if repo.createCalls != 2 {
		t.Fatalf("expected 2 create attempts, got %d", repo.createCalls)
	}
}

func TestCheckoutBurgerSodaTotals(t *testing.T) {
	sodaCart := func() *cart.CartDTO {
		return &cart.CartDTO{
			Items: []cart.LineDTO{
				{MenuItemID: uuid.New(), Name: "Burger", UnitPriceCents: 999, Quantity: 2, TotalCents: 1998, Available: true},
				{MenuItemID: uuid.New(), Name: "Soda", UnitPriceCents: 299, Quantity: 1, TotalCents: 299, Available: true},
			},
			SubtotalCents: 2297,
			ItemCount:     3,
		}
	}

	svc := newTestService(t, newStubRepo(), &stubCart{dto: sodaCart()}, &stubSettler{})
	delivered, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod:  "delivery",
		DeliveryAddress: addr("12 Main St"),
		Phone:           "555-0100",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if delivered.TotalCents != 2596 {
		t.Fatalf("expected delivery total 2596, got %d", delivered.TotalCents)
	}

	svc = newTestService(t, newStubRepo(), &stubCart{dto: sodaCart()}, &stubSettler{})
	picked, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		DeliveryMethod: "pickup",
		Phone:          "555-0100",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if picked.TotalCents != 2297 {
		t.Fatalf("expected pickup total 2297, got %d", picked.TotalCents)
	}
}

func placeOrder(t *testing.T, svc Service, userID uuid.UUID) *OrderDTO {
	t.Helper()
	order, err := svc.Checkout(context.Background(), userID, CheckoutRequest{
		DeliveryMethod: "pickup",
		Phone:          "555-0100",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	return order
}

func TestUpdateStatusWalksForwardChain(t *testing.T) {
	repo := newStubRepo()
	settler := &stubSettler{}
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, settler)
	order := placeOrder(t, svc, uuid.New())

	for _, target := range []enums.OrderStatus{
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusCompleted,
	} {
		updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Target: target})
		if err != nil {
			t.Fatalf("UpdateStatus(%s) returned error: %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("expected status %s, got %s", target, updated.Status)
		}
	}

	final, err := svc.Get(context.Background(), GetInput{OrderID: order.ID, ActorRole: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(final.StatusHistory) != 4 {
		t.Fatalf("expected 4 history rows, got %d", len(final.StatusHistory))
	}
	if settler.calls != 1 {
		t.Fatalf("expected one settlement, got %d", settler.calls)
	}
}

func TestUpdateStatusRejectsSkippedStep(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubCart{dto: fullCart()}, &stubSettler{})
	order := placeOrder(t, svc, uuid.New())

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Target: enums.OrderStatusReady})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestUpdateStatusRejectsLeavingTerminalState(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, &stubSettler{})
	order := placeOrder(t, svc, uuid.New())

	if _, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Target: enums.OrderStatusCancelled}); err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Target: enums.OrderStatusPreparing})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestUpdateStatusSettlesExactlyOnce(t *testing.T) {
	repo := newStubRepo()
	settler := &stubSettler{}
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, settler)
	order := placeOrder(t, svc, uuid.New())

	for _, target := range []enums.OrderStatus{enums.OrderStatusPreparing, enums.OrderStatusReady, enums.OrderStatusCompleted} {
		if _, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Target: target}); err != nil {
			t.Fatalf("UpdateStatus(%s) returned error: %v", target, err)
		}
	}

	// A terminal order rejects further moves, so the ledger cannot be hit twice.
	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Target: enums.OrderStatusCompleted})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	if settler.calls != 1 {
		t.Fatalf("expected one settlement, got %d", settler.calls)
	}
}

func TestUpdateStatusUnknownOrderIs404(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubCart{dto: fullCart()}, &stubSettler{})

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: uuid.New(), Target: enums.OrderStatusPreparing})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetHidesOtherCustomersOrders(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubCart{dto: fullCart()}, &stubSettler{})
	owner := uuid.New()
	order := placeOrder(t, svc, owner)

	_, err := svc.Get(context.Background(), GetInput{
		OrderID:     order.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleCustomer,
	})
	assertCode(t, err, pkgerrors.CodeNotFound)

	got, err := svc.Get(context.Background(), GetInput{
		OrderID:   order.ID,
		ActorRole: enums.UserRoleKitchen,
	})
	if err != nil {
		t.Fatalf("staff Get returned error: %v", err)
	}
	if got.UserID != owner {
		t.Fatalf("unexpected owner %s", got.UserID)
	}
}

func TestListMinePagesWithCursor(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, &stubSettler{})
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		order := placeOrder(t, svc, userID)
		// Spread creation times so the cursor has distinct boundaries.
		repo.orders[order.ID].CreatedAt = time.Now().UTC().Add(time.Duration(-i) * time.Hour)
	}

	page, err := svc.ListMine(context.Background(), userID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListMine returned error: %v", err)
	}
	if len(page.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page.Orders))
	}
	if page.NextCursor == nil {
		t.Fatal("expected next cursor")
	}

	rest, err := svc.ListMine(context.Background(), userID, pagination.Params{Limit: 2, Cursor: *page.NextCursor})
	if err != nil {
		t.Fatalf("ListMine returned error: %v", err)
	}
	if len(rest.Orders) != 1 {
		t.Fatalf("expected 1 remaining order, got %d", len(rest.Orders))
	}
	if rest.NextCursor != nil {
		t.Fatal("expected no further pages")
	}
}

func TestListActiveExcludesTerminalOrders(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubCart{dto: fullCart()}, &stubSettler{})

	open := placeOrder(t, svc, uuid.New())
	closed := placeOrder(t, svc, uuid.New())
	if _, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: closed.ID, Target: enums.OrderStatusCancelled}); err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}

	active, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive returned error: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active order, got %d", len(active))
	}
	if active[0].ID != open.ID {
		t.Fatalf("unexpected active order %s", active[0].ID)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}
