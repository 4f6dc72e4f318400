package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/internal/cart"
	"github.com/quickplate/quickplate-backend/pkg/config"
	"github.com/quickplate/quickplate-backend/pkg/db"
	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	pkgerrors "github.com/quickplate/quickplate-backend/pkg/errors"
	"github.com/quickplate/quickplate-backend/pkg/metrics"
	"github.com/quickplate/quickplate-backend/pkg/pagination"
)

const orderNumberAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Settler decrements the ingredient ledger for a completed order. It reports
// whether this call performed the settlement so repeated completions stay
// idempotent.
type Settler interface {
	Settle(ctx context.Context, tx *gorm.DB, order *models.Order) (bool, error)
}

// UpdateStatusInput identifies a lifecycle move requested by staff.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Note    *string
}

// GetInput identifies an order read scoped by the requesting actor.
type GetInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// Service defines the order lifecycle operations.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	Get(ctx context.Context, input GetInput) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	ListActive(ctx context.Context) ([]OrderDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	cart    cartReader
	settler Settler
	metrics *metrics.OrderMetrics
	cfg     config.OrderingConfig
	now     func() time.Time
	rng     *rand.Rand
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Cart     cartReader
	Settler  Settler
	Metrics  *metrics.OrderMetrics
	Ordering config.OrderingConfig
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart reader is required")
	}
	if params.Settler == nil {
		return nil, fmt.Errorf("inventory settler is required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		cart:    params.Cart,
		settler: params.Settler,
		metrics: params.Metrics,
		cfg:     params.Ordering,
		now:     func() time.Time { return time.Now().UTC() },
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	method, err := enums.ParseDeliveryMethod(req.DeliveryMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery method must be delivery or pickup")
	}
	if method == enums.DeliveryMethodDelivery {
		if req.DeliveryAddress == nil || strings.TrimSpace(*req.DeliveryAddress) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required for delivery orders")
		}
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	cartDTO, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cartDTO.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range cartDTO.Items {
		if !line.Available {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart contains unavailable items").
				WithDetails(map[string]any{"item": line.Name})
		}
	}

	now := s.now()
	prepMinutes := s.prepMinutes(method)
	fee := 0
	if method == enums.DeliveryMethodDelivery {
		fee = s.cfg.DeliveryFeeCents
	}

	items := make([]models.OrderItem, 0, len(cartDTO.Items))
	for _, line := range cartDTO.Items {
		id := line.MenuItemID
		items = append(items, models.OrderItem{
			MenuItemID:     &id,
			ItemName:       line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			TotalCents:     line.TotalCents,
		})
	}

	var created *models.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order := &models.Order{
			OrderNumber:         s.newOrderNumber(now),
			UserID:              userID,
			Status:              enums.OrderStatusPending,
			DeliveryMethod:      method,
			DeliveryAddress:     req.DeliveryAddress,
			PickupTime:          req.PickupTime,
			Phone:               strings.TrimSpace(req.Phone),
			SpecialInstructions: req.SpecialInstructions,
			SubtotalCents:       cartDTO.SubtotalCents,
			DeliveryFeeCents:    fee,
			TotalCents:          cartDTO.SubtotalCents + fee,
			PrepMinutes:         prepMinutes,
			ExpectedReadyAt:     now.Add(time.Duration(prepMinutes) * time.Minute),
			Items:               items,
		}

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.Create(ctx, order); err != nil {
				return err
			}
			note := "Order received"
			return repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
				OrderID: order.ID,
				Status:  enums.OrderStatusPending,
				Note:    &note,
			})
		})
		if err == nil {
			created = order
			break
		}
		if !db.IsUniqueViolation(err, "idx_orders_order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
	if created == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	// The order is committed; a failed cart clear must not surface as a
	// checkout failure or the client would retry and double-order.
	_ = s.cart.Clear(ctx, userID)

	s.metrics.IncPlaced(string(method))

	return s.Get(ctx, GetInput{OrderID: created.ID, ActorUserID: userID, ActorRole: enums.UserRoleCustomer})
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": string(input.Target)})
	}

	var settled bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !order.Status.CanTransitionTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Target)).
				WithDetails(map[string]any{"from": string(order.Status), "to": string(input.Target)})
		}

		if err := repo.UpdateStatus(ctx, order.ID, input.Target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		note := input.Note
		if note == nil {
			text := statusNote(input.Target)
			note = &text
		}
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID: order.ID,
			Status:  input.Target,
			Note:    note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		if input.Target != enums.OrderStatusCompleted {
			return nil
		}

		// Completion settles the ingredient ledger exactly once.
		if order.SettledAt != nil {
			return nil
		}
		didSettle, err := s.settler.Settle(ctx, tx, order)
		if err != nil {
			return err
		}
		if didSettle {
			if err := repo.MarkSettled(ctx, order.ID, s.now()); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order settled")
			}
			settled = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled {
		s.metrics.IncSettlement()
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, input GetInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !input.ActorRole.IsStaff() && order.UserID != input.ActorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := &OrderPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Orders = FromModels(rows)
	return page, nil
}

func (s *service) ListActive(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active orders")
	}
	return FromModels(rows), nil
}

func (s *service) prepMinutes(method enums.DeliveryMethod) int {
	min, max := s.cfg.PickupPrepMinMins, s.cfg.PickupPrepMaxMins
	if method == enums.DeliveryMethodDelivery {
		min, max = s.cfg.DeliverPrepMinMins, s.cfg.DeliverPrepMaxMins
	}
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

func (s *service) newOrderNumber(now time.Time) string {
	prefix := s.cfg.OrderNumberPrefix
	if prefix == "" {
		prefix = "QP"
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, now.Format("20060102150405"), s.rng.Intn(1000))
}

func statusNote(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusPreparing:
		return "Kitchen started preparing the order"
	case enums.OrderStatusReady:
		return "Order is ready"
	case enums.OrderStatusCompleted:
		return "Order completed"
	case enums.OrderStatusCancelled:
		return "Order cancelled"
	default:
		return "Order received"
	}
}
