package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// CheckoutRequest carries the fulfillment details confirmed at checkout.
type CheckoutRequest struct {
	DeliveryMethod      string  `json:"delivery_method" validate:"required,oneof=delivery pickup"`
	DeliveryAddress     *string `json:"delivery_address,omitempty" validate:"omitempty,max=500"`
	PickupTime          *string `json:"pickup_time,omitempty" validate:"omitempty,max=64"`
	Phone               string  `json:"phone" validate:"required,max=32"`
	SpecialInstructions *string `json:"special_instructions,omitempty" validate:"omitempty,max=1000"`
}

// UpdateStatusRequest moves an order along its lifecycle.
type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// ItemDTO is one frozen order line.
type ItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	MenuItemID     *uuid.UUID `json:"menu_item_id,omitempty"`
	ItemName       string     `json:"item_name"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
	TotalCents     int        `json:"total_cents"`
}

// StatusHistoryDTO is one audit entry in the order's lifecycle.
type StatusHistoryDTO struct {
	Status    enums.OrderStatus `json:"status"`
	Note      *string           `json:"note,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderDTO is the full order shape served to clients.
type OrderDTO struct {
	ID                  uuid.UUID            `json:"id"`
	OrderNumber         string               `json:"order_number"`
	UserID              uuid.UUID            `json:"user_id"`
	Status              enums.OrderStatus    `json:"status"`
	DeliveryMethod      enums.DeliveryMethod `json:"delivery_method"`
	DeliveryAddress     *string              `json:"delivery_address,omitempty"`
	PickupTime          *string              `json:"pickup_time,omitempty"`
	Phone               string               `json:"phone"`
	SpecialInstructions *string              `json:"special_instructions,omitempty"`
	SubtotalCents       int                  `json:"subtotal_cents"`
	DeliveryFeeCents    int                  `json:"delivery_fee_cents"`
	TotalCents          int                  `json:"total_cents"`
	PrepMinutes         int                  `json:"prep_minutes"`
	ExpectedReadyAt     time.Time            `json:"expected_ready_at"`
	Items               []ItemDTO            `json:"items"`
	StatusHistory       []StatusHistoryDTO   `json:"status_history"`
	CreatedAt           time.Time            `json:"created_at"`
}

// OrderPage is a cursor-paged slice of orders.
type OrderPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	items := make([]ItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemDTO{
			ID:             item.ID,
			MenuItemID:     item.MenuItemID,
			ItemName:       item.ItemName,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			TotalCents:     item.TotalCents,
		})
	}

	history := make([]StatusHistoryDTO, 0, len(order.StatusHistory))
	for _, entry := range order.StatusHistory {
		history = append(history, StatusHistoryDTO{
			Status:    entry.Status,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}

	return &OrderDTO{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		UserID:              order.UserID,
		Status:              order.Status,
		DeliveryMethod:      order.DeliveryMethod,
		DeliveryAddress:     order.DeliveryAddress,
		PickupTime:          order.PickupTime,
		Phone:               order.Phone,
		SpecialInstructions: order.SpecialInstructions,
		SubtotalCents:       order.SubtotalCents,
		DeliveryFeeCents:    order.DeliveryFeeCents,
		TotalCents:          order.TotalCents,
		PrepMinutes:         order.PrepMinutes,
		ExpectedReadyAt:     order.ExpectedReadyAt,
		Items:               items,
		StatusHistory:       history,
		CreatedAt:           order.CreatedAt,
	}
}

func FromModels(orders []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *FromModel(&orders[i]))
	}
	return dtos
}
