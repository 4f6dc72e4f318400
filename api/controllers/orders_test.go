package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quickplate/quickplate-backend/api/middleware"
	internalorders "github.com/quickplate/quickplate-backend/internal/orders"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	pkgerrors "github.com/quickplate/quickplate-backend/pkg/errors"
)

func TestCheckoutReturns201(t *testing.T) {
	svc := stubOrderService{
		checkoutFn: func(_ context.Context, _ uuid.UUID, req internalorders.CheckoutRequest) (*internalorders.OrderDTO, error) {
			if req.DeliveryMethod != "pickup" {
				t.Fatalf("unexpected delivery method %q", req.DeliveryMethod)
			}
			return &internalorders.OrderDTO{
				ID:          uuid.New(),
				OrderNumber: "QP-20260831120000-042",
				Status:      enums.OrderStatusPending,
				TotalCents:  2597,
			}, nil
		},
	}
	handler := Checkout(svc, nil)

	body := `{"delivery_method":"pickup","phone":"555-0100"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders/checkout", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data internalorders.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber == "" {
		t.Fatal("expected order number in response")
	}
}

func TestCheckoutEmptyCartIs400(t *testing.T) {
	svc := stubOrderService{
		checkoutFn: func(context.Context, uuid.UUID, internalorders.CheckoutRequest) (*internalorders.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		},
	}
	handler := Checkout(svc, nil)

	body := `{"delivery_method":"pickup","phone":"555-0100"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders/checkout", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderGetCarriesActorScope(t *testing.T) {
	orderID := uuid.New()
	userID := uuid.New()
	svc := stubOrderService{
		getFn: func(_ context.Context, input internalorders.GetInput) (*internalorders.OrderDTO, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order id %s", input.OrderID)
			}
			if input.ActorUserID != userID {
				t.Fatalf("unexpected actor %s", input.ActorUserID)
			}
			if input.ActorRole != enums.UserRoleCustomer {
				t.Fatalf("unexpected role %s", input.ActorRole)
			}
			return &internalorders.OrderDTO{ID: orderID, UserID: userID}, nil
		},
	}
	handler := OrderGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, userID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleCustomer))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrderListRejectsBadLimit(t *testing.T) {
	handler := OrderList(stubOrderService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders?limit=0", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
