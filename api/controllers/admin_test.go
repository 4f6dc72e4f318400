package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/internal/analytics"
	"github.com/quickplate/quickplate-backend/internal/inventory"
	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	pkgerrors "github.com/quickplate/quickplate-backend/pkg/errors"
)

type stubInventoryService struct {
	adjustFn func(ctx context.Context, ingredientID uuid.UUID, req inventory.AdjustStockRequest) (*inventory.IngredientDTO, error)
	usageFn  func(ctx context.Context, ingredientID *uuid.UUID, days int) ([]inventory.StockMovementDTO, error)
	lowFn    func(ctx context.Context) ([]inventory.IngredientDTO, error)
}

func (s stubInventoryService) Settle(context.Context, *gorm.DB, *models.Order) (bool, error) {
	return false, nil
}

func (s stubInventoryService) ListIngredients(context.Context) ([]inventory.IngredientDTO, error) {
	return nil, nil
}

func (s stubInventoryService) LowStock(ctx context.Context) ([]inventory.IngredientDTO, error) {
	if s.lowFn != nil {
		return s.lowFn(ctx)
	}
	return nil, nil
}

func (s stubInventoryService) AdjustStock(ctx context.Context, ingredientID uuid.UUID, req inventory.AdjustStockRequest) (*inventory.IngredientDTO, error) {
	if s.adjustFn != nil {
		return s.adjustFn(ctx, ingredientID, req)
	}
	return nil, nil
}

func (s stubInventoryService) UsageHistory(ctx context.Context, ingredientID *uuid.UUID, days int) ([]inventory.StockMovementDTO, error) {
	if s.usageFn != nil {
		return s.usageFn(ctx, ingredientID, days)
	}
	return nil, nil
}

type stubAnalyticsService struct {
	roiFn func(ctx context.Context) (*analytics.ROIReportDTO, error)
}

func (s stubAnalyticsService) StatusCounts(context.Context) (*analytics.StatusCountsDTO, error) {
	return &analytics.StatusCountsDTO{ByStatus: map[enums.OrderStatus]int64{}}, nil
}

func (s stubAnalyticsService) PopularItems(context.Context, int) ([]analytics.PopularItemDTO, error) {
	return nil, nil
}

func (s stubAnalyticsService) ROIReport(ctx context.Context) (*analytics.ROIReportDTO, error) {
	if s.roiFn != nil {
		return s.roiFn(ctx)
	}
	return &analytics.ROIReportDTO{}, nil
}

func adjustStockRequest(ingredientID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/ingredients/"+ingredientID+"/stock", strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("ingredientId", ingredientID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminAdjustStockSuccess(t *testing.T) {
	ingredientID := uuid.New()
	svc := stubInventoryService{
		adjustFn: func(_ context.Context, gotID uuid.UUID, req inventory.AdjustStockRequest) (*inventory.IngredientDTO, error) {
			if gotID != ingredientID {
				t.Fatalf("unexpected ingredient id %s", gotID)
			}
			if req.ChangeType != "purchase" {
				t.Fatalf("unexpected change type %q", req.ChangeType)
			}
			return &inventory.IngredientDTO{ID: gotID, CurrentStock: decimal.NewFromInt(60)}, nil
		},
	}
	handler := AdminAdjustStock(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, adjustStockRequest(ingredientID.String(), `{"change_type":"purchase","quantity":"50"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminAdjustStockUnknownIngredientIs404(t *testing.T) {
	svc := stubInventoryService{
		adjustFn: func(context.Context, uuid.UUID, inventory.AdjustStockRequest) (*inventory.IngredientDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		},
	}
	handler := AdminAdjustStock(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, adjustStockRequest(uuid.New().String(), `{"change_type":"purchase","quantity":"50"}`))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminUsageHistoryRejectsBadDays(t *testing.T) {
	handler := AdminUsageHistory(stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/inventory/usage?days=0", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminListIngredientsLowStockFilter(t *testing.T) {
	called := false
	svc := stubInventoryService{
		lowFn: func(context.Context) ([]inventory.IngredientDTO, error) {
			called = true
			return []inventory.IngredientDTO{{ID: uuid.New(), Name: "Lettuce", LowStock: true}}, nil
		},
	}
	handler := AdminListIngredients(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ingredients?low_stock=true", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected low stock query")
	}
}

func TestAdminROIReport(t *testing.T) {
	svc := stubAnalyticsService{
		roiFn: func(context.Context) (*analytics.ROIReportDTO, error) {
			return &analytics.ROIReportDTO{
				Items: []analytics.ROIRowDTO{{
					MenuItemID:        uuid.New(),
					Name:              "Classic Burger",
					PriceCents:        999,
					CostPerPlateCents: decimal.NewFromInt(350),
					ROIPercent:        decimal.RequireFromString("185.43"),
				}},
			}, nil
		},
	}
	handler := AdminROIReport(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/analytics/roi", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data analytics.ROIReportDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Name != "Classic Burger" {
		t.Fatalf("unexpected report %+v", envelope.Data)
	}
}
