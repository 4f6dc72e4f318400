package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// StatusCountsDTO is the kitchen dashboard headline: live order counts per
// lifecycle state plus today's intake.
type StatusCountsDTO struct {
	ByStatus map[enums.OrderStatus]int64 `json:"by_status"`
	Today    int64                       `json:"today"`
}

// PopularItemDTO is one row of the best-sellers list, aggregated from order
// lines so every placed order counts toward the ranking.
type PopularItemDTO struct {
	Name              string `json:"name"`
	TotalSold         int    `json:"total_sold"`
	TotalRevenueCents int    `json:"total_revenue_cents"`
}

// ROIRowDTO reports per-plate economics for one menu item. ROIPercent is
// zero when the recipe cost is zero, never an error or infinity.
type ROIRowDTO struct {
	MenuItemID        uuid.UUID       `json:"menu_item_id"`
	Name              string          `json:"name"`
	PriceCents        int             `json:"price_cents"`
	CostPerPlateCents decimal.Decimal `json:"cost_per_plate_cents"`
	MarginCents       decimal.Decimal `json:"margin_cents"`
	ROIPercent        decimal.Decimal `json:"roi_percent"`
	TotalSold         int             `json:"total_sold"`
	TotalRevenueCents int             `json:"total_revenue_cents"`
	TotalProfitCents  decimal.Decimal `json:"total_profit_cents"`
}

// ROIReportDTO is the full return-on-plate report: one row per menu item
// plus totals summed across the catalog.
type ROIReportDTO struct {
	Items             []ROIRowDTO     `json:"items"`
	TotalRevenueCents int             `json:"total_revenue_cents"`
	TotalCostCents    decimal.Decimal `json:"total_cost_cents"`
	TotalProfitCents  decimal.Decimal `json:"total_profit_cents"`
	OverallROIPercent decimal.Decimal `json:"overall_roi_percent"`
}
