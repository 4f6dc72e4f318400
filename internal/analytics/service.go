package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	pkgerrors "github.com/quickplate/quickplate-backend/pkg/errors"
)

const defaultPopularLimit = 5

var percentFactor = decimal.NewFromInt(100)

// Service serves the admin analytics views: live status counts, best
// sellers, and per-plate return on investment.
type Service interface {
	StatusCounts(ctx context.Context) (*StatusCountsDTO, error)
	PopularItems(ctx context.Context, limit int) ([]PopularItemDTO, error)
	ROIReport(ctx context.Context) (*ROIReportDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs an analytics service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository is required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) StatusCounts(ctx context.Context) (*StatusCountsDTO, error) {
	counts, err := s.repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by status")
	}

	byStatus := make(map[enums.OrderStatus]int64, len(enums.OrderStatuses()))
	for _, status := range enums.OrderStatuses() {
		byStatus[status] = counts[status]
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.CountOrdersSince(ctx, midnight)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count today's orders")
	}

	return &StatusCountsDTO{ByStatus: byStatus, Today: today}, nil
}

func (s *service) PopularItems(ctx context.Context, limit int) ([]PopularItemDTO, error) {
	if limit <= 0 || limit > defaultPopularLimit {
		limit = defaultPopularLimit
	}

	rows, err := s.repo.TopSellingItems(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list top sellers")
	}

	out := make([]PopularItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, PopularItemDTO{
			Name:              row.ItemName,
			TotalSold:         row.TotalSold,
			TotalRevenueCents: row.TotalRevenueCents,
		})
	}
	return out, nil
}

func (s *service) ROIReport(ctx context.Context) (*ROIReportDTO, error) {
	items, err := s.repo.ItemsWithRecipes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items with recipes")
	}

	report := &ROIReportDTO{
		Items:            make([]ROIRowDTO, 0, len(items)),
		TotalCostCents:   decimal.Zero,
		TotalProfitCents: decimal.Zero,
	}
	for i := range items {
		row := roiRow(&items[i])
		report.Items = append(report.Items, row)
		report.TotalRevenueCents += row.TotalRevenueCents
		sold := decimal.NewFromInt(int64(row.TotalSold))
		report.TotalCostCents = report.TotalCostCents.Add(row.CostPerPlateCents.Mul(sold))
		report.TotalProfitCents = report.TotalProfitCents.Add(row.TotalProfitCents)
	}
	report.OverallROIPercent = roiPercent(report.TotalProfitCents, report.TotalCostCents)
	return report, nil
}

func roiRow(item *models.MenuItem) ROIRowDTO {
	cost := costPerPlateCents(item.Recipe)
	price := decimal.NewFromInt(int64(item.PriceCents))
	margin := price.Sub(cost)

	return ROIRowDTO{
		MenuItemID:        item.ID,
		Name:              item.Name,
		PriceCents:        item.PriceCents,
		CostPerPlateCents: cost,
		MarginCents:       margin,
		ROIPercent:        roiPercent(margin, cost),
		TotalSold:         item.TotalSold,
		TotalRevenueCents: item.TotalRevenueCents,
		TotalProfitCents:  margin.Mul(decimal.NewFromInt(int64(item.TotalSold))),
	}
}

// roiPercent reports zero when cost is zero rather than an error or infinity.
func roiPercent(profit, cost decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(cost).Mul(percentFactor).Round(2)
}

func costPerPlateCents(recipe []models.RecipeItem) decimal.Decimal {
	total := decimal.Zero
	for _, row := range recipe {
		if row.Ingredient == nil {
			continue
		}
		total = total.Add(row.QuantityUsed.Mul(row.Ingredient.CostPerUnit))
	}
	return total
}
