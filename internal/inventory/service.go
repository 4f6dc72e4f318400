package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	pkgerrors "github.com/quickplate/quickplate-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the ingredient ledger: settlement on order completion, manual
// stock movements, and the low-stock and usage reports.
type Service interface {
	Settle(ctx context.Context, tx *gorm.DB, order *models.Order) (bool, error)
	ListIngredients(ctx context.Context) ([]IngredientDTO, error)
	LowStock(ctx context.Context) ([]IngredientDTO, error)
	AdjustStock(ctx context.Context, ingredientID uuid.UUID, req AdjustStockRequest) (*IngredientDTO, error)
	UsageHistory(ctx context.Context, ingredientID *uuid.UUID, days int) ([]StockMovementDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService constructs an inventory service with the provided dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Settle consumes the ingredient ledger for one completed order inside the
// caller's transaction. Usage is aggregated per ingredient so each ingredient
// gets a single negative audit row per order. Stock may go negative;
// shortfalls surface through the low-stock report, not by failing the order.
func (s *service) Settle(ctx context.Context, tx *gorm.DB, order *models.Order) (bool, error) {
	if order == nil {
		return false, pkgerrors.New(pkgerrors.CodeInternal, "settle called without an order")
	}

	repo := s.repo.WithTx(tx)

	menuItemIDs := make([]uuid.UUID, 0, len(order.Items))
	qtyByMenuItem := make(map[uuid.UUID]int, len(order.Items))
	for _, line := range order.Items {
		if line.MenuItemID == nil {
			continue
		}
		if _, seen := qtyByMenuItem[*line.MenuItemID]; !seen {
			menuItemIDs = append(menuItemIDs, *line.MenuItemID)
		}
		qtyByMenuItem[*line.MenuItemID] += line.Quantity
	}

	recipes, err := repo.RecipesForMenuItems(ctx, menuItemIDs)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipes")
	}

	usage := map[uuid.UUID]decimal.Decimal{}
	usageOrder := make([]uuid.UUID, 0, len(recipes))
	for _, recipe := range recipes {
		qty := qtyByMenuItem[recipe.MenuItemID]
		if qty == 0 {
			continue
		}
		consumed := recipe.QuantityUsed.Mul(decimal.NewFromInt(int64(qty)))
		if _, seen := usage[recipe.IngredientID]; !seen {
			usageOrder = append(usageOrder, recipe.IngredientID)
		}
		usage[recipe.IngredientID] = usage[recipe.IngredientID].Add(consumed)
	}

	note := fmt.Sprintf("Order %s settled", order.OrderNumber)
	for _, ingredientID := range usageOrder {
		consumed := usage[ingredientID]
		if consumed.IsZero() {
			continue
		}
		if _, err := repo.AddToStock(ctx, ingredientID, consumed.Neg()); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement ingredient stock")
		}
		if err := repo.AppendStockHistory(ctx, &models.StockHistory{
			IngredientID: ingredientID,
			ChangeType:   enums.StockChangeTypeUsage,
			Quantity:     consumed.Neg(),
			Note:         &note,
		}); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ingredient usage")
		}
	}

	for _, line := range order.Items {
		if line.MenuItemID == nil {
			continue
		}
		if err := repo.IncrementSales(ctx, *line.MenuItemID, line.Quantity, line.TotalCents); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sales counters")
		}
	}

	return true, nil
}

func (s *service) ListIngredients(ctx context.Context) ([]IngredientDTO, error) {
	ingredients, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	return ingredientsFromModels(ingredients), nil
}

func (s *service) LowStock(ctx context.Context) ([]IngredientDTO, error) {
	ingredients, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return ingredientsFromModels(ingredients), nil
}

func (s *service) AdjustStock(ctx context.Context, ingredientID uuid.UUID, req AdjustStockRequest) (*IngredientDTO, error) {
	changeType, err := enums.ParseStockChangeType(req.ChangeType)
	if err != nil || changeType == enums.StockChangeTypeUsage {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "change type must be purchase or adjustment")
	}
	if req.Quantity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-zero")
	}
	if changeType == enums.StockChangeTypePurchase && req.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase quantity must be positive")
	}

	var updated *models.Ingredient
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.AddToStock(ctx, ingredientID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust ingredient stock")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}

		if err := repo.AppendStockHistory(ctx, &models.StockHistory{
			IngredientID: ingredientID,
			ChangeType:   changeType,
			Quantity:     req.Quantity,
			Note:         req.Note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}

		updated, err = repo.FindIngredientByID(ctx, ingredientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload ingredient")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ingredientFromModel(updated), nil
}

func (s *service) UsageHistory(ctx context.Context, ingredientID *uuid.UUID, days int) ([]StockMovementDTO, error) {
	if days <= 0 {
		days = 7
	}

	if ingredientID != nil {
		if _, err := s.repo.FindIngredientByID(ctx, *ingredientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
		}
	}

	since := s.now().AddDate(0, 0, -days)
	rows, err := s.repo.ListStockHistory(ctx, ingredientID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock history")
	}

	ingredients, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	names := make(map[uuid.UUID]string, len(ingredients))
	for _, ingredient := range ingredients {
		names[ingredient.ID] = ingredient.Name
	}

	out := make([]StockMovementDTO, 0, len(rows))
	for i := range rows {
		out = append(out, movementFromModel(&rows[i], names[rows[i].IngredientID]))
	}
	return out, nil
}
