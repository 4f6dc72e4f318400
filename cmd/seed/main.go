package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/pkg/config"
	"github.com/quickplate/quickplate-backend/pkg/db"
	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	"github.com/quickplate/quickplate-backend/pkg/logger"
	"github.com/quickplate/quickplate-backend/pkg/migrate"
	"github.com/quickplate/quickplate-backend/pkg/security"
)

const defaultSeedPassword = "quickplate-dev"

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()

	var errs []error
	if err := seedUsers(ctx, gdb, cfg, logg); err != nil {
		errs = append(errs, fmt.Errorf("seed users: %w", err))
	}
	if err := seedIngredients(ctx, gdb, logg); err != nil {
		errs = append(errs, fmt.Errorf("seed ingredients: %w", err))
	}
	if err := seedMenu(ctx, gdb, logg); err != nil {
		errs = append(errs, fmt.Errorf("seed menu: %w", err))
	}

	if err := multierr.Combine(errs...); err != nil {
		logg.Error(ctx, "seeding finished with errors", err)
		os.Exit(1)
	}

	logg.Info(ctx, "seeding complete")
}

func seedUsers(ctx context.Context, gdb *gorm.DB, cfg *config.Config, logg *logger.Logger) error {
	password := os.Getenv("QUICKPLATE_SEED_PASSWORD")
	if password == "" {
		password = defaultSeedPassword
	}

	accounts := []struct {
		email string
		name  string
		role  enums.UserRole
	}{
		{"admin@quickplate.dev", "Admin", enums.UserRoleAdmin},
		{"kitchen@quickplate.dev", "Kitchen Display", enums.UserRoleKitchen},
		{"customer@quickplate.dev", "Sample Customer", enums.UserRoleCustomer},
	}

	var errs []error
	for _, account := range accounts {
		var existing models.User
		err := gdb.WithContext(ctx).First(&existing, "email = ?", account.email).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			errs = append(errs, err)
			continue
		}

		hash, err := security.HashPassword(password, cfg.Password)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		user := models.User{
			Email:        account.email,
			PasswordHash: hash,
			Name:         account.name,
			Role:         account.role,
		}
		if err := gdb.WithContext(ctx).Create(&user).Error; err != nil {
			errs = append(errs, err)
			continue
		}
		logg.Info(ctx, "seeded user "+account.email)
	}
	return multierr.Combine(errs...)
}

func seedIngredients(ctx context.Context, gdb *gorm.DB, logg *logger.Logger) error {
	ingredients := []models.Ingredient{
		{Name: "Beef Patty", Unit: "piece", CurrentStock: dec("120"), CostPerUnit: dec("1.50"), ReorderLevel: dec("30")},
		{Name: "Burger Bun", Unit: "piece", CurrentStock: dec("150"), CostPerUnit: dec("0.40"), ReorderLevel: dec("40")},
		{Name: "Cheddar Slice", Unit: "piece", CurrentStock: dec("200"), CostPerUnit: dec("0.25"), ReorderLevel: dec("50")},
		{Name: "Lettuce", Unit: "kg", CurrentStock: dec("8"), CostPerUnit: dec("2.80"), ReorderLevel: dec("2")},
		{Name: "Tomato", Unit: "kg", CurrentStock: dec("10"), CostPerUnit: dec("3.20"), ReorderLevel: dec("3")},
		{Name: "Pizza Dough", Unit: "piece", CurrentStock: dec("60"), CostPerUnit: dec("0.90"), ReorderLevel: dec("15")},
		{Name: "Mozzarella", Unit: "kg", CurrentStock: dec("12"), CostPerUnit: dec("7.50"), ReorderLevel: dec("3")},
		{Name: "Coffee Beans", Unit: "kg", CurrentStock: dec("5"), CostPerUnit: dec("14.00"), ReorderLevel: dec("1")},
	}

	var errs []error
	for i := range ingredients {
		ingredient := ingredients[i]

		var existing models.Ingredient
		err := gdb.WithContext(ctx).First(&existing, "name = ?", ingredient.Name).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			errs = append(errs, err)
			continue
		}

		if err := gdb.WithContext(ctx).Create(&ingredient).Error; err != nil {
			errs = append(errs, err)
			continue
		}
		logg.Info(ctx, "seeded ingredient "+ingredient.Name)
	}
	return multierr.Combine(errs...)
}

type menuSeed struct {
	item   models.MenuItem
	recipe map[string]decimal.Decimal
}

func seedMenu(ctx context.Context, gdb *gorm.DB, logg *logger.Logger) error {
	seeds := []menuSeed{
		{
			item: models.MenuItem{
				Name:        "Classic Burger",
				Description: strPtr("Beef patty with lettuce and tomato on a toasted bun"),
				Emoji:       "🍔",
				Color:       "#F59E0B",
				Category:    enums.MenuCategoryMains,
				DietaryTags: nil,
				PriceCents:  999,
				Available:   true,
			},
			recipe: map[string]decimal.Decimal{
				"Beef Patty": dec("1"),
				"Burger Bun": dec("1"),
				"Lettuce":    dec("0.02"),
				"Tomato":     dec("0.03"),
			},
		},
		{
			item: models.MenuItem{
				Name:        "Cheeseburger",
				Description: strPtr("The classic with a melted cheddar slice"),
				Emoji:       "🧀",
				Color:       "#FBBF24",
				Category:    enums.MenuCategoryMains,
				PriceCents:  1099,
				Available:   true,
			},
			recipe: map[string]decimal.Decimal{
				"Beef Patty":    dec("1"),
				"Burger Bun":    dec("1"),
				"Cheddar Slice": dec("1"),
				"Lettuce":       dec("0.02"),
			},
		},
		{
			item: models.MenuItem{
				Name:        "Margherita Pizza",
				Description: strPtr("Hand-stretched dough with tomato and mozzarella"),
				Emoji:       "🍕",
				Color:       "#EF4444",
				Category:    enums.MenuCategoryMains,
				DietaryTags: []string{"vegetarian"},
				PriceCents:  1299,
				Available:   true,
			},
			recipe: map[string]decimal.Decimal{
				"Pizza Dough": dec("1"),
				"Tomato":      dec("0.10"),
				"Mozzarella":  dec("0.15"),
			},
		},
		{
			item: models.MenuItem{
				Name:        "Garden Salad",
				Description: strPtr("Fresh lettuce and tomato tossed to order"),
				Emoji:       "🥗",
				Color:       "#10B981",
				Category:    enums.MenuCategorySides,
				DietaryTags: []string{"vegan", "gluten-free"},
				PriceCents:  599,
				Available:   true,
			},
			recipe: map[string]decimal.Decimal{
				"Lettuce": dec("0.12"),
				"Tomato":  dec("0.08"),
			},
		},
		{
			item: models.MenuItem{
				Name:        "Flat White",
				Description: strPtr("Double shot with steamed milk"),
				Emoji:       "☕",
				Color:       "#92400E",
				Category:    enums.MenuCategoryDrinks,
				PriceCents:  449,
				Available:   true,
			},
			recipe: map[string]decimal.Decimal{
				"Coffee Beans": dec("0.018"),
			},
		},
	}

	var errs []error
	for _, seed := range seeds {
		if err := seedMenuItem(ctx, gdb, seed); err != nil {
			errs = append(errs, fmt.Errorf("menu item %s: %w", seed.item.Name, err))
			continue
		}
		logg.Info(ctx, "seeded menu item "+seed.item.Name)
	}
	return multierr.Combine(errs...)
}

func seedMenuItem(ctx context.Context, gdb *gorm.DB, seed menuSeed) error {
	var existing models.MenuItem
	err := gdb.WithContext(ctx).First(&existing, "name = ?", seed.item.Name).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := seed.item
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		for name, quantity := range seed.recipe {
			var ingredient models.Ingredient
			if err := tx.First(&ingredient, "name = ?", name).Error; err != nil {
				return fmt.Errorf("ingredient %s: %w", name, err)
			}
			recipeItem := models.RecipeItem{
				MenuItemID:   item.ID,
				IngredientID: ingredient.ID,
				QuantityUsed: quantity,
			}
			if err := tx.Create(&recipeItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }
