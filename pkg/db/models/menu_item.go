package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// MenuItem is the canonical catalog entry. Sales counters accumulate on
// settlement; cost per plate is always derived from the recipe, never stored.
type MenuItem struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string             `gorm:"column:name;not null;uniqueIndex"`
	Description       *string            `gorm:"column:description"`
	Emoji             string             `gorm:"column:emoji;not null;default:''"`
	Color             string             `gorm:"column:color;not null;default:''"`
	Category          enums.MenuCategory `gorm:"column:category;type:text;not null"`
	DietaryTags       pq.StringArray     `gorm:"column:dietary_tags;type:text[]"`
	PriceCents        int                `gorm:"column:price_cents;not null"`
	Available         bool               `gorm:"column:available;not null;default:true"`
	TotalSold         int                `gorm:"column:total_sold;not null;default:0"`
	TotalRevenueCents int                `gorm:"column:total_revenue_cents;not null;default:0"`
	Recipe            []RecipeItem       `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
