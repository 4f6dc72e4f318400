package menu

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickplate/quickplate-backend/pkg/db/models"
	"github.com/quickplate/quickplate-backend/pkg/enums"
)

// ItemDTO is the catalog entry shape served to clients.
type ItemDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Emoji       string             `json:"emoji"`
	Color       string             `json:"color"`
	Category    enums.MenuCategory `json:"category"`
	DietaryTags []string           `json:"dietary_tags"`
	PriceCents  int                `json:"price_cents"`
	Available   bool               `json:"available"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// AvailabilityRequest toggles whether an item can be ordered.
type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

func FromModel(item *models.MenuItem) *ItemDTO {
	if item == nil {
		return nil
	}
	tags := append([]string(nil), item.DietaryTags...)
	if tags == nil {
		tags = []string{}
	}
	return &ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Emoji:       item.Emoji,
		Color:       item.Color,
		Category:    item.Category,
		DietaryTags: tags,
		PriceCents:  item.PriceCents,
		Available:   item.Available,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func FromModels(items []models.MenuItem) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *FromModel(&items[i]))
	}
	return dtos
}
