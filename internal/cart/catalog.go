package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickplate/quickplate-backend/internal/menu"
)

type repoCatalog struct {
	repo menu.Repository
}

// NewCatalog adapts the menu repository to the cart's pricing view.
func NewCatalog(repo menu.Repository) Catalog {
	return &repoCatalog{repo: repo}
}

// Catalog resolves cart lines against the live menu.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*menu.ItemDTO, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]menu.ItemDTO, error)
}

func (c *repoCatalog) FindByID(ctx context.Context, id uuid.UUID) (*menu.ItemDTO, error) {
	item, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return menu.FromModel(item), nil
}

func (c *repoCatalog) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]menu.ItemDTO, error) {
	items, err := c.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]menu.ItemDTO, len(items))
	for i := range items {
		out[items[i].ID] = *menu.FromModel(&items[i])
	}
	return out, nil
}
