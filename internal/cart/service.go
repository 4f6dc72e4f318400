package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickplate/quickplate-backend/pkg/config"
	pkgerrors "github.com/quickplate/quickplate-backend/pkg/errors"
)

// Store is the slice of the Redis client the cart needs. Carts live in a
// hash keyed per user with item quantities as fields.
type Store interface {
	CartKey(userID string) string
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service defines the cart operations used by controllers and checkout.
type Service interface {
	Add(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	Adjust(ctx context.Context, userID, itemID uuid.UUID, delta int) (*CartDTO, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store   Store
	catalog Catalog
	ttl     time.Duration
}

// NewService builds a cart service over the Redis-backed store.
func NewService(store Store, catalog Catalog, cfg config.CartConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{store: store, catalog: catalog, ttl: ttl}, nil
}

func (s *service) Add(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	item, err := s.catalog.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	if !item.Available {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "menu item is not available")
	}

	key := s.store.CartKey(userID.String())
	if _, err := s.store.HIncrBy(ctx, key, itemID.String(), int64(quantity)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line")
	}
	if err := s.store.Expire(ctx, key, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh cart ttl")
	}

	return s.Get(ctx, userID)
}

func (s *service) Adjust(ctx context.Context, userID, itemID uuid.UUID, delta int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	key := s.store.CartKey(userID.String())
	lines, err := s.store.HGetAll(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if _, ok := lines[itemID.String()]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	remaining, err := s.store.HIncrBy(ctx, key, itemID.String(), int64(delta))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust cart line")
	}
	if remaining <= 0 {
		if err := s.store.HDel(ctx, key, itemID.String()); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop cart line")
		}
	}
	if err := s.store.Expire(ctx, key, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh cart ttl")
	}

	return s.Get(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	key := s.store.CartKey(userID.String())
	if err := s.store.HDel(ctx, key, itemID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	lines, err := s.store.HGetAll(ctx, s.store.CartKey(userID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	quantities := make(map[uuid.UUID]int, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for field, raw := range lines {
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			continue
		}
		quantities[id] = qty
		ids = append(ids, id)
	}

	items, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart")
	}

	out := &CartDTO{Items: []LineDTO{}}
	for id, qty := range quantities {
		item, ok := items[id]
		if !ok {
			// Catalog row vanished since the line was added; skip it.
			continue
		}
		line := LineDTO{
			MenuItemID:     id,
			Name:           item.Name,
			Emoji:          item.Emoji,
			UnitPriceCents: item.PriceCents,
			Quantity:       qty,
			TotalCents:     item.PriceCents * qty,
			Available:      item.Available,
		}
		out.Items = append(out.Items, line)
		out.SubtotalCents += line.TotalCents
		out.ItemCount += qty
	}

	sort.Slice(out.Items, func(i, j int) bool {
		return out.Items[i].Name < out.Items[j].Name
	})

	return out, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.store.Del(ctx, s.store.CartKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
