package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pizza-maniac/internal/model"

	"github.com/rs/zerolog"
)

// ProductStore is the product persistence the seeder writes through.
type ProductStore interface {
	GetByName(ctx context.Context, name string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
}

// SeedResult counts what a seeding run changed.
type SeedResult struct {
	Created int
	Updated int
}

// Seeder upserts menu entries into the product store, matching by name.
type Seeder struct {
	loader   Loader
	products ProductStore
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSeeder creates a new menu seeder.
func NewSeeder(loader Loader, products ProductStore, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader:   loader,
		products: products,
		logger:   logger.With().Str("component", "menu-seeder").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Seed loads every path in order and upserts its entries. Existing products
// keep their id and their current stock; the other seeded fields are
// overwritten. Files are validated in full before anything from them is
// written.
func (s *Seeder) Seed(ctx context.Context, paths []string) (SeedResult, error) {
	var res SeedResult
	for _, path := range paths {
		items, err := s.loader.Load(ctx, path)
		if err != nil {
			return res, err
		}

		for i := range items {
			if err := items[i].Validate(); err != nil {
				return res, fmt.Errorf("menu %s entry %d: %w", path, i, err)
			}
		}

		for i := range items {
			created, err := s.upsert(ctx, &items[i])
			if err != nil {
				return res, fmt.Errorf("menu %s entry %d: %w", path, i, err)
			}
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}
	}

	s.logger.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Msg("menu seeded")

	return res, nil
}

func (s *Seeder) upsert(ctx context.Context, item *model.CreateProductRequest) (bool, error) {
	now := s.now()
	existing, err := s.products.GetByName(ctx, strings.TrimSpace(item.Name))
	if err != nil {
		return false, err
	}

	if existing == nil {
		return true, s.products.Create(ctx, item.ToProduct(now))
	}

	// Stock is only seeded on create so a restart does not undo checkouts.
	update := model.UpdateProductRequest{
		Category:    &item.Category,
		Price:       item.Price,
		IsAvailable: item.IsAvailable,
	}
	update.Apply(existing, now)
	return false, s.products.Update(ctx, existing)
}
