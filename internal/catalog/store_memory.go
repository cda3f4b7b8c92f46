package catalog

import (
	"context"
	"fmt"
	"time"

	"WonderFarm/internal/storeerr"
)

// Latency emulates network round trips of the hosted store.
type Latency struct {
	List       time.Duration
	Item       time.Duration
	Category   time.Duration
	Categories time.Duration
	Search     time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		List:       800 * time.Millisecond,
		Item:       600 * time.Millisecond,
		Category:   700 * time.Millisecond,
		Categories: 300 * time.Millisecond,
		Search:     300 * time.Millisecond,
	}
}

// MemStore serves a fixed in-process product list.
type MemStore struct {
	products []Product
	latency  Latency
}

func NewMemStore(products []Product, latency Latency) *MemStore {
	cp := make([]Product, len(products))
	copy(cp, products)
	return &MemStore{products: cp, latency: latency}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListAll(ctx context.Context) ([]Product, error) {
	if err := sleep(ctx, s.latency.List); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, error) {
	if err := sleep(ctx, s.latency.Item); err != nil {
		return Product{}, err
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: product %q", storeerr.ErrNotFound, id)
}

func (s *MemStore) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	if err := sleep(ctx, s.latency.Category); err != nil {
		return nil, err
	}
	out := filterCategory(s.products, category)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", storeerr.ErrEmptyCategory, category)
	}
	return out, nil
}

func (s *MemStore) Categories(ctx context.Context) ([]string, error) {
	if err := sleep(ctx, s.latency.Categories); err != nil {
		return nil, err
	}
	return uniqueCategories(s.products), nil
}

func (s *MemStore) Search(ctx context.Context, text string) ([]Product, error) {
	if err := sleep(ctx, s.latency.Search); err != nil {
		return nil, err
	}
	return filterTitle(s.products, text), nil
}

func (s *MemStore) snapshot() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
