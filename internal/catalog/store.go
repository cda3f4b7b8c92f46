package catalog

import (
	"context"
	"strings"
)

const (
	CategoryDecoracion = "decoracion"
	CategoryGranero    = "granero"
	CategorySilo       = "silo"
	CategoryOtros      = "otros"
)

// Product is owned by the catalog and never mutated by clients.
type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Image    string `json:"img"`
	Category string `json:"category"`
}

// Store is satisfied by both the mock and the remote catalog. Both must
// return storeerr.ErrNotFound from Get, storeerr.ErrEmptyCategory from an
// empty ListByCategory and an empty, non-nil slice from a Search without
// matches.
type Store interface {
	Ping(ctx context.Context) error
	ListAll(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, text string) ([]Product, error)
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func filterCategory(products []Product, category string) []Product {
	want := normalizeCategory(category)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if normalizeCategory(p.Category) == want {
			out = append(out, p)
		}
	}
	return out
}

func searchQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func filterTitle(products []Product, text string) []Product {
	q := searchQuery(text)
	out := make([]Product, 0)
	if q == "" {
		return out
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}

func uniqueCategories(products []Product) []string {
	seen := make(map[string]struct{}, 4)
	out := make([]string, 0, 4)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
