package catalog

import (
	"context"
	"errors"
	"fmt"

	"WonderFarm/internal/docstore"
	"WonderFarm/internal/storeerr"
)

const productsCollection = "products"

// Documents is the part of the document store the remote catalog needs.
type Documents interface {
	Ping(ctx context.Context) error
	Insert(ctx context.Context, collection string, body any) (docstore.Document, error)
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	List(ctx context.Context, collection string, order docstore.Order) ([]docstore.Document, error)
	Find(ctx context.Context, collection string, f docstore.Filter, order docstore.Order) ([]docstore.Document, error)
}

type productDoc struct {
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Image    string `json:"img"`
	Category string `json:"category"`
}

// DocStore reads products from the "products" collection.
type DocStore struct {
	docs Documents
}

func NewDocStore(docs Documents) *DocStore {
	return &DocStore{docs: docs}
}

func (s *DocStore) Ping(ctx context.Context) error {
	if err := s.docs.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrDataUnavailable, err)
	}
	return nil
}

func (s *DocStore) ListAll(ctx context.Context) ([]Product, error) {
	docs, err := s.docs.List(ctx, productsCollection, docstore.OldestFirst)
	if err != nil {
		return nil, unavailable("could not load products", err)
	}
	return toProducts(docs)
}

func (s *DocStore) Get(ctx context.Context, id string) (Product, error) {
	d, err := s.docs.Get(ctx, productsCollection, id)
	if errors.Is(err, docstore.ErrNoDocument) {
		return Product{}, fmt.Errorf("%w: product %q", storeerr.ErrNotFound, id)
	}
	if err != nil {
		return Product{}, unavailable("could not load product "+id, err)
	}
	return toProduct(d)
}

func (s *DocStore) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	docs, err := s.docs.Find(ctx, productsCollection, docstore.Filter{
		Path:     []string{"category"},
		Value:    normalizeCategory(category),
		FoldCase: true,
	}, docstore.OldestFirst)
	if err != nil {
		return nil, unavailable("could not load category "+category, err)
	}

	out, err := toProducts(docs)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", storeerr.ErrEmptyCategory, category)
	}
	return out, nil
}

func (s *DocStore) Categories(ctx context.Context) ([]string, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return uniqueCategories(all), nil
}

// Search filters the full listing; the document store has no substring index.
func (s *DocStore) Search(ctx context.Context, text string) ([]Product, error) {
	if searchQuery(text) == "" {
		return []Product{}, nil
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterTitle(all, text), nil
}

// Export writes p as a new document. Ids are assigned by the store, so the
// input id is dropped.
func (s *DocStore) Export(ctx context.Context, p Product) (string, error) {
	d, err := s.docs.Insert(ctx, productsCollection, productDoc{
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
	})
	if err != nil {
		return "", unavailable("could not export product "+p.Title, err)
	}
	return d.ID, nil
}

func toProducts(docs []docstore.Document) ([]Product, error) {
	out := make([]Product, 0, len(docs))
	for _, d := range docs {
		p, err := toProduct(d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toProduct(d docstore.Document) (Product, error) {
	var body productDoc
	if err := d.Decode(&body); err != nil {
		return Product{}, unavailable("malformed product", err)
	}
	return Product{
		ID:       d.ID,
		Title:    body.Title,
		Price:    body.Price,
		Image:    body.Image,
		Category: body.Category,
	}, nil
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%w: %s: %v", storeerr.ErrDataUnavailable, msg, err)
}
