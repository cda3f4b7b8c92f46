package order

import (
	"context"
	"fmt"

	"WonderFarm/internal/docstore"
	"WonderFarm/internal/storeerr"
)

const ordersCollection = "orders"

type Documents interface {
	Ping(ctx context.Context) error
	Insert(ctx context.Context, collection string, body any) (docstore.Document, error)
	Find(ctx context.Context, collection string, f docstore.Filter, order docstore.Order) ([]docstore.Document, error)
}

// DocStore keeps orders in the "orders" collection. The draft is stored as
// the document body; id and createdAt come from the document store.
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

func (s *DocStore) Create(ctx context.Context, d Draft) (string, error) {
	if err := ValidateDraft(d); err != nil {
		return "", err
	}

	doc, err := s.docs.Insert(ctx, ordersCollection, d)
	if err != nil {
		return "", fmt.Errorf("%w: %v", storeerr.ErrDataUnavailable, err)
	}
	return doc.ID, nil
}

func (s *DocStore) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	docs, err := s.docs.Find(ctx, ordersCollection, docstore.Filter{
		Path:  []string{"buyer", "userId"},
		Value: userID,
	}, docstore.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load orders: %v", storeerr.ErrDataUnavailable, err)
	}

	out := make([]Order, 0, len(docs))
	for _, doc := range docs {
		var body Draft
		if err := doc.Decode(&body); err != nil {
			return nil, fmt.Errorf("%w: malformed order: %v", storeerr.ErrDataUnavailable, err)
		}
		out = append(out, Order{
			ID:        doc.ID,
			Buyer:     body.Buyer,
			Items:     body.Items,
			Total:     body.Total,
			CreatedAt: doc.CreatedAt,
		})
	}

	SortNewestFirst(out)
	return out, nil
}
