package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"WonderFarm/internal/catalog"
)

type Latency struct {
	Create time.Duration
	List   time.Duration
}

func DefaultLatency() Latency {
	return Latency{Create: 500 * time.Millisecond, List: 600 * time.Millisecond}
}

var exampleBuyer = Buyer{Name: "Fabián Escobar", FarmAlias: "FNEFarm"}

// MemStore is the demo order backend. Create hands out an id and logs the
// order without keeping it; ListForUser always answers with the same two
// example orders built from the catalog, whatever was bought.
type MemStore struct {
	products []catalog.Product
	latency  Latency
	log      *zap.Logger
	now      func() time.Time
}

func NewMemStore(products []catalog.Product, latency Latency, log *zap.Logger) *MemStore {
	if log == nil {
		log = zap.NewNop()
	}
	cp := make([]catalog.Product, len(products))
	copy(cp, products)
	return &MemStore{products: cp, latency: latency, log: log, now: time.Now}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, d Draft) (string, error) {
	if err := sleep(ctx, s.latency.Create); err != nil {
		return "", err
	}
	if err := ValidateDraft(d); err != nil {
		return "", err
	}

	id := fmt.Sprintf("ORDER-%d-%s", s.now().UnixMilli(), randomSuffix(9))
	s.log.Info("order created (mock)",
		zap.String("order_id", id),
		zap.String("user_id", d.Buyer.UserID),
		zap.Int("items", len(d.Items)),
		zap.Int64("total", d.Total),
	)
	return id, nil
}

func (s *MemStore) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	if err := sleep(ctx, s.latency.List); err != nil {
		return nil, err
	}
	if len(s.products) < 4 {
		return []Order{}, nil
	}

	buyer := exampleBuyer
	buyer.UserID = userID

	p := s.products
	return []Order{
		exampleOrder("ORDER-1737820800-abc123", buyer,
			time.Date(2026, time.January, 20, 10, 30, 0, 0, time.UTC),
			lineOf(p[0], 1), lineOf(p[2], 2)),
		exampleOrder("ORDER-1737734400-def456", buyer,
			time.Date(2026, time.January, 19, 15, 45, 0, 0, time.UTC),
			lineOf(p[3], 1), lineOf(p[1], 3)),
	}, nil
}

func exampleOrder(id string, b Buyer, at time.Time, lines ...Line) Order {
	total, _ := Total(lines)
	return Order{ID: id, Buyer: b, Items: lines, Total: total, CreatedAt: at}
}

func lineOf(p catalog.Product, qty int) Line {
	return Line{
		ID:       p.ID,
		Title:    p.Title,
		Category: p.Category,
		Price:    p.Price,
		Quantity: qty,
		Image:    p.Image,
	}
}

func randomSuffix(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
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
