package storefront

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"WonderFarm/internal/cart"
	"WonderFarm/internal/catalog"
	"WonderFarm/internal/checkout"
	"WonderFarm/internal/notify"
	"WonderFarm/internal/order"
	"WonderFarm/internal/view"
	"WonderFarm/internal/wallet"
)

// Session is the state of the one shopper using the storefront.
type Session struct {
	Sources  *Sources
	Cart     *cart.Cart
	Wallet   *wallet.Wallet
	Notifier *notify.Notifier
	Checkout *checkout.Service

	Catalog *view.Loader[[]catalog.Product]
	Search  *view.Loader[[]catalog.Product]
	Detail  *view.Loader[catalog.Product]
	History *view.Loader[[]order.Order]
}

type SessionDeps struct {
	Sources   *Sources
	Snapshots cart.Snapshots
	User      wallet.User
	Metrics   *checkout.Metrics
	Log       *zap.Logger
}

// NewSession wires the session and restores the cart from its last snapshot.
func NewSession(ctx context.Context, deps SessionDeps) *Session {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	c := cart.New(deps.Snapshots, log.Named("cart"))
	c.Restore(ctx)

	w := wallet.New(deps.User, log.Named("wallet"))
	n := notify.New(log.Named("notify"))

	return &Session{
		Sources:  deps.Sources,
		Cart:     c,
		Wallet:   w,
		Notifier: n,
		Checkout: checkout.NewService(c, w, deps.Sources.Orders, n, deps.Metrics, log.Named("checkout")),
		Catalog:  view.NewLoader[[]catalog.Product]("catalog", log, nil),
		Search:   view.NewLoader[[]catalog.Product]("search", log, nil),
		Detail:   view.NewLoader[catalog.Product]("detail", log, nil),
		History:  view.NewLoader[[]order.Order]("history", log, nil),
	}
}

// LoadCatalog lists everything, or one category when category is set.
func (s *Session) LoadCatalog(ctx context.Context, category string) view.State[[]catalog.Product] {
	return s.Catalog.Load(ctx, func(ctx context.Context) ([]catalog.Product, error) {
		if strings.TrimSpace(category) == "" {
			return s.Sources.Catalog.ListAll(ctx)
		}
		return s.Sources.Catalog.ListByCategory(ctx, category)
	})
}

func (s *Session) LoadSearch(ctx context.Context, text string) view.State[[]catalog.Product] {
	return s.Search.Load(ctx, func(ctx context.Context) ([]catalog.Product, error) {
		return s.Sources.Catalog.Search(ctx, text)
	})
}

func (s *Session) LoadItem(ctx context.Context, id string) view.State[catalog.Product] {
	return s.Detail.Load(ctx, func(ctx context.Context) (catalog.Product, error) {
		return s.Sources.Catalog.Get(ctx, id)
	})
}

func (s *Session) LoadHistory(ctx context.Context) view.State[[]order.Order] {
	userID := s.Wallet.User().ID
	return s.History.Load(ctx, func(ctx context.Context) ([]order.Order, error) {
		return s.Sources.Orders.ListForUser(ctx, userID)
	})
}

// Close tears down the screens so late results are dropped, and stops the
// notification timer.
func (s *Session) Close() {
	s.Catalog.Reset()
	s.Search.Reset()
	s.Detail.Reset()
	s.History.Reset()
	s.Notifier.Close()
}
