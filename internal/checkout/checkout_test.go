package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WonderFarm/internal/cart"
	"WonderFarm/internal/catalog"
	"WonderFarm/internal/localstore"
	"WonderFarm/internal/order"
	"WonderFarm/internal/storeerr"
	"WonderFarm/internal/wallet"
)

var silo = catalog.Product{ID: "4", Title: "Silo de grano", Price: 50, Image: "/img/silo-grano.png", Category: catalog.CategorySilo}

type notice struct {
	msg string
	d   time.Duration
}

type fakeNotifier struct {
	mu    sync.Mutex
	shown []notice
}

func (f *fakeNotifier) Show(msg string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, notice{msg, d})
}

type fakeOrders struct {
	mu     sync.Mutex
	err    error
	drafts []order.Draft
	block  chan struct{}

	// started receives once Create is entered, before block is waited on
	started chan struct{}
}

func (f *fakeOrders) Ping(ctx context.Context) error { return nil }

func (f *fakeOrders) Create(ctx context.Context, d order.Draft) (string, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, d)
	if f.err != nil {
		return "", f.err
	}
	return "ORDER-1", nil
}

func (f *fakeOrders) ListForUser(ctx context.Context, userID string) ([]order.Order, error) {
	return nil, nil
}

type fixture struct {
	svc     *Service
	cart    *cart.Cart
	wallet  *wallet.Wallet
	orders  *fakeOrders
	notify  *fakeNotifier
	metrics *Metrics
	snaps   *localstore.MemStore
}

func newFixture(t *testing.T, coins int64) *fixture {
	t.Helper()
	f := &fixture{
		snaps:   localstore.NewMemStore(),
		orders:  &fakeOrders{},
		notify:  &fakeNotifier{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	f.cart = cart.New(f.snaps, nil)
	u := wallet.DefaultUser()
	u.Coins = coins
	f.wallet = wallet.New(u, nil)
	f.svc = NewService(f.cart, f.wallet, f.orders, f.notify, f.metrics, nil)
	return f
}

func counter(t *testing.T, m *Metrics, result string) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Checkouts.WithLabelValues(result).Write(&out))
	return out.GetCounter().GetValue()
}

func TestCheckout_ExactBalanceSucceeds(t *testing.T) {
	f := newFixture(t, 100)
	f.cart.Add(silo, 2)

	res, err := f.svc.Checkout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ORDER-1", res.OrderID)
	assert.Equal(t, int64(100), res.Total)
	assert.Equal(t, int64(0), f.wallet.Balance())
	assert.Equal(t, 0, f.cart.LineCount())
	assert.Equal(t, []notice{{SuccessMessage, 5 * time.Second}}, f.notify.shown)
	assert.Equal(t, float64(1), counter(t, f.metrics, resultOK))

	require.Len(t, f.orders.drafts, 1)
	d := f.orders.drafts[0]
	assert.Equal(t, order.Buyer{UserID: "1", Name: "Fabián Escobar", FarmAlias: "FNEFarm"}, d.Buyer)
	assert.Equal(t, []order.Line{{ID: "4", Title: "Silo de grano", Category: "silo", Price: 50, Quantity: 2, Image: "/img/silo-grano.png"}}, d.Items)
	assert.Equal(t, int64(100), d.Total)
}

func TestCheckout_InsufficientCoinsRejected(t *testing.T) {
	f := newFixture(t, 99)
	f.cart.Add(silo, 2)

	_, err := f.svc.Checkout(context.Background())
	require.ErrorIs(t, err, ErrInsufficientCoins)

	assert.Empty(t, f.orders.drafts)
	assert.Equal(t, int64(99), f.wallet.Balance())
	assert.Equal(t, 2, f.cart.QuantityOf(silo.ID))
	assert.Empty(t, f.notify.shown)
	assert.Equal(t, float64(1), counter(t, f.metrics, resultInsufficient))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t, 100)

	_, err := f.svc.Checkout(context.Background())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.orders.drafts)
	assert.Equal(t, int64(100), f.wallet.Balance())
}

func TestCheckout_CreateFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, 1000)
	f.orders.err = storeerr.ErrDataUnavailable
	f.cart.Add(silo, 3)
	before, err := f.snaps.Get(context.Background(), cart.SnapshotKey)
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background())
	require.ErrorIs(t, err, storeerr.ErrOrderCreation)

	assert.Equal(t, int64(1000), f.wallet.Balance())
	assert.Equal(t, 3, f.cart.QuantityOf(silo.ID))
	after, err := f.snaps.Get(context.Background(), cart.SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, []notice{{FailureMessage, 3 * time.Second}}, f.notify.shown)
	assert.Equal(t, float64(1), counter(t, f.metrics, resultFailed))
}

func TestCheckout_OneInFlight(t *testing.T) {
	f := newFixture(t, 100)
	f.orders.block = make(chan struct{})
	f.cart.Add(silo, 2)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := f.svc.Checkout(context.Background())
			errs <- err
		}()
	}
	close(f.orders.block)

	var ok, empty int
	for i := 0; i < 2; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, empty)
	assert.Len(t, f.orders.drafts, 1)
	assert.Equal(t, int64(0), f.wallet.Balance())
}

func TestCheckout_KeepsItemsAddedDuringCreate(t *testing.T) {
	f := newFixture(t, 1000)
	f.orders.block = make(chan struct{})
	f.orders.started = make(chan struct{}, 1)
	cerca := catalog.Product{ID: "9", Title: "Cerca de madera", Price: 10}
	f.cart.Add(silo, 2)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Checkout(context.Background())
		done <- err
	}()

	<-f.orders.started
	f.cart.Add(cerca, 2)
	f.cart.Add(silo, 1)
	close(f.orders.block)
	require.NoError(t, <-done)

	assert.Equal(t, int64(900), f.wallet.Balance())
	assert.Equal(t, 1, f.cart.QuantityOf(silo.ID))
	assert.Equal(t, 2, f.cart.QuantityOf(cerca.ID))
	require.Len(t, f.orders.drafts, 1)
	assert.Equal(t, int64(100), f.orders.drafts[0].Total)
}

func TestCheckout_WithMockOrderStore(t *testing.T) {
	f := newFixture(t, 12526)
	f.svc.orders = order.NewMemStore(catalog.DefaultProducts(), order.Latency{}, nil)
	f.cart.Add(catalog.DefaultProducts()[2], 1)

	res, err := f.svc.Checkout(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^ORDER-\d+-[0-9a-z]{9}$`, res.OrderID)
	assert.Equal(t, int64(12526-2500), f.wallet.Balance())
}

func TestQuote(t *testing.T) {
	f := newFixture(t, 120)
	f.cart.Add(silo, 2)
	f.cart.Add(catalog.Product{ID: "1", Title: "Cerca", Price: 10}, 3)

	assert.Equal(t, Quote{
		ItemCount:  2,
		TotalUnits: 5,
		Total:      130,
		Available:  120,
		Remaining:  -10,
		CanAfford:  false,
	}, f.svc.Quote())
}

func TestCanAdd(t *testing.T) {
	f := newFixture(t, 100)
	f.cart.Add(silo, 1)

	assert.True(t, f.svc.CanAdd(50, 1))
	assert.False(t, f.svc.CanAdd(51, 1))
	assert.False(t, f.svc.CanAdd(20, 3))
	assert.True(t, f.svc.CanAdd(1000, 0))
	assert.True(t, f.svc.CanAdd(0, 1<<40))
}

func TestCanAdd_HugeCountDoesNotWrap(t *testing.T) {
	f := newFixture(t, 0)
	assert.False(t, f.svc.CanAdd(1000, 9223372036854776))

	f = newFixture(t, 100)
	f.cart.Add(silo, 1)
	assert.False(t, f.svc.CanAdd(1<<62, 4))
	assert.False(t, f.svc.CanAdd(-1, 1))
}

func TestMaxAffordable(t *testing.T) {
	tests := []struct {
		name  string
		coins int64
		price int64
		limit int
		want  int
	}{
		{name: "coins bound", coins: 100, price: 30, limit: 10, want: 3},
		{name: "limit bound", coins: 1000, price: 30, limit: 5, want: 5},
		{name: "no limit", coins: 100, price: 25, limit: 0, want: 4},
		{name: "broke", coins: 10, price: 30, limit: 5, want: 0},
		{name: "free item", coins: 0, price: 0, limit: 7, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.coins)
			assert.Equal(t, tt.want, f.svc.MaxAffordable(tt.price, tt.limit))
		})
	}
}
