package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"WonderFarm/internal/cart"
	"WonderFarm/internal/order"
	"WonderFarm/internal/storeerr"
	"WonderFarm/internal/wallet"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

const (
	SuccessMessage = "¡Compra realizada con éxito! 🎉 Ingresa al juego para ver tus productos comprados"
	FailureMessage = "❌ Error al procesar la compra. Inténtalo de nuevo"

	successDuration = 5 * time.Second
	failureDuration = 3 * time.Second
)

type Notifier interface {
	Show(message string, d time.Duration)
}

// Quote is what the purchase confirmation shows before the user commits.
type Quote struct {
	ItemCount  int   `json:"itemCount"`
	TotalUnits int   `json:"totalUnits"`
	Total      int64 `json:"total"`
	Available  int64 `json:"available"`
	Remaining  int64 `json:"remaining"`
	CanAfford  bool  `json:"canAfford"`
}

type Result struct {
	OrderID string `json:"order_id"`
	Total   int64  `json:"total"`
}

type Service struct {
	cart    *cart.Cart
	wallet  *wallet.Wallet
	orders  order.Store
	notify  Notifier
	metrics *Metrics
	log     *zap.Logger

	// one checkout at a time
	inFlight sync.Mutex
}

func NewService(c *cart.Cart, w *wallet.Wallet, orders order.Store, n Notifier, m *Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cart:    c,
		wallet:  w,
		orders:  orders,
		notify:  n,
		metrics: m,
		log:     log,
	}
}

func (s *Service) Quote() Quote {
	sum := s.cart.Summary()
	coins := s.wallet.Balance()
	return Quote{
		ItemCount:  sum.ItemCount,
		TotalUnits: sum.TotalItems,
		Total:      sum.TotalPrice,
		Available:  coins,
		Remaining:  coins - sum.TotalPrice,
		CanAfford:  sum.TotalPrice <= coins,
	}
}

// CanAdd reports whether count more units of a product at price still fit
// in the wallet together with what is already in the cart.
func (s *Service) CanAdd(price int64, count int) bool {
	if count <= 0 {
		return true
	}
	room := s.wallet.Balance() - s.cart.TotalPrice()
	if room < 0 || price < 0 {
		return false
	}
	if price == 0 {
		return true
	}
	return int64(count) <= room/price
}

// MaxAffordable caps a quantity picker at what the balance can pay for.
// limit <= 0 means no stock limit.
func (s *Service) MaxAffordable(unitPrice int64, limit int) int {
	if unitPrice <= 0 {
		return limit
	}
	n := s.wallet.Balance() / unitPrice
	if limit > 0 && int64(limit) < n {
		return limit
	}
	return int(n)
}

// Checkout turns the cart into an order. The wallet is debited and the
// ordered lines taken out of the cart only after the order store accepted
// the order, so a failure leaves both exactly as they were. Items put in the
// cart while the order is being created stay there.
func (s *Service) Checkout(ctx context.Context) (Result, error) {
	s.inFlight.Lock()
	defer s.inFlight.Unlock()

	lines := s.cart.Lines()
	if len(lines) == 0 {
		s.metrics.observe(resultEmpty)
		return Result{}, ErrEmptyCart
	}

	draft := s.draft(lines)
	if draft.Total > s.wallet.Balance() {
		s.metrics.observe(resultInsufficient)
		return Result{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCoins, draft.Total, s.wallet.Balance())
	}

	id, err := s.orders.Create(ctx, draft)
	if err != nil {
		s.log.Error("create order failed", zap.Error(err), zap.Int64("total", draft.Total))
		s.metrics.observe(resultFailed)
		s.show(FailureMessage, failureDuration)
		return Result{}, fmt.Errorf("%w: %v", storeerr.ErrOrderCreation, err)
	}

	s.wallet.Debit(draft.Total)
	s.cart.Subtract(lines)
	s.metrics.observe(resultOK)
	s.show(SuccessMessage, successDuration)

	s.log.Info("order created", zap.String("order_id", id), zap.Int64("total", draft.Total))
	return Result{OrderID: id, Total: draft.Total}, nil
}

func (s *Service) draft(lines []cart.Line) order.Draft {
	u := s.wallet.User()

	items := make([]order.Line, 0, len(lines))
	var total int64
	for _, l := range lines {
		items = append(items, order.Line{
			ID:       l.ID,
			Title:    l.Title,
			Category: l.Category,
			Price:    l.Price,
			Quantity: l.Count,
			Image:    l.Image,
		})
		total += l.Price * int64(l.Count)
	}

	return order.Draft{
		Buyer: order.Buyer{
			UserID:    u.ID,
			Name:      s.wallet.DisplayName(),
			FarmAlias: u.FarmAlias,
		},
		Items: items,
		Total: total,
	}
}

func (s *Service) show(msg string, d time.Duration) {
	if s.notify != nil {
		s.notify.Show(msg, d)
	}
}
