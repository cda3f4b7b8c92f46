package storefront

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"WonderFarm/internal/cart"
	"WonderFarm/internal/catalog"
	"WonderFarm/internal/checkout"
	"WonderFarm/internal/storeerr"
	"WonderFarm/internal/view"
	"WonderFarm/internal/wallet"
	"WonderFarm/pkg/kit"
)

const backToCatalog = "/"

type Server struct {
	Session *Session
	Log     *zap.Logger
}

type screen[T any] struct {
	view.State[T]
	Back string `json:"back,omitempty"`
}

type itemScreen struct {
	screen[catalog.Product]
	InCart        int `json:"inCart"`
	MaxAffordable int `json:"maxAffordable"`
}

type cartView struct {
	Lines   []cart.Line  `json:"lines"`
	Summary cart.Summary `json:"summary"`
}

type walletView struct {
	User        wallet.User `json:"user"`
	DisplayName string      `json:"displayName"`
}

type notificationView struct {
	Message    string `json:"message"`
	Visible    bool   `json:"visible"`
	DurationMS int64  `json:"duration_ms"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

type setCountRequest struct {
	Count int `json:"count"`
}

type setCoinsRequest struct {
	Coins int64 `json:"coins"`
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/screens", func(r chi.Router) {
		r.Get("/catalog", s.catalogScreen)
		r.Get("/catalog/{category}", s.catalogScreen)
		r.Get("/search", s.searchScreen)
		r.Get("/items/{id}", s.itemDetail)
		r.Get("/orders", s.ordersScreen)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.getCart)
		r.Delete("/", s.clearCart)
		r.Post("/items", s.addItem)
		r.Put("/items/{id}", s.setCount)
		r.Delete("/items/{id}", s.removeItem)
	})

	r.Get("/checkout/quote", s.quote)

	r.Get("/wallet", s.getWallet)
	r.Put("/wallet", s.setCoins)

	r.Get("/notification", s.getNotification)
	r.Delete("/notification", s.dismissNotification)
}

func (s *Server) catalogScreen(w http.ResponseWriter, r *http.Request) {
	writeScreen(w, s.Session.LoadCatalog(r.Context(), chi.URLParam(r, "category")))
}

func (s *Server) searchScreen(w http.ResponseWriter, r *http.Request) {
	writeScreen(w, s.Session.LoadSearch(r.Context(), r.URL.Query().Get("q")))
}

func (s *Server) itemDetail(w http.ResponseWriter, r *http.Request) {
	st := s.Session.LoadItem(r.Context(), chi.URLParam(r, "id"))

	out := itemScreen{screen: toScreen(st)}
	if st.Status == view.StatusReady {
		out.InCart = s.Session.Cart.QuantityOf(st.Data.ID)
		out.MaxAffordable = s.Session.Checkout.MaxAffordable(st.Data.Price, 0)
	}
	kit.WriteJSON(w, screenStatus(st), out)
}

func (s *Server) ordersScreen(w http.ResponseWriter, r *http.Request) {
	writeScreen(w, s.Session.LoadHistory(r.Context()))
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) clearCart(w http.ResponseWriter, _ *http.Request) {
	s.Session.Cart.Clear()
	kit.WriteJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := kit.DecodeJSON(r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.ProductID == "" || req.Count <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id and count >= 1 required", nil)
		return
	}

	p, err := s.Session.Sources.Catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		s.fail(w, r, "lookup product failed", err)
		return
	}

	if !s.Session.Checkout.CanAdd(p.Price, req.Count) {
		s.insufficient(w, r, p.Price, req.Count)
		return
	}

	s.Session.Cart.Add(p, req.Count)
	kit.WriteJSON(w, http.StatusCreated, s.cartView())
}

func (s *Server) setCount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setCountRequest
	if err := kit.DecodeJSON(r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	line, ok := s.line(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "item not in cart", nil)
		return
	}

	if delta := req.Count - line.Count; delta > 0 && !s.Session.Checkout.CanAdd(line.Price, delta) {
		s.insufficient(w, r, line.Price, delta)
		return
	}

	s.Session.Cart.SetQuantity(id, req.Count)
	kit.WriteJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	s.Session.Cart.Remove(chi.URLParam(r, "id"))
	kit.WriteJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) quote(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Session.Checkout.Quote())
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	res, err := s.Session.Checkout.Checkout(r.Context())
	switch {
	case err == nil:
		kit.WriteJSON(w, http.StatusCreated, res)
	case errors.Is(err, checkout.ErrEmptyCart):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, checkout.ErrInsufficientCoins):
		kit.WriteError(w, r, http.StatusPaymentRequired, err.Error(), s.Session.Checkout.Quote())
	default:
		s.fail(w, r, "checkout failed", err)
	}
}

func (s *Server) getWallet(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.walletView())
}

func (s *Server) setCoins(w http.ResponseWriter, r *http.Request) {
	var req setCoinsRequest
	if err := kit.DecodeJSON(r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	s.Session.Wallet.Credit(req.Coins)
	kit.WriteJSON(w, http.StatusOK, s.walletView())
}

func (s *Server) getNotification(w http.ResponseWriter, _ *http.Request) {
	n := s.Session.Notifier.Current()
	kit.WriteJSON(w, http.StatusOK, notificationView{
		Message:    n.Message,
		Visible:    n.Visible,
		DurationMS: n.Duration.Milliseconds(),
	})
}

func (s *Server) dismissNotification(w http.ResponseWriter, _ *http.Request) {
	s.Session.Notifier.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cartView() cartView {
	return cartView{
		Lines:   s.Session.Cart.Lines(),
		Summary: s.Session.Cart.Summary(),
	}
}

func (s *Server) walletView() walletView {
	return walletView{
		User:        s.Session.Wallet.User(),
		DisplayName: s.Session.Wallet.DisplayName(),
	}
}

func (s *Server) line(id string) (cart.Line, bool) {
	for _, l := range s.Session.Cart.Lines() {
		if l.ID == id {
			return l, true
		}
	}
	return cart.Line{}, false
}

// insufficient leaves cost out when price*count does not fit in an int64.
func (s *Server) insufficient(w http.ResponseWriter, r *http.Request, price int64, count int) {
	details := map[string]int64{
		"unitPrice": price,
		"count":     int64(count),
		"cartTotal": s.Session.Cart.TotalPrice(),
		"available": s.Session.Wallet.Balance(),
	}
	if cost, ok := cart.LineCost(price, count); ok {
		details["cost"] = cost
	}
	kit.WriteError(w, r, http.StatusPaymentRequired, "not enough coins", details)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := storeerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
	kit.WriteError(w, r, status, err.Error(), nil)
}

func toScreen[T any](st view.State[T]) screen[T] {
	out := screen[T]{State: st}
	if st.Status == view.StatusFailed {
		out.Back = backToCatalog
	}
	return out
}

func writeScreen[T any](w http.ResponseWriter, st view.State[T]) {
	kit.WriteJSON(w, screenStatus(st), toScreen(st))
}

// screenStatus: empty is a normal screen; a load superseded by a newer one
// answers 202 with the state that is current now.
func screenStatus[T any](st view.State[T]) int {
	switch st.Status {
	case view.StatusFailed:
		return storeerr.HTTPStatus(st.Err)
	case view.StatusLoading, view.StatusIdle:
		return http.StatusAccepted
	default:
		return http.StatusOK
	}
}

