package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"WonderFarm/internal/storeerr"
	"WonderFarm/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)
	r.Get("/categories", s.categories)
	r.Get("/categories/{category}", s.byCategory)
	r.Get("/search", s.search)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get product failed", err, zap.String("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.Store.Categories(r.Context())
	if err != nil {
		s.fail(w, r, "list categories failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cats)
}

func (s *Server) byCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := s.Store.ListByCategory(r.Context(), category)
	if err != nil {
		s.fail(w, r, "list category failed", err, zap.String("category", category))
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, "search failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	status := storeerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && s.Log != nil {
		s.Log.Error(msg, append(fields, zap.Error(err))...)
	}
	kit.WriteError(w, r, status, err.Error(), nil)
}
