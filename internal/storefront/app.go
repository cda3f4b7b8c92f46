package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"WonderFarm/internal/catalog"
	"WonderFarm/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

const (
	readyTimeout = 2 * time.Second

	checkoutLimit  = 5
	checkoutWindow = time.Minute
)

func NewHandler(sess *Session, httpDeps HTTPDeps) http.Handler {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, log)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(sess.Sources, log))

	s := &Server{Session: sess, Log: log}
	s.Routes(r)

	limiter := kit.NewRateLimiter(checkoutLimit, checkoutWindow)
	r.With(limiter.Middleware).Post("/checkout", s.checkout)

	api := &catalog.Server{Store: sess.Sources.Catalog, Log: log}
	r.Mount("/api", api.Routes())

	return r
}

func setupMiddleware(r *chi.Mux, log *zap.Logger) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(src *Sources, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := src.Ping(ctx); err != nil {
			log.Warn("readyz failed", zap.String("source", src.Kind), zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "data source not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
