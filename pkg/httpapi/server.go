// Package httpapi exposes a betree Tree over HTTP: point reads and
// writes on individual keys, a full-tree scan, and a Prometheus metrics
// endpoint. It is intentionally small, a convenience surface for
// embedding a betree instance behind a network boundary, not a
// general-purpose database server.
package httpapi

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/betree/pkg/betree"
)

// Server wraps a betree Tree and Store with an HTTP router. betree
// itself assumes a single writer and allows no reader alongside it;
// Server serializes every request that touches the tree with a mutex so
// it's safe to point many HTTP clients at one instance.
type Server struct {
	tree    *betree.Tree
	store   betree.Store
	metrics *betree.Metrics

	writeMu sync.Mutex
	router  chi.Router
}

// New builds a Server around tree/store. metrics may be nil, in which
// case /metrics still serves the default Prometheus registry (without
// betree collectors) and Tree operations simply don't record
// observations.
func New(tree *betree.Tree, store betree.Store, metrics *betree.Metrics) *Server {
	s := &Server{tree: tree, store: store, metrics: metrics}
	tree.Metrics = metrics

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/keys/{key}", s.handleGet)
		r.Put("/keys/{key}", s.handlePut)
		r.Get("/scan", s.handleScan)
	})
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
