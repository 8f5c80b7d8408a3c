// Package web serves the coaching page: the latest analysis bundle from
// object storage rendered as a small HTML page.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	shared "github.com/bndxn/secure-app/pkg"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  shared.BlobStore
	bucket string
	prefix string
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store shared.BlobStore, bucket, prefix string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		store:  store,
		bucket: bucket,
		prefix: prefix,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))

	s.router.Get("/", s.handleHome)
	s.router.Get("/health", s.handleHealth)
}
