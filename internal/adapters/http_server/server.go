package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotelbook/internal/domain"
)

const RequestTimeout = 15 * time.Second

// Server owns the chi router shared by the API and any extra mounts.
type Server struct{ mux *chi.Mux }

func New() *Server {
	m := chi.NewRouter()

	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(Instrument(log.Logger))
	m.Use(chimw.Recoverer)
	m.Use(Timeout(RequestTimeout))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, domain.NotFoundf("Route %s not found", r.URL.Path))
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method " + r.Method + " not allowed"})
	})
	m.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler such as /metrics or the upload dir.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
