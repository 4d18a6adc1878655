package server

import (
	"net/http"
	"time"

	"github.com/conneroisu/folio/internal/inbox"
	"github.com/conneroisu/folio/internal/server/middleware"
	"github.com/conneroisu/folio/internal/view"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(s.cors)
	r.Use(middleware.Security(middleware.DefaultSecurityHeaders(s.config.Server.Environment == "development")))

	// The websocket handshake must not pass through compression.
	r.Get("/ws", s.ws.ServeHTTP)
	r.Get("/healthz", s.handleHealth)
	r.Post(middleware.CSPReportPath, middleware.CSPReportHandler(s.logger))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(30 * time.Second))

		r.Get("/", s.handleIndex)
		r.Get("/projects/{slug}", s.handleProject)
		r.Handle("/static/*", http.StripPrefix("/static/", view.Static()))

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.RateLimit())
			}
			r.Post("/contact", s.handleContact)
			if s.inbox != nil {
				r.Handle("/api/messages", inbox.NewHandler(s.inbox, s.logger))
			}
		})

		r.NotFound(s.handleNotFound)
	})

	return r
}
