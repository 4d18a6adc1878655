// Package server serves the portfolio pages, the contact endpoints and the
// live websocket behind a chi router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/inbox"
	"github.com/conneroisu/folio/internal/live"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/server/middleware"
	"github.com/conneroisu/folio/internal/websocket"
	"github.com/go-chi/chi/v5"
)

// Options are the collaborators a Server is built from. Inbox may be nil
// when messages are delivered to a remote endpoint only.
type Options struct {
	Config  *config.Config
	Content *content.Store
	Sender  contact.Sender
	Inbox   *inbox.Store
	Logger  logging.Logger
}

// Server hosts the site.
type Server struct {
	config  *config.Config
	content *content.Store
	sender  contact.Sender
	inbox   *inbox.Store
	logger  logging.Logger

	ws      *websocket.Manager
	limiter *middleware.RateLimiter
	router  chi.Router
	now     func() time.Time

	httpServer   *http.Server
	serverMutex  sync.RWMutex
	shutdownOnce sync.Once
	shutdownDone chan struct{}
}

// New builds the router and the websocket manager. Content reloads are
// broadcast to every live page.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Content == nil {
		return nil, errors.New("server: content store is required")
	}
	if opts.Sender == nil {
		return nil, errors.New("server: contact sender is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	cfg := opts.Config
	s := &Server{
		config:  cfg,
		content: opts.Content,
		sender:  opts.Sender,
		inbox:   opts.Inbox,
		logger:  logger.WithComponent("server"),
		now:     time.Now,

		shutdownDone: make(chan struct{}),
	}

	factory := live.NewFactory(live.Config{
		Sender:         opts.Sender,
		RevertDelay:    cfg.Contact.RevertDelay,
		Threshold:      cfg.Navigation.Threshold,
		ScrolledOffset: cfg.Navigation.ScrolledOffset,
		Throttle:       cfg.Navigation.Throttle,
		Logger:         logger,
	})
	s.ws = websocket.NewManager(websocket.Options{
		OriginValidator: websocket.AllowList(cfg.Server.AllowedOrigins),
		NewSession:      factory.NewSession,
		Logger:          logger,
	})

	if cfg.Contact.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(middleware.RateLimit{
			RequestsPerMinute: cfg.Contact.RateLimit,
		}, logger)
	}

	s.content.OnReload(func(doc *content.Document) {
		if err := s.ws.Broadcast(live.ReloadMessage()); err != nil {
			s.logger.Warn(context.Background(), err, "Failed to broadcast reload")
			return
		}
		s.logger.Info(context.Background(), "Content reloaded", "name", doc.Personal.Name,
			"projects", len(doc.Projects), "clients", s.ws.ConnectedClients())
	})

	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Manager returns the websocket manager.
func (s *Server) Manager() *websocket.Manager {
	return s.ws
}

// Start listens on the configured address and serves until ctx is done or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or Shutdown is called.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, err, "Shutdown failed")
		}
	})
	defer stop()

	s.logger.Info(ctx, "Serving portfolio", "addr", ln.Addr().String(), "content", s.content.Path())
	err := server.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-s.shutdownDone
	return nil
}

// Shutdown closes live connections first, then drains HTTP requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		defer close(s.shutdownDone)
		s.logger.Info(ctx, "Shutting down server")

		if err := s.ws.Shutdown(ctx); err != nil {
			shutdownErr = err
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server != nil {
			if err := server.Shutdown(ctx); err != nil && shutdownErr == nil {
				shutdownErr = err
			}
		}
	})
	return shutdownErr
}
