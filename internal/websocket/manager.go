// Package websocket accepts live page connections and drives one Session per
// client. It also fans out broadcasts such as content reloads.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 54 * time.Second
	sendBuffer          = 64
	maxMessageBytes     = 32 << 10
)

var errShutdown = errors.New("websocket manager is shut down")

// Options configures a Manager.
type Options struct {
	OriginValidator OriginValidator
	NewSession      SessionFactory
	Logger          logging.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Manager handles connection lifecycle and broadcasting.
//
// The hub goroutine owns registration and broadcast fan-out. Each client runs
// a read loop on the accepting request goroutine and a write pump of its own.
type Manager struct {
	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	originValidator OriginValidator
	newSession      SessionFactory
	logger          logging.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration
	pingInterval time.Duration

	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	isShutdown   atomic.Bool
}

// NewManager creates a manager and starts its hub.
func NewManager(opts Options) *Manager {
	if opts.NewSession == nil {
		panic("websocket: NewSession is required")
	}
	if opts.OriginValidator == nil {
		opts.OriginValidator = AllowList(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		clients:         make(map[*Client]struct{}),
		broadcast:       make(chan []byte, 16),
		register:        make(chan *Client, 32),
		unregister:      make(chan *Client, 32),
		originValidator: opts.OriginValidator,
		newSession:      opts.NewSession,
		logger:          opts.Logger.WithComponent("websocket"),
		readTimeout:     opts.ReadTimeout,
		writeTimeout:    opts.WriteTimeout,
		pingInterval:    opts.PingInterval,
		ctx:             ctx,
		cancel:          cancel,
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runHub()
	}()
	return m
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.isShutdown.Load() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	if origin := r.Header.Get("Origin"); origin != "" && !sameHost(origin, r.Host) &&
		!m.originValidator.IsAllowedOrigin(origin) {
		m.logger.Warn(r.Context(), nil, "WebSocket connection rejected: origin not allowed",
			"origin", origin, "remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origins were checked above.
		InsecureSkipVerify: true,
		CompressionMode:    websocket.CompressionDisabled,
	})
	if err != nil {
		m.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	client := &Client{
		ID:           uuid.NewString(),
		RemoteAddr:   r.RemoteAddr,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		lastActivity: time.Now(),
	}

	m.wg.Add(1)
	defer m.wg.Done()
	m.serveClient(client)
}

func (m *Manager) serveClient(client *Client) {
	ctx, cancel := context.WithCancel(m.ctx)
	defer cancel()

	session, err := m.newSession(ctx, client)
	if err != nil {
		m.logger.Error(ctx, err, "Failed to create session", "client", client.ID)
		_ = client.conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}

	select {
	case m.register <- client:
	case <-ctx.Done():
		session.Close()
		_ = client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		m.writePump(ctx, client)
	}()

	m.readLoop(ctx, client, session)

	session.Close()
	client.closeSend()
	cancel()
	<-writerDone

	select {
	case m.unregister <- client:
	case <-m.ctx.Done():
	}
	_ = client.conn.Close(websocket.StatusNormalClosure, "")
}

func (m *Manager) readLoop(ctx context.Context, client *Client, session Session) {
	for {
		readCtx, cancel := context.WithTimeout(ctx, m.readTimeout)
		_, data, err := client.conn.Read(readCtx)
		cancel()
		if err != nil {
			switch status := websocket.CloseStatus(err); {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				m.logger.Debug(ctx, "WebSocket client disconnected", "client", client.ID)
			case errors.Is(err, context.Canceled):
			default:
				m.logger.Debug(ctx, "WebSocket read ended", "client", client.ID, "reason", err.Error())
			}
			return
		}

		client.touch()
		if err := session.HandleMessage(ctx, data); err != nil {
			m.logger.Warn(ctx, err, "Session ended by message handler", "client", client.ID)
			return
		}
	}
}

func (m *Manager) writePump(ctx context.Context, client *Client) {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, m.writeTimeout)
			err := client.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				m.logger.Debug(ctx, "WebSocket write failed", "client", client.ID, "reason", err.Error())
				_ = client.conn.CloseNow()
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, m.writeTimeout)
			err := client.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				_ = client.conn.CloseNow()
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) runHub() {
	for {
		select {
		case client := <-m.register:
			m.clientsMutex.Lock()
			m.clients[client] = struct{}{}
			n := len(m.clients)
			m.clientsMutex.Unlock()
			m.logger.Debug(m.ctx, "WebSocket client connected", "client", client.ID, "clients", n)

		case client := <-m.unregister:
			m.clientsMutex.Lock()
			delete(m.clients, client)
			n := len(m.clients)
			m.clientsMutex.Unlock()
			m.logger.Debug(m.ctx, "WebSocket client removed", "client", client.ID, "clients", n)

		case message := <-m.broadcast:
			m.clientsMutex.RLock()
			for client := range m.clients {
				client.Send(message)
			}
			m.clientsMutex.RUnlock()

		case <-m.ctx.Done():
			return
		}
	}
}

// Broadcast marshals v to JSON and queues it for every connected client.
func (m *Manager) Broadcast(v any) error {
	if m.isShutdown.Load() {
		return errShutdown
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case m.broadcast <- data:
		return nil
	case <-m.ctx.Done():
		return errShutdown
	default:
		m.logger.Warn(m.ctx, nil, "Broadcast channel full, dropping message")
		return errors.New("broadcast channel full")
	}
}

// ConnectedClients returns the number of registered clients.
func (m *Manager) ConnectedClients() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	return len(m.clients)
}

// Shutdown cancels every client and waits for them to finish or ctx to end.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownOnce.Do(func() {
		m.isShutdown.Store(true)
		m.cancel()
	})

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Debug(ctx, "WebSocket manager shut down")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsShutdown reports whether Shutdown was called.
func (m *Manager) IsShutdown() bool {
	return m.isShutdown.Load()
}
