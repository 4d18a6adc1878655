package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Session is the per-connection handler a Manager drives. HandleMessage is
// called from the connection's read loop, one frame at a time. A non-nil
// error ends the connection.
type Session interface {
	HandleMessage(ctx context.Context, data []byte) error
	Close()
}

// SessionFactory creates the session for a newly accepted client. The
// session pushes frames with client.Send. ctx ends when the client leaves.
type SessionFactory func(ctx context.Context, client *Client) (Session, error)

// OriginValidator interface for WebSocket origin validation
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// Client represents a WebSocket client connection
type Client struct {
	ID         string
	RemoteAddr string

	conn *websocket.Conn
	send chan []byte

	mu           sync.Mutex
	closed       bool
	lastActivity time.Time
}

// Send queues a frame for the client. It never blocks; a frame that does not
// fit in the buffer is dropped and the connection is closed.
func (c *Client) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.closed = true
		close(c.send)
		_ = c.conn.CloseNow()
		return false
	}
}

// LastActivity returns when the client last sent a frame.
func (c *Client) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

// closeSend stops the write pump. Safe to call more than once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
