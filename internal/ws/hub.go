package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrTooManyConnections is returned by Add when the hub is full.
var ErrTooManyConnections = errors.New("too many connections")

// Hub tracks the live connections of the server.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*Conn]bool
	maxConns int // zero means unlimited
	opts     ConnOptions
	log      *zap.SugaredLogger
}

func NewHub(maxConns int, opts ConnOptions, log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		conns:    make(map[*Conn]bool),
		maxConns: maxConns,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// Add registers ws and starts its write pump. The caller owns the read side.
func (h *Hub) Add(ws *websocket.Conn) (*Conn, error) {
	h.mu.Lock()
	if h.maxConns > 0 && len(h.conns) >= h.maxConns {
		h.mu.Unlock()
		return nil, ErrTooManyConnections
	}
	c := newConn(ws, h, h.opts)
	h.conns[c] = true
	h.mu.Unlock()

	go c.writePump()
	return c, nil
}

// Remove unregisters c and closes it. Safe to call more than once.
func (h *Hub) Remove(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll closes every connection, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*Conn]bool)
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}
