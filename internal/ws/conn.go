package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ezDecode/SortVisualiser/internal/protocol"
	"github.com/ezDecode/SortVisualiser/internal/session"
)

// ErrConnClosed is returned by Send after the connection went away.
var ErrConnClosed = fmt.Errorf("websocket connection closed: %w", session.ErrTransportClosed)

const maxMessageSize = 64 << 10

type ConnOptions struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	PingInterval time.Duration
}

func (o ConnOptions) withDefaults() ConnOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongTimeout {
		o.PingInterval = o.PongTimeout * 9 / 10
	}
	return o
}

// Conn is one client connection. Send stamps a per-connection sequence
// number and hands the encoded message to the write pump, blocking while the
// send buffer is full so steps are never dropped.
type Conn struct {
	ws   *websocket.Conn
	hub  *Hub
	opts ConnOptions

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex // orders seq stamping with enqueueing
	seq uint64
}

func newConn(ws *websocket.Conn, hub *Hub, opts ConnOptions) *Conn {
	return &Conn{
		ws:   ws,
		hub:  hub,
		opts: opts,
		send: make(chan []byte, opts.SendBuffer),
		done: make(chan struct{}),
	}
}

// Send implements session.Transport.
func (c *Conn) Send(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	c.seq++
	msg.Seq = c.seq
	data, err := json.Marshal(msg)
	if err != nil {
		c.seq--
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnClosed
	}
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		if c.hub != nil {
			c.hub.Remove(c)
		}
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.log.Debugw("ws write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.opts.WriteTimeout))
			return
		}
	}
}

// readPump decodes client events and passes them to handle in arrival order.
// It returns when the peer disconnects or the connection is closed.
func (c *Conn) readPump(ctx context.Context, handle func(context.Context, protocol.Message)) {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.log.Debugw("ws read failed", "error", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.log.Debugw("ignoring malformed message", "error", err)
			continue
		}
		handle(ctx, msg)
	}
}
