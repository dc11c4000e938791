package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/protocol"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// tokenHeader matches the header the server accepts.
const tokenHeader = "X-Sortviz-Token"

// WSClient dials the step server.
type WSClient struct {
	url   string
	token string
	log   *zap.SugaredLogger
}

// NewWSClient creates a dialer for the given WebSocket URL.
func NewWSClient(url, token string, log *zap.SugaredLogger) *WSClient {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WSClient{url: url, token: token, log: log}
}

// Dial makes a single connection attempt.
func (c *WSClient) Dial(ctx context.Context) (Conn, error) {
	var header http.Header
	if c.token != "" {
		header = http.Header{tokenHeader: []string{c.token}}
	}
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", c.url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}

	pingCtx, cancel := context.WithCancel(context.Background())
	conn := &wsConn{ws: ws, cancel: cancel, log: c.log}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	ws.SetReadDeadline(time.Now().Add(pongTimeout))
	go conn.pingLoop(pingCtx)
	return conn, nil
}

// DialWithRetry dials until it succeeds or ctx ends, backing off
// exponentially between attempts.
func DialWithRetry(ctx context.Context, d Dialer, log *zap.SugaredLogger) (Conn, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	delay := reconnectBaseDelay
	for {
		conn, err := d.Dial(ctx)
		if err == nil {
			return conn, nil
		}
		log.Warnw("dial failed", "error", err, "retry", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, reconnectMaxDelay)
	}
}

type wsConn struct {
	ws     *websocket.Conn
	cancel context.CancelFunc
	log    *zap.SugaredLogger

	writeMu   sync.Mutex // serialises all writes (ping, control events)
	closeOnce sync.Once
	closed    atomic.Bool
	lastSeq   uint64
}

func (c *wsConn) Send(msg protocol.Message) error {
	if c.closed.Load() {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// Receive blocks for the next server message. Malformed frames are skipped.
// ctx is honoured between frames only; Close interrupts a blocked read.
func (c *wsConn) Receive(ctx context.Context) (protocol.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return protocol.Message{}, err
		}
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.Close()
			return protocol.Message{}, err
		}
		c.ws.SetReadDeadline(time.Now().Add(pongTimeout))

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debugw("skipping malformed frame", "error", err)
			continue
		}
		if msg.Seq != 0 && c.lastSeq != 0 && msg.Seq != c.lastSeq+1 {
			c.log.Warnw("sequence gap", "expected", c.lastSeq+1, "got", msg.Seq)
		}
		c.lastSeq = msg.Seq
		return msg, nil
	}
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		c.writeMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

// pingLoop sends periodic pings until ctx is cancelled or a write fails.
func (c *wsConn) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
