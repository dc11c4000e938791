package client

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/protocol"
	"github.com/ezDecode/SortVisualiser/internal/session"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

// Local is an offline Dialer: each Conn runs its own session coordinator in
// process, so the front end behaves exactly as against a server.
type Local struct {
	registry *sortalgo.Registry
	delay    session.DelayFunc
	log      *zap.SugaredLogger
	nextID   atomic.Uint64
}

func NewLocal(registry *sortalgo.Registry, delay session.DelayFunc, log *zap.SugaredLogger) *Local {
	if registry == nil {
		registry = sortalgo.Default()
	}
	if delay == nil {
		delay = session.DefaultDelay
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Local{registry: registry, delay: delay, log: log}
}

func (l *Local) Dial(ctx context.Context) (Conn, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	c := &localConn{
		in:     make(chan protocol.Message, 16),
		out:    make(chan protocol.Message, 256),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	c.coord = session.NewCoordinator(c.transport(), session.Options{
		ID:       "local-" + strconv.FormatUint(l.nextID.Add(1), 10),
		Registry: l.registry,
		Delay:    l.delay,
		Logger:   l.log,
	})
	go c.dispatch(runCtx)
	return c, nil
}

// localConn pairs two channels. Client sends are handled in order by a
// dispatch goroutine, like the server's read pump.
type localConn struct {
	coord  *session.Coordinator
	in     chan protocol.Message
	out    chan protocol.Message
	done   chan struct{}
	cancel context.CancelFunc

	closeOnce sync.Once
	mu        sync.Mutex
	seq       uint64
}

func (c *localConn) Send(msg protocol.Message) error {
	select {
	case <-c.done:
		return ErrNotConnected
	default:
	}
	select {
	case c.in <- msg:
		return nil
	case <-c.done:
		return ErrNotConnected
	}
}

func (c *localConn) Receive(ctx context.Context) (protocol.Message, error) {
	select {
	case msg := <-c.out:
		return msg, nil
	case <-c.done:
		return protocol.Message{}, ErrNotConnected
	case <-ctx.Done():
		return protocol.Message{}, ctx.Err()
	}
}

func (c *localConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
	return nil
}

func (c *localConn) dispatch(ctx context.Context) {
	defer c.coord.HandleDisconnect()
	for {
		select {
		case msg := <-c.in:
			c.coord.Handle(ctx, msg)
		case <-c.done:
			return
		}
	}
}

// serverSide is the coordinator's view of the loopback.
type serverSide struct{ c *localConn }

func (c *localConn) transport() session.Transport { return serverSide{c} }

func (s serverSide) Send(msg protocol.Message) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.seq++
	msg.Seq = s.c.seq
	select {
	case s.c.out <- msg:
		return nil
	case <-s.c.done:
		return session.ErrTransportClosed
	}
}
