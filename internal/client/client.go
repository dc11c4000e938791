// Package client connects the terminal front end to a step stream, either a
// remote server over WebSocket or an in-process loopback for offline use.
package client

import (
	"context"
	"errors"

	"github.com/ezDecode/SortVisualiser/internal/protocol"
)

// ErrNotConnected is returned when sending on a closed or missing stream.
var ErrNotConnected = errors.New("not connected")

// Conn is one open step stream. Receive returns messages in the order the
// server sent them.
type Conn interface {
	Send(msg protocol.Message) error
	Receive(ctx context.Context) (protocol.Message, error)
	Close() error
}

// Dialer opens a Conn.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// StartSort asks the server to begin a run.
func StartSort(c Conn, algorithm string, array []int, speed string) error {
	if c == nil {
		return ErrNotConnected
	}
	msg, err := protocol.NewMessage(protocol.EventStartSort, protocol.StartSortPayload{
		Algorithm: algorithm,
		Array:     array,
		Speed:     speed,
	})
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// Pause asks the producer to stop emitting.
func Pause(c Conn) error {
	if c == nil {
		return ErrNotConnected
	}
	return c.Send(protocol.Message{Type: protocol.EventPauseSort})
}

// Resume asks the producer to continue.
func Resume(c Conn) error {
	if c == nil {
		return ErrNotConnected
	}
	return c.Send(protocol.Message{Type: protocol.EventResumeSort})
}

// Stream pumps c into a channel until ctx ends or the stream fails. The
// channel is closed afterwards; the error, if any, is delivered on errc.
func Stream(ctx context.Context, c Conn) (<-chan protocol.Message, <-chan error) {
	out := make(chan protocol.Message, 64)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		for {
			msg, err := c.Receive(ctx)
			if err != nil {
				errc <- err
				return
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return out, errc
}
