package playback

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ezDecode/SortVisualiser/internal/protocol"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

// ErrStreamClosed is returned by Play when the message stream ends before a
// terminal event.
var ErrStreamClosed = errors.New("stream closed before completion")

// DefaultRefresh is one frame at 60 Hz.
const DefaultRefresh = time.Second / 60

// Player drives an Engine without a UI: one goroutine selects over inbound
// messages and a refresh ticker.
type Player struct {
	Engine  *Engine
	Clock   clock.Clock
	Refresh time.Duration
	Render  func(Frame)
}

// Play consumes msgs until sortComplete or sortError and returns the final
// array or the failure. The engine is reset if the stream or ctx ends first.
func (p *Player) Play(ctx context.Context, msgs <-chan protocol.Message) ([]int, error) {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	refresh := p.Refresh
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	render := p.Render
	if render == nil {
		render = func(Frame) {}
	}

	ticker := clk.Ticker(refresh)
	defer ticker.Stop()

	e := p.Engine
	e.Begin()
	for {
		select {
		case <-ctx.Done():
			e.Reset()
			return nil, ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				e.Reset()
				return nil, ErrStreamClosed
			}
			switch msg.Type {
			case protocol.EventSortStep:
				step, err := protocol.Decode[sortalgo.Step](msg)
				if err != nil {
					continue
				}
				e.Enqueue(step)
			case protocol.EventSortComplete:
				done, err := protocol.Decode[protocol.SortCompletePayload](msg)
				if err != nil {
					e.Reset()
					return nil, err
				}
				render(e.Complete(done.Array))
				return done.Array, nil
			case protocol.EventSortError:
				failure, err := protocol.Decode[protocol.SortErrorPayload](msg)
				if err != nil {
					return nil, e.Fail("malformed error event")
				}
				return nil, e.Fail(failure.Message)
			}

		case <-ticker.C:
			if f, ok := e.Advance(); ok {
				render(f)
			}
		}
	}
}
