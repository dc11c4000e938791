package client

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/protocol"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

// --- Bubble Tea messages ---

// ConnectedMsg is sent when a stream is open.
type ConnectedMsg struct{ Conn Conn }

// DisconnectedMsg is sent when the stream drops.
type DisconnectedMsg struct{ Err error }

// StepMsg delivers one sortStep.
type StepMsg struct{ Step sortalgo.Step }

// CompleteMsg delivers the authoritative sorted array.
type CompleteMsg struct{ Array []int }

// ErrorMsg carries a sortError message.
type ErrorMsg struct{ Message string }

// Listen returns a command that dials with retry and reports ConnectedMsg.
func Listen(ctx context.Context, d Dialer, log *zap.SugaredLogger) tea.Cmd {
	return func() tea.Msg {
		conn, err := DialWithRetry(ctx, d, log)
		if err != nil {
			return DisconnectedMsg{Err: err}
		}
		return ConnectedMsg{Conn: conn}
	}
}

// ReadLoop returns a command that blocks for the next server event. The
// model re-issues it after every message it receives.
func ReadLoop(ctx context.Context, c Conn) tea.Cmd {
	return func() tea.Msg {
		for {
			msg, err := c.Receive(ctx)
			if err != nil {
				return DisconnectedMsg{Err: err}
			}
			if teaMsg := dispatch(msg); teaMsg != nil {
				return teaMsg
			}
		}
	}
}

func dispatch(msg protocol.Message) tea.Msg {
	switch msg.Type {
	case protocol.EventSortStep:
		if step, err := protocol.Decode[sortalgo.Step](msg); err == nil {
			return StepMsg{Step: step}
		}
	case protocol.EventSortComplete:
		if p, err := protocol.Decode[protocol.SortCompletePayload](msg); err == nil {
			return CompleteMsg{Array: p.Array}
		}
	case protocol.EventSortError:
		if p, err := protocol.Decode[protocol.SortErrorPayload](msg); err == nil {
			return ErrorMsg{Message: p.Message}
		}
		return ErrorMsg{Message: "malformed sortError"}
	}
	return nil
}
