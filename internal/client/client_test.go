package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezDecode/SortVisualiser/internal/config"
	"github.com/ezDecode/SortVisualiser/internal/protocol"
	"github.com/ezDecode/SortVisualiser/internal/session"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
	"github.com/ezDecode/SortVisualiser/internal/ws"
)

func fixedDelay(d time.Duration) session.DelayFunc {
	return func(string) time.Duration { return d }
}

// collect reads from c until sortComplete or sortError.
func collect(t *testing.T, c Conn) []protocol.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var msgs []protocol.Message
	for {
		msg, err := c.Receive(ctx)
		require.NoError(t, err)
		msgs = append(msgs, msg)
		if msg.Type == protocol.EventSortComplete || msg.Type == protocol.EventSortError {
			return msgs
		}
	}
}

func stepsOf(t *testing.T, msgs []protocol.Message) []sortalgo.Step {
	t.Helper()
	var steps []sortalgo.Step
	for _, m := range msgs {
		if m.Type != protocol.EventSortStep {
			continue
		}
		s, err := protocol.Decode[sortalgo.Step](m)
		require.NoError(t, err)
		steps = append(steps, s)
	}
	return steps
}

func TestLocalBubbleScenario(t *testing.T) {
	conn, err := NewLocal(nil, fixedDelay(0), nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, StartSort(conn, "bubbleSort", []int{5, 3, 8, 1}, "fast"))
	msgs := collect(t, conn)
	steps := stepsOf(t, msgs)
	require.GreaterOrEqual(t, len(steps), 2)

	assert.Equal(t, []int{5, 3, 8, 1}, steps[0].Array)
	assert.Equal(t, &sortalgo.Pair{0, 1}, steps[0].Compare)
	assert.Nil(t, steps[0].Swap)
	assert.Equal(t, []int{3, 5, 8, 1}, steps[1].Array)
	assert.Equal(t, &sortalgo.Pair{0, 1}, steps[1].Swap)

	last := msgs[len(msgs)-1]
	require.Equal(t, protocol.EventSortComplete, last.Type)
	done, err := protocol.Decode[protocol.SortCompletePayload](last)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5, 8}, done.Array)
}

func TestLocalSortedInputHasNoSwaps(t *testing.T) {
	for _, name := range sortalgo.Default().Names() {
		t.Run(name, func(t *testing.T) {
			conn, err := NewLocal(nil, fixedDelay(0), nil).Dial(context.Background())
			require.NoError(t, err)
			defer conn.Close()

			require.NoError(t, StartSort(conn, name, []int{1, 2, 3}, ""))
			msgs := collect(t, conn)
			for _, s := range stepsOf(t, msgs) {
				assert.Nil(t, s.Swap)
			}
			done, err := protocol.Decode[protocol.SortCompletePayload](msgs[len(msgs)-1])
			require.NoError(t, err)
			assert.Equal(t, []int{1, 2, 3}, done.Array)
		})
	}
}

func TestPauseRightAfterStartDelaysCompletion(t *testing.T) {
	const pauseFor = 300 * time.Millisecond
	input := []int{4, 3, 2, 1}

	run := func(pause bool) (time.Duration, []sortalgo.Step) {
		conn, err := NewLocal(nil, fixedDelay(5*time.Millisecond), nil).Dial(context.Background())
		require.NoError(t, err)
		defer conn.Close()

		start := time.Now()
		require.NoError(t, StartSort(conn, "insertionSort", input, "fast"))
		if pause {
			require.NoError(t, Pause(conn))
			time.AfterFunc(pauseFor, func() { Resume(conn) })
		}
		msgs := collect(t, conn)
		require.Equal(t, protocol.EventSortComplete, msgs[len(msgs)-1].Type)
		return time.Since(start), stepsOf(t, msgs)
	}

	plain, plainSteps := run(false)
	paused, pausedSteps := run(true)

	assert.Equal(t, plainSteps, pausedSteps, "pausing must not change step order or content")
	assert.GreaterOrEqual(t, paused, plain+pauseFor-50*time.Millisecond)
}

func TestUnknownAlgorithmThroughReadLoop(t *testing.T) {
	conn, err := NewLocal(nil, fixedDelay(0), nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, StartSort(conn, "stoogeSort", []int{2, 1}, "medium"))
	msg := ReadLoop(context.Background(), conn)()
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok, "got %T", msg)
	assert.Contains(t, errMsg.Message, "stoogeSort")
}

func TestReadLoopDispatch(t *testing.T) {
	conn, err := NewLocal(nil, fixedDelay(0), nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, StartSort(conn, "heapSort", []int{2, 1}, "fast"))
	var sawStep bool
	for {
		msg := ReadLoop(context.Background(), conn)()
		switch m := msg.(type) {
		case StepMsg:
			sawStep = true
		case CompleteMsg:
			assert.True(t, sawStep)
			assert.Equal(t, []int{1, 2}, m.Array)
			return
		default:
			t.Fatalf("unexpected %T", msg)
		}
	}
}

func TestLocalClosedConn(t *testing.T) {
	conn, err := NewLocal(nil, nil, nil).Dial(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	assert.ErrorIs(t, Pause(conn), ErrNotConnected)
	_, err = conn.Receive(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	msg := ReadLoop(context.Background(), conn)()
	_, ok := msg.(DisconnectedMsg)
	assert.True(t, ok)
}

func TestNilConnHelpers(t *testing.T) {
	assert.ErrorIs(t, StartSort(nil, "bubbleSort", []int{1}, ""), ErrNotConnected)
	assert.ErrorIs(t, Pause(nil), ErrNotConnected)
	assert.ErrorIs(t, Resume(nil), ErrNotConnected)
}

func TestStreamClosesOnError(t *testing.T) {
	conn, err := NewLocal(nil, fixedDelay(0), nil).Dial(context.Background())
	require.NoError(t, err)
	require.NoError(t, StartSort(conn, "shellSort", []int{3, 1, 2}, ""))

	msgs, errc := Stream(context.Background(), conn)
	for m := range msgs {
		if m.Type == protocol.EventSortComplete {
			conn.Close()
		}
	}
	assert.ErrorIs(t, <-errc, ErrNotConnected)
}

// newServer starts a real step server for the WebSocket client tests.
func newServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.AuthToken = token
	cfg.Sort.Speeds = map[string]time.Duration{"default": 0}
	s := ws.NewServer(cfg, session.NewStore(), ws.NewHub(0, ws.ConnOptions{}, nil), sortalgo.Default(), nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestWSClientEndToEnd(t *testing.T) {
	srv := newServer(t, "tok")
	conn, err := NewWSClient(wsURL(srv), "tok", nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	input := []int{9, 4, 7, 1, 4}
	require.NoError(t, StartSort(conn, "mergeSort", input, "fast"))
	msgs := collect(t, conn)

	last := msgs[len(msgs)-1]
	require.Equal(t, protocol.EventSortComplete, last.Type)
	done, err := protocol.Decode[protocol.SortCompletePayload](last)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 4, 7, 9}, done.Array)
	assert.Equal(t, done.Array, sortalgo.Replay(input, stepsOf(t, msgs)))

	require.NoError(t, conn.Close())
	assert.ErrorIs(t, Resume(conn), ErrNotConnected)
}

func TestWSClientRejectedWithoutToken(t *testing.T) {
	srv := newServer(t, "tok")
	_, err := NewWSClient(wsURL(srv), "", nil).Dial(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

type failingDialer struct{ calls int }

func (d *failingDialer) Dial(context.Context) (Conn, error) {
	d.calls++
	return nil, errors.New("connection refused")
}

func TestDialWithRetryStopsOnContext(t *testing.T) {
	d := &failingDialer{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := DialWithRetry(ctx, d, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, d.calls)

	msg := Listen(ctx, d, nil)()
	_, ok := msg.(DisconnectedMsg)
	assert.True(t, ok)
}

func TestListenConnects(t *testing.T) {
	msg := Listen(context.Background(), NewLocal(nil, nil, nil), nil)()
	connected, ok := msg.(ConnectedMsg)
	require.True(t, ok)
	connected.Conn.Close()
}

func TestHTTPClient(t *testing.T) {
	srv := newServer(t, "tok")
	c := NewHTTPClient(srv.URL+"/", "tok", time.Second)
	ctx := context.Background()

	algs, err := c.Algorithms(ctx)
	require.NoError(t, err)
	assert.Equal(t, sortalgo.Default().Names(), algs.Algorithms)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	_, err = c.Stats(ctx)
	assert.ErrorContains(t, err, "503")

	_, err = NewHTTPClient(srv.URL, "wrong", time.Second).Algorithms(ctx)
	assert.ErrorContains(t, err, "401")
}

func TestHTTPClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url, "", 200*time.Millisecond).Health(context.Background())
	assert.Error(t, err)
}

func TestDeriveHTTPBase(t *testing.T) {
	tests := map[string]string{
		"ws://127.0.0.1:3000/ws":    "http://127.0.0.1:3000",
		"wss://sort.example.com/ws": "https://sort.example.com",
		"::not a url":               "http://127.0.0.1:3000",
	}
	for in, want := range tests {
		assert.Equal(t, want, DeriveHTTPBase(in), in)
	}
}
