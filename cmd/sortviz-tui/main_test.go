package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezDecode/SortVisualiser/internal/client"
	"github.com/ezDecode/SortVisualiser/internal/playback"
	"github.com/ezDecode/SortVisualiser/internal/protocol"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

func fastLocal() client.Dialer {
	return client.NewLocal(nil, func(string) time.Duration { return 10 * time.Millisecond }, nil)
}

func TestRunHeadlessOffline(t *testing.T) {
	var out bytes.Buffer
	err := runHeadless(context.Background(), &out, fastLocal(), headlessRun{
		algorithm: "selectionSort",
		speed:     "fast",
		array:     []int{3, 1, 2},
		fps:       500,
		offline:   true,
	})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "step    [3 1 2]  compare")
	assert.Contains(t, s, "sorted  [1 2 3]  (Offline demo)")
	assert.Contains(t, s, "selectionSort")
	assert.Contains(t, s, "1,2,3")
}

func TestRunHeadlessUnknownAlgorithm(t *testing.T) {
	var out bytes.Buffer
	err := runHeadless(context.Background(), &out, fastLocal(), headlessRun{
		algorithm: "bogoSort",
		speed:     "fast",
		array:     []int{2, 1},
		fps:       60,
	})
	assert.ErrorIs(t, err, playback.ErrSortFailed)
	assert.ErrorContains(t, err, "bogoSort")
}

func TestFormatFrame(t *testing.T) {
	f := playback.Frame{Array: []int{2, 1}, Swap: &sortalgo.Pair{0, 1}}
	assert.Equal(t, "step    [2 1]  swap 0,1", formatFrame(f))
}

func TestRootRejectsBadArray(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--offline", "--headless", "--array", "1,,2"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.ErrorIs(t, cmd.Execute(), playback.ErrInvalidInput)
}

func TestRootHeadlessOffline(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--offline", "--headless", "--array", "5,3,8,1", "--algorithm", "quickSort", "--speed", "fast", "--fps", "240"})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sorted  [1 3 5 8]")
}

var errLinkDown = errors.New("link down")

// droppedConn accepts sends and then fails every read.
type droppedConn struct{}

func (droppedConn) Send(protocol.Message) error { return nil }

func (droppedConn) Receive(context.Context) (protocol.Message, error) {
	return protocol.Message{}, errLinkDown
}

func (droppedConn) Close() error { return nil }

type droppedDialer struct{}

func (droppedDialer) Dial(context.Context) (client.Conn, error) { return droppedConn{}, nil }

func TestRunHeadlessReportsTransportCause(t *testing.T) {
	var out bytes.Buffer
	err := runHeadless(context.Background(), &out, droppedDialer{}, headlessRun{
		algorithm: "bubbleSort",
		speed:     "fast",
		array:     []int{2, 1},
		fps:       60,
	})
	assert.ErrorIs(t, err, playback.ErrStreamClosed)
	assert.ErrorIs(t, err, errLinkDown)
}
