package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/ezDecode/SortVisualiser/internal/client"
	"github.com/ezDecode/SortVisualiser/internal/playback"
)

const dialTimeout = 10 * time.Second

type headlessRun struct {
	algorithm string
	speed     string
	array     []int
	fps       int
	offline   bool
}

// runHeadless plays one run through a playback.Player, printing each frame
// and a summary table.
func runHeadless(ctx context.Context, w io.Writer, d client.Dialer, r headlessRun) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, err := d.Dial(dialCtx)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	msgs, errc := client.Stream(runCtx, conn)

	if err := client.StartSort(conn, r.algorithm, r.array, r.speed); err != nil {
		return err
	}

	engine := playback.New(playback.Options{ShowBanner: r.offline})
	player := &playback.Player{
		Engine:  engine,
		Refresh: time.Second / time.Duration(r.fps),
		Render:  func(f playback.Frame) { fmt.Fprintln(w, formatFrame(f)) },
	}

	started := time.Now()
	final, err := player.Play(runCtx, msgs)
	if errors.Is(err, playback.ErrStreamClosed) {
		// Stream sends its cause before closing msgs.
		return fmt.Errorf("%w: %w", err, <-errc)
	}
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Algorithm", "Speed", "Input", "Result", "Frames", "Comparisons", "Swaps", "Elapsed")
	if err := table.Append([]string{
		r.algorithm,
		r.speed,
		playback.FormatArray(r.array),
		playback.FormatArray(final),
		strconv.Itoa(engine.Rendered()),
		strconv.Itoa(engine.Comparisons()),
		strconv.Itoa(engine.Swaps()),
		time.Since(started).Round(time.Millisecond).String(),
	}); err != nil {
		return err
	}
	return table.Render()
}

func formatFrame(f playback.Frame) string {
	var b strings.Builder
	if f.Final {
		b.WriteString("sorted  ")
	} else {
		b.WriteString("step    ")
	}
	b.WriteString("[" + strings.ReplaceAll(playback.FormatArray(f.Array), ",", " ") + "]")
	if f.Compare != nil {
		fmt.Fprintf(&b, "  compare %d,%d", f.Compare[0], f.Compare[1])
	}
	if f.Swap != nil {
		fmt.Fprintf(&b, "  swap %d,%d", f.Swap[0], f.Swap[1])
	}
	if f.Banner != "" {
		b.WriteString("  (" + f.Banner + ")")
	}
	return b.String()
}
