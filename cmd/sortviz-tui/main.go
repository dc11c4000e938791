// Command sortviz-tui animates sorting algorithms in the terminal, streaming
// steps from a sort step server or, with --offline, from an in-process one.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/app"
	"github.com/ezDecode/SortVisualiser/internal/client"
	"github.com/ezDecode/SortVisualiser/internal/logging"
	"github.com/ezDecode/SortVisualiser/internal/playback"
)

// Version is set at build time via ldflags.
var Version = "dev"

type options struct {
	url       string
	token     string
	algorithm string
	speed     string
	array     string
	headless  bool
	offline   bool
	fps       int
	logFile   string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "sortviz-tui",
		Short: "Watch sorting algorithms step by step",
		Long: `sortviz-tui connects to a sort step server and plays back every
comparison and swap as animated bars. Use --offline to run without a server
and --headless to print frames instead of drawing the full-screen UI.`,
		Version:      Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "ws://127.0.0.1:3000/ws", "WebSocket URL of the step server")
	f.StringVar(&opts.token, "token", "", "auth token (if the server requires it)")
	f.StringVar(&opts.algorithm, "algorithm", "bubbleSort", "algorithm to run")
	f.StringVar(&opts.speed, "speed", "medium", "speed preset: slow, medium or fast")
	f.StringVar(&opts.array, "array", "", "comma-separated values (default: random)")
	f.BoolVar(&opts.headless, "headless", false, "print frames to stdout instead of the UI")
	f.BoolVar(&opts.offline, "offline", false, "run the sort in process, no server needed")
	f.IntVar(&opts.fps, "fps", 60, "display refresh rate")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	var array []int
	if opts.array != "" {
		var err error
		if array, err = playback.ParseArray(opts.array); err != nil {
			return err
		}
	}
	if opts.fps <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", opts.fps)
	}

	log, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer log.Sync()

	var dialer client.Dialer
	var httpClient *client.HTTPClient
	if opts.offline {
		dialer = client.NewLocal(nil, nil, log)
	} else {
		dialer = client.NewWSClient(opts.url, opts.token, log)
		httpClient = client.NewHTTPClient(client.DeriveHTTPBase(opts.url), opts.token, 5*time.Second)
	}

	if opts.headless {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if len(array) == 0 {
			array = playback.RandomArray(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
		}
		return runHeadless(ctx, cmd.OutOrStdout(), dialer, headlessRun{
			algorithm: opts.algorithm,
			speed:     opts.speed,
			array:     array,
			fps:       opts.fps,
			offline:   opts.offline,
		})
	}

	m := app.New(app.Options{
		Dialer:    dialer,
		HTTP:      httpClient,
		Algorithm: opts.algorithm,
		Speed:     opts.speed,
		Array:     array,
		Offline:   opts.offline,
		FPS:       opts.fps,
		Logger:    log,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// newLogger writes to --log-file when given. Without one the interactive UI
// stays silent so log lines do not tear the alternate screen.
func newLogger(opts options) (*zap.SugaredLogger, error) {
	if opts.logFile == "" {
		if opts.headless {
			return logging.New(logging.Config{Level: opts.logLevel})
		}
		return logging.Nop(), nil
	}
	return logging.New(logging.Config{Level: opts.logLevel, OutputPaths: []string{opts.logFile}})
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
