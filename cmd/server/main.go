// Command server runs the sort step server: a WebSocket endpoint that streams
// sorting algorithm steps to connected clients, plus a small JSON API.
//
// Usage:
//
//	server [serve] [--config config.yaml] [--port 3000]
//	server check [--url http://127.0.0.1:3000]
//	server stats [--dir ~/.local/state/sortviz]
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Stream sorting algorithm steps over WebSocket",
	Long: `The sort step server runs one of nine sorting algorithms per client
request and streams every comparison and swap as it happens, honouring
pause and resume from the client.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("sortviz server version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
