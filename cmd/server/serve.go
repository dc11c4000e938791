package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ezDecode/SortVisualiser/internal/config"
	"github.com/ezDecode/SortVisualiser/internal/logging"
	"github.com/ezDecode/SortVisualiser/internal/session"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
	"github.com/ezDecode/SortVisualiser/internal/stats"
	"github.com/ezDecode/SortVisualiser/internal/ws"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the step server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().StringVar(&serveHost, "host", "", "override listen host")
		c.Flags().IntVar(&servePort, "port", 0, "override listen port")
	}
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := sortalgo.Default()
	store := session.NewStore()
	hub := ws.NewHub(cfg.Server.MaxConnections, ws.ConnOptions{
		SendBuffer:   cfg.Transport.SendBuffer,
		WriteTimeout: cfg.Transport.WriteTimeout,
		PongTimeout:  cfg.Transport.PongTimeout,
		PingInterval: cfg.Transport.PingInterval,
	}, log)
	server := ws.NewServer(cfg, store, hub, registry, log)

	var wg sync.WaitGroup
	if cfg.Stats.Enabled {
		persist := stats.NewStore(cfg.Stats.Dir)
		tracker, events, err := stats.NewTracker(persist, cfg.Stats.SaveInterval, stats.WithLogger(log))
		if err != nil {
			log.Warnw("run statistics disabled", "path", persist.Path(), "error", err)
		} else {
			server.SetStatsTracker(tracker, events)
			wg.Add(1)
			go func() {
				defer wg.Done()
				tracker.Run(ctx)
			}()
			log.Infow("run statistics enabled", "path", persist.Path())
		}
	}

	log.Infow("starting sort step server",
		"algorithms", registry.Names(),
		"maxConnections", cfg.Server.MaxConnections,
		"auth", cfg.Server.AuthToken != "",
	)
	err = ws.ListenAndServe(ctx, cfg.Server.Host, cfg.Server.Port, server.Handler(), log)

	log.Info("shutting down")
	stop()
	server.Close()
	wg.Wait()
	return err
}
