package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezDecode/SortVisualiser/internal/client"
	"github.com/ezDecode/SortVisualiser/internal/stats"
)

var (
	statsDir    string
	statsRemote string
	statsToken  string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run statistics",
	Long: `Prints per-algorithm run statistics. By default the persisted stats
file is read; with --remote the live figures of a running server are shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsRemote != "" {
			return printRemoteStats(cmd.Context(), cmd.OutOrStdout(), statsRemote, statsToken)
		}
		dir := statsDir
		if dir == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir = cfg.Stats.Dir
		}
		return printStats(cmd.OutOrStdout(), stats.NewStore(dir))
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDir, "dir", "", "stats directory (default from config, then $XDG_STATE_HOME/sortviz)")
	statsCmd.Flags().StringVar(&statsRemote, "remote", "", "read live stats from a server base URL instead")
	statsCmd.Flags().StringVar(&statsToken, "token", "", "auth token for --remote")
	rootCmd.AddCommand(statsCmd)
}

func printStats(w io.Writer, store *stats.Store) error {
	st, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return writeSummary(w, store.Path(), st)
}

func printRemoteStats(ctx context.Context, w io.Writer, baseURL, token string) error {
	st, err := client.NewHTTPClient(baseURL, token, 5*time.Second).Stats(ctx)
	if err != nil {
		return err
	}
	return writeSummary(w, baseURL, st)
}

func writeSummary(w io.Writer, source string, st *stats.Stats) error {
	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "Runs: %d  completed: %d  errors: %d  abandoned: %d  steps: %d\n",
		st.TotalRuns, st.TotalCompletions, st.TotalErrors, st.TotalAbandoned, st.TotalSteps)
	if len(st.PerAlgorithm) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}
	return stats.WriteTable(w, st)
}
