package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ezDecode/SortVisualiser/internal/client"
)

var errCheckFailed = errors.New("server check failed")

var (
	checkURL     string
	checkToken   string
	checkTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe a running server",
	Long: `Calls /api/health on a running server and prints the result. The
command exits non-zero when the server does not answer within the timeout.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkHealth(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), checkURL, checkToken, checkTimeout)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkURL, "url", "http://127.0.0.1:3000", "server base URL")
	checkCmd.Flags().StringVar(&checkToken, "token", "", "auth token")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Second, "request timeout")
	rootCmd.AddCommand(checkCmd)
}

func checkHealth(ctx context.Context, out, errOut io.Writer, baseURL, token string, timeout time.Duration) error {
	h, err := client.NewHTTPClient(baseURL, token, timeout).Health(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "Server check failed: %v\n", err)
		return errCheckFailed
	}

	fmt.Fprintf(out, "Server is running at %s\n", baseURL)
	table := tablewriter.NewWriter(out)
	table.Header("Field", "Value")
	rows := [][]string{
		{"status", h.Status},
		{"uptime", (time.Duration(h.UptimeSeconds) * time.Second).String()},
		{"connections", strconv.Itoa(h.Connections)},
		{"active runs", strconv.Itoa(h.ActiveRuns)},
		{"goroutines", strconv.Itoa(h.Goroutines)},
		{"rss", strconv.FormatUint(h.RSSBytes/1024, 10) + " KiB"},
		{"cpu", strconv.FormatFloat(h.CPUPercent, 'f', 1, 64) + "%"},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
