package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezDecode/SortVisualiser/internal/config"
	"github.com/ezDecode/SortVisualiser/internal/session"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
	"github.com/ezDecode/SortVisualiser/internal/stats"
	"github.com/ezDecode/SortVisualiser/internal/ws"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := ws.NewServer(config.Default(), session.NewStore(), ws.NewHub(0, ws.ConnOptions{}, nil), sortalgo.Default(), nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})
	return srv
}

func TestCheckHealthy(t *testing.T) {
	srv := newServer(t)
	var out, errOut bytes.Buffer

	err := checkHealth(context.Background(), &out, &errOut, srv.URL, "", 2*time.Second)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Server is running")
	assert.Contains(t, out.String(), "goroutines")
	assert.Empty(t, errOut.String())
}

func TestCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var out, errOut bytes.Buffer
	err := checkHealth(context.Background(), &out, &errOut, url, "", 200*time.Millisecond)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, errOut.String(), "Server check failed")
}

func TestPrintStatsEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printStats(&out, stats.NewStore(t.TempDir())))
	assert.Contains(t, out.String(), "No runs recorded yet")
}

func TestPrintStatsTable(t *testing.T) {
	dir := t.TempDir()
	data := `{"version":1,"totalRuns":2,"totalCompletions":2,"perAlgorithm":{"heapSort":{"runs":2,"completions":2,"steps":40}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.json"), []byte(data), 0o600))

	var out bytes.Buffer
	require.NoError(t, printStats(&out, stats.NewStore(dir)))
	assert.Contains(t, out.String(), "Runs: 2")
	assert.Contains(t, out.String(), "heapSort")
}

func TestPrintRemoteStatsUnavailable(t *testing.T) {
	srv := newServer(t)
	var out bytes.Buffer
	err := printRemoteStats(context.Background(), &out, srv.URL, "")
	assert.ErrorContains(t, err, "503")
}

func TestLoadConfigOverrides(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	serveHost, servePort, logLevel = "127.0.0.1", 4000, "debug"
	t.Cleanup(func() {
		configPath, serveHost, servePort, logLevel = "config.yaml", "", 0, ""
	})

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}
