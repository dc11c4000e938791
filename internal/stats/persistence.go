package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
)

const (
	// statsVersion is bumped when the schema changes.
	statsVersion = 1

	statsFileName = "stats.json"
	appDirName    = "sortviz"

	// recentRuns bounds the run history kept in the stats file.
	recentRuns = 20
)

// Stats is the persistent aggregate over every run the server has seen. It is
// loaded from and saved to ~/.local/state/sortviz/stats.json (respecting
// XDG_STATE_HOME).
type Stats struct {
	Version int `json:"version"`

	TotalRuns        int `json:"totalRuns"`
	TotalCompletions int `json:"totalCompletions"`
	TotalErrors      int `json:"totalErrors"`
	TotalAbandoned   int `json:"totalAbandoned"`
	TotalSteps       int `json:"totalSteps"`

	MaxConcurrentRuns int `json:"maxConcurrentRuns"`
	LongestInput      int `json:"longestInput"`

	PerAlgorithm map[string]AlgorithmStats `json:"perAlgorithm"`
	Recent       []RunRecord               `json:"recent,omitempty"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// AlgorithmStats is the per-algorithm breakdown.
type AlgorithmStats struct {
	Runs        int   `json:"runs"`
	Completions int   `json:"completions"`
	Errors      int   `json:"errors"`
	Abandoned   int   `json:"abandoned"`
	Steps       int   `json:"steps"`
	Comparisons int   `json:"comparisons"`
	Swaps       int   `json:"swaps"`
	MaxSteps    int   `json:"maxSteps"`
	TotalMillis int64 `json:"totalMillis"`
}

// RunRecord is one finished run in the recent history.
type RunRecord struct {
	Algorithm string    `json:"algorithm"`
	Length    int       `json:"length"`
	Steps     int       `json:"steps"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	EndedAt   time.Time `json:"endedAt"`
}

// Store handles loading and saving Stats to disk.
type Store struct {
	dir string
}

// NewStore creates a Store in dir, or in the default XDG state path when dir
// is empty. The directory is created on the first Save.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStatsDir()
	}
	return &Store{dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, statsFileName)
}

// Load reads stats from disk. A missing file yields empty stats.
func (s *Store) Load() (*Stats, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return newStats(), nil
		}
		return nil, fmt.Errorf("reading stats: %w", err)
	}

	var st Stats
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing stats: %w", err)
	}
	if st.PerAlgorithm == nil {
		st.PerAlgorithm = make(map[string]AlgorithmStats)
	}
	return &st, nil
}

// Save writes stats using an atomic temp-file-then-rename.
func (s *Store) Save(st *Stats) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating stats dir: %w", err)
	}

	st.Version = statsVersion
	st.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".stats-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming stats file: %w", err)
	}
	committed = true
	return nil
}

func newStats() *Stats {
	return &Stats{
		Version:      statsVersion,
		PerAlgorithm: make(map[string]AlgorithmStats),
	}
}

// clone returns a deep copy.
func (st *Stats) clone() *Stats {
	cp := *st
	cp.PerAlgorithm = lo.Assign(st.PerAlgorithm)
	cp.Recent = append([]RunRecord(nil), st.Recent...)
	return &cp
}

// defaultStatsDir returns ~/.local/state/sortviz, respecting XDG_STATE_HOME.
func defaultStatsDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
