package ws

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Health is the body of GET /api/health.
type Health struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Connections   int     `json:"connections"`
	ActiveRuns    int     `json:"activeRuns"`
	Goroutines    int     `json:"goroutines"`
	RSSBytes      uint64  `json:"rssBytes,omitempty"`
	CPUPercent    float64 `json:"cpuPercent,omitempty"`
}

// processUsage samples resident memory and CPU of the server process. Zero
// values are returned where the platform does not expose them.
func processUsage() (rss uint64, cpu float64) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		rss = mem.RSS
	}
	if pct, err := p.CPUPercent(); err == nil {
		cpu = pct
	}
	return rss, cpu
}

func (s *Server) health() Health {
	rss, cpu := processUsage()
	return Health{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		Connections:   s.hub.Count(),
		ActiveRuns:    s.store.ActiveCount(),
		Goroutines:    runtime.NumGoroutine(),
		RSSBytes:      rss,
		CPUPercent:    cpu,
	}
}
