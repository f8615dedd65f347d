package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Stats aggregates store counters and self-process metrics for the
// operator-facing stats endpoint.
type Stats struct {
	// Store counters.
	UsersRegistered uint64 `json:"users_registered"`
	MessagesStored  uint64 `json:"messages_stored"`
	FeedReads       uint64 `json:"feed_reads"`

	// System metrics.
	UptimeSeconds float64 `json:"uptime_seconds"`
	RSSBytes      uint64  `json:"rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	PidStatus     string  `json:"pid_status"`
	AllocMemMb    uint64  `json:"alloc_mem_mb"`
	NumGC         uint32  `json:"num_gc"`
	NumGoroutine  int     `json:"num_goroutine"`
}

// Monitor tracks monotonic counters and samples process health on demand.
type Monitor struct {
	log   *slog.Logger
	proc  *process.Process
	start time.Time

	usersRegistered uint64
	messagesStored  uint64
	feedReads       uint64
}

func NewMonitor(log *slog.Logger) (*Monitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Monitor{log: log, proc: p, start: time.Now()}, nil
}

func (m *Monitor) IncrUsersRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

func (m *Monitor) IncrMessagesStored() {
	atomic.AddUint64(&m.messagesStored, 1)
}

func (m *Monitor) IncrFeedReads() {
	atomic.AddUint64(&m.feedReads, 1)
}

// Snapshot collects the current counters together with memory, CPU and OS
// status of the running process. Sampling failures degrade to partial
// stats rather than failing the endpoint.
func (m *Monitor) Snapshot() Stats {
	stats := Stats{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		MessagesStored:  atomic.LoadUint64(&m.messagesStored),
		FeedReads:       atomic.LoadUint64(&m.feedReads),
		UptimeSeconds:   time.Since(m.start).Seconds(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats.AllocMemMb = memStats.Alloc / 1024 / 1024
	stats.NumGC = memStats.NumGC

	if memInfo, err := m.proc.MemoryInfo(); err != nil {
		m.log.Debug("Failed to sample process memory", "err", err)
	} else {
		stats.RSSBytes = memInfo.RSS
	}

	if cpu, err := m.proc.CPUPercent(); err != nil {
		m.log.Debug("Failed to sample process cpu", "err", err)
	} else {
		stats.CPUPercent = cpu
	}

	if status, err := m.proc.Status(); err != nil {
		m.log.Debug("Failed to sample process status", "err", err)
	} else {
		stats.PidStatus = status
	}

	return stats
}
