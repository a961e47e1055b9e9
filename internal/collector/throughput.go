package collector

import (
	"sync"
	"time"
)

const bytesPerMB = 1024 * 1024

// Counter keys tracked by the collector.
const (
	CounterDiskRead  = "disk_read"
	CounterDiskWrite = "disk_write"
	CounterNetSent   = "network_sent"
	CounterNetRecv   = "network_recv"
)

type counterSample struct {
	at    time.Time
	total uint64
}

// ThroughputTracker turns cumulative byte counters into MB/s rates by
// remembering the previous observation of each counter.
type ThroughputTracker struct {
	mu   sync.Mutex
	prev map[string]counterSample
}

func NewThroughputTracker() *ThroughputTracker {
	return &ThroughputTracker{prev: make(map[string]counterSample)}
}

// Rate records total for key at the given time and returns the rate since the
// previous observation. The first observation of a key yields 0. A counter that
// moved backwards (reset or wraparound) also yields 0 rather than a negative rate.
func (t *ThroughputTracker) Rate(key string, at time.Time, total uint64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.prev[key]
	t.prev[key] = counterSample{at: at, total: total}
	if !ok {
		return 0
	}

	elapsed := at.Sub(prev.at).Seconds()
	if elapsed <= 0 || total < prev.total {
		return 0
	}
	return float64(total-prev.total) / elapsed / bytesPerMB
}

// Reset forgets every previous observation.
func (t *ThroughputTracker) Reset() {
	t.mu.Lock()
	t.prev = make(map[string]counterSample)
	t.mu.Unlock()
}
