package collector

import (
	"bytes"
	"encoding/json"
	"time"

	"sysmonitor/internal/engine"
)

// TimestampLayout is the wall-clock layout used for display and reports.
const TimestampLayout = "2006-01-02 15:04:05"

const bytesPerGB = 1024 * 1024 * 1024

// Reading is the per-category result of one collection round: either a
// metric value or the reason the category could not be read.
type Reading[T any] struct {
	Value T
	Err   string
}

// Ok wraps a successfully collected value.
func Ok[T any](v T) Reading[T] {
	return Reading[T]{Value: v}
}

// Fail records a category failure. A nil error is reported as "unknown error".
func Fail[T any](err error) Reading[T] {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Reading[T]{Err: msg}
}

// OK reports whether the category was read successfully.
func (r Reading[T]) OK() bool {
	return r.Err == ""
}

// Get returns the value and whether it is valid.
func (r Reading[T]) Get() (T, bool) {
	return r.Value, r.OK()
}

// MarshalJSON emits the bare value, or {"error": reason} for a failed category.
func (r Reading[T]) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Err})
	}
	return json.Marshal(r.Value)
}

func (r *Reading[T]) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var probe struct {
			Error *string `json:"error"`
		}
		if err := json.Unmarshal(data, &probe); err == nil && probe.Error != nil {
			*r = Reading[T]{Err: *probe.Error}
			return nil
		}
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Reading[T]{Value: v}
	return nil
}

type CpuMetric struct {
	Percent      float64       `json:"percent"`
	PerCore      []float64     `json:"per_core"`
	FrequencyMHz float64       `json:"frequency_mhz"`
	Temperature  float64       `json:"temperature"` // 0 when no sensor is available
	Status       engine.Status `json:"status"`
}

type MemoryMetric struct {
	Percent     float64       `json:"percent"`
	UsedGB      float64       `json:"used_gb"`
	AvailableGB float64       `json:"available_gb"`
	TotalGB     float64       `json:"total_gb"`
	SwapPercent float64       `json:"swap_percent"`
	SwapUsedGB  float64       `json:"swap_used_gb"`
	Status      engine.Status `json:"status"`
}

type DiskMetric struct {
	Percent   float64       `json:"percent"`
	UsedGB    float64       `json:"used_gb"`
	FreeGB    float64       `json:"free_gb"`
	TotalGB   float64       `json:"total_gb"`
	ReadMBps  float64       `json:"read_speed"`
	WriteMBps float64       `json:"write_speed"`
	Status    engine.Status `json:"status"`
}

type NetworkMetric struct {
	SentGB       float64 `json:"bytes_sent_gb"`
	RecvGB       float64 `json:"bytes_recv_gb"`
	UploadMBps   float64 `json:"upload_speed"`
	DownloadMBps float64 `json:"download_speed"`
	PacketsSent  uint64  `json:"packets_sent"`
	PacketsRecv  uint64  `json:"packets_recv"`
}

type GpuMetric struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Load          float64       `json:"load"`
	Temperature   float64       `json:"temperature"`
	MemoryUsedMB  float64       `json:"memory_used"`
	MemoryTotalMB float64       `json:"memory_total"`
	MemoryPercent float64       `json:"memory_percent"`
	Status        engine.Status `json:"status"`
}

type ProcessEntry struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// Sample is one timestamped snapshot across every metric category.
type Sample struct {
	Timestamp time.Time               `json:"timestamp"`
	CPU       Reading[CpuMetric]      `json:"cpu"`
	Memory    Reading[MemoryMetric]   `json:"memory"`
	Disk      Reading[DiskMetric]     `json:"disk"`
	Network   Reading[NetworkMetric]  `json:"network"`
	GPU       Reading[[]GpuMetric]    `json:"gpu"`
	Processes Reading[[]ProcessEntry] `json:"processes"`
}

func bytesToGB(b uint64) float64 {
	return float64(b) / bytesPerGB
}
