// Package history accumulates the samples of one monitoring session and
// aggregates them into summary statistics.
package history

import (
	"time"

	"sysmonitor/internal/collector"
)

// Scalar series keys.
const (
	KeyCPUPercent    = "cpu_percent"
	KeyCPUTemp       = "cpu_temp"
	KeyMemoryPercent = "memory_percent"
	KeyMemoryUsed    = "memory_used"
	KeyDiskPercent   = "disk_percent"
	KeyDiskRead      = "disk_read"
	KeyDiskWrite     = "disk_write"
	KeyNetworkSent   = "network_sent"
	KeyNetworkRecv   = "network_recv"
)

// Device series keys. Each tick holds one value per GPU.
const (
	KeyGPUUsage = "gpu_usage"
	KeyGPUTemp  = "gpu_temp"
)

// Structural keys, never aggregated.
const (
	KeyTimestamps   = "timestamps"
	KeyCPUPerCore   = "cpu_per_core"
	KeyTopProcesses = "top_processes"
)

// ScalarKeys lists the scalar series in display order.
var ScalarKeys = []string{
	KeyCPUPercent, KeyCPUTemp,
	KeyMemoryPercent, KeyMemoryUsed,
	KeyDiskPercent, KeyDiskRead, KeyDiskWrite,
	KeyNetworkSent, KeyNetworkRecv,
}

// DeviceKeys lists the per-device series.
var DeviceKeys = []string{KeyGPUUsage, KeyGPUTemp}

// Store is the append-only history of a session. It has a single writer;
// readers must only access it once appends have stopped.
type Store struct {
	timestamps   []time.Time
	scalars      map[string][]float64
	devices      map[string][][]float64
	perCore      [][]float64
	topProcesses [][]collector.ProcessEntry

	// ticks[key][i] is the tick index of the i-th entry recorded under key.
	ticks map[string][]int
}

func New() *Store {
	return &Store{
		scalars: make(map[string][]float64),
		devices: make(map[string][][]float64),
		ticks:   make(map[string][]int),
	}
}

// Append records one sample. The timestamp is always recorded; a category in
// error contributes nothing to its series for this tick.
func (s *Store) Append(sample collector.Sample) {
	s.timestamps = append(s.timestamps, sample.Timestamp)

	if cpu, ok := sample.CPU.Get(); ok {
		s.push(KeyCPUPercent, cpu.Percent)
		s.push(KeyCPUTemp, cpu.Temperature)
		s.perCore = append(s.perCore, append([]float64(nil), cpu.PerCore...))
		s.mark(KeyCPUPerCore)
	}

	if mem, ok := sample.Memory.Get(); ok {
		s.push(KeyMemoryPercent, mem.Percent)
		s.push(KeyMemoryUsed, mem.UsedGB)
	}

	if disk, ok := sample.Disk.Get(); ok {
		s.push(KeyDiskPercent, disk.Percent)
		s.push(KeyDiskRead, disk.ReadMBps)
		s.push(KeyDiskWrite, disk.WriteMBps)
	}

	if network, ok := sample.Network.Get(); ok {
		s.push(KeyNetworkSent, network.UploadMBps)
		s.push(KeyNetworkRecv, network.DownloadMBps)
	}

	if gpus, ok := sample.GPU.Get(); ok && len(gpus) > 0 {
		usage := make([]float64, len(gpus))
		temps := make([]float64, len(gpus))
		for i, g := range gpus {
			usage[i] = g.Load
			temps[i] = g.Temperature
		}
		s.devices[KeyGPUUsage] = append(s.devices[KeyGPUUsage], usage)
		s.devices[KeyGPUTemp] = append(s.devices[KeyGPUTemp], temps)
		s.mark(KeyGPUUsage)
		s.mark(KeyGPUTemp)
	}

	if procs, ok := sample.Processes.Get(); ok {
		s.topProcesses = append(s.topProcesses, append([]collector.ProcessEntry(nil), procs...))
		s.mark(KeyTopProcesses)
	}
}

func (s *Store) push(key string, v float64) {
	s.scalars[key] = append(s.scalars[key], v)
	s.mark(key)
}

// mark records that key received an entry on the current tick.
func (s *Store) mark(key string) {
	s.ticks[key] = append(s.ticks[key], len(s.timestamps)-1)
}

// Len is the number of ticks recorded.
func (s *Store) Len() int {
	return len(s.timestamps)
}

func (s *Store) Timestamps() []time.Time {
	return s.timestamps
}

// Series returns the scalar series for key, or nil if nothing was recorded.
func (s *Store) Series(key string) []float64 {
	return s.scalars[key]
}

// Ticks returns the tick index of every entry recorded under key, in order.
// It is parallel to Series, DeviceSeries, PerCore or TopProcesses for the same
// key; ticks on which the category failed are missing.
func (s *Store) Ticks(key string) []int {
	return s.ticks[key]
}

// DeviceSeries returns the per-tick device lists for key.
func (s *Store) DeviceSeries(key string) [][]float64 {
	return s.devices[key]
}

// DeviceCount is the largest number of devices seen on any tick for key.
func (s *Store) DeviceCount(key string) int {
	n := 0
	for _, tick := range s.devices[key] {
		if len(tick) > n {
			n = len(tick)
		}
	}
	return n
}

// Device extracts one device's series from a device key, with the tick index
// of each value. Ticks on which the device was absent are skipped.
func (s *Store) Device(key string, index int) (ticks []int, values []float64) {
	at := s.ticks[key]
	for i, devices := range s.devices[key] {
		if index < len(devices) {
			ticks = append(ticks, at[i])
			values = append(values, devices[index])
		}
	}
	return ticks, values
}

func (s *Store) PerCore() [][]float64 {
	return s.perCore
}

func (s *Store) TopProcesses() [][]collector.ProcessEntry {
	return s.topProcesses
}

// Statistics aggregates the current contents.
func (s *Store) Statistics() Statistics {
	return Aggregate(s)
}
