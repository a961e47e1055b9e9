package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"sysmonitor/internal/collector/services"
	"sysmonitor/internal/engine"
)

// ============================================================================
// INTERFACE DEFINITION
// ============================================================================

// Sampler produces one Sample per call. Implementations never fail as a
// whole; category failures are carried inside the Sample.
type Sampler interface {
	Collect(ctx context.Context) Sample
}

// Sensors groups one provider per category. A nil sensor disables its category.
type Sensors struct {
	CPU      services.Sensor
	Memory   services.Sensor
	Disk     services.Sensor
	Network  services.Sensor
	GPU      services.Sensor
	Physical services.Sensor
	Process  services.Sensor
	Host     services.Sensor
}

// DefaultSensors builds the gopsutil/NVML sensor set for cfg, each bounded by
// cfg.SensorTimeout.
func DefaultSensors(cfg CollectorConfig) Sensors {
	bound := func(s services.Sensor) services.Sensor {
		return services.WithTimeout(s, cfg.SensorTimeout)
	}

	s := Sensors{
		CPU:     bound(services.NewCPUSensor()),
		Memory:  bound(services.NewMemSensor()),
		Disk:    bound(services.NewDiskSensor(cfg.DiskPath)),
		Network: bound(services.NewNetSensor()),
		Host:    bound(services.NewHostSensor()),
	}
	if cfg.EnableGPU {
		s.GPU = bound(services.NewGPUSensor())
	}
	if cfg.EnableTemperatures {
		s.Physical = bound(services.NewPhysicalSensor())
	}
	if cfg.EnableProcessMetrics {
		s.Process = bound(services.NewProcessSensor())
	}
	return s
}

func (s Sensors) all() []services.Sensor {
	var out []services.Sensor
	for _, sensor := range []services.Sensor{s.CPU, s.Memory, s.Disk, s.Network, s.GPU, s.Physical, s.Process, s.Host} {
		if sensor != nil {
			out = append(out, sensor)
		}
	}
	return out
}

// ============================================================================
// CONCRETE IMPLEMENTATION
// ============================================================================

// SystemCollector queries every category concurrently and assembles a Sample.
type SystemCollector struct {
	cfg        CollectorConfig
	sensors    Sensors
	throughput *ThroughputTracker
	now        func() time.Time
}

func NewSystemCollector(cfg CollectorConfig) *SystemCollector {
	return NewSystemCollectorWithSensors(cfg, DefaultSensors(cfg))
}

// NewSystemCollectorWithSensors builds a collector over an explicit sensor set.
func NewSystemCollectorWithSensors(cfg CollectorConfig, sensors Sensors) *SystemCollector {
	return &SystemCollector{
		cfg:        cfg,
		sensors:    sensors,
		throughput: NewThroughputTracker(),
		now:        time.Now,
	}
}

// Connect prepares every sensor. Failures are joined and returned, but the
// collector stays usable; failing categories surface as errors per sample.
func (s *SystemCollector) Connect(ctx context.Context) error {
	var errs []error
	for _, sensor := range s.sensors.all() {
		if err := sensor.Connect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sensor.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close releases sensor resources.
func (s *SystemCollector) Close(ctx context.Context) error {
	var errs []error
	for _, sensor := range s.sensors.all() {
		if err := sensor.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sensor.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Internal result type for concurrency
type sensorResult struct {
	value any
	err   error
}

var errCategoryDisabled = errors.New("disabled")

func fetch(ctx context.Context, wg *sync.WaitGroup, sensor services.Sensor, ch chan<- sensorResult) {
	defer wg.Done()
	if sensor == nil {
		ch <- sensorResult{err: errCategoryDisabled}
		return
	}
	defer func() {
		if r := recover(); r != nil {
			ch <- sensorResult{err: fmt.Errorf("%s sensor panicked: %v", sensor.Name(), r)}
		}
	}()
	v, err := sensor.Collect(ctx)
	ch <- sensorResult{value: v, err: err}
}

func as[T any](res sensorResult) (T, error) {
	var zero T
	if res.err != nil {
		return zero, res.err
	}
	v, ok := res.value.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected sensor result %T", res.value)
	}
	return v, nil
}

// Collect runs one collection round. Each category is isolated: an error or
// panic in one sensor becomes an error marker for that category only.
func (s *SystemCollector) Collect(ctx context.Context) Sample {
	cpuCh := make(chan sensorResult, 1)
	memCh := make(chan sensorResult, 1)
	diskCh := make(chan sensorResult, 1)
	netCh := make(chan sensorResult, 1)
	gpuCh := make(chan sensorResult, 1)
	physicalCh := make(chan sensorResult, 1)
	processCh := make(chan sensorResult, 1)

	timestamp := s.now()

	var wg sync.WaitGroup
	wg.Add(7)
	go fetch(ctx, &wg, s.sensors.CPU, cpuCh)
	go fetch(ctx, &wg, s.sensors.Memory, memCh)
	go fetch(ctx, &wg, s.sensors.Disk, diskCh)
	go fetch(ctx, &wg, s.sensors.Network, netCh)
	go fetch(ctx, &wg, s.sensors.GPU, gpuCh)
	go fetch(ctx, &wg, s.sensors.Physical, physicalCh)
	go fetch(ctx, &wg, s.sensors.Process, processCh)
	wg.Wait()

	// Gather results
	cpuRes := <-cpuCh
	memRes := <-memCh
	diskRes := <-diskCh
	netRes := <-netCh
	gpuRes := <-gpuCh
	physicalRes := <-physicalCh
	processRes := <-processCh

	return Sample{
		Timestamp: timestamp,
		CPU:       s.buildCPU(cpuRes, physicalRes),
		Memory:    buildMemory(memRes),
		Disk:      s.buildDisk(diskRes),
		Network:   s.buildNetwork(netRes),
		GPU:       buildGPU(gpuRes),
		Processes: s.buildProcesses(processRes),
	}
}

func (s *SystemCollector) buildCPU(res, physical sensorResult) Reading[CpuMetric] {
	stats, err := as[services.CPUResult](res)
	if err != nil {
		return Fail[CpuMetric](err)
	}

	// Temperature is optional; any failure leaves it at 0.
	var temp float64
	if p, err := as[services.PhysicalResult](physical); err == nil {
		temp = p.CPUTemperature()
	}

	return Ok(CpuMetric{
		Percent:      stats.TotalUsage,
		PerCore:      stats.PerCore,
		FrequencyMHz: stats.FrequencyMHz,
		Temperature:  temp,
		Status:       engine.Classify(stats.TotalUsage),
	})
}

func buildMemory(res sensorResult) Reading[MemoryMetric] {
	stats, err := as[services.MemResult](res)
	if err != nil {
		return Fail[MemoryMetric](err)
	}
	return Ok(MemoryMetric{
		Percent:     stats.UsedPercent,
		UsedGB:      bytesToGB(stats.Used),
		AvailableGB: bytesToGB(stats.Available),
		TotalGB:     bytesToGB(stats.Total),
		SwapPercent: stats.SwapUsage,
		SwapUsedGB:  bytesToGB(stats.SwapUsed),
		Status:      engine.Classify(stats.UsedPercent),
	})
}

func (s *SystemCollector) buildDisk(res sensorResult) Reading[DiskMetric] {
	stats, err := as[services.DiskResult](res)
	if err != nil {
		return Fail[DiskMetric](err)
	}
	return Ok(DiskMetric{
		Percent:   stats.UsedPercent,
		UsedGB:    bytesToGB(stats.Used),
		FreeGB:    bytesToGB(stats.Free),
		TotalGB:   bytesToGB(stats.Total),
		ReadMBps:  s.throughput.Rate(CounterDiskRead, stats.CountersAt, stats.ReadBytes),
		WriteMBps: s.throughput.Rate(CounterDiskWrite, stats.CountersAt, stats.WriteBytes),
		Status:    engine.Classify(stats.UsedPercent),
	})
}

func (s *SystemCollector) buildNetwork(res sensorResult) Reading[NetworkMetric] {
	stats, err := as[services.NetResult](res)
	if err != nil {
		return Fail[NetworkMetric](err)
	}
	return Ok(NetworkMetric{
		SentGB:       bytesToGB(stats.BytesSent),
		RecvGB:       bytesToGB(stats.BytesRecv),
		UploadMBps:   s.throughput.Rate(CounterNetSent, stats.CountersAt, stats.BytesSent),
		DownloadMBps: s.throughput.Rate(CounterNetRecv, stats.CountersAt, stats.BytesRecv),
		PacketsSent:  stats.PacketsSent,
		PacketsRecv:  stats.PacketsRecv,
	})
}

func buildGPU(res sensorResult) Reading[[]GpuMetric] {
	if errors.Is(res.err, errCategoryDisabled) {
		return Ok([]GpuMetric{})
	}
	stats, err := as[services.GPUResult](res)
	if err != nil {
		return Fail[[]GpuMetric](err)
	}

	devices := make([]GpuMetric, 0, len(stats.Devices))
	for _, d := range stats.Devices {
		var memPct float64
		if d.MemoryTotalMB > 0 {
			memPct = d.MemoryUsedMB / d.MemoryTotalMB * 100
		}
		devices = append(devices, GpuMetric{
			ID:            d.Index,
			Name:          d.Name,
			Load:          d.Load,
			Temperature:   d.Temperature,
			MemoryUsedMB:  d.MemoryUsedMB,
			MemoryTotalMB: d.MemoryTotalMB,
			MemoryPercent: memPct,
			Status:        engine.Classify(d.Load),
		})
	}
	return Ok(devices)
}

func (s *SystemCollector) buildProcesses(res sensorResult) Reading[[]ProcessEntry] {
	if errors.Is(res.err, errCategoryDisabled) {
		return Ok([]ProcessEntry{})
	}
	stats, err := as[services.ProcessResult](res)
	if err != nil {
		return Fail[[]ProcessEntry](err)
	}

	entries := make([]ProcessEntry, 0, len(stats.Processes))
	for _, p := range stats.Processes {
		entries = append(entries, ProcessEntry{
			PID:           p.PID,
			Name:          p.Name,
			CPUPercent:    p.CPU,
			MemoryPercent: float64(p.Memory),
		})
	}
	return Ok(TopProcesses(entries, s.cfg.TopProcessCount))
}

// TopProcesses returns the n entries with the highest CPU percent. The sort is
// stable, so ties keep enumeration order. The input slice is not modified.
func TopProcesses(entries []ProcessEntry, n int) []ProcessEntry {
	if n <= 0 {
		return []ProcessEntry{}
	}
	ranked := make([]ProcessEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CPUPercent > ranked[j].CPUPercent
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
