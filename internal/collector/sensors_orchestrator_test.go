package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"sysmonitor/internal/collector/services"
	"sysmonitor/internal/engine"
)

// fakeSensor returns canned values in order, repeating the last one.
type fakeSensor struct {
	name   string
	values []any
	err    error
	panics bool
	calls  int
}

func (f *fakeSensor) Name() string                         { return f.name }
func (f *fakeSensor) Connect(ctx context.Context) error    { return nil }
func (f *fakeSensor) Disconnect(ctx context.Context) error { return nil }
func (f *fakeSensor) Collect(ctx context.Context) (any, error) {
	if f.panics {
		panic("sensor exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls
	if i >= len(f.values) {
		i = len(f.values) - 1
	}
	f.calls++
	return f.values[i], nil
}

func healthySensors(t0 time.Time) Sensors {
	return Sensors{
		CPU: &fakeSensor{name: "CPU", values: []any{services.CPUResult{TotalUsage: 65, PerCore: []float64{60, 70}, FrequencyMHz: 3200}}},
		Memory: &fakeSensor{name: "Memory", values: []any{services.MemResult{
			UsedPercent: 50, Used: 8 * bytesPerGB, Available: 8 * bytesPerGB, Total: 16 * bytesPerGB,
		}}},
		Disk: &fakeSensor{name: "Disk", values: []any{
			services.DiskResult{UsedPercent: 85, Total: 100 * bytesPerGB, ReadBytes: 100, WriteBytes: 0, CountersAt: t0},
			services.DiskResult{UsedPercent: 85, Total: 100 * bytesPerGB, ReadBytes: 100 + 10*bytesPerMB, WriteBytes: 2 * bytesPerMB, CountersAt: t0.Add(time.Second)},
		}},
		Network: &fakeSensor{name: "Network", values: []any{
			services.NetResult{BytesSent: 0, BytesRecv: 0, CountersAt: t0},
			services.NetResult{BytesSent: 3 * bytesPerMB, BytesRecv: 6 * bytesPerMB, CountersAt: t0.Add(2 * time.Second)},
		}},
		GPU: &fakeSensor{name: "GPU", values: []any{services.GPUResult{Devices: []services.GPUDevice{
			{Index: 0, Name: "gpu0", Load: 90, Temperature: 70, MemoryUsedMB: 512, MemoryTotalMB: 1024},
			{Index: 1, Name: "gpu1", Load: 10, Temperature: 40, MemoryUsedMB: 0, MemoryTotalMB: 0},
		}}}},
		Physical: &fakeSensor{name: "Physical", values: []any{services.PhysicalResult{Temperatures: []services.TempStat{
			{SensorKey: "acpitz", Temperature: 30},
			{SensorKey: "coretemp_package_id_0", Temperature: 55},
		}}}},
		Process: &fakeSensor{name: "Process", values: []any{services.ProcessResult{Processes: []services.ProcessInfo{
			{PID: 1, Name: "init", CPU: 0.1},
			{PID: 2, Name: "a", CPU: 30},
			{PID: 3, Name: "b", CPU: 50},
			{PID: 4, Name: "c", CPU: 30},
			{PID: 5, Name: "d", CPU: 5},
			{PID: 6, Name: "e", CPU: 1},
			{PID: 7, Name: "f", CPU: 2},
		}}}},
	}
}

func TestSystemCollector_Collect(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSystemCollectorWithSensors(DefaultCollectorConfig(), healthySensors(t0))

	first := c.Collect(context.Background())

	cpu, ok := first.CPU.Get()
	if !ok {
		t.Fatalf("cpu failed: %s", first.CPU.Err)
	}
	if cpu.Status != engine.StatusWarning || cpu.Temperature != 55 {
		t.Errorf("unexpected cpu metric: %+v", cpu)
	}

	mem, _ := first.Memory.Get()
	if mem.UsedGB != 8 || mem.TotalGB != 16 || mem.Status != engine.StatusNormal {
		t.Errorf("unexpected memory metric: %+v", mem)
	}

	disk, _ := first.Disk.Get()
	if disk.ReadMBps != 0 || disk.Status != engine.StatusCritical {
		t.Errorf("first tick should report zero throughput, got %+v", disk)
	}

	gpus, ok := first.GPU.Get()
	if !ok || len(gpus) != 2 {
		t.Fatalf("expected two gpu devices, got %+v", first.GPU)
	}
	if gpus[0].MemoryPercent != 50 || gpus[0].Status != engine.StatusCritical {
		t.Errorf("unexpected gpu0: %+v", gpus[0])
	}
	if gpus[1].MemoryPercent != 0 {
		t.Errorf("zero total memory must yield 0 percent, got %v", gpus[1].MemoryPercent)
	}

	procs, _ := first.Processes.Get()
	wantPIDs := []int32{3, 2, 4, 5, 7}
	if len(procs) != len(wantPIDs) {
		t.Fatalf("expected %d processes, got %d", len(wantPIDs), len(procs))
	}
	for i, pid := range wantPIDs {
		if procs[i].PID != pid {
			t.Errorf("rank %d: expected pid %d, got %d", i, pid, procs[i].PID)
		}
	}

	second := c.Collect(context.Background())
	disk, _ = second.Disk.Get()
	if disk.ReadMBps != 10 || disk.WriteMBps != 2 {
		t.Errorf("unexpected disk throughput: read=%v write=%v", disk.ReadMBps, disk.WriteMBps)
	}
	network, _ := second.Network.Get()
	if network.UploadMBps != 1.5 || network.DownloadMBps != 3 {
		t.Errorf("unexpected network throughput: up=%v down=%v", network.UploadMBps, network.DownloadMBps)
	}
}

func TestSystemCollector_IsolatesFailures(t *testing.T) {
	sensors := healthySensors(time.Now())
	sensors.CPU = &fakeSensor{name: "CPU", panics: true}
	sensors.Memory = &fakeSensor{name: "Memory", err: errors.New("permission denied")}
	sensors.GPU = &fakeSensor{name: "GPU", err: services.ErrGPUUnavailable}
	sensors.Physical = &fakeSensor{name: "Physical", err: errors.New("no sensors")}

	c := NewSystemCollectorWithSensors(DefaultCollectorConfig(), sensors)
	s := c.Collect(context.Background())

	if s.CPU.OK() {
		t.Error("panicking cpu sensor should yield an error marker")
	}
	if s.Memory.Err != "permission denied" {
		t.Errorf("unexpected memory error: %q", s.Memory.Err)
	}
	if s.GPU.OK() {
		t.Error("gpu error should be recorded")
	}
	if !s.Disk.OK() || !s.Network.OK() || !s.Processes.OK() {
		t.Error("healthy categories must still be collected")
	}
}

func TestSystemCollector_DisabledCategories(t *testing.T) {
	sensors := healthySensors(time.Now())
	sensors.GPU = nil
	sensors.Physical = nil
	sensors.Process = nil

	c := NewSystemCollectorWithSensors(DefaultCollectorConfig(), sensors)
	s := c.Collect(context.Background())

	gpus, ok := s.GPU.Get()
	if !ok || len(gpus) != 0 {
		t.Errorf("disabled gpu should be an empty device list, got %+v", s.GPU)
	}
	procs, ok := s.Processes.Get()
	if !ok || len(procs) != 0 {
		t.Errorf("disabled processes should be an empty list, got %+v", s.Processes)
	}
	cpu, _ := s.CPU.Get()
	if cpu.Temperature != 0 {
		t.Errorf("temperature should be 0 without a sensor, got %v", cpu.Temperature)
	}
}

func TestTopProcesses(t *testing.T) {
	entries := []ProcessEntry{
		{PID: 1, CPUPercent: 10},
		{PID: 2, CPUPercent: 40},
		{PID: 3, CPUPercent: 10},
		{PID: 4, CPUPercent: 40},
		{PID: 5, CPUPercent: 0},
	}

	tests := []struct {
		name string
		n    int
		want []int32
	}{
		{name: "truncates", n: 3, want: []int32{2, 4, 1}},
		{name: "stable ties", n: 4, want: []int32{2, 4, 1, 3}},
		{name: "fewer than n", n: 10, want: []int32{2, 4, 1, 3, 5}},
		{name: "zero", n: 0, want: []int32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopProcesses(entries, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d entries, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i].PID != tt.want[i] {
					t.Errorf("rank %d: expected pid %d, got %d", i, tt.want[i], got[i].PID)
				}
			}
		})
	}

	if entries[0].PID != 1 || entries[1].PID != 2 {
		t.Error("TopProcesses must not reorder its input")
	}
}

func TestSystemCollector_Live(t *testing.T) {
	c := NewSystemCollector(DefaultCollectorConfig().WithGPU(false))
	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Logf("connect reported: %v", err)
	}
	defer c.Close(ctx)

	s := c.Collect(ctx)
	if cpu, ok := s.CPU.Get(); ok {
		if cpu.Percent < 0 || cpu.Percent > 100 {
			t.Errorf("CPU usage out of bounds: %f", cpu.Percent)
		}
	} else {
		t.Logf("cpu unavailable: %s", s.CPU.Err)
	}
	if mem, ok := s.Memory.Get(); ok {
		if mem.Percent < 0 || mem.Percent > 100 {
			t.Errorf("memory usage out of bounds: %f", mem.Percent)
		}
	}
	if procs, ok := s.Processes.Get(); ok && len(procs) > 5 {
		t.Errorf("expected at most 5 processes, got %d", len(procs))
	}

	info := c.SystemInfo(ctx)
	if info.Error == "" && info.Hostname == "" {
		t.Error("system info should carry a hostname or an error")
	}
}
