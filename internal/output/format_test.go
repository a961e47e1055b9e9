package output

import (
	"errors"
	"testing"
	"time"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/engine"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00"},
		{59*time.Second + 900*time.Millisecond, "0:00:59"},
		{5 * time.Minute, "0:05:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Second, "0:00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.in); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{299 * time.Second, "04:59"},
		{5 * time.Minute, "05:00"},
		{90 * time.Minute, "90:00"},
		{-3 * time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildDashboard(t *testing.T) {
	sample := collector.Sample{
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		CPU: collector.Ok(collector.CpuMetric{
			Percent: 82, PerCore: []float64{50, 90}, Status: engine.StatusCritical,
		}),
		Memory:    collector.Ok(collector.MemoryMetric{Percent: 40, TotalGB: 16, Status: engine.StatusNormal}),
		Disk:      collector.Fail[collector.DiskMetric](errors.New("permission denied")),
		Network:   collector.Ok(collector.NetworkMetric{DownloadMBps: 2}),
		GPU:       collector.Ok([]collector.GpuMetric{}),
		Processes: collector.Ok([]collector.ProcessEntry{{PID: 7, Name: "worker", CPUPercent: 12}}),
	}

	view := BuildDashboard(sample)

	if view.Timestamp != "2024-03-01 10:00:00" {
		t.Errorf("unexpected timestamp %q", view.Timestamp)
	}
	if len(view.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(view.Sections))
	}

	cpu := view.SectionByID(SectionCPU)
	if cpu == nil {
		t.Fatal("missing cpu section")
	}
	if it := cpu.ItemByKey("cpu_usage"); it == nil || it.Status != engine.StatusCritical {
		t.Errorf("unexpected cpu usage item: %+v", it)
	}
	if it := cpu.ItemByKey("core_0"); it == nil || it.Status != engine.StatusNormal {
		t.Errorf("unexpected core item: %+v", it)
	}
	if cpu.ItemByKey("cpu_temp") != nil {
		t.Error("temperature item should be omitted when unavailable")
	}

	if disk := view.SectionByID(SectionDisk); disk.Err != "permission denied" || len(disk.Items) != 0 {
		t.Errorf("disk failure should surface as section error, got %+v", disk)
	}
	if view.TotalRAMGB != 16 {
		t.Errorf("expected 16 GB RAM, got %v", view.TotalRAMGB)
	}
	if procs := view.SectionByID(SectionProcesses); procs.ItemByKey("pid_7") == nil {
		t.Error("expected process item")
	}
	if view.SectionByID("missing") != nil {
		t.Error("unknown section should be nil")
	}
}

func TestEventConstructors(t *testing.T) {
	ev := TimeEvent(3, 3*time.Second, 297*time.Second)
	if ev.Kind != EventTimeUpdate || ev.Time.Elapsed != "0:00:03" || ev.Time.Remaining != "04:57" {
		t.Errorf("unexpected time event: %+v", ev.Time)
	}

	done := CompleteEvent(Completion{ReportPath: "reports/x.pdf", Samples: 3})
	if done.Kind != EventMonitoringComplete || done.Complete.ReportPath != "reports/x.pdf" {
		t.Errorf("unexpected completion event: %+v", done)
	}
}
