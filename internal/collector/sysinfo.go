package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"sysmonitor/internal/collector/services"
)

// SystemInfo is the static identity of the host, read once per session.
// When any part of the lookup fails only Error is set.
type SystemInfo struct {
	OS           string `json:"os,omitempty"`
	OSVersion    string `json:"os_version,omitempty"`
	Architecture string `json:"architecture,omitempty"`
	Processor    string `json:"processor,omitempty"`
	CPUCount     int    `json:"cpu_count,omitempty"`
	CPUThreads   int    `json:"cpu_threads,omitempty"`
	CPUFreqMax   string `json:"cpu_freq_max,omitempty"`
	TotalMemory  string `json:"total_memory,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SystemInfo queries the host identity.
func (s *SystemCollector) SystemInfo(ctx context.Context) SystemInfo {
	info, err := s.systemInfo(ctx)
	if err != nil {
		return SystemInfo{Error: err.Error()}
	}
	return info
}

func (s *SystemCollector) systemInfo(ctx context.Context) (SystemInfo, error) {
	if s.sensors.Host == nil {
		return SystemInfo{}, errors.New("host sensor not configured")
	}
	res, err := s.sensors.Host.Collect(ctx)
	if err != nil {
		return SystemInfo{}, err
	}
	host, ok := res.(services.HostResult)
	if !ok {
		return SystemInfo{}, fmt.Errorf("unexpected host result %T", res)
	}

	cpuInfo, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("failed to get cpu info: %w", err)
	}
	var processor string
	var maxMHz float64
	if len(cpuInfo) > 0 {
		processor = cpuInfo[0].ModelName
		maxMHz = cpuInfo[0].Mhz
	}

	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("failed to count physical cores: %w", err)
	}
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("failed to count logical cores: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("failed to get memory size: %w", err)
	}

	return SystemInfo{
		OS:           titleCase(host.OS),
		OSVersion:    strings.TrimSpace(host.Platform + " " + host.PlatformVersion + " (kernel " + host.KernelVersion + ")"),
		Architecture: host.KernelArch,
		Processor:    processor,
		CPUCount:     physical,
		CPUThreads:   logical,
		CPUFreqMax:   fmt.Sprintf("%.2f MHz", maxMHz),
		TotalMemory:  fmt.Sprintf("%.2f GB", bytesToGB(vm.Total)),
		Hostname:     host.Hostname,
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
