package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

type CPUResult struct {
	TotalUsage   float64
	PerCore      []float64
	FrequencyMHz float64 // current, averaged over cores
	Model        string
	Cores        int
}

// CPUSensor reports utilization and the current clock. Model and core count
// are static and read once on Connect.
type CPUSensor struct {
	sysRoot  string
	procRoot string
	percent  func(ctx context.Context, interval time.Duration, perCPU bool) ([]float64, error)

	model      string
	cores      int
	nominalMHz float64 // cpuinfo value, last-resort frequency
}

func NewCPUSensor() *CPUSensor {
	return &CPUSensor{
		sysRoot:  "/sys",
		procRoot: "/proc",
		percent:  cpu.PercentWithContext,
		model:    "Unknown",
	}
}

func (s *CPUSensor) Name() string {
	return "CPU"
}

// Connect reads the static CPU description. Failures only leave it unknown.
func (s *CPUSensor) Connect(ctx context.Context) error {
	if info, err := cpu.InfoWithContext(ctx); err == nil && len(info) > 0 {
		s.model = info[0].ModelName
		s.nominalMHz = info[0].Mhz
	}
	if cores, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.cores = cores
	}
	return nil
}

func (s *CPUSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Collect(ctx context.Context) (any, error) {
	total, err := s.percent(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get total cpu percent: %w", err)
	}
	if len(total) == 0 {
		return nil, errors.New("no cpu percent reported")
	}

	perCore, err := s.percent(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-core cpu percent: %w", err)
	}

	return CPUResult{
		TotalUsage:   total[0],
		PerCore:      perCore,
		FrequencyMHz: s.currentMHz(),
		Model:        s.model,
		Cores:        s.cores,
	}, nil
}

// currentMHz prefers cpufreq's scaling_cur_freq, then the "cpu MHz" lines of
// /proc/cpuinfo, then the value seen on Connect.
func (s *CPUSensor) currentMHz() float64 {
	if mhz, ok := scalingCurMHz(s.sysRoot); ok {
		return mhz
	}
	if mhz, ok := cpuinfoMHz(s.procRoot); ok {
		return mhz
	}
	return s.nominalMHz
}

func scalingCurMHz(sysRoot string) (float64, bool) {
	paths, _ := filepath.Glob(filepath.Join(sysRoot, "devices/system/cpu/cpu[0-9]*/cpufreq/scaling_cur_freq"))
	var sum float64
	var n int
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		khz, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil || khz <= 0 {
			continue
		}
		sum += khz / 1000
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func cpuinfoMHz(procRoot string) (float64, bool) {
	f, err := os.Open(filepath.Join(procRoot, "cpuinfo"))
	if err != nil {
		return 0, false
	}
	defer f.Close()

	var sum float64
	var n int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "cpu MHz" {
			continue
		}
		mhz, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || mhz <= 0 {
			continue
		}
		sum += mhz
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
