package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

type ProcessInfo struct {
	PID    int32   `json:"pid"`
	Name   string  `json:"name"`
	CPU    float64 `json:"cpu_percent"`
	Memory float32 `json:"memory_percent"`
}

type ProcessResult struct {
	Processes []ProcessInfo `json:"processes"`
}

// ProcessSensor enumerates every readable process. Handles are kept between
// calls so CPU percent is measured over the interval since the previous call;
// a process seen for the first time reports 0.
type ProcessSensor struct {
	mu    sync.Mutex
	procs map[int32]*process.Process
}

func NewProcessSensor() *ProcessSensor {
	return &ProcessSensor{procs: make(map[int32]*process.Process)}
}

func (s *ProcessSensor) Name() string {
	return "Process"
}

func (s *ProcessSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *ProcessSensor) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.procs = make(map[int32]*process.Process)
	s.mu.Unlock()
	return nil
}

func (s *ProcessSensor) Collect(ctx context.Context) (any, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pids: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int32]*process.Process, len(pids))
	processes := make([]ProcessInfo, 0, len(pids))

	for _, pid := range pids {
		p, ok := s.procs[pid]
		if !ok {
			p, err = process.NewProcessWithContext(ctx, pid)
			if err != nil {
				continue
			}
		}
		// Vanished or inaccessible processes are skipped individually.
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpuPct, err := p.PercentWithContext(ctx, 0)
		if err != nil {
			continue
		}
		memPct, _ := p.MemoryPercentWithContext(ctx)

		seen[pid] = p
		processes = append(processes, ProcessInfo{
			PID:    pid,
			Name:   name,
			CPU:    cpuPct,
			Memory: memPct,
		})
	}
	s.procs = seen

	return ProcessResult{Processes: processes}, nil
}
