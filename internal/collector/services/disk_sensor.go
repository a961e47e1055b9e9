package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
)

type DiskResult struct {
	Path        string
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64

	// Cumulative byte counters summed over all block devices.
	ReadBytes  uint64
	WriteBytes uint64
	// CountersAt is when the counters were read.
	CountersAt time.Time
}

type DiskSensor struct {
	path string
	now  func() time.Time
}

// NewDiskSensor reports usage for the filesystem mounted at path.
func NewDiskSensor(path string) *DiskSensor {
	if path == "" {
		path = "/"
	}
	return &DiskSensor{path: path, now: time.Now}
}

func (s *DiskSensor) Name() string {
	return "Disk"
}

func (s *DiskSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *DiskSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *DiskSensor) Collect(ctx context.Context) (any, error) {
	u, err := disk.UsageWithContext(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage for %s: %w", s.path, err)
	}

	ioCounters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get IO counters: %w", err)
	}
	at := s.now()

	res := DiskResult{
		Path:        u.Path,
		Total:       u.Total,
		Used:        u.Used,
		Free:        u.Free,
		UsedPercent: u.UsedPercent,
		CountersAt:  at,
	}
	for name, c := range ioCounters {
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		res.ReadBytes += c.ReadBytes
		res.WriteBytes += c.WriteBytes
	}

	return res, nil
}
