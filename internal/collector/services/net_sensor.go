package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/net"
)

type NetResult struct {
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
	CountersAt  time.Time
}

type NetSensor struct {
	now func() time.Time
}

func NewNetSensor() *NetSensor {
	return &NetSensor{now: time.Now}
}

func (s *NetSensor) Name() string {
	return "Network"
}

func (s *NetSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *NetSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *NetSensor) Collect(ctx context.Context) (any, error) {
	// pernic=false yields a single "all" entry.
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get net io counters: %w", err)
	}
	if len(counters) == 0 {
		return nil, fmt.Errorf("no network counters reported")
	}
	c := counters[0]

	return NetResult{
		BytesSent:   c.BytesSent,
		BytesRecv:   c.BytesRecv,
		PacketsSent: c.PacketsSent,
		PacketsRecv: c.PacketsRecv,
		CountersAt:  s.now(),
	}, nil
}
