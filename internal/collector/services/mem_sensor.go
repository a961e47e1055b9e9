package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

type MemResult struct {
	UsedPercent float64
	Available   uint64
	Used        uint64
	Total       uint64
	SwapUsage   float64
	SwapTotal   uint64
	SwapUsed    uint64
}

type MemSensor struct{}

func NewMemSensor() *MemSensor {
	return &MemSensor{}
}

func (s *MemSensor) Name() string {
	return "Memory"
}

func (s *MemSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *MemSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *MemSensor) Collect(ctx context.Context) (any, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	res := MemResult{
		UsedPercent: v.UsedPercent,
		Available:   v.Available,
		Used:        v.Used,
		Total:       v.Total,
		SwapTotal:   v.SwapTotal,
		SwapUsed:    v.SwapTotal - v.SwapFree,
	}

	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil && swap != nil {
		res.SwapUsage = swap.UsedPercent
		res.SwapTotal = swap.Total
		res.SwapUsed = swap.Used
	}

	return res, nil
}
