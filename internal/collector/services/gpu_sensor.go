package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// ErrGPUUnavailable is returned when NVML cannot be initialized on this host.
var ErrGPUUnavailable = errors.New("gpu unavailable")

type GPUDevice struct {
	Index         int
	Name          string
	Load          float64 // percent
	Temperature   float64 // celsius
	MemoryUsedMB  float64
	MemoryTotalMB float64
}

type GPUResult struct {
	Devices []GPUDevice
}

type GPUSensor struct {
	mu      sync.Mutex
	ready   bool
	initErr error
}

func NewGPUSensor() *GPUSensor {
	return &GPUSensor{}
}

func (s *GPUSensor) Name() string {
	return "GPU"
}

// Connect initializes NVML. A host without an NVIDIA driver is not a
// connection failure; Collect reports it per call instead.
func (s *GPUSensor) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		s.initErr = fmt.Errorf("%w: %v", ErrGPUUnavailable, nvml.ErrorString(ret))
		return nil
	}
	s.ready = true
	s.initErr = nil
	return nil
}

func (s *GPUSensor) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	s.ready = false
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("nvml shutdown: %v", nvml.ErrorString(ret))
	}
	return nil
}

func (s *GPUSensor) Collect(ctx context.Context) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		if s.initErr != nil {
			return nil, s.initErr
		}
		return nil, fmt.Errorf("%w: not connected", ErrGPUUnavailable)
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("failed to get device count: %v", nvml.ErrorString(ret))
	}

	devices := make([]GPUDevice, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			return nil, fmt.Errorf("failed to get device at index %d: %v", i, nvml.ErrorString(ret))
		}

		d := GPUDevice{Index: i}
		if name, ret := device.GetName(); ret == nvml.SUCCESS {
			d.Name = name
		}
		if util, ret := device.GetUtilizationRates(); ret == nvml.SUCCESS {
			d.Load = float64(util.Gpu)
		}
		if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
			d.Temperature = float64(temp)
		}
		if memInfo, ret := device.GetMemoryInfo(); ret == nvml.SUCCESS {
			d.MemoryUsedMB = float64(memInfo.Used) / (1024 * 1024)
			d.MemoryTotalMB = float64(memInfo.Total) / (1024 * 1024)
		}
		devices = append(devices, d)
	}

	return GPUResult{Devices: devices}, nil
}
