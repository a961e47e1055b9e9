package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/sensors"
)

// cpuSensorFamilies lists the CPU temperature drivers in order of preference.
var cpuSensorFamilies = []string{"coretemp", "cpu_thermal", "k10temp", "zenpower"}

type TempStat struct {
	SensorKey   string
	Temperature float64
}

type PhysicalResult struct {
	Temperatures []TempStat
}

// CPUTemperature picks the CPU package temperature from the readings,
// falling back to the first reading and to 0 when there is none.
func (r PhysicalResult) CPUTemperature() float64 {
	for _, family := range cpuSensorFamilies {
		for _, t := range r.Temperatures {
			if strings.HasPrefix(t.SensorKey, family) {
				return t.Temperature
			}
		}
	}
	if len(r.Temperatures) > 0 {
		return r.Temperatures[0].Temperature
	}
	return 0
}

type PhysicalSensor struct{}

func NewPhysicalSensor() *PhysicalSensor {
	return &PhysicalSensor{}
}

func (s *PhysicalSensor) Name() string {
	return "Physical"
}

func (s *PhysicalSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *PhysicalSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *PhysicalSensor) Collect(ctx context.Context) (any, error) {
	data, err := sensors.TemperaturesWithContext(ctx)
	// Partial reads come back with warnings alongside usable data.
	if err != nil && len(data) == 0 {
		return nil, fmt.Errorf("failed to get temperatures: %w", err)
	}

	var temps []TempStat
	for _, t := range data {
		if t.Temperature <= 0 {
			continue
		}
		temps = append(temps, TempStat{
			SensorKey:   t.SensorKey,
			Temperature: t.Temperature,
		})
	}

	return PhysicalResult{Temperatures: temps}, nil
}
