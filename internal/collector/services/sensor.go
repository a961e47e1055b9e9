package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSensorTimeout is returned when a sensor does not answer within its bound.
var ErrSensorTimeout = errors.New("sensor timed out")

// Sensor defines the interface for all system sensors.
type Sensor interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Collect(ctx context.Context) (any, error)
}

type timeoutSensor struct {
	Sensor
	timeout time.Duration
}

// WithTimeout bounds every Collect call of s. A non-positive timeout returns s unchanged.
func WithTimeout(s Sensor, timeout time.Duration) Sensor {
	if timeout <= 0 {
		return s
	}
	return &timeoutSensor{Sensor: s, timeout: timeout}
}

func (s *timeoutSensor) Collect(ctx context.Context) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		value any
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := s.Sensor.Collect(ctx)
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w after %s", s.Name(), ErrSensorTimeout, s.timeout)
	}
}
