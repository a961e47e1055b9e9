package collector

import "time"

// CollectorConfig contains configurable parameters for the system collector.
// Use DefaultCollectorConfig() to get sensible defaults, then override as needed.
type CollectorConfig struct {
	// SensorTimeout bounds every individual sensor query (default: 2s).
	SensorTimeout time.Duration

	// DiskPath is the mount point whose usage is reported (default: "/").
	DiskPath string

	// TopProcessCount is how many processes are kept after ranking (default: 5).
	TopProcessCount int

	// Feature flags
	EnableGPU            bool // Query NVIDIA devices through NVML (default: true)
	EnableTemperatures   bool // Read hardware temperature sensors (default: true)
	EnableProcessMetrics bool // Enumerate processes (default: true)
}

// DefaultCollectorConfig returns a CollectorConfig with sensible defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		SensorTimeout:        2 * time.Second,
		DiskPath:             "/",
		TopProcessCount:      5,
		EnableGPU:            true,
		EnableTemperatures:   true,
		EnableProcessMetrics: true,
	}
}

// WithSensorTimeout returns a copy of the config with modified sensor timeout.
func (c CollectorConfig) WithSensorTimeout(d time.Duration) CollectorConfig {
	c.SensorTimeout = d
	return c
}

// WithDiskPath returns a copy of the config reporting usage for path.
func (c CollectorConfig) WithDiskPath(path string) CollectorConfig {
	c.DiskPath = path
	return c
}

// WithTopProcessCount returns a copy of the config with modified ranking size.
func (c CollectorConfig) WithTopProcessCount(n int) CollectorConfig {
	c.TopProcessCount = n
	return c
}

// WithGPU returns a copy of the config with GPU collection enabled/disabled.
func (c CollectorConfig) WithGPU(enabled bool) CollectorConfig {
	c.EnableGPU = enabled
	return c
}

// WithTemperatures returns a copy of the config with temperature collection enabled/disabled.
func (c CollectorConfig) WithTemperatures(enabled bool) CollectorConfig {
	c.EnableTemperatures = enabled
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c CollectorConfig) Validate() error {
	if c.SensorTimeout <= 0 {
		return &ConfigError{Field: "SensorTimeout", Message: "must be positive"}
	}
	if c.DiskPath == "" {
		return &ConfigError{Field: "DiskPath", Message: "must not be empty"}
	}
	if c.TopProcessCount <= 0 {
		return &ConfigError{Field: "TopProcessCount", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
