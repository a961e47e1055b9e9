// Package config loads sysmonitor settings from defaults, an optional
// sysmonitor.yaml, SYSMONITOR_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/session"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Run modes.
const (
	ModeTUI     = "tui"
	ModeConsole = "console"
	ModeMCP     = "mcp"
)

const envPrefix = "SYSMONITOR"

type ReportConfig struct {
	Dir     string
	Path    string // empty means a timestamped file in Dir
	Archive bool   // also export the session to a .duckdb file
}

type LogConfig struct {
	Level string
	File  string
}

type Config struct {
	Mode      string
	Session   session.Config
	Collector collector.CollectorConfig
	Report    ReportConfig
	Log       LogConfig
	File      string // config file actually read, if any
}

// flag name -> viper key
var flagKeys = map[string]string{
	"mode":           "mode",
	"duration":       "session.duration",
	"interval":       "session.interval",
	"top":            "collector.top_processes",
	"sensor-timeout": "collector.sensor_timeout",
	"disk-path":      "collector.disk_path",
	"gpu":            "collector.gpu",
	"temperatures":   "collector.temperatures",
	"processes":      "collector.processes",
	"report-dir":     "report.dir",
	"report-path":    "report.path",
	"archive":        "report.archive",
	"log-level":      "log.level",
	"log-file":       "log.file",
}

func setDefaults(v *viper.Viper) {
	sd := session.DefaultConfig()
	cd := collector.DefaultCollectorConfig()

	v.SetDefault("mode", ModeTUI)
	v.SetDefault("session.duration", sd.Duration)
	v.SetDefault("session.interval", sd.Interval)
	v.SetDefault("collector.top_processes", cd.TopProcessCount)
	v.SetDefault("collector.sensor_timeout", cd.SensorTimeout)
	v.SetDefault("collector.disk_path", cd.DiskPath)
	v.SetDefault("collector.gpu", cd.EnableGPU)
	v.SetDefault("collector.temperatures", cd.EnableTemperatures)
	v.SetDefault("collector.processes", cd.EnableProcessMetrics)
	v.SetDefault("report.dir", "reports")
	v.SetDefault("report.path", "")
	v.SetDefault("report.archive", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// NewFlagSet declares the command-line flags. Flag defaults are only shown in
// help output; unset flags never override the file or environment.
func NewFlagSet(name string) *pflag.FlagSet {
	sd := session.DefaultConfig()
	cd := collector.DefaultCollectorConfig()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (default: ./sysmonitor.yaml if present)")
	fs.String("mode", ModeTUI, "run mode: tui, console or mcp")
	fs.Duration("duration", sd.Duration, "session length")
	fs.Duration("interval", sd.Interval, "sampling interval")
	fs.Int("top", cd.TopProcessCount, "number of top processes to keep per sample")
	fs.Duration("sensor-timeout", cd.SensorTimeout, "upper bound for a single sensor query")
	fs.String("disk-path", cd.DiskPath, "mount point whose usage is reported")
	fs.Bool("gpu", cd.EnableGPU, "collect NVIDIA GPU metrics")
	fs.Bool("temperatures", cd.EnableTemperatures, "read hardware temperature sensors")
	fs.Bool("processes", cd.EnableProcessMetrics, "rank top processes")
	fs.String("report-dir", "reports", "directory for timestamped reports")
	fs.String("report-path", "", "explicit report file (overrides report-dir)")
	fs.Bool("archive", false, "export the session history to a .duckdb file next to the report")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.String("log-file", "", "write logs to this file")
	return fs
}

// Load parses args and resolves the configuration.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet("sysmonitor")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return FromFlags(fs)
}

// FromFlags resolves the configuration for an already parsed flag set.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	explicit := ""
	if f := fs.Lookup("config"); f != nil {
		explicit = f.Value.String()
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("sysmonitor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Mode: strings.ToLower(v.GetString("mode")),
		Session: session.Config{
			Duration: v.GetDuration("session.duration"),
			Interval: v.GetDuration("session.interval"),
		},
		Collector: collector.CollectorConfig{
			SensorTimeout:        v.GetDuration("collector.sensor_timeout"),
			DiskPath:             v.GetString("collector.disk_path"),
			TopProcessCount:      v.GetInt("collector.top_processes"),
			EnableGPU:            v.GetBool("collector.gpu"),
			EnableTemperatures:   v.GetBool("collector.temperatures"),
			EnableProcessMetrics: v.GetBool("collector.processes"),
		},
		Report: ReportConfig{
			Dir:     v.GetString("report.dir"),
			Path:    v.GetString("report.path"),
			Archive: v.GetBool("report.archive"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		File: v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeTUI, ModeConsole, ModeMCP:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Collector.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Report.Dir == "" && c.Report.Path == "" {
		return fmt.Errorf("%w: report.dir or report.path is required", ErrInvalidConfig)
	}
	return nil
}

// Summary is a one-line description for startup logs.
func (c *Config) Summary() string {
	return fmt.Sprintf("mode=%s duration=%s interval=%s top=%d gpu=%t temps=%t report=%s",
		c.Mode, c.Session.Duration, c.Session.Interval, c.Collector.TopProcessCount,
		c.Collector.EnableGPU, c.Collector.EnableTemperatures, c.reportTarget())
}

func (c *Config) reportTarget() string {
	if c.Report.Path != "" {
		return c.Report.Path
	}
	return c.Report.Dir
}
