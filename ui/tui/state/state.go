package state

import (
	"time"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/output"
)

type Page int

const (
	PageMenu Page = iota
	PageDashboard
	PageConsole   // "Console Output View"
	PageCPU       // "CPU Telemetry"
	PageStorage   // "Disk & Network"
	PageMemory    // "Memory & GPU"
	PageProcesses // "Top Processes"
)

// AppState holds what the observer has seen of the session so far.
type AppState struct {
	Latest      *collector.Sample
	View        output.DashboardView
	LastUpdate  time.Time
	Clock       *output.TimeUpdate
	Progress    float64 // 0..1 of the session duration
	Completion  *output.Completion
	Err         error
	CPUHistory  []float64
	ConsoleLogs []string
	CurrentPage Page
}
