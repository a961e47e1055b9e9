package output

import (
	"fmt"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/engine"
)

// Section constants to avoid hardcoded strings
const (
	SectionCPU       = "cpu"
	SectionRAM       = "ram"
	SectionDisk      = "disk"
	SectionNetwork   = "network"
	SectionGPU       = "gpu"
	SectionProcesses = "processes"
)

// UI/view-model types (no printing here)
type Item struct {
	Key    string
	Label  string
	Value  float64
	Unit   string
	Status engine.Status
	Note   string
}

type Section struct {
	ID    string
	Title string
	Err   string // set when the category could not be read this tick
	Items []Item
}

type DashboardView struct {
	Timestamp   string
	Sections    []Section
	TotalRAMGB  float64
	TotalDiskGB float64
}

// BuildDashboard converts one sample into UI-ready sections. Categories in
// error keep their section with Err set so observers can show the failure.
func BuildDashboard(s collector.Sample) DashboardView {
	view := DashboardView{Timestamp: s.Timestamp.Format(collector.TimestampLayout)}

	cpuSec := Section{ID: SectionCPU, Title: "CPU"}
	if cpu, ok := s.CPU.Get(); ok {
		cpuSec.Items = append(cpuSec.Items,
			Item{Key: "cpu_usage", Label: "CPU Usage", Value: cpu.Percent, Unit: "%", Status: cpu.Status},
			Item{Key: "cpu_freq", Label: "Frequency", Value: cpu.FrequencyMHz, Unit: "MHz"},
		)
		if cpu.Temperature > 0 {
			cpuSec.Items = append(cpuSec.Items, Item{Key: "cpu_temp", Label: "Temperature", Value: cpu.Temperature, Unit: "°C"})
		}
		for i, usage := range cpu.PerCore {
			cpuSec.Items = append(cpuSec.Items, Item{
				Key:    fmt.Sprintf("core_%d", i),
				Label:  fmt.Sprintf("Core %d", i),
				Value:  usage,
				Unit:   "%",
				Status: engine.Classify(usage),
			})
		}
	} else {
		cpuSec.Err = s.CPU.Err
	}

	ramSec := Section{ID: SectionRAM, Title: "RAM"}
	if mem, ok := s.Memory.Get(); ok {
		ramSec.Items = append(ramSec.Items,
			Item{Key: "ram_usage", Label: "RAM Usage", Value: mem.Percent, Unit: "%", Status: mem.Status},
			Item{Key: "ram_used", Label: "Used", Value: mem.UsedGB, Unit: "GB"},
			Item{Key: "ram_available", Label: "Available", Value: mem.AvailableGB, Unit: "GB"},
			Item{Key: "swap_usage", Label: "Swap Usage", Value: mem.SwapPercent, Unit: "%", Status: engine.Classify(mem.SwapPercent)},
			Item{Key: "swap_used", Label: "Swap Used", Value: mem.SwapUsedGB, Unit: "GB"},
		)
		view.TotalRAMGB = mem.TotalGB
	} else {
		ramSec.Err = s.Memory.Err
	}

	diskSec := Section{ID: SectionDisk, Title: "Disk"}
	if disk, ok := s.Disk.Get(); ok {
		diskSec.Items = append(diskSec.Items,
			Item{Key: "disk_usage", Label: "Disk Usage", Value: disk.Percent, Unit: "%", Status: disk.Status},
			Item{Key: "disk_free", Label: "Free", Value: disk.FreeGB, Unit: "GB"},
			Item{Key: "disk_read", Label: "Read", Value: disk.ReadMBps, Unit: "MB/s"},
			Item{Key: "disk_write", Label: "Write", Value: disk.WriteMBps, Unit: "MB/s"},
		)
		view.TotalDiskGB = disk.TotalGB
	} else {
		diskSec.Err = s.Disk.Err
	}

	netSec := Section{ID: SectionNetwork, Title: "Network"}
	if network, ok := s.Network.Get(); ok {
		netSec.Items = append(netSec.Items,
			Item{Key: "net_download", Label: "Download", Value: network.DownloadMBps, Unit: "MB/s"},
			Item{Key: "net_upload", Label: "Upload", Value: network.UploadMBps, Unit: "MB/s"},
			Item{Key: "net_recv_total", Label: "Received", Value: network.RecvGB, Unit: "GB"},
			Item{Key: "net_sent_total", Label: "Sent", Value: network.SentGB, Unit: "GB"},
		)
	} else {
		netSec.Err = s.Network.Err
	}

	gpuSec := Section{ID: SectionGPU, Title: "GPU"}
	if gpus, ok := s.GPU.Get(); ok {
		for _, g := range gpus {
			prefix := fmt.Sprintf("gpu%d", g.ID)
			gpuSec.Items = append(gpuSec.Items,
				Item{Key: prefix + "_load", Label: g.Name + " Load", Value: g.Load, Unit: "%", Status: g.Status},
				Item{Key: prefix + "_temp", Label: g.Name + " Temp", Value: g.Temperature, Unit: "°C"},
				Item{Key: prefix + "_mem", Label: g.Name + " Memory", Value: g.MemoryPercent, Unit: "%", Status: engine.Classify(g.MemoryPercent)},
			)
		}
	} else {
		gpuSec.Err = s.GPU.Err
	}

	procSec := Section{ID: SectionProcesses, Title: "Top Processes"}
	if procs, ok := s.Processes.Get(); ok {
		for _, p := range procs {
			procSec.Items = append(procSec.Items, Item{
				Key:   fmt.Sprintf("pid_%d", p.PID),
				Label: p.Name,
				Value: p.CPUPercent,
				Unit:  "%",
				Note:  fmt.Sprintf("pid %d, mem %.1f%%", p.PID, p.MemoryPercent),
			})
		}
	} else {
		procSec.Err = s.Processes.Err
	}

	view.Sections = []Section{cpuSec, ramSec, diskSec, netSec, gpuSec, procSec}
	return view
}

func (v DashboardView) SectionByID(id string) *Section {
	for i := range v.Sections {
		if v.Sections[i].ID == id {
			return &v.Sections[i]
		}
	}
	return nil
}

func (s Section) ItemByKey(key string) *Item {
	for i := range s.Items {
		if s.Items[i].Key == key {
			return &s.Items[i]
		}
	}
	return nil
}
