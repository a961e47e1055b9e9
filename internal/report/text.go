package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/history"
	"sysmonitor/internal/output"
)

const (
	rule              = "----------------------------------------"
	maxProcessorWidth = 60
)

type statLine struct {
	key   string
	title string
	unit  string
}

// statOrder fixes the category order of the statistics page.
var statOrder = []statLine{
	{key: history.KeyCPUPercent, title: "CPU usage", unit: "%"},
	{key: history.KeyCPUTemp, title: "CPU temperature", unit: "°C"},
	{key: history.KeyMemoryPercent, title: "Memory usage", unit: "%"},
	{key: history.KeyMemoryUsed, title: "Memory used", unit: " GB"},
	{key: history.KeyGPUUsage, title: "GPU load", unit: "%"},
	{key: history.KeyGPUTemp, title: "GPU temperature", unit: "°C"},
	{key: history.KeyDiskPercent, title: "Disk usage", unit: "%"},
	{key: history.KeyDiskRead, title: "Disk read", unit: " MB/s"},
	{key: history.KeyDiskWrite, title: "Disk write", unit: " MB/s"},
	{key: history.KeyNetworkRecv, title: "Network download", unit: " MB/s"},
	{key: history.KeyNetworkSent, title: "Network upload", unit: " MB/s"},
}

// FormatStatistics renders the statistics page text. Metrics absent from
// stats are omitted. The output depends only on its arguments.
func FormatStatistics(stats history.Statistics, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("Monitoring Statistics Summary\n")
	b.WriteString(rule + "\n")

	for _, line := range statOrder {
		sum, ok := stats.Get(line.key)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", line.title)
		fmt.Fprintf(&b, "  Average: %.2f%s\n", sum.Avg, line.unit)
		fmt.Fprintf(&b, "  Minimum: %.2f%s\n", sum.Min, line.unit)
		fmt.Fprintf(&b, "  Maximum: %.2f%s\n", sum.Max, line.unit)
	}

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Report generated: %s\n", generatedAt.Format(collector.TimestampLayout))
	return b.String()
}

// coverText is the session summary block on the first page.
func coverText(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monitoring start: %s\n", in.StartedAt.Format(collector.TimestampLayout))
	fmt.Fprintf(&b, "Monitoring end:   %s\n", in.EndedAt.Format(collector.TimestampLayout))
	fmt.Fprintf(&b, "Duration:         %s\n", output.FormatElapsed(in.EndedAt.Sub(in.StartedAt)))
	b.WriteString("\nSystem information\n")

	if in.System.Error != "" {
		fmt.Fprintf(&b, "  unavailable: %s\n", in.System.Error)
	} else {
		sys := in.System
		fmt.Fprintf(&b, "  OS:                %s\n", sys.OS)
		fmt.Fprintf(&b, "  OS version:        %s\n", sys.OSVersion)
		fmt.Fprintf(&b, "  Architecture:      %s\n", sys.Architecture)
		fmt.Fprintf(&b, "  Processor:         %s\n", truncate(sys.Processor, maxProcessorWidth))
		fmt.Fprintf(&b, "  Physical cores:    %d\n", sys.CPUCount)
		fmt.Fprintf(&b, "  Logical threads:   %d\n", sys.CPUThreads)
		fmt.Fprintf(&b, "  Max CPU frequency: %s\n", sys.CPUFreqMax)
		fmt.Fprintf(&b, "  Total memory:      %s\n", sys.TotalMemory)
		fmt.Fprintf(&b, "  Hostname:          %s\n", sys.Hostname)
	}

	b.WriteString("\nSession\n")
	fmt.Fprintf(&b, "  Data points:       %d\n", in.History.Len())
	fmt.Fprintf(&b, "  Sampling interval: %s\n", in.Interval)
	fmt.Fprintf(&b, "  Average CPU usage: %s\n", formatStat(in.Stats, history.KeyCPUPercent, func(s history.Summary) float64 { return s.Avg }))
	fmt.Fprintf(&b, "  Maximum CPU usage: %s\n", formatStat(in.Stats, history.KeyCPUPercent, func(s history.Summary) float64 { return s.Max }))
	fmt.Fprintf(&b, "  Average memory:    %s\n", formatStat(in.Stats, history.KeyMemoryPercent, func(s history.Summary) float64 { return s.Avg }))
	fmt.Fprintf(&b, "  Maximum memory:    %s\n", formatStat(in.Stats, history.KeyMemoryPercent, func(s history.Summary) float64 { return s.Max }))
	return b.String()
}

// networkText summarizes throughput for the network page.
func networkText(stats history.Statistics) string {
	var b strings.Builder
	b.WriteString("Network Statistics\n")
	for _, dir := range []struct {
		title string
		key   string
	}{
		{title: "Download", key: history.KeyNetworkRecv},
		{title: "Upload", key: history.KeyNetworkSent},
	} {
		fmt.Fprintf(&b, "\n%s:\n", dir.title)
		sum, ok := stats.Get(dir.key)
		if !ok {
			b.WriteString("  no data\n")
			continue
		}
		fmt.Fprintf(&b, "  Average: %.2f MB/s\n", sum.Avg)
		fmt.Fprintf(&b, "  Maximum: %.2f MB/s\n", sum.Max)
	}
	return b.String()
}

func formatStat(stats history.Statistics, key string, pick func(history.Summary) float64) string {
	sum, ok := stats.Get(key)
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", pick(sum))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
