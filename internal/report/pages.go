package report

import (
	"fmt"
	"image/color"

	"sysmonitor/internal/history"
)

const (
	noTemperature = "No temperature data available"
	noGPU         = "No GPU data available"
)

func cpuMemoryCharts(in Input) [4]panel {
	h := in.History

	cpu := chart{
		title:  "CPU Usage",
		ylabel: "%",
		ymax:   100,
		series: []series{scalarSeries(h, "CPU", history.KeyCPUPercent, colorBlue, true)},
	}
	if sum, ok := in.Stats.Get(history.KeyCPUPercent); ok {
		cpu.refs = []refLine{
			{label: fmt.Sprintf("Avg %.1f%%", sum.Avg), y: sum.Avg, color: colorGreen},
			{label: fmt.Sprintf("Max %.1f%%", sum.Max), y: sum.Max, color: colorRed},
		}
	}

	// A sensor that never reported leaves a series of zeros.
	temps := scalarSeries(h, "CPU", history.KeyCPUTemp, colorOrange, false)
	if allZero(temps.values) {
		temps.ticks, temps.values = nil, nil
	}
	temp := chart{
		title:  "CPU Temperature",
		ylabel: "°C",
		series: []series{temps},
	}

	mem := chart{
		title:  "Memory Usage",
		ylabel: "%",
		ymax:   100,
		series: []series{scalarSeries(h, "Memory", history.KeyMemoryPercent, colorPurple, true)},
	}
	if sum, ok := in.Stats.Get(history.KeyMemoryPercent); ok {
		mem.refs = []refLine{{label: fmt.Sprintf("Avg %.1f%%", sum.Avg), y: sum.Avg, color: colorGreen}}
	}

	used := chart{
		title:  "Memory Used",
		ylabel: "GB",
		series: []series{scalarSeries(h, "Used", history.KeyMemoryUsed, colorBrown, false)},
	}

	return [4]panel{
		{chart: cpu},
		{chart: temp, placeholder: noTemperature},
		{chart: mem},
		{chart: used},
	}
}

func gpuDiskCharts(in Input) [4]panel {
	h := in.History

	load := chart{title: "GPU Load", ylabel: "%", ymax: 100, series: deviceSeries(h, history.KeyGPUUsage)}
	temp := chart{title: "GPU Temperature", ylabel: "°C", series: deviceSeries(h, history.KeyGPUTemp)}

	disk := chart{
		title:  "Disk Usage",
		ylabel: "%",
		ymax:   100,
		series: []series{scalarSeries(h, "Disk", history.KeyDiskPercent, colorBlue, true)},
	}

	io := chart{
		title:  "Disk I/O",
		ylabel: "MB/s",
		series: []series{
			scalarSeries(h, "Read", history.KeyDiskRead, colorGreen, false),
			scalarSeries(h, "Write", history.KeyDiskWrite, colorRed, false),
		},
	}

	return [4]panel{
		{chart: load, placeholder: noGPU},
		{chart: temp, placeholder: noGPU},
		{chart: disk},
		{chart: io},
	}
}

func networkChart(in Input) panel {
	h := in.History
	return panel{chart: chart{
		title:  "Network Throughput",
		ylabel: "MB/s",
		series: []series{
			scalarSeries(h, "Download", history.KeyNetworkRecv, colorBlue, false),
			scalarSeries(h, "Upload", history.KeyNetworkSent, colorOrange, false),
		},
	}}
}

// deviceSeries draws one line per GPU.
func deviceSeries(h *history.Store, key string) []series {
	n := h.DeviceCount(key)
	out := make([]series, 0, n)
	for i := 0; i < n; i++ {
		ticks, values := h.Device(key, i)
		out = append(out, series{
			label:  fmt.Sprintf("GPU %d", i),
			ticks:  ticks,
			values: values,
			color:  paletteColor(i),
		})
	}
	return out
}

// scalarSeries plots a history series against the ticks it was recorded on.
func scalarSeries(h *history.Store, label, key string, c color.RGBA, fill bool) series {
	return series{
		label:  label,
		ticks:  h.Ticks(key),
		values: h.Series(key),
		color:  c,
		fill:   fill,
	}
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}
