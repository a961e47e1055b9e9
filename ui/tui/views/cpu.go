package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sysmonitor/internal/engine"
	"sysmonitor/ui/tui/state"
	"sysmonitor/ui/tui/styles"
)

type CPUView struct{}

func (v CPUView) Render(s state.AppState, props ViewProps) string {
	header := MenuHeaderStyle.Width(props.Width).Render("CPU Telemetry")

	var perCore []float64
	infoText := "waiting for first sample"
	if s.Latest != nil {
		if cpu, ok := s.Latest.CPU.Get(); ok {
			perCore = cpu.PerCore
			temp := "n/a"
			if cpu.Temperature > 0 {
				temp = fmt.Sprintf("%.1f°C", cpu.Temperature)
			}
			infoText = fmt.Sprintf("Usage: %s\nFrequency: %.0f MHz\nTemperature: %s\nCores: %d",
				ColorForStatus(cpu.Status).Render(fmt.Sprintf("%.1f%%", cpu.Percent)),
				cpu.FrequencyMHz, temp, len(cpu.PerCore))
		} else {
			infoText = styles.ErrorStyle.Render("CPU unavailable: " + s.Latest.CPU.Err)
		}
	}
	info := lipgloss.NewStyle().Padding(1, 2).Render(infoText)

	chart := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Highlight).
		Padding(1, 2).
		Render(props.ChartView)

	var cores []string
	for i, usage := range perCore {
		barWidth := 20
		filled := int(float64(barWidth) * usage / 100)
		filled = max(0, min(filled, barWidth))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

		coreStr := fmt.Sprintf("Core %2d: [%s] %5.1f%%", i, ColorForStatus(engine.Classify(usage)).UnsetBold().Render(bar), usage)
		cores = append(cores, coreStr)
	}

	// Split cores into columns if there are many
	const coresPerCol = 8
	var cols []string
	for i := 0; i < len(cores); i += coresPerCol {
		end := min(i+coresPerCol, len(cores))
		col := lipgloss.JoinVertical(lipgloss.Left, cores[i:end]...)
		if i > 0 {
			col = lipgloss.NewStyle().PaddingLeft(4).Render(col)
		}
		cols = append(cols, col)
	}

	coreBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Highlight).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Per-Core Utilization"),
			lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		))

	content := lipgloss.JoinHorizontal(lipgloss.Top, chart, coreBox)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		info,
		content,
		lipgloss.NewStyle().Padding(1, 2).Foreground(styles.Subtle).Render("Press 'b' to go back"),
	)
}
