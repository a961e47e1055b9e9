package views

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"sysmonitor/internal/output"
	"sysmonitor/ui/tui/state"
	"sysmonitor/ui/tui/styles"
)

type DashboardView struct{}

func (v DashboardView) Render(s state.AppState, props ViewProps) string {
	if s.Err != nil {
		return fmt.Sprintf("Error: %v", s.Err)
	}

	clock := "waiting for first sample"
	if s.Clock != nil {
		clock = fmt.Sprintf("Elapsed %s • Remaining %s", s.Clock.Elapsed, s.Clock.Remaining)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		props.SpinnerView,
		styles.TitleStyle.Render("System Monitor"),
		fmt.Sprintf(" Last Update: %s  %s", s.LastUpdate.Format("15:04:05"), clock),
	)

	card := func(title string, sec *output.Section, extra ...string) string {
		parts := append([]string{
			lipgloss.NewStyle().Bold(true).Render(title),
			RenderSection(sec),
		}, extra...)
		return styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	}

	dash := s.View
	cpuCol := zone.Mark("cpu_box", card("CPU Metrics", headline(dash.SectionByID(output.SectionCPU), 3), props.ChartView))
	ramCol := card("RAM Metrics", dash.SectionByID(output.SectionRAM))
	diskCol := card("Disk Metrics", dash.SectionByID(output.SectionDisk))
	netCol := card("Network Metrics", dash.SectionByID(output.SectionNetwork))
	gpuCol := card("GPU Metrics", dash.SectionByID(output.SectionGPU))

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCol, ramCol)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, diskCol, netCol, gpuCol)

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().PaddingLeft(2).Render(props.ProgressView),
		completionBanner(s.Completion),
		row1,
		row2,
		lipgloss.NewStyle().Foreground(styles.Subtle).Render("\nPress 'b' to go back • 'q' to stop and quit"),
	))
}

// headline keeps the first n items of a section; per-core rows live on the CPU page.
func headline(sec *output.Section, n int) *output.Section {
	if sec == nil || len(sec.Items) <= n {
		return sec
	}
	trimmed := *sec
	trimmed.Items = sec.Items[:n]
	return &trimmed
}
