package views

import (
	"sysmonitor/internal/output"
	"sysmonitor/ui/tui/state"
)

func RenderMenu(s state.AppState, width, height, cursor int, animCursor float64, mouseX, mouseY int, progressView string) string {
	v := MenuView{}
	return v.Render(s, ViewProps{
		Width:        width,
		Height:       height,
		MenuCursor:   cursor,
		AnimCursor:   animCursor,
		MouseX:       mouseX,
		MouseY:       mouseY,
		ProgressView: progressView,
	})
}

func RenderDashboard(s state.AppState, spinnerView, chartView, progressView string) string {
	v := DashboardView{}
	return v.Render(s, ViewProps{
		SpinnerView:  spinnerView,
		ChartView:    chartView,
		ProgressView: progressView,
	})
}

func RenderRawConsole(s state.AppState, width, height, scrollY int) string {
	v := ConsoleView{}
	return v.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
	})
}

func RenderCPU(s state.AppState, chartView string, width, height int) string {
	v := CPUView{}
	return v.Render(s, ViewProps{
		Width:     width,
		Height:    height,
		ChartView: chartView,
	})
}

// RenderDetail draws the section pages that need no extra components.
func RenderDetail(s state.AppState, page state.Page, width, height int) string {
	var v SectionsView
	switch page {
	case state.PageStorage:
		v = SectionsView{Title: "Disk & Network", Sections: []string{output.SectionDisk, output.SectionNetwork}}
	case state.PageMemory:
		v = SectionsView{Title: "Memory & GPU", Sections: []string{output.SectionRAM, output.SectionGPU}}
	default:
		v = SectionsView{Title: "Top Processes", Sections: []string{output.SectionProcesses}}
	}
	return v.Render(s, ViewProps{Width: width, Height: height})
}
