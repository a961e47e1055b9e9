package views

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"sysmonitor/internal/output"
	"sysmonitor/ui/tui/state"
)

// MenuOption is one entry of the landing page. Section, when set, supplies a
// live one-line hint from the latest sample.
type MenuOption struct {
	Title   string
	Section string
}

// MenuOptions are listed in navigation order.
var MenuOptions = []MenuOption{
	{Title: "Console Output View"},
	{Title: "Full System Dashboard"},
	{Title: "CPU Telemetry", Section: output.SectionCPU},
	{Title: "Disk & Network", Section: output.SectionDisk},
	{Title: "Memory & GPU", Section: output.SectionRAM},
	{Title: "Top Processes", Section: output.SectionProcesses},
}

const (
	menuItemWidth = 44
	menuListTop   = 6 // screen row of the first item, for the hover glow
	menuItemRows  = 3
)

type MenuView struct{}

func (v MenuView) Render(s state.AppState, props ViewProps) string {
	header := MenuHeaderStyle.Width(props.Width).Render("SYSTEM MONITOR // LIVE SESSION")

	items := make([]string, 0, len(MenuOptions))
	for i, option := range MenuOptions {
		items = append(items, zone.Mark(fmt.Sprintf("menu_%d", i), menuItem(i, option, s.View, props)))
	}
	list := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(BrandColor).Render("LIVE VIEWS"),
		CopyStyle.Render("Pick a view to follow the session."),
		lipgloss.JoinVertical(lipgloss.Left, items...),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		MenuBoxStyle.Render(list),
		MenuBoxStyle.Render(sessionPanel(s)),
	)

	footer := lipgloss.NewStyle().PaddingLeft(2).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#666")).Render(props.ProgressView),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).Render("\n[↑/↓] Navigate • [Enter] Select • [Q] Stop session and quit"),
	))

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

// menuItem draws one option. The selection follows the spring-animated
// cursor, and items near the mouse get a lighter border.
func menuItem(i int, option MenuOption, view output.DashboardView, props ViewProps) string {
	strength := 0.0
	if dist := math.Abs(float64(i) - props.AnimCursor); dist < 1 {
		strength = 1 - dist
	}

	border := BaseColor
	mouseDist := math.Abs(float64(props.MouseY - (menuListTop + i*menuItemRows + 1)))
	if mouseDist < 5 {
		border = lipgloss.Color("#aaa")
	}
	if strength > 0.1 || i == props.MenuCursor {
		border = BrandColor
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MarginLeft(2 + int(strength*2)).
		Width(menuItemWidth).
		Foreground(lipgloss.Color("#AAA"))
	if i == props.MenuCursor {
		style = style.Bold(true).Foreground(lipgloss.Color("#FFF"))
	}

	text := fmt.Sprintf("%02d. %s", i+1, option.Title)
	if hint := sectionHint(view.SectionByID(option.Section)); hint != "" {
		text += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color("#777")).Render(hint)
	}
	return style.Render(text)
}

// sectionHint is the first item of a section, or the failure marker.
func sectionHint(sec *output.Section) string {
	switch {
	case sec == nil:
		return ""
	case sec.Err != "":
		return "unavailable"
	case len(sec.Items) == 0:
		return ""
	}
	item := sec.Items[0]
	return fmt.Sprintf("%.1f%s", item.Value, item.Unit)
}

// sessionPanel summarizes what the observer has seen so far.
func sessionPanel(s state.AppState) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#888")).Width(11)
	row := func(k, v string) string {
		return label.Render(k) + v
	}

	status, color := "waiting", BaseColor
	switch {
	case s.Completion != nil && s.Completion.Error != "":
		status, color = "report failed", lipgloss.Color("196")
	case s.Completion != nil:
		status, color = "complete", lipgloss.Color("46")
	case s.Clock != nil:
		status, color = "recording", BrandColor
	}

	rows := []string{
		lipgloss.NewStyle().Bold(true).Foreground(BrandColor).Render("SESSION"),
		row("Status", lipgloss.NewStyle().Bold(true).Foreground(color).Render(status)),
	}
	if s.Clock != nil {
		rows = append(rows,
			row("Tick", fmt.Sprintf("%d", s.Clock.Tick)),
			row("Elapsed", s.Clock.Elapsed),
			row("Remaining", s.Clock.Remaining),
		)
	}
	if !s.LastUpdate.IsZero() {
		rows = append(rows, row("Sampled", s.LastUpdate.Format("15:04:05")))
	}
	if c := s.Completion; c != nil {
		rows = append(rows, row("Samples", fmt.Sprintf("%d", c.Samples)))
		if c.ReportPath != "" {
			rows = append(rows, row("Report", c.ReportPath))
		}
	}
	return SessionPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

var (
	BrandColor = lipgloss.Color("#f27b24")
	BaseColor  = lipgloss.Color("#444")

	MenuHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(BrandColor).
			Align(lipgloss.Left).
			Padding(1, 2)

	MenuBoxStyle = lipgloss.NewStyle().
			Padding(1, 0).
			MarginTop(1)

	SessionPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(BaseColor).
				Padding(0, 2).
				MarginLeft(2)

	CopyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true).
			MarginBottom(1).
			PaddingLeft(2)
)
