package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sysmonitor/ui/tui/state"
)

// ConsoleView scrolls through the per-tick log lines.
type ConsoleView struct{}

func (v ConsoleView) Render(s state.AppState, props ViewProps) string {
	header := MenuHeaderStyle.Width(props.Width).Render("Live Console View")

	availableHeight := max(props.Height-lipgloss.Height(header)-4, 1)

	lines := s.ConsoleLogs
	totalLines := len(lines)

	scrollY := min(props.ScrollY, totalLines-availableHeight)
	scrollY = max(scrollY, 0)
	end := min(scrollY+availableHeight, totalLines)

	box := lipgloss.NewStyle().
		Width(props.Width-4).
		Height(availableHeight).
		Padding(0, 1).
		Render(strings.Join(lines[scrollY:end], "\n"))

	footerText := fmt.Sprintf("Scroll: %d/%d • Press 'b' to go back", scrollY, totalLines)
	if totalLines > availableHeight {
		footerText += " • Use ↑/↓ to scroll"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Padding(1, 2).Render(box),
		lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#555")).Render(footerText),
	)
}
