package views

import (
	"github.com/charmbracelet/lipgloss"

	"sysmonitor/ui/tui/state"
	"sysmonitor/ui/tui/styles"
)

// SectionsView is a detail page showing a fixed set of dashboard sections.
type SectionsView struct {
	Title    string
	Sections []string
}

func (v SectionsView) Render(s state.AppState, props ViewProps) string {
	header := MenuHeaderStyle.Width(props.Width).Render(v.Title)

	var cards []string
	for _, id := range v.Sections {
		sec := s.View.SectionByID(id)
		if sec == nil {
			continue
		}
		cards = append(cards, styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(sec.Title),
			RenderSection(sec),
		)))
	}

	body := styles.ErrorStyle.Padding(1, 2).Render("waiting for first sample")
	if s.Latest != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		lipgloss.NewStyle().Padding(1, 2).Foreground(styles.Subtle).Render("Press 'b' to go back"),
	)
}
