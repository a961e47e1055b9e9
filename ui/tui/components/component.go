package components

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Component is a widget with the tea.Model lifecycle.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
}

// SeriesWidget is a Component fed one value per tick.
type SeriesWidget interface {
	Component
	Push(value float64)
	Resize(w, h int)
}

var _ SeriesWidget = (*CPUWidget)(nil)
