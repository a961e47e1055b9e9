package components

import (
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HistoryLen is how many recent CPU readings the chart keeps.
const HistoryLen = 31

// CPUWidget draws recent CPU usage as a braille line chart.
type CPUWidget struct {
	Chart   linechart.Model
	History []float64
	Width   int
	Height  int
}

func NewCPUWidget(width, height int) *CPUWidget {
	// width, height, minX, maxX, minY, maxY
	lc := linechart.New(width, height, 0, HistoryLen-1, 0, 100)
	return &CPUWidget{
		Chart:   lc,
		History: make([]float64, 0, HistoryLen),
		Width:   width,
		Height:  height,
	}
}

func (c *CPUWidget) Init() tea.Cmd {
	return nil
}

// Push appends a reading, dropping the oldest once the window is full.
func (c *CPUWidget) Push(value float64) {
	c.History = append(c.History, value)
	if len(c.History) > HistoryLen {
		c.History = c.History[1:]
	}
}

func (c *CPUWidget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *CPUWidget) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
}

func (c *CPUWidget) View() string {
	c.Chart.Clear()
	for i := 0; i < len(c.History)-1; i++ {
		c.Chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: c.History[i]},
			canvas.Float64Point{X: float64(i + 1), Y: c.History[i+1]},
		)
	}
	c.Chart.DrawXYAxisAndLabel()

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("CPU History"),
		c.Chart.View(),
	)
}
