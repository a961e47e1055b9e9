package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"sysmonitor/internal/output"
	"sysmonitor/ui/tui/components"
	"sysmonitor/ui/tui/state"
	"sysmonitor/ui/tui/views"
)

const maxConsoleLines = 100

// SessionStopper is asked to end the session when the user quits.
type SessionStopper interface {
	Stop()
}

// Options describe the session being observed.
type Options struct {
	Duration time.Duration
	Interval time.Duration
}

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	events         <-chan output.Event
	stopper        SessionStopper
	opts           Options
	state          state.AppState
	spinner        spinner.Model
	progress       progress.Model
	cpuChart       components.SeriesWidget
	menuCursor     int
	animCursor     float64
	velocity       float64 // Physics velocity
	spring         harmonica.Spring
	consoleScrollY int
	mouseX         int
	mouseY         int
	quitting       bool
	width          int
	height         int
}

// Messages
type AnimateMsg time.Time
type EventMsg output.Event
type EventsClosedMsg struct{}

func InitialModel(events <-chan output.Event, stopper SessionStopper, opts Options) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Increased frequency (12.0) for faster response and damping (0.9) to prevent overshoot
	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	return MainModel{
		events:   events,
		stopper:  stopper,
		opts:     opts,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cpuChart: components.NewCPUWidget(30, 10),
		spring:   spring,
		state: state.AppState{
			CPUHistory:  make([]float64, 0, components.HistoryLen),
			CurrentPage: state.PageMenu,
		},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		animateCmd(),
		waitForEvent(m.events),
	)
}

// Commands
func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

// waitForEvent blocks on the subscription for exactly one event.
func waitForEvent(events <-chan output.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return EventsClosedMsg{}
		}
		return EventMsg(ev)
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case EventMsg:
		return m.handleEvent(output.Event(msg))

	case EventsClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.stopper != nil {
			m.stopper.Stop()
		}
		m.quitting = true
		return m, tea.Quit
	}

	if m.state.CurrentPage == state.PageMenu {
		switch msg.String() {
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < len(views.MenuOptions)-1 {
				m.menuCursor++
			}
		case "enter":
			m.navigateTo(m.menuCursor)
		}
		return m, nil
	}

	if m.state.CurrentPage == state.PageConsole {
		switch msg.String() {
		case "up", "k":
			if m.consoleScrollY > 0 {
				m.consoleScrollY--
			}
		case "down", "j":
			m.consoleScrollY++
		}
	}

	if msg.String() == "b" || msg.String() == "esc" || msg.String() == "backspace" {
		m.state.CurrentPage = state.PageMenu
		m.consoleScrollY = 0
		return m, nil
	}

	return m, nil
}

func (m *MainModel) navigateTo(cursor int) {
	switch cursor {
	case 0:
		m.state.CurrentPage = state.PageConsole
	case 1:
		m.state.CurrentPage = state.PageDashboard
	case 2:
		m.state.CurrentPage = state.PageCPU
	case 3:
		m.state.CurrentPage = state.PageStorage
	case 4:
		m.state.CurrentPage = state.PageMemory
	case 5:
		m.state.CurrentPage = state.PageProcesses
	}
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	var v float64 = m.velocity
	m.animCursor, v = m.spring.Update(m.animCursor, float64(m.menuCursor), v)
	m.velocity = v
	return m, animateCmd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	newW := msg.Width/2 - 6
	if newW > 10 {
		m.cpuChart.Resize(newW, 10)
	}
	return m, nil
}

// handleEvent folds one live event into the state and waits for the next.
func (m *MainModel) handleEvent(ev output.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case output.EventSystemData:
		if ev.Sample == nil {
			break
		}
		sample := ev.Sample
		m.state.Latest = sample
		m.state.View = output.BuildDashboard(*sample)
		m.state.LastUpdate = sample.Timestamp
		m.state.Completion = nil

		logLine := fmt.Sprintf("[%s]", sample.Timestamp.Format("15:04:05"))
		if cpu, ok := sample.CPU.Get(); ok {
			m.cpuChart.Push(cpu.Percent)
			m.state.CPUHistory = append(m.state.CPUHistory, cpu.Percent)
			if len(m.state.CPUHistory) > components.HistoryLen {
				m.state.CPUHistory = m.state.CPUHistory[1:]
			}
			logLine += fmt.Sprintf(" CPU: %.1f%%", cpu.Percent)
		} else {
			logLine += " CPU: n/a"
		}
		if mem, ok := sample.Memory.Get(); ok {
			logLine += fmt.Sprintf(" | RAM: %.1f%%", mem.Percent)
		}
		if disk, ok := sample.Disk.Get(); ok {
			logLine += fmt.Sprintf(" | Disk: %.1f%%", disk.Percent)
		}
		if network, ok := sample.Network.Get(); ok {
			logLine += fmt.Sprintf(" | Net: ↓%.2f ↑%.2f MB/s", network.DownloadMBps, network.UploadMBps)
		}
		m.appendLog(logLine)

	case output.EventTimeUpdate:
		if ev.Time == nil {
			break
		}
		m.state.Clock = ev.Time
		if m.opts.Duration > 0 {
			done := float64(time.Duration(ev.Time.Tick)*m.opts.Interval) / float64(m.opts.Duration)
			m.state.Progress = min(done, 1)
		}

	case output.EventMonitoringComplete:
		m.state.Completion = ev.Complete
		m.state.Progress = 1
		if c := ev.Complete; c != nil {
			switch {
			case c.Error != "":
				m.appendLog("Report failed: " + c.Error)
			case c.ReportPath != "":
				m.appendLog("Report written to " + c.ReportPath)
			default:
				m.appendLog(c.Message)
			}
		}
	}
	return m, waitForEvent(m.events)
}

func (m *MainModel) appendLog(line string) {
	m.state.ConsoleLogs = append(m.state.ConsoleLogs, line)
	if len(m.state.ConsoleLogs) > maxConsoleLines {
		m.state.ConsoleLogs = m.state.ConsoleLogs[1:]
	}
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action == tea.MouseActionRelease && m.state.CurrentPage == state.PageMenu {
		for i := range views.MenuOptions {
			if zone.Get(fmt.Sprintf("menu_%d", i)).InBounds(msg) {
				m.menuCursor = i
				m.navigateTo(i)
				return m, nil
			}
		}
	}
	return m, nil
}

func (m *MainModel) progressView() string {
	label := "waiting for first tick"
	if c := m.state.Clock; c != nil {
		label = fmt.Sprintf("%s elapsed, %s remaining", c.Elapsed, c.Remaining)
	}
	if m.state.Completion != nil {
		label = "session complete"
	}
	return m.progress.ViewAs(m.state.Progress) + "  " + label
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Stopping session...\n"
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		return views.RenderMenu(m.state, m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY, m.progressView())
	case state.PageDashboard:
		return views.RenderDashboard(m.state, m.spinner.View(), m.cpuChart.View(), m.progressView())
	case state.PageConsole:
		return views.RenderRawConsole(m.state, m.width, m.height, m.consoleScrollY)
	case state.PageCPU:
		return views.RenderCPU(m.state, m.cpuChart.View(), m.width, m.height)
	default:
		return views.RenderDetail(m.state, m.state.CurrentPage, m.width, m.height)
	}
}

// Start runs the observer until the user quits. Quitting asks stopper to end
// the session; the caller waits for the report.
func Start(events <-chan output.Event, stopper SessionStopper, opts Options) error {
	m := InitialModel(events, stopper, opts)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
