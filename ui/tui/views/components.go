package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sysmonitor/internal/engine"
	"sysmonitor/internal/output"
	"sysmonitor/ui/tui/styles"
)

// RenderSection lists a dashboard section as aligned label/value rows.
func RenderSection(sec *output.Section) string {
	if sec == nil {
		return ""
	}
	if sec.Err != "" {
		return styles.ErrorStyle.Render("unavailable: " + sec.Err)
	}
	if len(sec.Items) == 0 {
		return styles.ErrorStyle.Render("no data")
	}

	var b strings.Builder
	for _, item := range sec.Items {
		valStr := fmt.Sprintf("%.1f%s", item.Value, item.Unit)
		if item.Status != "" {
			valStr = ColorForStatus(item.Status).Render(fmt.Sprintf("%s [%s]", valStr, item.Status))
		}
		if item.Note != "" {
			valStr += " " + styles.ErrorStyle.Render(item.Note)
		}
		fmt.Fprintf(&b, "%-15s : %s\n", item.Label, valStr)
	}
	return strings.TrimRight(b.String(), "\n")
}

func ColorForStatus(status engine.Status) lipgloss.Style {
	sStyle := styles.StatusStyle
	switch status {
	case engine.StatusWarning:
		return sStyle.Foreground(styles.Warning)
	case engine.StatusCritical:
		return sStyle.Foreground(styles.Critical)
	default:
		return sStyle.Foreground(styles.Normal)
	}
}

// completionBanner summarizes the finished session, or is empty while it runs.
func completionBanner(c *output.Completion) string {
	if c == nil {
		return ""
	}
	var text string
	switch {
	case c.Error != "":
		text = "Report failed: " + c.Error
	case c.ReportPath != "":
		text = fmt.Sprintf("Session complete (%d samples). Report: %s", c.Samples, c.ReportPath)
	default:
		text = "Session complete. " + c.Message
	}
	return lipgloss.NewStyle().Bold(true).Foreground(BrandColor).Padding(0, 1).Render(text)
}
