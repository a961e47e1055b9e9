package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sysmonitor/internal/engine"
	"sysmonitor/internal/output"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Print renders the dashboard view to the writer in a highly compact format.
func Print(w io.Writer, view output.DashboardView) {
	fmt.Fprintf(w, "%s%s %s%s %s\n", colorCyan, "■", "SYSTEM MONITOR", colorReset, view.Timestamp)

	for _, sec := range view.Sections {
		fmt.Fprintf(w, "%s%s%s\n", colorCyan, "─ "+sec.Title, colorReset)

		if sec.Err != "" {
			fmt.Fprintf(w, "  %sunavailable: %s%s\n", colorGray, sec.Err, colorReset)
			continue
		}
		if len(sec.Items) == 0 {
			fmt.Fprintf(w, "  %snone%s\n", colorGray, colorReset)
			continue
		}

		for _, it := range sec.Items {
			// Compact Label (max 20 runes)
			label := []rune(it.Label)
			if len(label) > 20 {
				label = append(label[:17], []rune("...")...)
			}

			valStr := fmt.Sprintf("%.1f%s", it.Value, it.Unit)
			if it.Note != "" {
				valStr += " " + colorGray + it.Note + colorReset
			}

			dots := strings.Repeat("·", 22-len(label))
			fmt.Fprintf(w, "  %s%s %10s%s\n", string(label), colorCyan+dots+colorReset, valStr, statusMarker(it.Status))
		}
	}

	diskStr := ""
	if view.TotalDiskGB > 0 {
		diskStr = fmt.Sprintf(" | Disk: %.0fGB", view.TotalDiskGB)
	}
	fmt.Fprintf(w, "%s─ Summary%s: RAM: %.0fGB%s\n\n", colorCyan, colorReset, view.TotalRAMGB, diskStr)
}

func statusMarker(status engine.Status) string {
	switch status {
	case engine.StatusNormal:
		return fmt.Sprintf(" %s✓%s", colorFor(status), colorReset)
	case engine.StatusWarning:
		return fmt.Sprintf(" %s!%s", colorFor(status), colorReset)
	case engine.StatusCritical:
		return fmt.Sprintf(" %sX%s", colorFor(status), colorReset)
	default:
		return ""
	}
}

func colorFor(status engine.Status) string {
	switch status {
	case engine.StatusWarning:
		return colorYellow
	case engine.StatusCritical:
		return colorRed
	default:
		return colorGreen
	}
}

// Run prints live events until the session completes, the subscription
// closes or ctx is done. It returns the completion event if one arrived.
func Run(ctx context.Context, w io.Writer, events <-chan output.Event) (*output.Completion, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil, nil
			}
			switch ev.Kind {
			case output.EventSystemData:
				if ev.Sample != nil {
					Print(w, output.BuildDashboard(*ev.Sample))
				}
			case output.EventTimeUpdate:
				if ev.Time != nil {
					fmt.Fprintf(w, "%sElapsed %s | Remaining %s%s\n\n", colorCyan, ev.Time.Elapsed, ev.Time.Remaining, colorReset)
				}
			case output.EventMonitoringComplete:
				PrintCompletion(w, ev.Complete)
				return ev.Complete, nil
			}
		}
	}
}

// PrintCompletion reports how the session ended.
func PrintCompletion(w io.Writer, c *output.Completion) {
	if c == nil {
		return
	}
	switch {
	case c.Error != "":
		fmt.Fprintf(w, "%sMonitoring finished with an error: %s%s\n", colorRed, c.Error, colorReset)
	case c.ReportPath != "":
		fmt.Fprintf(w, "%sMonitoring complete (%d samples). Report: %s%s\n", colorGreen, c.Samples, c.ReportPath, colorReset)
	default:
		fmt.Fprintf(w, "%sMonitoring complete. %s%s\n", colorYellow, c.Message, colorReset)
	}
}
