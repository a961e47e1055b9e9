package output

import (
	"fmt"
	"time"

	"sysmonitor/internal/collector"
)

// EventKind names the live events pushed to observers.
type EventKind string

const (
	EventSystemData         EventKind = "system_data"
	EventTimeUpdate         EventKind = "time_update"
	EventMonitoringComplete EventKind = "monitoring_complete"
)

// TimeUpdate reports session progress.
type TimeUpdate struct {
	Elapsed   string `json:"elapsed"`   // H:MM:SS
	Remaining string `json:"remaining"` // MM:SS
	Tick      int    `json:"tick"`
}

// Completion is the terminal event of a session.
type Completion struct {
	ReportPath string `json:"pdf_path,omitempty"`
	Samples    int    `json:"samples"`
	Cancelled  bool   `json:"cancelled"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Event is the envelope delivered to observers. Exactly one payload is set,
// matching Kind.
type Event struct {
	Kind     EventKind         `json:"event"`
	Sample   *collector.Sample `json:"data,omitempty"`
	Time     *TimeUpdate       `json:"time,omitempty"`
	Complete *Completion       `json:"complete,omitempty"`
}

func DataEvent(s collector.Sample) Event {
	return Event{Kind: EventSystemData, Sample: &s}
}

func TimeEvent(tick int, elapsed, remaining time.Duration) Event {
	return Event{Kind: EventTimeUpdate, Time: &TimeUpdate{
		Elapsed:   FormatElapsed(elapsed),
		Remaining: FormatRemaining(remaining),
		Tick:      tick,
	}}
}

func CompleteEvent(c Completion) Event {
	return Event{Kind: EventMonitoringComplete, Complete: &c}
}

// FormatElapsed renders d as H:MM:SS, truncated to whole seconds.
func FormatElapsed(d time.Duration) string {
	secs := wholeSeconds(d)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// FormatRemaining renders d as MM:SS; minutes are not wrapped into hours.
func FormatRemaining(d time.Duration) string {
	secs := wholeSeconds(d)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func wholeSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
