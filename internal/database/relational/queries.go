package relational

import (
	"context"
	"fmt"
	"time"
)

// SessionSummary is one row of the sessions table.
type SessionSummary struct {
	SessionID int64     `json:"session_id"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Samples   int       `json:"samples"`
	Cancelled bool      `json:"cancelled"`
}

// MetricSummary is the SQL-side avg/min/max of one metric.
type MetricSummary struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// ProcessPeak is the highest CPU percent a process reached in a session.
type ProcessPeak struct {
	Name       string  `json:"name"`
	PeakCPU    float64 `json:"peak_cpu"`
	Appearance int     `json:"appearances"`
}

// ListSessions returns every exported session, newest first.
func (r *Repo) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, COALESCE(hostname, ''), started_at, ended_at, samples, cancelled
		FROM sessions
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions failed: %w", err)
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.SessionID, &s.Hostname, &s.StartedAt, &s.EndedAt, &s.Samples, &s.Cancelled); err != nil {
			return nil, fmt.Errorf("scan session failed: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return sessions, nil
}

// MetricSummaries aggregates every scalar and device metric of a session.
// Metrics with no non-null values are absent.
func (r *Repo) MetricSummaries(ctx context.Context, sessionID int64) (map[string]MetricSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT metric, avg(value), min(value), max(value), count(value)
		FROM (
			SELECT metric, value FROM series WHERE session_id = ?
			UNION ALL
			SELECT metric, value FROM device_series WHERE session_id = ?
		)
		WHERE value IS NOT NULL
		GROUP BY metric
	`, sessionID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query metric summaries failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string]MetricSummary)
	for rows.Next() {
		var (
			metric string
			s      MetricSummary
			count  int64
		)
		if err := rows.Scan(&metric, &s.Avg, &s.Min, &s.Max, &count); err != nil {
			return nil, fmt.Errorf("scan metric summary failed: %w", err)
		}
		s.Count = int(count)
		out[metric] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// ProcessPeaks ranks the processes that appeared in the top list by peak CPU.
func (r *Repo) ProcessPeaks(ctx context.Context, sessionID int64, limit int) ([]ProcessPeak, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT n.name, COALESCE(max(t.cpu_percent), 0) AS peak, count(*) AS seen
		FROM top_processes t
		JOIN process_names n ON n.process_name_id = t.process_name_id
		WHERE t.session_id = ?
		GROUP BY n.name
		ORDER BY peak DESC, n.name
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query process peaks failed: %w", err)
	}
	defer rows.Close()

	peaks := []ProcessPeak{}
	for rows.Next() {
		var (
			p    ProcessPeak
			seen int64
		)
		if err := rows.Scan(&p.Name, &p.PeakCPU, &seen); err != nil {
			return nil, fmt.Errorf("scan process peak failed: %w", err)
		}
		p.Appearance = int(seen)
		peaks = append(peaks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return peaks, nil
}
