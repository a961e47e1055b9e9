package relational

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"sysmonitor/internal/history"
	"sysmonitor/internal/session"
)

// =============================================================================
// ADAPTER FUNCTIONS
// =============================================================================

// FromResult flattens a finished session into a SessionRecord.
func FromResult(r session.Result, hostname string) SessionRecord {
	rec := SessionRecord{
		Hostname:  hostname,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
		Interval:  r.Interval,
		Cancelled: r.Cancelled,
		Series:    make(map[string][]float64),
		Devices:   make(map[string][][]float64),
		Ticks:     make(map[string][]int),
	}
	h := r.History
	if h == nil {
		return rec
	}

	rec.Timestamps = h.Timestamps()
	for _, key := range history.ScalarKeys {
		if values := h.Series(key); len(values) > 0 {
			rec.Series[key] = values
			rec.Ticks[key] = h.Ticks(key)
		}
	}
	for _, key := range history.DeviceKeys {
		if ticks := h.DeviceSeries(key); len(ticks) > 0 {
			rec.Devices[key] = ticks
			rec.Ticks[key] = h.Ticks(key)
		}
	}

	rec.Ticks[history.KeyTopProcesses] = h.Ticks(history.KeyTopProcesses)
	for _, snapshot := range h.TopProcesses() {
		rows := make([]ProcessRow, 0, len(snapshot))
		for _, p := range snapshot {
			rows = append(rows, ProcessRow{
				PID:           p.PID,
				Name:          p.Name,
				CPUPercent:    p.CPUPercent,
				MemoryPercent: p.MemoryPercent,
			})
		}
		rec.TopProcesses = append(rec.TopProcesses, rows)
	}
	return rec
}

// =============================================================================
// SESSION EXPORTER
// =============================================================================

// Exporter writes each finished session to its own DuckDB file.
type Exporter struct {
	Hostname string
	Options  []DuckDBOption
	Logger   zerolog.Logger
}

// Archive replaces any file at path with a fresh database holding r.
func (e *Exporter) Archive(ctx context.Context, path string, r session.Result) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	client, err := NewFileDB(ctx, path, e.Options...)
	if err != nil {
		return err
	}
	defer client.Close()

	repo := NewRepo(client.DB())
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	id, err := repo.InsertSession(ctx, FromResult(r, e.Hostname))
	if err != nil {
		return err
	}

	e.Logger.Debug().Int64("session_id", id).Str("path", path).Msg("session exported")
	return nil
}
