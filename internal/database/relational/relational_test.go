package relational

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/history"
	"sysmonitor/internal/session"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testResult() session.Result {
	h := history.New()
	for i, cpu := range []float64{10, 20, 30} {
		h.Append(collector.Sample{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			CPU:       collector.Ok(collector.CpuMetric{Percent: cpu}),
			Memory:    collector.Ok(collector.MemoryMetric{Percent: 40, UsedGB: 4}),
			Disk:      collector.Ok(collector.DiskMetric{Percent: 55}),
			Network:   collector.Ok(collector.NetworkMetric{DownloadMBps: 1}),
			GPU: collector.Ok([]collector.GpuMetric{
				{ID: 0, Load: 10, Temperature: 50},
				{ID: 1, Load: 50, Temperature: 70},
			}),
			Processes: collector.Ok([]collector.ProcessEntry{
				{PID: 1, Name: "init", CPUPercent: cpu},
				{PID: 2, Name: "sshd", CPUPercent: 1},
			}),
		})
	}
	return session.Result{
		History:   h,
		Stats:     h.Statistics(),
		StartedAt: start,
		EndedAt:   start.Add(3 * time.Second),
		Interval:  time.Second,
	}
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	ctx := context.Background()
	client, err := NewInMemoryDB(ctx, WithThreads(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRepo(client.DB())
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func TestFromResult(t *testing.T) {
	rec := FromResult(testResult(), "box")

	assert.Equal(t, "box", rec.Hostname)
	assert.Len(t, rec.Timestamps, 3)
	assert.Equal(t, []float64{10, 20, 30}, rec.Series[history.KeyCPUPercent])
	require.Len(t, rec.Devices[history.KeyGPUUsage], 3)
	assert.Equal(t, []float64{10, 50}, rec.Devices[history.KeyGPUUsage][0])
	require.Len(t, rec.TopProcesses, 3)
	assert.Equal(t, "init", rec.TopProcesses[2][0].Name)
}

func TestRepo_SeqIsTickIndex(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	h := history.New()
	for i := 0; i < 3; i++ {
		sample := collector.Sample{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			CPU:       collector.Ok(collector.CpuMetric{Percent: float64(i)}),
			GPU:       collector.Ok([]collector.GpuMetric{{ID: 0, Load: 5}}),
		}
		if i == 1 {
			sample.CPU = collector.Fail[collector.CpuMetric](errors.New("boom"))
			sample.GPU = collector.Fail[[]collector.GpuMetric](errors.New("nvml"))
		}
		h.Append(sample)
	}
	rec := FromResult(session.Result{History: h, StartedAt: start, EndedAt: start.Add(3 * time.Second)}, "box")
	assert.Equal(t, []int{0, 2}, rec.Ticks[history.KeyCPUPercent])

	id, err := repo.InsertSession(ctx, rec)
	require.NoError(t, err)

	seqs := func(query string) []int {
		rows, err := repo.db.QueryContext(ctx, query, id)
		require.NoError(t, err)
		defer rows.Close()
		var out []int
		for rows.Next() {
			var seq int
			require.NoError(t, rows.Scan(&seq))
			out = append(out, seq)
		}
		require.NoError(t, rows.Err())
		return out
	}
	assert.Equal(t, []int{0, 2}, seqs(`SELECT seq FROM series WHERE session_id=? AND metric='cpu_percent' ORDER BY seq`))
	assert.Equal(t, []int{0, 2}, seqs(`SELECT seq FROM device_series WHERE session_id=? AND metric='gpu_usage' ORDER BY seq`))
}

func TestFromResult_NilHistory(t *testing.T) {
	rec := FromResult(session.Result{StartedAt: start}, "")
	assert.Empty(t, rec.Timestamps)
	assert.Empty(t, rec.Series)
}

func TestRepo_InsertAndSummarize(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	r := testResult()

	id, err := repo.InsertSession(ctx, FromResult(r, "box"))
	require.NoError(t, err)

	sessions, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].SessionID)
	assert.Equal(t, 3, sessions[0].Samples)
	assert.Equal(t, "box", sessions[0].Hostname)

	summaries, err := repo.MetricSummaries(ctx, id)
	require.NoError(t, err)

	// SQL aggregation agrees with the in-memory aggregator.
	for key, want := range r.Stats {
		got, ok := summaries[key]
		require.True(t, ok, key)
		assert.InDelta(t, want.Avg, got.Avg, 1e-9, key)
		assert.InDelta(t, want.Min, got.Min, 1e-9, key)
		assert.InDelta(t, want.Max, got.Max, 1e-9, key)
		assert.Equal(t, want.Count, got.Count, key)
	}
	assert.Len(t, summaries, len(r.Stats))
}

func TestRepo_ProcessPeaks(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.InsertSession(ctx, FromResult(testResult(), ""))
	require.NoError(t, err)

	peaks, err := repo.ProcessPeaks(ctx, id, 5)
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	assert.Equal(t, ProcessPeak{Name: "init", PeakCPU: 30, Appearance: 3}, peaks[0])
	assert.Equal(t, "sshd", peaks[1].Name)
}

func TestRepo_NonFiniteStoredAsNull(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.InsertSession(ctx, SessionRecord{
		StartedAt: start,
		EndedAt:   start,
		Series:    map[string][]float64{"cpu_percent": {math.NaN(), 5, math.Inf(1)}},
	})
	require.NoError(t, err)

	summaries, err := repo.MetricSummaries(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MetricSummary{Avg: 5, Min: 5, Max: 5, Count: 1}, summaries["cpu_percent"])
}

func TestRepo_RequiresStartTime(t *testing.T) {
	_, err := newTestRepo(t).InsertSession(context.Background(), SessionRecord{})
	assert.Error(t, err)
}

func TestExporter_Archive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.duckdb")
	e := &Exporter{Hostname: "box", Logger: zerolog.Nop()}

	require.NoError(t, e.Archive(ctx, path, testResult()))
	// A second export replaces the file rather than appending to it.
	require.NoError(t, e.Archive(ctx, path, testResult()))

	client, err := NewFileDB(ctx, path)
	require.NoError(t, err)
	defer client.Close()

	sessions, err := NewRepo(client.DB()).ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
