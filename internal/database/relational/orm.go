package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"sysmonitor/internal/history"
)

// =============================================================================
// SCHEMA SQL
// =============================================================================

// SchemaSQL keeps session scalars in one table and puts each sequence in a
// child table keyed by session_id. seq is the tick the value was collected on
// and joins to ticks.tick; ticks on which a category failed have no row.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
  session_id   BIGINT PRIMARY KEY,
  hostname     VARCHAR,
  started_at   TIMESTAMP NOT NULL,
  ended_at     TIMESTAMP NOT NULL,
  interval_ms  BIGINT NOT NULL,
  samples      INTEGER NOT NULL,
  cancelled    BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS ticks (
  session_id   BIGINT NOT NULL,
  tick         INTEGER NOT NULL,
  collected_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS series (
  session_id   BIGINT NOT NULL,
  metric       VARCHAR NOT NULL,
  seq          INTEGER NOT NULL,
  value        DOUBLE
);

CREATE TABLE IF NOT EXISTS device_series (
  session_id   BIGINT NOT NULL,
  metric       VARCHAR NOT NULL,
  seq          INTEGER NOT NULL,
  device       INTEGER NOT NULL,
  value        DOUBLE
);

CREATE TABLE IF NOT EXISTS process_names (
  process_name_id BIGINT PRIMARY KEY,
  name            VARCHAR NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS top_processes (
  session_id      BIGINT NOT NULL,
  seq             INTEGER NOT NULL,
  ranking         INTEGER NOT NULL,
  pid             INTEGER NOT NULL,
  process_name_id BIGINT NOT NULL,
  cpu_percent     DOUBLE,
  memory_percent  DOUBLE
);
`

// =============================================================================
// MODELS
// =============================================================================

// SessionRecord is one finished session flattened for insertion.
type SessionRecord struct {
	Hostname     string
	StartedAt    time.Time
	EndedAt      time.Time
	Interval     time.Duration
	Cancelled    bool
	Timestamps   []time.Time
	Series       map[string][]float64
	Devices      map[string][][]float64
	TopProcesses [][]ProcessRow

	// Ticks holds, per history key, the tick index of each entry in Series,
	// Devices or TopProcesses. Entries without one use their position.
	Ticks map[string][]int
}

// tickAt maps the i-th entry recorded under key to its tick index.
func (rec SessionRecord) tickAt(key string, i int) int {
	if ticks := rec.Ticks[key]; i < len(ticks) {
		return ticks[i]
	}
	return i
}

type ProcessRow struct {
	PID           int32
	Name          string
	CPUPercent    float64
	MemoryPercent float64
}

// =============================================================================
// REPO IMPLEMENTATION
// =============================================================================

type Repo struct {
	db     *sql.DB
	lastID atomic.Int64

	mu       sync.RWMutex
	procName map[string]int64
}

func NewRepo(db *sql.DB) *Repo {
	r := &Repo{db: db, procName: make(map[string]int64)}
	r.lastID.Store(time.Now().UnixNano())
	return r
}

func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, SchemaSQL)
	return err
}

// newID hands out increasing time-seeded IDs.
func (r *Repo) newID() int64 {
	return r.lastID.Add(1)
}

// InsertSession writes rec in a single transaction and returns its session_id.
func (r *Repo) InsertSession(ctx context.Context, rec SessionRecord) (int64, error) {
	if rec.StartedAt.IsZero() {
		return 0, errors.New("session start time required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := r.newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions(session_id, hostname, started_at, ended_at, interval_ms, samples, cancelled)
		VALUES(?,?,?,?,?,?,?)`,
		id, nullEmpty(rec.Hostname), rec.StartedAt, rec.EndedAt,
		rec.Interval.Milliseconds(), len(rec.Timestamps), rec.Cancelled,
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}

	if err := r.insertChildrenTx(ctx, tx, id, rec); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit session: %w", err)
	}
	return id, nil
}

func (r *Repo) insertChildrenTx(ctx context.Context, tx *sql.Tx, id int64, rec SessionRecord) error {
	for i, ts := range rec.Timestamps {
		if _, err := tx.ExecContext(ctx, `INSERT INTO ticks(session_id, tick, collected_at) VALUES(?,?,?)`, id, i, ts); err != nil {
			return fmt.Errorf("insert tick %d: %w", i, err)
		}
	}

	for metric, values := range rec.Series {
		for i, v := range values {
			if _, err := tx.ExecContext(ctx, `INSERT INTO series(session_id, metric, seq, value) VALUES(?,?,?,?)`,
				id, metric, rec.tickAt(metric, i), nullFloat(v)); err != nil {
				return fmt.Errorf("insert %s: %w", metric, err)
			}
		}
	}

	for metric, ticks := range rec.Devices {
		for i, devices := range ticks {
			for dev, v := range devices {
				if _, err := tx.ExecContext(ctx, `INSERT INTO device_series(session_id, metric, seq, device, value) VALUES(?,?,?,?,?)`,
					id, metric, rec.tickAt(metric, i), dev, nullFloat(v)); err != nil {
					return fmt.Errorf("insert %s device %d: %w", metric, dev, err)
				}
			}
		}
	}

	for i, snapshot := range rec.TopProcesses {
		for rank, p := range snapshot {
			nameID, err := r.upsertProcessNameTx(ctx, tx, p.Name)
			if err != nil {
				return fmt.Errorf("process name %q: %w", p.Name, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO top_processes(session_id, seq, ranking, pid, process_name_id, cpu_percent, memory_percent)
				VALUES(?,?,?,?,?,?,?)`,
				id, rec.tickAt(history.KeyTopProcesses, i), rank+1, p.PID, nameID, nullFloat(p.CPUPercent), nullFloat(p.MemoryPercent)); err != nil {
				return fmt.Errorf("insert top process: %w", err)
			}
		}
	}
	return nil
}

// upsertProcessNameTx resolves a process name to its dimension row, caching hits.
// Cached IDs are only valid for the database the repo was opened on.
func (r *Repo) upsertProcessNameTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	r.mu.RLock()
	if id, ok := r.procName[name]; ok {
		r.mu.RUnlock()
		return id, nil
	}
	r.mu.RUnlock()

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT process_name_id FROM process_names WHERE name=?`, name).Scan(&id)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		id = r.newID()
		if _, err := tx.ExecContext(ctx, `INSERT INTO process_names(process_name_id, name) VALUES(?,?)`, id, name); err != nil {
			return 0, err
		}
	default:
		return 0, err
	}

	r.mu.Lock()
	r.procName[name] = id
	r.mu.Unlock()
	return id, nil
}

// Null helpers
func nullEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
