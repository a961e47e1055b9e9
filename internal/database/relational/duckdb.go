// Package relational exports finished sessions into DuckDB files for ad-hoc SQL.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

// =============================================================================
// DUCKDB CLIENT
// =============================================================================

// DatabaseConfig holds configuration options for the database.
type DatabaseConfig struct {
	Threads       int           // Number of threads for DuckDB (0 = default)
	MemoryLimitGB int           // Memory limit in GB (0 = default)
	Timeout       time.Duration // Connect timeout (0 = none)
}

// DuckDBClient manages the physical connection to a DuckDB database.
type DuckDBClient struct {
	db     *sql.DB
	config DatabaseConfig
}

// DuckDBOption configures the DuckDB client.
type DuckDBOption func(*DuckDBClient)

func WithThreads(n int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Threads = n
	}
}

func WithMemoryLimit(gb int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.MemoryLimitGB = gb
	}
}

func WithTimeout(d time.Duration) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Timeout = d
	}
}

// NewDuckDBClient opens dsn. An empty dsn or ":memory:" is an in-memory database.
func NewDuckDBClient(ctx context.Context, dsn string, opts ...DuckDBOption) (*DuckDBClient, error) {
	client := &DuckDBClient{}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	if client.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.config.Timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// One writer; an in-memory database also lives on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	client.db = db

	if err := client.configure(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure duckdb: %w", err)
	}
	return client, nil
}

// NewInMemoryDB creates a new in-memory DuckDB database.
func NewInMemoryDB(ctx context.Context, opts ...DuckDBOption) (*DuckDBClient, error) {
	return NewDuckDBClient(ctx, ":memory:", opts...)
}

// NewFileDB creates or opens a file-based DuckDB database.
func NewFileDB(ctx context.Context, path string, opts ...DuckDBOption) (*DuckDBClient, error) {
	if path == "" {
		return nil, errors.New("database path required")
	}
	return NewDuckDBClient(ctx, path, opts...)
}

func (c *DuckDBClient) configure(ctx context.Context) error {
	if c.config.Threads > 0 {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", c.config.Threads)); err != nil {
			return fmt.Errorf("setting threads: %w", err)
		}
	}
	if c.config.MemoryLimitGB > 0 {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dGB'", c.config.MemoryLimitGB)); err != nil {
			return fmt.Errorf("setting memory limit: %w", err)
		}
	}
	return nil
}

// DB returns the underlying sql.DB instance.
func (c *DuckDBClient) DB() *sql.DB {
	return c.db
}

func (c *DuckDBClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
