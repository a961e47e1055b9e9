// Package app wires the sampler, broadcaster, session controller and report
// finalizer together for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"sysmonitor/internal/broadcast"
	"sysmonitor/internal/collector"
	"sysmonitor/internal/config"
	"sysmonitor/internal/database/relational"
	"sysmonitor/internal/logger"
	"sysmonitor/internal/report"
	"sysmonitor/internal/session"
)

// App holds the long-lived components of one process.
type App struct {
	Config     *config.Config
	Collector  *collector.SystemCollector
	Hub        *broadcast.Hub
	Controller *session.Controller

	logger  zerolog.Logger
	logFile io.Closer
}

// SetupLogging initializes the global logger for cfg. In TUI mode logs go to
// the configured file or nowhere, since the terminal belongs to the UI; in MCP
// mode they go to stderr because stdout carries the protocol.
func SetupLogging(cfg *config.Config) (io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		pretty           = cfg.Mode == config.ModeConsole
		closer io.Closer
	)
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer, pretty = f, f, false
	} else if cfg.Mode == config.ModeTUI {
		out = io.Discard
	}

	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Output: out, Pretty: pretty}); err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return closer, nil
}

// New builds the component graph and connects the sensors. Sensor connection
// failures are logged; the affected categories report errors per sample.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logFile, err := SetupLogging(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.Component("app")

	coll := collector.NewSystemCollector(cfg.Collector)
	if err := coll.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("some sensors are unavailable")
	}

	hub := broadcast.NewHub(logger.Component("broadcast"))

	finalizer := &report.SessionFinalizer{
		Renderer: report.NewRenderer(logger.Component("report")),
		Identity: coll,
		Dir:      cfg.Report.Dir,
		Path:     cfg.Report.Path,
		Logger:   logger.Component("finalizer"),
	}
	if cfg.Report.Archive {
		hostname, _ := os.Hostname()
		finalizer.Archiver = &relational.Exporter{
			Hostname: hostname,
			Logger:   logger.Component("archive"),
		}
	}

	ctrl, err := session.NewController(cfg.Session, coll, hub, finalizer, logger.Component("session"))
	if err != nil {
		hub.Close()
		coll.Close(ctx)
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}

	log.Info().
		Str("mode", cfg.Mode).
		Str("config_file", cfg.File).
		Dur("duration", cfg.Session.Duration).
		Dur("interval", cfg.Session.Interval).
		Msg("sysmonitor initialized")

	return &App{
		Config:     cfg,
		Collector:  coll,
		Hub:        hub,
		Controller: ctrl,
		logger:     log,
		logFile:    logFile,
	}, nil
}

// Shutdown stops any running session, waits for its report and releases
// resources. ctx bounds the wait.
func (a *App) Shutdown(ctx context.Context) error {
	a.Controller.Stop()
	var errs []error
	if _, err := a.Controller.Wait(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
		errs = append(errs, fmt.Errorf("wait for session: %w", err))
	}
	a.Hub.Close()
	if err := a.Collector.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close sensors: %w", err))
	}
	a.logger.Info().Msg("sysmonitor stopped")
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
