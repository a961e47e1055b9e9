package report

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/session"
)

// IdentitySource supplies the host identity printed on the cover page.
type IdentitySource interface {
	SystemInfo(ctx context.Context) collector.SystemInfo
}

// Archiver stores the raw session history next to the report.
type Archiver interface {
	Archive(ctx context.Context, path string, r session.Result) error
}

// SessionFinalizer renders the report when a session completes.
type SessionFinalizer struct {
	Renderer *Renderer
	Identity IdentitySource
	Dir      string // used with DefaultPath when Path is empty
	Path     string
	Archiver Archiver
	Logger   zerolog.Logger
}

var _ session.Finalizer = (*SessionFinalizer)(nil)

func (f *SessionFinalizer) Finalize(ctx context.Context, r session.Result) (string, error) {
	path := f.Path
	if path == "" {
		path = DefaultPath(f.Dir, f.Renderer.now())
	}

	var info collector.SystemInfo
	if f.Identity != nil {
		info = f.Identity.SystemInfo(ctx)
	} else {
		info = collector.SystemInfo{Error: "system information not configured"}
	}

	out, err := f.Renderer.Render(Input{
		History:   r.History,
		Stats:     r.Stats,
		System:    info,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
		Interval:  r.Interval,
	}, path)
	if err != nil {
		return "", err
	}

	if f.Archiver != nil {
		archive := ArchivePath(out)
		if err := f.Archiver.Archive(ctx, archive, r); err != nil {
			f.Logger.Warn().Err(err).Str("path", archive).Msg("session archive failed")
		} else {
			f.Logger.Info().Str("path", archive).Msg("session archive written")
		}
	}
	return out, nil
}

// ArchivePath swaps the report extension for .duckdb.
func ArchivePath(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".duckdb"
}
