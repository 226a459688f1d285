// # internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/gobwas/glob"

	"docwatch/internal/analyzer"
	"docwatch/internal/cache"
	"docwatch/internal/config"
	"docwatch/internal/drift"
	"docwatch/internal/session"
	"docwatch/internal/shared/observability"
	"docwatch/internal/symbols"
	"docwatch/internal/watcher"
)

// AuditResult bundles one full pass over the configured scan paths.
type AuditResult struct {
	Results   []*symbols.ScanResult `json:"results"`
	Debt      []symbols.DebtIssue   `json:"debt"`
	Drift     []symbols.DriftReport `json:"drift"`
	Health    *symbols.HealthReport `json:"health"`
	FileCount int                   `json:"fileCount"`
	Duration  time.Duration         `json:"duration"`
}

type App struct {
	Config  *config.Config
	Session *session.Session

	driftEngine *drift.Engine
	store       *cache.Store
	driftOn     bool
}

type Option func(*App)

// WithDrift enables version-control drift analysis for every audit.
func WithDrift(engine *drift.Engine) Option {
	return func(a *App) {
		a.driftEngine = engine
		a.driftOn = engine != nil
	}
}

// WithStore persists each audit's scan snapshot to the given cache store.
func WithStore(store *cache.Store) Option {
	return func(a *App) { a.store = store }
}

func New(cfg *config.Config, sess *session.Session, opts ...Option) *App {
	a := &App{
		Config:  cfg,
		Session: sess,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Audit scans every configured path, analyzes debt and drift, and aggregates
// the health report. Individual files that fail to parse are skipped with a
// debug log; only walk-level failures abort the audit.
func (a *App) Audit(ctx context.Context) (*AuditResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Audit")
	defer span.End()

	start := time.Now()

	files, err := a.ScanDirectories(uniqueScanRoots(a.Config.ScanPaths), a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return nil, err
	}

	var results []*symbols.ScanResult
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := a.Session.Registry.ScanFile(ctx, path)
		if err != nil {
			slog.Debug("skipping file", "path", path, "error", err)
			observability.FilesSkippedTotal.Inc()
			continue
		}
		results = append(results, result)
	}

	debt := analyzer.AnalyzeDebt(results)
	observability.DebtIssuesTotal.Set(float64(len(debt)))

	var driftReports []symbols.DriftReport
	freshness := -1.0
	if a.driftOn {
		driftReports = a.driftEngine.AnalyzeAll(ctx, results)
		freshness = drift.FreshnessScore(driftReports)
	}

	health := analyzer.BuildReport(results, debt, driftReports, freshness, -1, a.Session.ID)

	result := &AuditResult{
		Results:   results,
		Debt:      debt,
		Drift:     driftReports,
		Health:    health,
		FileCount: len(results),
		Duration:  time.Since(start),
	}

	observability.AuditDuration.Observe(result.Duration.Seconds())

	if a.store != nil {
		if err := a.store.SaveScanResults(results); err != nil {
			slog.Warn("failed to persist scan snapshot", "error", err)
		}
	}

	return result, nil
}

// ScanDirectories walks the given roots and returns every scannable file,
// honoring the exclude globs against path base names.
func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs := make([]glob.Glob, 0, len(excludeDirs))
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.Session.Registry.IsSupported(path) {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// StartWatcher re-audits on debounced filesystem changes and feeds each fresh
// result to onUpdate.
func (a *App) StartWatcher(ctx context.Context, onUpdate func(*AuditResult)) (*watcher.Watcher, error) {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.Session.Registry.IsSupported,
		func(paths []string) {
			slog.Info("detected changes", "count", len(paths))
			result, err := a.Audit(ctx)
			if err != nil {
				slog.Error("re-audit failed", "error", err)
				return
			}
			onUpdate(result)
		},
	)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(a.Config.ScanPaths); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}
