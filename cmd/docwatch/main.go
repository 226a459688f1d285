// # cmd/docwatch/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docwatch/internal/ai"
	"docwatch/internal/app"
	"docwatch/internal/cache"
	"docwatch/internal/config"
	"docwatch/internal/drift"
	"docwatch/internal/history"
	"docwatch/internal/scanner"
	"docwatch/internal/session"
	"docwatch/internal/ui/report"
)

var (
	configPath = flag.String("config", "./docwatch.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single audit and exit even when -watch is set")
	watch      = flag.Bool("watch", false, "Re-audit on file changes")
	driftFlag  = flag.Bool("drift", false, "Analyze documentation drift against version control history")
	jsonOut    = flag.Bool("json", false, "Emit the audit result as JSON")
	inject     = flag.String("inject", "", "Markdown file to update between docwatch health markers")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("docwatch v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		cfg.ScanPaths = flag.Args()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(scanner.DefaultRegistry())

	var opts []app.Option

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		slog.Warn("scan cache unavailable", "path", cfg.Cache.Path, "error", err)
	} else {
		defer store.Close()
		opts = append(opts, app.WithStore(store))
	}

	if *driftFlag {
		engine, ok := buildDriftEngine(ctx, cfg, sess)
		if ok {
			opts = append(opts, app.WithDrift(engine))
		}
	}

	a := app.New(cfg, sess, opts...)

	result, err := a.Audit(ctx)
	if err != nil {
		slog.Error("audit failed", "error", err)
		os.Exit(1)
	}

	emit(result)

	if *watch && !*once {
		w, err := a.StartWatcher(ctx, emit)
		if err != nil {
			slog.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		defer w.Close()

		<-ctx.Done()
	}
}

func emit(result *app.AuditResult) {
	if *jsonOut {
		if err := report.WriteJSON(os.Stdout, result); err != nil {
			slog.Error("failed to write JSON output", "error", err)
		}
	} else {
		fmt.Println(report.Render(result, *verbose))
	}

	if *inject != "" {
		if err := report.InjectSummary(*inject, "health", result); err != nil {
			slog.Error("failed to inject markdown summary", "file", *inject, "error", err)
		}
	}
}

// buildDriftEngine wires the git provider and, when configured, the CLI
// assistant. Drift is skipped entirely outside a git repository.
func buildDriftEngine(ctx context.Context, cfg *config.Config, sess *session.Session) (*drift.Engine, bool) {
	root := "."
	if len(cfg.ScanPaths) > 0 {
		root = cfg.ScanPaths[0]
	}

	git, err := history.NewGit(ctx, root)
	if err != nil {
		slog.Warn("drift analysis disabled", "error", err)
		return nil, false
	}

	opts := []drift.EngineOption{
		drift.WithCommitLimit(cfg.Drift.CommitLimit),
	}
	if cfg.Drift.SinceDays > 0 {
		opts = append(opts, drift.WithSince(time.Now().AddDate(0, 0, -cfg.Drift.SinceDays)))
	}

	if cfg.Assistant.Enabled && cfg.Assistant.Command != "" {
		assistant := ai.NewCLIAssistant(cfg.Assistant.Command, cfg.Assistant.Args,
			ai.WithTimeout(cfg.Assistant.Timeout),
			ai.WithRateLimit(float64(cfg.Assistant.RequestsPerMinute)/60.0, 1),
			ai.WithCache(sess.Responses),
		)
		opts = append(opts, drift.WithAssistant(assistant))
	}

	engine := drift.NewEngine(git, sess.Registry, opts...)
	engine.Preflight(ctx)
	return engine, true
}
