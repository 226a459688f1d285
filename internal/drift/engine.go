// # internal/drift/engine.go
package drift

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"docwatch/internal/ai"
	"docwatch/internal/history"
	"docwatch/internal/scanner"
	"docwatch/internal/shared/observability"
	"docwatch/internal/symbols"
)

// Engine detects documentation drift: for each currently documented function
// it reconstructs the prior revision from version control, re-scans it with
// the same scanner, and structurally diffs the two symbol sets.
type Engine struct {
	vcs      history.Provider
	registry *scanner.Registry

	assistant   ai.Assistant
	retry       ai.RetryPolicy
	assistantOK bool

	commitLimit int
	since       time.Time
}

type EngineOption func(*Engine)

func WithAssistant(assistant ai.Assistant) EngineOption {
	return func(e *Engine) { e.assistant = assistant }
}

func WithCommitLimit(limit int) EngineOption {
	return func(e *Engine) {
		if limit > 0 {
			e.commitLimit = limit
		}
	}
}

func WithSince(since time.Time) EngineOption {
	return func(e *Engine) { e.since = since }
}

func WithRetryPolicy(policy ai.RetryPolicy) EngineOption {
	return func(e *Engine) { e.retry = policy }
}

func NewEngine(vcs history.Provider, registry *scanner.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		vcs:         vcs,
		registry:    registry,
		retry:       ai.DefaultRetryPolicy(),
		commitLimit: 20,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Preflight checks the assistant once before analysis. When unreachable the
// engine logs a single warning and runs heuristic-only for the whole run.
func (e *Engine) Preflight(ctx context.Context) {
	if e.assistant == nil {
		return
	}
	if err := e.assistant.Preflight(ctx); err != nil {
		slog.Warn("assistant unavailable, drift analysis runs heuristic-only", "error", err)
		e.assistantOK = false
		return
	}
	e.assistantOK = true
}

// AnalyzeAll runs drift analysis over every scanned code file and returns the
// merged reports sorted by drift score, highest first.
func (e *Engine) AnalyzeAll(ctx context.Context, results []*symbols.ScanResult) []symbols.DriftReport {
	ctx, span := observability.Tracer.Start(ctx, "drift.AnalyzeAll")
	defer span.End()

	var reports []symbols.DriftReport
	for _, result := range results {
		if !result.IsCode() || result.Code == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}
		reports = append(reports, e.analyzeFile(ctx, result)...)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].DriftScore > reports[j].DriftScore
	})
	observability.DriftReportsTotal.Set(float64(len(reports)))
	return reports
}

func (e *Engine) analyzeFile(ctx context.Context, current *symbols.ScanResult) []symbols.DriftReport {
	commits := e.vcs.FileHistory(ctx, current.File, e.commitLimit, e.since)
	if len(commits) < 2 {
		// Fewer than two commits: no prior version to drift from.
		return nil
	}
	latest, previous := commits[0], commits[1]

	oldText := e.vcs.FileAtRevision(ctx, current.File, previous.Hash)
	if oldText == nil {
		return nil
	}

	sc := e.registry.ScannerFor(current.File)
	if sc == nil {
		return nil
	}
	old, err := sc.ScanSource(ctx, current.File, oldText)
	if err != nil {
		// Historical text the grammar cannot handle aborts drift for this
		// file only.
		slog.Debug("failed to scan historical revision", "file", current.File, "rev", previous.Hash, "error", err)
		return nil
	}

	oldFuncs := functionsByName(old)

	var reports []symbols.DriftReport
	for _, named := range orderedFunctions(current) {
		fn := named.fn
		if !fn.HasDocumentation {
			// Nothing documented, nothing to drift from.
			continue
		}
		oldFn, ok := oldFuncs[named.name]
		if !ok {
			// Brand-new function: no drift report.
			continue
		}

		changes := CompareSignatures(oldFn, fn)
		if len(changes) == 0 {
			continue
		}

		report := symbols.DriftReport{
			File:           current.File,
			FunctionName:   named.name,
			DriftScore:     Score(changes),
			LastCodeChange: latest.Date,
			LastDocUpdate:  previous.Date,
			Changes:        changes,
			Recommendation: Recommendation(changes),
		}

		if e.assistantOK {
			e.refine(ctx, &report, oldFn, fn)
		}
		reports = append(reports, report)
	}
	return reports
}

type namedFunction struct {
	name string
	fn   symbols.FunctionSymbol
}

// orderedFunctions flattens top-level functions and class methods in source
// order; methods are qualified with their class name.
func orderedFunctions(result *symbols.ScanResult) []namedFunction {
	var out []namedFunction
	for _, fn := range result.Code.Functions {
		out = append(out, namedFunction{name: fn.Name, fn: fn})
	}
	for _, cls := range result.Code.Classes {
		for _, method := range cls.Methods {
			out = append(out, namedFunction{name: cls.Name + "." + method.Name, fn: method})
		}
	}
	return out
}

func functionsByName(result *symbols.ScanResult) map[string]symbols.FunctionSymbol {
	index := make(map[string]symbols.FunctionSymbol)
	if result.Code == nil {
		return index
	}
	for _, named := range orderedFunctions(result) {
		index[named.name] = named.fn
	}
	return index
}
