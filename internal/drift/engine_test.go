// # internal/drift/engine_test.go
package drift

import (
	"context"
	"errors"
	"testing"
	"time"

	"docwatch/internal/ai"
	"docwatch/internal/history"
	"docwatch/internal/scanner"
	"docwatch/internal/symbols"
)

type fakeVCS struct {
	commits  []history.Commit
	revTexts map[string][]byte
}

func (f *fakeVCS) IsRepo(ctx context.Context) bool { return true }

func (f *fakeVCS) FileHistory(ctx context.Context, path string, limit int, since time.Time) []history.Commit {
	return f.commits
}

func (f *fakeVCS) FileDiff(ctx context.Context, path, fromRev, toRev string) string { return "" }

func (f *fakeVCS) FileAtRevision(ctx context.Context, path, rev string) []byte {
	return f.revTexts[rev]
}

func (f *fakeVCS) LastModified(ctx context.Context, path string) time.Time { return time.Time{} }

// fakeScanner maps source text to canned results so historical revisions can
// be staged without real parsing.
type fakeScanner struct {
	bySource map[string]*symbols.ScanResult
}

func (f *fakeScanner) Supports(path string) bool { return true }

func (f *fakeScanner) ScanFile(ctx context.Context, path string) (*symbols.ScanResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeScanner) ScanSource(ctx context.Context, path string, source []byte) (*symbols.ScanResult, error) {
	result, ok := f.bySource[string(source)]
	if !ok {
		return nil, &scanner.ParseError{Path: path, Err: errors.New("unknown source")}
	}
	return result, nil
}

type fakeAssistant struct {
	preflightErr error
	response     string
	asked        int
}

func (f *fakeAssistant) Preflight(ctx context.Context) error { return f.preflightErr }

func (f *fakeAssistant) Ask(ctx context.Context, prompt string) (*ai.Response, error) {
	f.asked++
	if f.response == "" {
		return nil, errors.New("assistant exploded")
	}
	return &ai.Response{Raw: f.response, Structured: []byte(f.response), Success: true}, nil
}

func codeScan(file string, fns ...symbols.FunctionSymbol) *symbols.ScanResult {
	return &symbols.ScanResult{
		File:     file,
		Language: symbols.LangTypeScript,
		Code:     &symbols.CodeScanResult{Functions: fns},
	}
}

func documentedFn(name string, params ...symbols.ParameterSymbol) symbols.FunctionSymbol {
	return symbols.FunctionSymbol{
		Name:             name,
		Parameters:       params,
		ReturnType:       "void",
		HasDocumentation: true,
		Documentation:    "/** docs */",
	}
}

func twoCommits() []history.Commit {
	return []history.Commit{
		{Hash: "new", Date: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		{Hash: "old", Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func registryWith(fs *fakeScanner) *scanner.Registry {
	return scanner.NewRegistry(scanner.Registration{Extensions: []string{".ts"}, Scanner: fs})
}

func TestEngineNeedsTwoCommits(t *testing.T) {
	vcs := &fakeVCS{commits: []history.Commit{{Hash: "only", Date: time.Now()}}}
	engine := NewEngine(vcs, registryWith(&fakeScanner{}))

	current := codeScan("a.ts", documentedFn("f", symbols.ParameterSymbol{Name: "x", DeclaredType: "string"}))
	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{current})
	if len(reports) != 0 {
		t.Errorf("single-commit file produced %v", reports)
	}
}

func TestEngineDetectsDrift(t *testing.T) {
	oldFn := documentedFn("f", symbols.ParameterSymbol{Name: "x", DeclaredType: "string"})
	curFn := documentedFn("f",
		symbols.ParameterSymbol{Name: "x", DeclaredType: "string"},
		symbols.ParameterSymbol{Name: "y", DeclaredType: "number"},
	)

	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{
		"old source": codeScan("a.ts", oldFn),
	}}
	vcs := &fakeVCS{
		commits:  twoCommits(),
		revTexts: map[string][]byte{"old": []byte("old source")},
	}
	engine := NewEngine(vcs, registryWith(fs))

	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{codeScan("a.ts", curFn)})
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	report := reports[0]
	if report.FunctionName != "f" || report.File != "a.ts" {
		t.Errorf("report identity = %s in %s", report.FunctionName, report.File)
	}
	if report.DriftScore < 5 {
		t.Errorf("added parameter should score >= 5, got %.1f", report.DriftScore)
	}
	if !report.LastCodeChange.After(report.LastDocUpdate) {
		t.Error("latest commit date should be the code change timestamp")
	}
}

func TestEngineSkipsUndocumentedAndNewFunctions(t *testing.T) {
	oldFn := documentedFn("existing", symbols.ParameterSymbol{Name: "x"})

	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{
		"old source": codeScan("a.ts", oldFn),
	}}
	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{"old": []byte("old source")}}
	engine := NewEngine(vcs, registryWith(fs))

	undocumented := symbols.FunctionSymbol{Name: "existing", Parameters: []symbols.ParameterSymbol{{Name: "renamed"}}}
	brandNew := documentedFn("brandNew", symbols.ParameterSymbol{Name: "a"})

	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{codeScan("a.ts", undocumented, brandNew)})
	if len(reports) != 0 {
		t.Errorf("undocumented and brand-new functions must not drift, got %v", reports)
	}
}

func TestEngineQualifiesMethods(t *testing.T) {
	oldMethod := documentedFn("save", symbols.ParameterSymbol{Name: "item", DeclaredType: "Item"})
	oldResult := &symbols.ScanResult{
		File:     "repo.ts",
		Language: symbols.LangTypeScript,
		Code: &symbols.CodeScanResult{
			Classes: []symbols.ClassSymbol{{Name: "Repo", Methods: []symbols.FunctionSymbol{oldMethod}}},
		},
	}

	curMethod := documentedFn("save",
		symbols.ParameterSymbol{Name: "item", DeclaredType: "Item"},
		symbols.ParameterSymbol{Name: "force", DeclaredType: "boolean"},
	)
	current := &symbols.ScanResult{
		File:     "repo.ts",
		Language: symbols.LangTypeScript,
		Code: &symbols.CodeScanResult{
			Classes: []symbols.ClassSymbol{{Name: "Repo", Methods: []symbols.FunctionSymbol{curMethod}}},
		},
	}

	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{"old source": oldResult}}
	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{"old": []byte("old source")}}
	engine := NewEngine(vcs, registryWith(fs))

	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{current})
	if len(reports) != 1 || reports[0].FunctionName != "Repo.save" {
		t.Fatalf("reports = %v, want one for Repo.save", reports)
	}
}

func TestEngineSortsByScore(t *testing.T) {
	mild := documentedFn("mild", symbols.ParameterSymbol{Name: "a", DeclaredType: "string"})
	mildRenamed := documentedFn("mild", symbols.ParameterSymbol{Name: "b", DeclaredType: "string"})
	severe := documentedFn("severe", symbols.ParameterSymbol{Name: "x", DeclaredType: "string"})
	severeChanged := symbols.FunctionSymbol{
		Name:             "severe",
		Parameters:       []symbols.ParameterSymbol{{Name: "x", DeclaredType: "number"}},
		ReturnType:       "Promise<void>",
		Async:            true,
		HasDocumentation: true,
		Documentation:    "/** docs */",
	}

	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{
		"old source": codeScan("a.ts", mild, severe),
	}}
	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{"old": []byte("old source")}}
	engine := NewEngine(vcs, registryWith(fs))

	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{codeScan("a.ts", mildRenamed, severeChanged)})
	if len(reports) != 2 {
		t.Fatalf("got %d reports", len(reports))
	}
	if reports[0].FunctionName != "severe" {
		t.Errorf("highest drift first, got %s", reports[0].FunctionName)
	}
}

func TestEngineAssistantOverridesAndAugments(t *testing.T) {
	oldFn := documentedFn("f", symbols.ParameterSymbol{Name: "x", DeclaredType: "string"})
	curFn := documentedFn("f",
		symbols.ParameterSymbol{Name: "x", DeclaredType: "string"},
		symbols.ParameterSymbol{Name: "y", DeclaredType: "number"},
	)

	assistant := &fakeAssistant{response: `{
		"driftScore": 9.5,
		"recommendation": "rewrite the usage section",
		"changes": [
			{"type": "parameter_added", "description": "duplicate, must be ignored", "severity": "high", "isBreaking": true},
			{"type": "return_type_changed", "description": "docs promise a sync value", "severity": "high", "isBreaking": true}
		]
	}`}

	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{
		"old source": codeScan("a.ts", oldFn),
	}}
	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{"old": []byte("old source")}}
	engine := NewEngine(vcs, registryWith(fs), WithAssistant(assistant))
	engine.Preflight(context.Background())

	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{codeScan("a.ts", curFn)})
	if len(reports) != 1 {
		t.Fatalf("got %d reports", len(reports))
	}
	report := reports[0]
	if report.DriftScore != 9.5 {
		t.Errorf("assistant score should override, got %.1f", report.DriftScore)
	}
	if report.Recommendation != "rewrite the usage section" {
		t.Errorf("recommendation = %q", report.Recommendation)
	}

	var sawHeuristic, sawNovel bool
	for _, c := range report.Changes {
		if c.Type == symbols.ChangeParameterAdded {
			sawHeuristic = true
			if c.Description == "duplicate, must be ignored" {
				t.Error("assistant change replaced a heuristic change of the same type")
			}
		}
		if c.Type == symbols.ChangeReturnTypeChanged {
			sawNovel = true
		}
	}
	if !sawHeuristic || !sawNovel {
		t.Errorf("changes = %v, want heuristic kept and novel appended", report.Changes)
	}
}

func TestEngineAssistantFailureKeepsHeuristics(t *testing.T) {
	oldFn := documentedFn("f", symbols.ParameterSymbol{Name: "x", DeclaredType: "string"})
	curFn := documentedFn("f", symbols.ParameterSymbol{Name: "x", DeclaredType: "number"})

	assistant := &fakeAssistant{} // every Ask fails
	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{
		"old source": codeScan("a.ts", oldFn),
	}}
	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{"old": []byte("old source")}}
	engine := NewEngine(vcs, registryWith(fs), WithAssistant(assistant), WithRetryPolicy(ai.RetryPolicy{MaxRetries: 0, BaseDelay: time.Millisecond}))
	engine.Preflight(context.Background())

	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{codeScan("a.ts", curFn)})
	if len(reports) != 1 {
		t.Fatalf("got %d reports", len(reports))
	}
	if reports[0].DriftScore <= 0 {
		t.Error("heuristic score must survive assistant failure")
	}
	if assistant.asked == 0 {
		t.Error("assistant should have been consulted")
	}
}

func TestEnginePreflightFailureDisablesAssistant(t *testing.T) {
	assistant := &fakeAssistant{preflightErr: errors.New("binary not found")}
	oldFn := documentedFn("f", symbols.ParameterSymbol{Name: "x", DeclaredType: "string"})
	curFn := documentedFn("f", symbols.ParameterSymbol{Name: "x", DeclaredType: "number"})

	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{
		"old source": codeScan("a.ts", oldFn),
	}}
	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{"old": []byte("old source")}}
	engine := NewEngine(vcs, registryWith(fs), WithAssistant(assistant))
	engine.Preflight(context.Background())

	reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{codeScan("a.ts", curFn)})
	if len(reports) != 1 {
		t.Fatalf("got %d reports", len(reports))
	}
	if assistant.asked != 0 {
		t.Error("assistant must not be consulted after failed preflight")
	}
}

func TestFormatSignature(t *testing.T) {
	fn := symbols.FunctionSymbol{
		Name:  "update",
		Async: true,
		Parameters: []symbols.ParameterSymbol{
			{Name: "id", DeclaredType: "string"},
			{Name: "opts", DeclaredType: "Options", Optional: true, DefaultValueText: "{}"},
		},
		ReturnType: "Promise<void>",
	}
	got := FormatSignature(fn)
	want := "async update(id: string, opts?: Options = {}): Promise<void>"
	if got != want {
		t.Errorf("FormatSignature = %q, want %q", got, want)
	}

	bare := symbols.FunctionSymbol{Name: "noop", ReturnType: "unknown"}
	if got := FormatSignature(bare); got != "noop()" {
		t.Errorf("bare signature = %q", got)
	}
}

func TestEngineMissingRevisionAborts(t *testing.T) {
	fs := &fakeScanner{bySource: map[string]*symbols.ScanResult{}}
	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{}} // FileAtRevision returns nil
	engine := NewEngine(vcs, registryWith(fs))

	cur := codeScan("a.ts", documentedFn("f", symbols.ParameterSymbol{Name: "x"}))
	if reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{cur}); len(reports) != 0 {
		t.Errorf("missing historical blob should yield no reports, got %v", reports)
	}
}

func TestEngineScanStoppedByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vcs := &fakeVCS{commits: twoCommits(), revTexts: map[string][]byte{"old": []byte("old source")}}
	engine := NewEngine(vcs, registryWith(&fakeScanner{}))
	cur := codeScan("a.ts", documentedFn("f", symbols.ParameterSymbol{Name: "x"}))
	if reports := engine.AnalyzeAll(ctx, []*symbols.ScanResult{cur}); len(reports) != 0 {
		t.Errorf("canceled context should short-circuit, got %v", reports)
	}
}

func TestEngineIgnoresMarkdownResults(t *testing.T) {
	vcs := &fakeVCS{commits: twoCommits()}
	engine := NewEngine(vcs, registryWith(&fakeScanner{}))

	md := &symbols.ScanResult{File: "readme.md", Language: symbols.LangMarkdown, Markdown: &symbols.MarkdownScanResult{}}
	if reports := engine.AnalyzeAll(context.Background(), []*symbols.ScanResult{md}); len(reports) != 0 {
		t.Errorf("markdown files have no drift, got %v", reports)
	}
}
