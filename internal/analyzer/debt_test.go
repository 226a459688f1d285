// # internal/analyzer/debt_test.go
package analyzer

import (
	"strings"
	"testing"

	"docwatch/internal/symbols"
)

func undocumented(fn symbols.FunctionSymbol) symbols.FunctionSymbol {
	fn.HasDocumentation = false
	fn.Documentation = ""
	return fn
}

func TestPriorityScoreAdditiveModel(t *testing.T) {
	tests := []struct {
		name string
		fn   symbols.FunctionSymbol
		want int
	}{
		{
			name: "floor: internal, simple, short, no params",
			fn:   symbols.FunctionSymbol{Visibility: symbols.VisibilityInternal},
			want: 5 + 5 + 3,
		},
		{
			name: "exported public complex long async",
			fn: symbols.FunctionSymbol{
				Exported:   true,
				Visibility: symbols.VisibilityPublic,
				Async:      true,
				Parameters: make([]symbols.ParameterSymbol, 6),
				Complexity: symbols.Complexity{Cyclomatic: 11, LinesOfCode: 51},
			},
			want: 30 + 25 + 15 + 10 + 5, // param bonus capped at 10
		},
		{
			name: "exported but non-public visibility",
			fn: symbols.FunctionSymbol{
				Exported:   true,
				Visibility: symbols.VisibilityProtected,
			},
			want: 20 + 5 + 3,
		},
		{
			name: "public but not exported",
			fn: symbols.FunctionSymbol{
				Visibility: symbols.VisibilityPublic,
				Complexity: symbols.Complexity{Cyclomatic: 6, LinesOfCode: 21},
			},
			want: 15 + 15 + 10,
		},
		{
			name: "two params add four",
			fn: symbols.FunctionSymbol{
				Visibility: symbols.VisibilityInternal,
				Parameters: make([]symbols.ParameterSymbol, 2),
			},
			want: 5 + 5 + 3 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriorityScore(tt.fn); got != tt.want {
				t.Errorf("PriorityScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPriorityScoreBounds(t *testing.T) {
	worst := symbols.FunctionSymbol{
		Exported:   true,
		Visibility: symbols.VisibilityPublic,
		Async:      true,
		Parameters: make([]symbols.ParameterSymbol, 20),
		Complexity: symbols.Complexity{Cyclomatic: 100, LinesOfCode: 1000},
	}
	if got := PriorityScore(worst); got < 0 || got > 100 {
		t.Errorf("score %d out of [0,100]", got)
	}
}

func TestSeveritySteps(t *testing.T) {
	tests := []struct {
		priority int
		want     symbols.Severity
	}{
		{70, symbols.SeverityCritical},
		{69, symbols.SeverityHigh},
		{50, symbols.SeverityHigh},
		{49, symbols.SeverityMedium},
		{30, symbols.SeverityMedium},
		{29, symbols.SeverityLow},
		{0, symbols.SeverityLow},
	}
	for _, tt := range tests {
		if got := severityFor(tt.priority); got != tt.want {
			t.Errorf("severityFor(%d) = %s, want %s", tt.priority, got, tt.want)
		}
	}
}

func TestAnalyzeDebtUndocumentedClass(t *testing.T) {
	results := []*symbols.ScanResult{{
		File:     "svc.ts",
		Language: symbols.LangTypeScript,
		Code: &symbols.CodeScanResult{
			Classes: []symbols.ClassSymbol{
				{Name: "PublicThing", Exported: true},
				{Name: "hidden", Exported: false},
				{Name: "Documented", Exported: true, HasDocumentation: true, Documentation: "/** docs */"},
			},
		},
	}}

	issues := AnalyzeDebt(results)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1 (only the exported undocumented class)", len(issues))
	}
	issue := issues[0]
	if issue.FunctionName != "PublicThing" {
		t.Errorf("issue for %s", issue.FunctionName)
	}
	if issue.Severity != symbols.SeverityHigh || issue.Priority != 60 {
		t.Errorf("class issue = %s/%d, want high/60", issue.Severity, issue.Priority)
	}
}

func TestAnalyzeDebtQualifiesMethods(t *testing.T) {
	results := []*symbols.ScanResult{{
		File:     "repo.py",
		Language: symbols.LangPython,
		Code: &symbols.CodeScanResult{
			Classes: []symbols.ClassSymbol{{
				Name:             "Repo",
				HasDocumentation: true,
				Methods: []symbols.FunctionSymbol{
					undocumented(symbols.FunctionSymbol{Name: "save", Visibility: symbols.VisibilityPublic}),
				},
			}},
		},
	}}

	issues := AnalyzeDebt(results)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].FunctionName != "Repo.save" {
		t.Errorf("method issue name = %q, want Repo.save", issues[0].FunctionName)
	}
}

func TestAnalyzeDebtSortedByPriority(t *testing.T) {
	results := []*symbols.ScanResult{{
		File:     "mix.ts",
		Language: symbols.LangTypeScript,
		Code: &symbols.CodeScanResult{
			Functions: []symbols.FunctionSymbol{
				{Name: "minor", Visibility: symbols.VisibilityInternal},
				{Name: "major", Exported: true, Visibility: symbols.VisibilityPublic,
					Complexity: symbols.Complexity{Cyclomatic: 12, LinesOfCode: 80}},
			},
		},
	}}

	issues := AnalyzeDebt(results)
	if len(issues) != 2 {
		t.Fatalf("got %d issues", len(issues))
	}
	if issues[0].FunctionName != "major" {
		t.Errorf("highest priority issue first, got %s", issues[0].FunctionName)
	}
	if issues[0].Priority < issues[1].Priority {
		t.Error("issues not sorted descending")
	}
}

func TestCompletenessIssuesMissingParamAndReturns(t *testing.T) {
	fn := symbols.FunctionSymbol{
		Name:             "transfer",
		HasDocumentation: true,
		Documentation:    "/**\n * Moves money.\n * @param amount how much\n */",
		ReturnType:       "Receipt",
		Parameters: []symbols.ParameterSymbol{
			{Name: "amount"},
			{Name: "target"},
		},
	}

	issues := completenessIssues("bank.ts", "transfer", fn)
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want missing-param and missing-returns", len(issues))
	}
	if !strings.Contains(issues[0].Reason, "target") {
		t.Errorf("param gap reason = %q", issues[0].Reason)
	}
	if strings.Contains(issues[0].Reason, "amount") {
		t.Error("documented param flagged as missing")
	}
	for _, issue := range issues {
		if issue.Severity != symbols.SeverityLow {
			t.Errorf("completeness gaps are low severity, got %s", issue.Severity)
		}
	}
}

func TestCompletenessIssuesVoidNeedsNoReturns(t *testing.T) {
	fn := symbols.FunctionSymbol{
		Name:             "log",
		HasDocumentation: true,
		Documentation:    "/** Writes a line. */",
		ReturnType:       "void",
	}
	if issues := completenessIssues("log.ts", "log", fn); len(issues) != 0 {
		t.Errorf("void return should not require @returns, got %v", issues)
	}
}

func TestParamDocumentedWordBoundary(t *testing.T) {
	doc := "@param idx the index"
	if paramDocumented(doc, "id") {
		t.Error("id must not match inside idx")
	}
	if !paramDocumented(doc, "idx") {
		t.Error("idx should match")
	}
}
