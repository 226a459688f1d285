// # internal/ui/report/markdown_test.go
package report

import (
	"strings"
	"testing"

	"docwatch/internal/app"
	"docwatch/internal/symbols"
)

func sampleResult() *app.AuditResult {
	return &app.AuditResult{
		Health: &symbols.HealthReport{
			OverallScore:   82,
			Coverage:       75,
			Freshness:      100,
			Accuracy:       100,
			Completeness:   60,
			TotalFunctions: 4,
			Documented:     3,
		},
		Debt: []symbols.DebtIssue{
			{File: "svc.ts", FunctionName: "getUser", Severity: symbols.SeverityHigh, Priority: 55, Reason: "function has no documentation"},
		},
		Drift: []symbols.DriftReport{
			{File: "svc.ts", FunctionName: "getUser", DriftScore: 7.0, Recommendation: "update documentation for breaking changes"},
		},
		FileCount: 2,
	}
}

func TestMarkdownSummaryContent(t *testing.T) {
	out := MarkdownSummary(sampleResult())

	for _, want := range []string{
		"## Documentation Health",
		"| Overall | 82 |",
		"3/4 documented",
		"getUser",
		"Documentation drift",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestReplaceBetweenMarkers(t *testing.T) {
	content := "# Readme\n\n<!-- docwatch:health:start -->\nstale\n<!-- docwatch:health:end -->\n\nTail.\n"

	next, err := ReplaceBetweenMarkers(content, "health", "fresh content")
	if err != nil {
		t.Fatalf("ReplaceBetweenMarkers: %v", err)
	}
	if strings.Contains(next, "stale") {
		t.Error("old content should be replaced")
	}
	if !strings.Contains(next, "fresh content") {
		t.Error("replacement missing")
	}
	if !strings.Contains(next, "Tail.") {
		t.Error("content after the end marker must survive")
	}
	if !strings.Contains(next, "<!-- docwatch:health:start -->") || !strings.Contains(next, "<!-- docwatch:health:end -->") {
		t.Error("markers must survive for the next injection")
	}
}

func TestReplaceBetweenMarkersValidation(t *testing.T) {
	if _, err := ReplaceBetweenMarkers("no markers here", "health", "x"); err == nil {
		t.Error("missing markers should fail")
	}
	if _, err := ReplaceBetweenMarkers("<!-- docwatch:health:start -->", "health", "x"); err == nil {
		t.Error("missing end marker should fail")
	}
	if _, err := ReplaceBetweenMarkers("anything", "", "x"); err == nil {
		t.Error("empty marker name should fail")
	}

	double := "<!-- docwatch:health:start --><!-- docwatch:health:start --><!-- docwatch:health:end -->"
	if _, err := ReplaceBetweenMarkers(double, "health", "x"); err == nil {
		t.Error("duplicate start marker should fail")
	}
}

func TestReplaceBetweenMarkersPreservesCRLF(t *testing.T) {
	content := "a\r\n<!-- docwatch:health:start -->\r\nold\r\n<!-- docwatch:health:end -->\r\n"
	next, err := ReplaceBetweenMarkers(content, "health", "new")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(next, "<!-- docwatch:health:start -->\r\nnew\r\n") {
		t.Errorf("CRLF not preserved:\n%q", next)
	}
}

func TestRenderTerminalSummary(t *testing.T) {
	out := Render(sampleResult(), false)

	for _, want := range []string{"Documentation Health", "2 files scanned", "getUser"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func TestRenderNoDebt(t *testing.T) {
	result := sampleResult()
	result.Debt = nil
	result.Drift = nil

	out := Render(result, false)
	if !strings.Contains(out, "No documentation debt") {
		t.Errorf("clean run should say so:\n%s", out)
	}
}
