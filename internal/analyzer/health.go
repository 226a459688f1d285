// # internal/analyzer/health.go
package analyzer

import (
	"math"
	"strings"
	"time"

	"docwatch/internal/symbols"
)

// Score weights for the composite health score.
const (
	weightCoverage     = 0.30
	weightFreshness    = 0.30
	weightAccuracy     = 0.20
	weightCompleteness = 0.20
)

// OptimisticDefault is used when freshness or accuracy data is unavailable:
// no evidence of rot, rather than rot confirmed absent.
const OptimisticDefault = 100.0

// Coverage returns documented count, total count, and the documented
// percentage over top-level functions and class methods. An empty codebase is
// fully covered by convention.
func Coverage(results []*symbols.ScanResult) (documented, total int, pct float64) {
	for _, result := range results {
		if !result.IsCode() || result.Code == nil {
			continue
		}
		for _, fn := range result.Code.Functions {
			total++
			if fn.HasDocumentation {
				documented++
			}
		}
		for _, cls := range result.Code.Classes {
			for _, method := range cls.Methods {
				total++
				if method.HasDocumentation {
					documented++
				}
			}
		}
	}
	if total == 0 {
		return 0, 0, 100
	}
	return documented, total, float64(documented) / float64(total) * 100
}

// Completeness averages the per-function completeness score over the same
// function set coverage uses, as a percentage.
func Completeness(results []*symbols.ScanResult) float64 {
	var sum float64
	count := 0

	each := func(fn symbols.FunctionSymbol) {
		sum += CompletenessScore(fn)
		count++
	}
	for _, result := range results {
		if !result.IsCode() || result.Code == nil {
			continue
		}
		for _, fn := range result.Code.Functions {
			each(fn)
		}
		for _, cls := range result.Code.Classes {
			for _, method := range cls.Methods {
				each(method)
			}
		}
	}

	if count == 0 {
		return 100
	}
	return sum / float64(count) * 100
}

// CompletenessScore rates one documented function on up to four binary
// checks, each worth 1/maxApplicablePoints: a description beyond tag lines,
// every parameter mentioned, @returns when a return type exists, and an
// @example block. Undocumented functions score zero.
func CompletenessScore(fn symbols.FunctionSymbol) float64 {
	if !fn.HasDocumentation {
		return 0
	}

	applicable := 2 // description and @example always apply
	passed := 0

	if hasDescription(fn.Documentation) {
		passed++
	}
	if strings.Contains(fn.Documentation, "@example") {
		passed++
	}

	if len(fn.Parameters) > 0 {
		applicable++
		all := true
		for _, param := range fn.Parameters {
			if !strings.Contains(fn.Documentation, param.Name) {
				all = false
				break
			}
		}
		if all {
			passed++
		}
	}

	if needsReturnsTag(fn.ReturnType) {
		applicable++
		if strings.Contains(fn.Documentation, "@return") {
			passed++
		}
	}

	return float64(passed) / float64(applicable)
}

// hasDescription reports whether the doc text carries prose beyond comment
// markers and @tag lines.
func hasDescription(doc string) bool {
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		return true
	}
	return false
}

// OverallScore combines the four component scores with the fixed weights,
// rounded to the nearest integer.
func OverallScore(coverage, freshness, accuracy, completeness float64) int {
	return int(math.Round(coverage*weightCoverage +
		freshness*weightFreshness +
		accuracy*weightAccuracy +
		completeness*weightCompleteness))
}

// BuildReport assembles the health report from scan results and analyzer
// outputs. Pass a negative freshness or accuracy to take the optimistic
// default.
func BuildReport(results []*symbols.ScanResult, issues []symbols.DebtIssue, drift []symbols.DriftReport, freshness, accuracy float64, runID string) *symbols.HealthReport {
	if freshness < 0 {
		freshness = OptimisticDefault
	}
	if accuracy < 0 {
		accuracy = OptimisticDefault
	}

	documented, total, coverage := Coverage(results)
	completeness := Completeness(results)

	return &symbols.HealthReport{
		OverallScore:   OverallScore(coverage, freshness, accuracy, completeness),
		Coverage:       coverage,
		Freshness:      freshness,
		Accuracy:       accuracy,
		Completeness:   completeness,
		TotalFunctions: total,
		Documented:     documented,
		Issues:         issues,
		Drift:          drift,
		GeneratedAt:    time.Now().UTC(),
		RunID:          runID,
	}
}
