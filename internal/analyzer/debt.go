// # internal/analyzer/debt.go
package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"docwatch/internal/symbols"
)

// Exported, undocumented classes skip the additive model and pin at high/60;
// classes carry no complexity metric.
const classDebtPriority = 60

// AnalyzeDebt scores every undocumented or incompletely documented function,
// method and class across the scanned code files. Issues come back sorted by
// priority, highest first; ties keep scan order.
func AnalyzeDebt(results []*symbols.ScanResult) []symbols.DebtIssue {
	var issues []symbols.DebtIssue

	for _, result := range results {
		if !result.IsCode() || result.Code == nil {
			continue
		}

		for _, fn := range result.Code.Functions {
			issues = append(issues, functionIssues(result.File, fn.Name, fn)...)
		}
		for _, cls := range result.Code.Classes {
			if cls.Exported && !cls.HasDocumentation {
				issues = append(issues, symbols.DebtIssue{
					File:         result.File,
					FunctionName: cls.Name,
					Severity:     symbols.SeverityHigh,
					Priority:     classDebtPriority,
					Reason:       "exported class has no documentation",
					Suggestion:   fmt.Sprintf("add a doc comment describing %s and its responsibilities", cls.Name),
				})
			}
			for _, method := range cls.Methods {
				qualified := cls.Name + "." + method.Name
				issues = append(issues, functionIssues(result.File, qualified, method)...)
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Priority > issues[j].Priority
	})
	return issues
}

func functionIssues(file, name string, fn symbols.FunctionSymbol) []symbols.DebtIssue {
	if !fn.HasDocumentation {
		priority := PriorityScore(fn)
		return []symbols.DebtIssue{{
			File:         file,
			FunctionName: name,
			Severity:     severityFor(priority),
			Priority:     priority,
			Reason:       "function has no documentation",
			Suggestion:   fmt.Sprintf("document %s: what it does, its parameters and return value", name),
		}}
	}
	return completenessIssues(file, name, fn)
}

// PriorityScore computes the additive remediation priority for an
// undocumented function, clamped to [0, 100].
func PriorityScore(fn symbols.FunctionSymbol) int {
	priority := 0

	switch {
	case fn.Exported && fn.Visibility == symbols.VisibilityPublic:
		priority += 30
	case fn.Exported:
		priority += 20
	case fn.Visibility == symbols.VisibilityPublic:
		priority += 15
	default:
		priority += 5
	}

	switch {
	case fn.Complexity.Cyclomatic > 10:
		priority += 25
	case fn.Complexity.Cyclomatic > 5:
		priority += 15
	default:
		priority += 5
	}

	switch {
	case fn.Complexity.LinesOfCode > 50:
		priority += 15
	case fn.Complexity.LinesOfCode > 20:
		priority += 10
	default:
		priority += 3
	}

	paramBonus := 2 * len(fn.Parameters)
	if paramBonus > 10 {
		paramBonus = 10
	}
	priority += paramBonus

	if fn.Async {
		priority += 5
	}

	if priority > 100 {
		priority = 100
	}
	if priority < 0 {
		priority = 0
	}
	return priority
}

func severityFor(priority int) symbols.Severity {
	switch {
	case priority >= 70:
		return symbols.SeverityCritical
	case priority >= 50:
		return symbols.SeverityHigh
	case priority >= 30:
		return symbols.SeverityMedium
	}
	return symbols.SeverityLow
}

// completenessIssues flags documented functions whose doc text misses @param
// coverage or an @returns marker. Each gap is low severity regardless of the
// priority model.
func completenessIssues(file, name string, fn symbols.FunctionSymbol) []symbols.DebtIssue {
	var issues []symbols.DebtIssue

	var missing []string
	for _, param := range fn.Parameters {
		if !paramDocumented(fn.Documentation, param.Name) {
			missing = append(missing, param.Name)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, symbols.DebtIssue{
			File:         file,
			FunctionName: name,
			Severity:     symbols.SeverityLow,
			Priority:     PriorityScore(fn),
			Reason:       fmt.Sprintf("documentation missing @param for: %s", strings.Join(missing, ", ")),
			Suggestion:   "add @param entries for the undocumented parameters",
		})
	}

	if needsReturnsTag(fn.ReturnType) && !strings.Contains(fn.Documentation, "@return") {
		issues = append(issues, symbols.DebtIssue{
			File:         file,
			FunctionName: name,
			Severity:     symbols.SeverityLow,
			Priority:     PriorityScore(fn),
			Reason:       "documentation missing @returns for a non-void return type",
			Suggestion:   "describe the return value with @returns",
		})
	}

	return issues
}

func needsReturnsTag(returnType string) bool {
	switch strings.TrimSpace(returnType) {
	case "", "void", unknownTypeText:
		return false
	}
	return true
}

const unknownTypeText = "unknown"

// paramDocumented reports whether the parameter name literally appears on a
// line carrying a @param marker.
func paramDocumented(doc, name string) bool {
	wordRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	for _, line := range strings.Split(doc, "\n") {
		idx := strings.Index(line, "@param")
		if idx < 0 {
			continue
		}
		if wordRe.MatchString(line[idx:]) {
			return true
		}
	}
	return false
}
