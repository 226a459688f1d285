// # internal/ui/report/render.go
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"docwatch/internal/app"
	"docwatch/internal/symbols"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))
)

// Render formats an audit result as a terminal summary. With verbose set,
// every issue and drift report is listed instead of the top slice.
func Render(result *app.AuditResult, verbose bool) string {
	var b strings.Builder

	health := result.Health
	b.WriteString(titleStyle.Render("Documentation Health"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d files scanned in %v", result.FileCount, result.Duration.Round(time.Millisecond))))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  Overall       %s\n", scoreBadge(float64(health.OverallScore)))
	fmt.Fprintf(&b, "  Coverage      %s  (%d/%d documented)\n", scoreBadge(health.Coverage), health.Documented, health.TotalFunctions)
	fmt.Fprintf(&b, "  Freshness     %s\n", scoreBadge(health.Freshness))
	fmt.Fprintf(&b, "  Accuracy      %s\n", scoreBadge(health.Accuracy))
	fmt.Fprintf(&b, "  Completeness  %s\n", scoreBadge(health.Completeness))

	b.WriteString("\n")
	b.WriteString(renderDebt(result.Debt, verbose))
	b.WriteString(renderDrift(result.Drift, verbose))

	return b.String()
}

func renderDebt(issues []symbols.DebtIssue, verbose bool) string {
	var b strings.Builder

	if len(issues) == 0 {
		b.WriteString(goodStyle.Render("No documentation debt found."))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("%d documentation debt issues:", len(issues))))
	limit := 10
	if verbose || len(issues) < limit {
		limit = len(issues)
	}
	for _, issue := range issues[:limit] {
		line := fmt.Sprintf("   [%3d] %-8s %s", issue.Priority, issue.Severity, issue.FunctionName)
		if issue.Severity == symbols.SeverityCritical {
			line = criticalStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString(mutedStyle.Render("  " + issue.File))
		b.WriteString("\n")
	}
	if limit < len(issues) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("   ... and %d more (run with -verbose)", len(issues)-limit)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderDrift(reports []symbols.DriftReport, verbose bool) string {
	var b strings.Builder

	if len(reports) == 0 {
		return ""
	}

	fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("%d functions with documentation drift:", len(reports))))
	limit := 10
	if verbose || len(reports) < limit {
		limit = len(reports)
	}
	for _, report := range reports[:limit] {
		line := fmt.Sprintf("   [%4.1f] %s", report.DriftScore, report.FunctionName)
		if report.DriftScore >= 8 {
			line = criticalStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s", report.File)))
		b.WriteString("\n")
		for _, change := range report.Changes {
			fmt.Fprintf(&b, "      - %s\n", change.Description)
		}
		fmt.Fprintf(&b, "      %s\n", mutedStyle.Render(report.Recommendation))
	}
	if limit < len(reports) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("   ... and %d more (run with -verbose)", len(reports)-limit)))
		b.WriteString("\n")
	}
	return b.String()
}

func scoreBadge(score float64) string {
	text := fmt.Sprintf("%5.1f", score)
	switch {
	case score >= 80:
		return goodStyle.Render(text)
	case score >= 50:
		return warnStyle.Render(text)
	}
	return criticalStyle.Render(text)
}
