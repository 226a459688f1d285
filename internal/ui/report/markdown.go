// # internal/ui/report/markdown.go
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docwatch/internal/app"
)

// MarkdownSummary renders the audit as a markdown fragment suitable for
// injection into a README or docs page.
func MarkdownSummary(result *app.AuditResult) string {
	var b strings.Builder

	health := result.Health
	b.WriteString("## Documentation Health\n\n")
	fmt.Fprintf(&b, "| Metric | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Overall | %d |\n", health.OverallScore)
	fmt.Fprintf(&b, "| Coverage | %.1f (%d/%d documented) |\n", health.Coverage, health.Documented, health.TotalFunctions)
	fmt.Fprintf(&b, "| Freshness | %.1f |\n", health.Freshness)
	fmt.Fprintf(&b, "| Accuracy | %.1f |\n", health.Accuracy)
	fmt.Fprintf(&b, "| Completeness | %.1f |\n", health.Completeness)

	if len(result.Debt) > 0 {
		b.WriteString("\n### Top documentation debt\n\n")
		limit := 5
		if len(result.Debt) < limit {
			limit = len(result.Debt)
		}
		for _, issue := range result.Debt[:limit] {
			fmt.Fprintf(&b, "- **%s** (%s, priority %d) in `%s`\n", issue.FunctionName, issue.Severity, issue.Priority, issue.File)
		}
	}

	if len(result.Drift) > 0 {
		b.WriteString("\n### Documentation drift\n\n")
		for _, report := range result.Drift {
			fmt.Fprintf(&b, "- **%s** (score %.1f) in `%s`: %s\n", report.FunctionName, report.DriftScore, report.File, report.Recommendation)
		}
	}

	return b.String()
}

// InjectSummary rewrites the region between the docwatch markers in the given
// markdown file with a fresh health summary. The write goes through a temp
// file in the same directory so a crash never truncates the target.
func InjectSummary(filePath, marker string, result *app.AuditResult) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", filePath, err)
	}

	next, err := ReplaceBetweenMarkers(string(content), marker, MarkdownSummary(result))
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, ".docwatch-inject-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", filePath, err)
	}
	tmpName := tmp.Name()

	writeErr := error(nil)
	if _, err := tmp.WriteString(next); err != nil {
		writeErr = fmt.Errorf("write temp markdown file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp markdown file %q: %w", tmpName, err)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return writeErr
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace markdown file %q: %w", filePath, err)
	}
	return nil
}

// ReplaceBetweenMarkers swaps the content between
// <!-- docwatch:<marker>:start --> and <!-- docwatch:<marker>:end -->,
// preserving the file's newline convention.
func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", fmt.Errorf("markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- docwatch:%s:start -->", marker)
	end := fmt.Sprintf("<!-- docwatch:%s:end -->", marker)

	startCount := strings.Count(content, start)
	endCount := strings.Count(content, end)
	if startCount != 1 || endCount != 1 {
		return "", fmt.Errorf("markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", fmt.Errorf("invalid marker order for %q", marker)
	}

	startBlockEnd := startIdx + len(start)
	prefix := content[:startBlockEnd]
	suffix := content[endIdx:]
	cleanReplacement := strings.TrimRight(replacement, "\r\n")

	return prefix + newline + cleanReplacement + newline + suffix, nil
}
