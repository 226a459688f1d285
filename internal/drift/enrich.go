// # internal/drift/enrich.go
package drift

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docwatch/internal/ai"
	"docwatch/internal/symbols"
)

// assistantAssessment is the structured payload requested from the reasoning
// assistant. Every field is optional; whatever is missing keeps the
// heuristic value.
type assistantAssessment struct {
	DriftScore     *float64          `json:"driftScore"`
	Recommendation string            `json:"recommendation"`
	Changes        []assistantChange `json:"changes"`
}

type assistantChange struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Severity    string `json:"severity"`
	IsBreaking  bool   `json:"isBreaking"`
}

// refine asks the assistant to reassess a heuristic drift report. A returned
// score or recommendation overrides the heuristic values; returned changes
// whose type is not already present are appended, never replacing heuristic
// changes. Any failure leaves the heuristic report untouched.
func (e *Engine) refine(ctx context.Context, report *symbols.DriftReport, old, current symbols.FunctionSymbol) {
	prompt := buildDriftPrompt(old, current)

	resp, err := ai.AskWithRetry(ctx, e.assistant, prompt, e.retry)
	if err != nil {
		slog.Debug("assistant refinement failed, keeping heuristic result",
			"function", report.FunctionName, "error", err)
		return
	}

	var assessment assistantAssessment
	if err := resp.Decode(&assessment); err != nil {
		slog.Debug("assistant returned no usable payload",
			"function", report.FunctionName, "error", err)
		return
	}

	if assessment.DriftScore != nil {
		report.DriftScore = ClampScore(*assessment.DriftScore)
	}
	if strings.TrimSpace(assessment.Recommendation) != "" {
		report.Recommendation = strings.TrimSpace(assessment.Recommendation)
	}

	seen := make(map[symbols.ChangeType]bool, len(report.Changes))
	for _, change := range report.Changes {
		seen[change.Type] = true
	}
	for _, change := range assessment.Changes {
		changeType := symbols.ChangeType(change.Type)
		if change.Type == "" || seen[changeType] {
			continue
		}
		seen[changeType] = true
		report.Changes = append(report.Changes, symbols.SemanticChange{
			Type:        changeType,
			Description: change.Description,
			Impact:      change.Impact,
			Severity:    parseSeverity(change.Severity),
			Breaking:    change.IsBreaking,
		})
	}
}

func parseSeverity(raw string) symbols.Severity {
	switch symbols.Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case symbols.SeverityCritical:
		return symbols.SeverityCritical
	case symbols.SeverityHigh:
		return symbols.SeverityHigh
	case symbols.SeverityLow:
		return symbols.SeverityLow
	}
	return symbols.SeverityMedium
}

func buildDriftPrompt(old, current symbols.FunctionSymbol) string {
	var b strings.Builder
	b.WriteString("You are reviewing documentation drift for a function whose signature changed.\n\n")
	fmt.Fprintf(&b, "Previous signature:\n%s\n\n", FormatSignature(old))
	fmt.Fprintf(&b, "Current signature:\n%s\n\n", FormatSignature(current))
	if current.Documentation != "" {
		fmt.Fprintf(&b, "Current documentation:\n%s\n\n", current.Documentation)
	}
	b.WriteString("Respond with JSON only: " +
		`{"driftScore": <0-10>, "recommendation": "<one sentence>", ` +
		`"changes": [{"type": "...", "description": "...", "impact": "...", "severity": "critical|high|medium|low", "isBreaking": true|false}]}` + "\n")
	return b.String()
}

// FormatSignature reconstructs a readable one-line signature for prompts and
// reports.
func FormatSignature(fn symbols.FunctionSymbol) string {
	var b strings.Builder
	if fn.Async {
		b.WriteString("async ")
	}
	b.WriteString(fn.Name)
	b.WriteString("(")
	for i, param := range fn.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.Name)
		if param.Optional {
			b.WriteString("?")
		}
		if param.DeclaredType != "" && param.DeclaredType != "unknown" {
			b.WriteString(": ")
			b.WriteString(param.DeclaredType)
		}
		if param.DefaultValueText != "" {
			b.WriteString(" = ")
			b.WriteString(param.DefaultValueText)
		}
	}
	b.WriteString(")")
	if fn.ReturnType != "" && fn.ReturnType != "unknown" {
		b.WriteString(": ")
		b.WriteString(fn.ReturnType)
	}
	return b.String()
}
