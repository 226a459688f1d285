// # internal/drift/compare.go
package drift

import (
	"fmt"

	"docwatch/internal/symbols"
)

// CompareSignatures structurally diffs two versions of a function signature
// and classifies each delta. Parameters are compared positionally, never by
// name: an insertion at a non-trailing position deliberately shows up as a
// cascade of renames/retypes at later positions plus one count change.
func CompareSignatures(old, current symbols.FunctionSymbol) []symbols.SemanticChange {
	var changes []symbols.SemanticChange

	oldN, newN := len(old.Parameters), len(current.Parameters)
	if newN > oldN {
		changes = append(changes, symbols.SemanticChange{
			Type:        symbols.ChangeParameterAdded,
			Description: fmt.Sprintf("parameter count changed from %d to %d", oldN, newN),
			Impact:      "existing call sites may be missing arguments",
			Severity:    symbols.SeverityHigh,
			Breaking:    true,
		})
	} else if newN < oldN {
		changes = append(changes, symbols.SemanticChange{
			Type:        symbols.ChangeParameterRemoved,
			Description: fmt.Sprintf("parameter count changed from %d to %d", oldN, newN),
			Impact:      "existing call sites pass arguments that no longer exist",
			Severity:    symbols.SeverityHigh,
			Breaking:    true,
		})
	}

	shared := oldN
	if newN < shared {
		shared = newN
	}
	for i := 0; i < shared; i++ {
		before, after := old.Parameters[i], current.Parameters[i]

		if before.DeclaredType != after.DeclaredType {
			changes = append(changes, symbols.SemanticChange{
				Type: symbols.ChangeParameterTypeChanged,
				Description: fmt.Sprintf("parameter %d (%s) type changed from %s to %s",
					i+1, after.Name, before.DeclaredType, after.DeclaredType),
				Impact:   "call sites pass values of the old type",
				Severity: symbols.SeverityCritical,
				Breaking: true,
			})
		}

		if before.Name != after.Name {
			changes = append(changes, symbols.SemanticChange{
				Type: symbols.ChangeParameterRenamed,
				Description: fmt.Sprintf("parameter %d renamed from %s to %s",
					i+1, before.Name, after.Name),
				Impact:   "named-argument call sites may break; positional calls are unaffected",
				Severity: symbols.SeverityMedium,
				Breaking: false,
			})
		}

		if before.Optional != after.Optional {
			if after.Optional {
				changes = append(changes, symbols.SemanticChange{
					Type:        symbols.ChangeParameterMadeOptional,
					Description: fmt.Sprintf("parameter %s became optional", after.Name),
					Impact:      "existing call sites keep working",
					Severity:    symbols.SeverityLow,
					Breaking:    false,
				})
			} else {
				changes = append(changes, symbols.SemanticChange{
					Type:        symbols.ChangeParameterMadeRequired,
					Description: fmt.Sprintf("parameter %s became required", after.Name),
					Impact:      "call sites omitting the argument now fail",
					Severity:    symbols.SeverityHigh,
					Breaking:    true,
				})
			}
		}
	}

	if old.ReturnType != current.ReturnType {
		changes = append(changes, symbols.SemanticChange{
			Type: symbols.ChangeReturnTypeChanged,
			Description: fmt.Sprintf("return type changed from %s to %s",
				old.ReturnType, current.ReturnType),
			Impact:   "callers consume a value of the old type",
			Severity: symbols.SeverityHigh,
			Breaking: true,
		})
	}

	if old.Async != current.Async {
		if current.Async {
			changes = append(changes, symbols.SemanticChange{
				Type:        symbols.ChangeMadeAsync,
				Description: "function became async",
				Impact:      "callers must await the result",
				Severity:    symbols.SeverityCritical,
				Breaking:    true,
			})
		} else {
			changes = append(changes, symbols.SemanticChange{
				Type:        symbols.ChangeMadeSync,
				Description: "function is no longer async",
				Impact:      "callers awaiting the result must adjust",
				Severity:    symbols.SeverityCritical,
				Breaking:    true,
			})
		}
	}

	return changes
}

// Score sums per-change severity contributions plus a +2 penalty per breaking
// change, clamped to [0, 10].
func Score(changes []symbols.SemanticChange) float64 {
	score := 0.0
	for _, change := range changes {
		switch change.Severity {
		case symbols.SeverityCritical:
			score += 4
		case symbols.SeverityHigh:
			score += 3
		case symbols.SeverityMedium:
			score += 2
		case symbols.SeverityLow:
			score += 1
		}
		if change.Breaking {
			score += 2
		}
	}
	return ClampScore(score)
}

func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// Recommendation picks the remediation message by priority: breaking and
// critical together outrank breaking-only, which outranks critical-only.
func Recommendation(changes []symbols.SemanticChange) string {
	breaking, critical := false, false
	for _, change := range changes {
		if change.Breaking {
			breaking = true
		}
		if change.Severity == symbols.SeverityCritical {
			critical = true
		}
	}

	switch {
	case breaking && critical:
		return "urgent: documentation no longer matches a breaking, behavior-changing signature; update immediately"
	case breaking:
		return "update documentation for breaking changes"
	case critical:
		return "update documentation for critical behavior changes"
	}
	return "signature changed; review documentation for accuracy"
}

// FreshnessScore derives the health aggregator's freshness component from
// drift output: 100 with no reports, degraded by the average drift score.
func FreshnessScore(reports []symbols.DriftReport) float64 {
	if len(reports) == 0 {
		return 100
	}
	var sum float64
	for _, report := range reports {
		sum += report.DriftScore
	}
	avg := sum / float64(len(reports))
	score := 100 - avg*10
	if score < 0 {
		return 0
	}
	return score
}
