// # internal/scanner/python.go
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docwatch/internal/symbols"
)

// PythonScanner is line-oriented and regex-driven rather than a full grammar.
// Class context is tracked by indentation: a def nested deeper than the
// enclosing class line is a method. Tabs count as one column and docstrings
// are only recognized directly after the signature; both are known
// limitations recorded in the tests.
type PythonScanner struct{}

func NewPythonScanner() *PythonScanner { return &PythonScanner{} }

var (
	pyDefRe    = regexp.MustCompile(`^(\s*)(async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe  = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)`)
	pyReturnRe = regexp.MustCompile(`->\s*([^:]+?)\s*:`)
	pyBranchRe = regexp.MustCompile(`\b(if|elif|for|while|except)\b`)
	pyBoolOpRe = regexp.MustCompile(`\b(and|or)\b`)
)

func (s *PythonScanner) Supports(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".py"
}

func (s *PythonScanner) ScanFile(ctx context.Context, path string) (*symbols.ScanResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ScanSource(ctx, path, source)
}

func (s *PythonScanner) ScanSource(ctx context.Context, path string, source []byte) (*symbols.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &symbols.ScanResult{
		File:     path,
		Language: symbols.LangPython,
		Code:     &symbols.CodeScanResult{},
	}

	lines := strings.Split(string(source), "\n")

	// Stack of enclosing classes, identified by index into result.Code.Classes
	// so method appends survive slice growth.
	type classFrame struct {
		indent int
		index  int
	}
	var stack []classFrame

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			indent := indentWidth(m[1])
			for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
				stack = stack[:len(stack)-1]
			}

			name := m[2]
			doc := extractDocstring(lines, i+1)
			end := blockEnd(lines, i, indent)
			cls := symbols.ClassSymbol{
				Name:             name,
				HasDocumentation: doc != "",
				Documentation:    doc,
				Exported:         !strings.HasPrefix(name, "_"),
				Location: symbols.Location{
					File:      path,
					StartLine: i + 1,
					EndLine:   end + 1,
				},
			}
			result.Code.Classes = append(result.Code.Classes, cls)
			stack = append(stack, classFrame{indent: indent, index: len(result.Code.Classes) - 1})
			continue
		}

		m := pyDefRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		indent := indentWidth(m[1])
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		isMethod := len(stack) > 0

		name := m[3]
		paramText, sigEnd := collectSignature(lines, i)
		doc := extractDocstring(lines, sigEnd+1)
		end := blockEnd(lines, i, indent)

		visibility := symbols.VisibilityPublic
		if strings.HasPrefix(name, "_") {
			visibility = symbols.VisibilityPrivate
		}

		kind := symbols.KindFunction
		if isMethod {
			kind = symbols.KindMethod
		}

		returnType := unknownType
		if rm := pyReturnRe.FindStringSubmatch(lines[sigEnd]); rm != nil {
			returnType = strings.TrimSpace(rm[1])
		}

		fn := symbols.FunctionSymbol{
			Name:             name,
			Kind:             kind,
			Parameters:       parsePythonParams(paramText, isMethod),
			ReturnType:       returnType,
			HasDocumentation: doc != "",
			Documentation:    doc,
			Exported:         visibility == symbols.VisibilityPublic,
			Async:            strings.TrimSpace(m[2]) == "async",
			Visibility:       visibility,
			Location: symbols.Location{
				File:      path,
				StartLine: i + 1,
				EndLine:   end + 1,
			},
		}
		fn.Complexity = symbols.Complexity{
			LinesOfCode: fn.Location.EndLine - fn.Location.StartLine + 1,
			Cyclomatic:  pythonComplexity(lines, sigEnd+1, end),
		}

		if isMethod {
			top := stack[len(stack)-1]
			result.Code.Classes[top.index].Methods = append(result.Code.Classes[top.index].Methods, fn)
		} else {
			result.Code.Functions = append(result.Code.Functions, fn)
		}

		i = sigEnd
	}

	return result, nil
}

// indentWidth counts leading whitespace runes; tabs count as one column.
func indentWidth(prefix string) int {
	return len([]rune(prefix))
}

// collectSignature joins continuation lines until the parameter list's parens
// balance, returning the raw text between them and the line index holding the
// closing paren.
func collectSignature(lines []string, start int) (string, int) {
	depth := 0
	var b strings.Builder
	collecting := false

	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '(':
				depth++
				if depth == 1 {
					collecting = true
					continue
				}
			case ')':
				depth--
				if depth == 0 {
					return b.String(), i
				}
			}
			if collecting {
				b.WriteRune(r)
			}
		}
		if collecting {
			b.WriteRune(' ')
		}
	}
	return b.String(), start
}

// parsePythonParams splits the raw parameter text on top-level commas and
// applies the name[: type][= default] pattern. self and cls receivers are
// elided, as are the bare * and / separators.
func parsePythonParams(raw string, isMethod bool) []symbols.ParameterSymbol {
	var out []symbols.ParameterSymbol
	for idx, part := range splitTopLevel(raw, ',') {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" || part == "/" {
			continue
		}

		name := part
		declaredType := ""
		defaultText := ""

		if eq := indexTopLevel(part, '='); eq >= 0 {
			defaultText = strings.TrimSpace(part[eq+1:])
			name = strings.TrimSpace(part[:eq])
		}
		if colon := indexTopLevel(name, ':'); colon >= 0 {
			declaredType = strings.TrimSpace(name[colon+1:])
			name = strings.TrimSpace(name[:colon])
		}

		name = strings.TrimLeft(name, "*")
		if name == "" {
			continue
		}
		if isMethod && idx == 0 && (name == "self" || name == "cls") {
			continue
		}

		if declaredType == "" {
			declaredType = unknownType
		}
		out = append(out, symbols.ParameterSymbol{
			Name:             name,
			DeclaredType:     declaredType,
			Optional:         defaultText != "",
			DefaultValueText: defaultText,
		})
	}
	return out
}

func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	var quote rune
	last := 0
	runes := []rune(s)
	for i, r := range runes {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, string(runes[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, string(runes[last:]))
	return parts
}

func indexTopLevel(s string, sep rune) int {
	depth := 0
	var quote rune
	for i, r := range s {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// extractDocstring detects a triple-quoted string immediately following the
// signature (single- or multi-line) and returns its inner text.
func extractDocstring(lines []string, start int) string {
	i := start
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return ""
	}

	trimmed := strings.TrimSpace(lines[i])
	var delim string
	switch {
	case strings.HasPrefix(trimmed, `"""`):
		delim = `"""`
	case strings.HasPrefix(trimmed, "'''"):
		delim = "'''"
	default:
		return ""
	}

	rest := trimmed[len(delim):]
	if end := strings.Index(rest, delim); end >= 0 {
		return strings.TrimSpace(rest[:end])
	}

	var b strings.Builder
	b.WriteString(rest)
	for j := i + 1; j < len(lines); j++ {
		line := lines[j]
		if end := strings.Index(line, delim); end >= 0 {
			b.WriteString("\n")
			b.WriteString(line[:end])
			return strings.TrimSpace(b.String())
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return strings.TrimSpace(b.String())
}

// blockEnd scans forward until a non-blank line at or below the definition's
// indentation, returning the index of the last body line.
func blockEnd(lines []string, defLine, defIndent int) int {
	end := defLine
	for i := defLine + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		indent := indentWidth(lines[i][:len(lines[i])-len(strings.TrimLeft(lines[i], " \t"))])
		if indent <= defIndent {
			return end
		}
		end = i
	}
	return end
}

func pythonComplexity(lines []string, start, end int) int {
	complexity := 1
	for i := start; i <= end && i < len(lines); i++ {
		line := lines[i]
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		complexity += len(pyBranchRe.FindAllString(line, -1))
		complexity += len(pyBoolOpRe.FindAllString(line, -1))
	}
	return complexity
}
