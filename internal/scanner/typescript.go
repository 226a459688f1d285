// # internal/scanner/typescript.go
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"docwatch/internal/symbols"
)

const unknownType = "unknown"

// CodeScanner parses TypeScript and JavaScript sources with tree-sitter and
// walks the syntax tree for function, class and arrow-function symbols.
type CodeScanner struct {
	languages map[string]*sitter.Language
}

func NewCodeScanner() *CodeScanner {
	return &CodeScanner{
		languages: map[string]*sitter.Language{
			".ts":  sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			".tsx": sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			".js":  sitter.NewLanguage(tree_sitter_javascript.Language()),
			".jsx": sitter.NewLanguage(tree_sitter_javascript.Language()),
		},
	}
}

func (s *CodeScanner) Supports(path string) bool {
	_, ok := s.languages[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (s *CodeScanner) ScanFile(ctx context.Context, path string) (*symbols.ScanResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ScanSource(ctx, path, source)
}

func (s *CodeScanner) ScanSource(ctx context.Context, path string, source []byte) (*symbols.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	grammar := s.languages[ext]
	if grammar == nil {
		return nil, ErrUnsupportedFile
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Path: path, Err: ErrUnsupportedFile}
	}
	defer tree.Close()

	lang := symbols.LangJavaScript
	if ext == ".ts" || ext == ".tsx" {
		lang = symbols.LangTypeScript
	}

	result := &symbols.ScanResult{
		File:     path,
		Language: lang,
		Code:     &symbols.CodeScanResult{},
	}

	root := tree.RootNode()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		s.extractTopLevel(root.NamedChild(i), source, path, false, result.Code)
	}

	return result, nil
}

func (s *CodeScanner) extractTopLevel(node *sitter.Node, source []byte, path string, exported bool, out *symbols.CodeScanResult) {
	switch node.Kind() {
	case "export_statement":
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			s.extractTopLevel(decl, source, path, true, out)
		}
	case "function_declaration", "generator_function_declaration":
		fn := s.extractFunction(node, source, path, symbols.KindFunction, exported)
		out.Functions = append(out.Functions, fn)
	case "class_declaration", "abstract_class_declaration":
		out.Classes = append(out.Classes, s.extractClass(node, source, path, exported))
	case "lexical_declaration", "variable_declaration":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			decl := node.NamedChild(i)
			if decl.Kind() != "variable_declarator" {
				continue
			}
			value := decl.ChildByFieldName("value")
			if value == nil {
				continue
			}
			kind := symbols.KindArrow
			switch value.Kind() {
			case "arrow_function":
			case "function_expression", "function":
				kind = symbols.KindFunction
			default:
				continue
			}
			fn := s.extractFunction(value, source, path, kind, exported)
			if name := decl.ChildByFieldName("name"); name != nil {
				fn.Name = nodeText(name, source)
			}
			// The doc comment sits on the declaration statement, not the
			// initializer expression.
			if doc := leadingDocComment(node, source); doc != "" {
				fn.Documentation = doc
				fn.HasDocumentation = true
			}
			fn.Visibility = defaultVisibility(exported)
			out.Functions = append(out.Functions, fn)
		}
	}
}

func (s *CodeScanner) extractFunction(node *sitter.Node, source []byte, path string, kind symbols.FunctionKind, exported bool) symbols.FunctionSymbol {
	fn := symbols.FunctionSymbol{
		Name:       "anonymous",
		Kind:       kind,
		ReturnType: unknownType,
		Exported:   exported,
		Async:      hasKeywordChild(node, "async"),
		Visibility: defaultVisibility(exported),
		Location: symbols.Location{
			File:      path,
			StartLine: int(node.StartPosition().Row) + 1,
			EndLine:   int(node.EndPosition().Row) + 1,
		},
	}

	if name := node.ChildByFieldName("name"); name != nil {
		fn.Name = nodeText(name, source)
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Parameters = extractParameters(params, source)
	} else if param := node.ChildByFieldName("parameter"); param != nil {
		// Single-parameter arrow function without parentheses.
		fn.Parameters = []symbols.ParameterSymbol{{
			Name:         nodeText(param, source),
			DeclaredType: unknownType,
		}}
	}

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.ReturnType = annotationText(ret, source)
	}

	if doc := leadingDocComment(node, source); doc != "" {
		fn.Documentation = doc
		fn.HasDocumentation = true
	}

	fn.Complexity = symbols.Complexity{
		LinesOfCode: fn.Location.EndLine - fn.Location.StartLine + 1,
		Cyclomatic:  cyclomaticComplexity(node.ChildByFieldName("body"), source),
	}

	return fn
}

func (s *CodeScanner) extractClass(node *sitter.Node, source []byte, path string, exported bool) symbols.ClassSymbol {
	cls := symbols.ClassSymbol{
		Name:     "anonymous",
		Exported: exported,
		Location: symbols.Location{
			File:      path,
			StartLine: int(node.StartPosition().Row) + 1,
			EndLine:   int(node.EndPosition().Row) + 1,
		},
	}

	if name := node.ChildByFieldName("name"); name != nil {
		cls.Name = nodeText(name, source)
	}
	if doc := leadingDocComment(node, source); doc != "" {
		cls.Documentation = doc
		cls.HasDocumentation = true
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		switch member.Kind() {
		case "method_definition", "abstract_method_signature":
			method := s.extractFunction(member, source, path, symbols.KindMethod, exported)
			method.Visibility = memberVisibility(member, source, exported)
			cls.Methods = append(cls.Methods, method)
		case "public_field_definition", "field_definition", "property_signature":
			prop := symbols.PropertySymbol{
				Name:         "anonymous",
				DeclaredType: unknownType,
				Visibility:   memberVisibility(member, source, exported),
				Line:         int(member.StartPosition().Row) + 1,
			}
			if name := member.ChildByFieldName("name"); name != nil {
				prop.Name = nodeText(name, source)
			}
			if typ := member.ChildByFieldName("type"); typ != nil {
				prop.DeclaredType = annotationText(typ, source)
			}
			cls.Properties = append(cls.Properties, prop)
		}
	}

	return cls
}

func extractParameters(params *sitter.Node, source []byte) []symbols.ParameterSymbol {
	var out []symbols.ParameterSymbol
	for i := uint(0); i < params.NamedChildCount(); i++ {
		node := params.NamedChild(i)
		param := symbols.ParameterSymbol{DeclaredType: unknownType}

		switch node.Kind() {
		case "required_parameter", "optional_parameter":
			if pattern := node.ChildByFieldName("pattern"); pattern != nil {
				param.Name = nodeText(pattern, source)
			}
			if typ := node.ChildByFieldName("type"); typ != nil {
				param.DeclaredType = annotationText(typ, source)
			}
			if value := node.ChildByFieldName("value"); value != nil {
				param.DefaultValueText = nodeText(value, source)
				param.Optional = true
			}
			if node.Kind() == "optional_parameter" {
				param.Optional = true
			}
		case "identifier":
			param.Name = nodeText(node, source)
		case "assignment_pattern":
			if left := node.ChildByFieldName("left"); left != nil {
				param.Name = nodeText(left, source)
			}
			if right := node.ChildByFieldName("right"); right != nil {
				param.DefaultValueText = nodeText(right, source)
			}
			param.Optional = true
		case "rest_pattern":
			param.Name = nodeText(node, source)
		default:
			// Destructuring patterns keep their raw text as the name.
			param.Name = nodeText(node, source)
		}

		if param.Name == "" {
			continue
		}
		out = append(out, param)
	}
	return out
}

// cyclomaticComplexity walks the function body depth-first with a baseline of
// 1, incrementing for every branching construct and short-circuit operator.
func cyclomaticComplexity(body *sitter.Node, source []byte) int {
	complexity := 1
	if body == nil {
		return complexity
	}

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Kind() {
		case "if_statement", "for_statement", "for_in_statement",
			"while_statement", "do_statement", "switch_case",
			"catch_clause", "ternary_expression":
			complexity++
		case "binary_expression":
			if op := node.ChildByFieldName("operator"); op != nil {
				switch nodeText(op, source) {
				case "&&", "||":
					complexity++
				}
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(body)
	return complexity
}

// leadingDocComment finds the block comment attached directly above the node,
// skipping plain comments; the first comment opening with "/**" wins. For
// exported declarations the comment precedes the export statement.
func leadingDocComment(node *sitter.Node, source []byte) string {
	if parent := node.Parent(); parent != nil && parent.Kind() == "export_statement" {
		node = parent
	}
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Kind() != "comment" {
			return ""
		}
		text := nodeText(prev, source)
		if strings.HasPrefix(text, "/**") {
			return text
		}
	}
	return ""
}

func memberVisibility(member *sitter.Node, source []byte, classExported bool) symbols.Visibility {
	for i := uint(0); i < member.ChildCount(); i++ {
		child := member.Child(i)
		if child.Kind() != "accessibility_modifier" {
			continue
		}
		switch nodeText(child, source) {
		case "public":
			return symbols.VisibilityPublic
		case "private":
			return symbols.VisibilityPrivate
		case "protected":
			return symbols.VisibilityProtected
		}
	}
	return defaultVisibility(classExported)
}

func defaultVisibility(exported bool) symbols.Visibility {
	if exported {
		return symbols.VisibilityPublic
	}
	return symbols.VisibilityInternal
}

func hasKeywordChild(node *sitter.Node, keyword string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == keyword {
			return true
		}
	}
	return false
}

// annotationText strips the leading ":" from a type annotation node.
func annotationText(node *sitter.Node, source []byte) string {
	text := strings.TrimSpace(nodeText(node, source))
	text = strings.TrimSpace(strings.TrimPrefix(text, ":"))
	if text == "" {
		return unknownType
	}
	return text
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
