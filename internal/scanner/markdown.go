// # internal/scanner/markdown.go
package scanner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"docwatch/internal/symbols"
)

// MarkdownScanner parses prose documents into a goldmark tree (GFM tables and
// task lists enabled) and collects headings, links, fenced code blocks and
// code references. YAML front matter is split off before parsing.
type MarkdownScanner struct {
	md goldmark.Markdown
}

func NewMarkdownScanner() *MarkdownScanner {
	return &MarkdownScanner{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

var (
	mdMethodRefRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*\.[A-Za-z_$][\w$]*\(\)$`)
	mdFuncRefRe   = regexp.MustCompile(`^[A-Za-z_$][\w$]*\(\)$`)
	mdPascalRe    = regexp.MustCompile(`^[A-Z][a-z0-9]+(?:[A-Z][A-Za-z0-9]*)+$`)
	mdClassRefRe  = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	mdIdentRe     = regexp.MustCompile(`^[A-Za-z_]\w*$`)
	mdCamelRe     = regexp.MustCompile(`^[a-z][a-z0-9]*(?:[A-Z][A-Za-z0-9]*)+$`)
	mdTokenRe     = regexp.MustCompile(`[A-Za-z_][\w$]*`)
)

// Common acronyms that look like code identifiers in prose but are not.
var proseStoplist = map[string]bool{
	"API": true, "CLI": true, "CSS": true, "DNS": true, "GFM": true,
	"HTML": true, "HTTP": true, "HTTPS": true, "ID": true, "JSON": true,
	"OK": true, "REST": true, "SQL": true, "TCP": true, "TODO": true,
	"UI": true, "URL": true, "UUID": true, "XML": true, "YAML": true,
}

func (s *MarkdownScanner) Supports(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".md"
}

func (s *MarkdownScanner) ScanFile(ctx context.Context, path string) (*symbols.ScanResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ScanSource(ctx, path, source)
}

func (s *MarkdownScanner) ScanSource(ctx context.Context, path string, source []byte) (*symbols.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frontMatter, body, lineOffset := splitFrontMatter(source)

	result := &symbols.ScanResult{
		File:     path,
		Language: symbols.LangMarkdown,
		Markdown: &symbols.MarkdownScanResult{
			Metadata: symbols.DocumentMetadata{FrontMatter: frontMatter},
		},
	}
	out := result.Markdown

	if title, ok := frontMatter["title"].(string); ok {
		out.Metadata.Title = title
	}

	doc := s.md.Parser().Parse(text.NewReader(body))
	lineStarts := lineStartOffsets(body)

	// Flat heading list first; the tree is rebuilt below and content slices
	// are cut between consecutive heading lines.
	type headingAt struct {
		section *symbols.SectionSymbol
		line    int // 0-based within body
	}
	var headings []headingAt

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			line := nodeLine(n, body)
			section := &symbols.SectionSymbol{
				Level: node.Level,
				Title: string(node.Text(body)),
				Line:  line + lineOffset + 1,
			}
			headings = append(headings, headingAt{section: section, line: line})

		case *ast.FencedCodeBlock:
			block := symbols.CodeBlock{
				Language: string(node.Language(body)),
				Line:     nodeLine(n, body) + lineOffset + 1,
			}
			var b bytes.Buffer
			for i := 0; i < node.Lines().Len(); i++ {
				seg := node.Lines().At(i)
				b.Write(seg.Value(body))
			}
			block.Text = b.String()
			out.CodeBlocks = append(out.CodeBlocks, block)

		case *ast.Link:
			url := string(node.Destination)
			out.Links = append(out.Links, symbols.Link{
				Text: string(node.Text(body)),
				URL:  url,
				Kind: classifyLink(url),
				Line: nodeLine(n, body) + lineOffset + 1,
			})

		case *ast.AutoLink:
			url := string(node.URL(body))
			out.Links = append(out.Links, symbols.Link{
				Text: url,
				URL:  url,
				Kind: classifyLink(url),
				Line: nodeLine(n, body) + lineOffset + 1,
			})

		case *ast.CodeSpan:
			span := string(node.Text(body))
			if ref, ok := classifyCodeSpan(span); ok {
				ref.Line = nodeLine(n, body) + lineOffset + 1
				out.CodeReferences = append(out.CodeReferences, ref)
			}
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if insideCodeSpan(n) {
				break
			}
			line := nodeLine(n, body) + lineOffset + 1
			for _, token := range mdTokenRe.FindAllString(string(node.Segment.Value(body)), -1) {
				if !isPossibleCodeReference(token) {
					continue
				}
				out.CodeReferences = append(out.CodeReferences, symbols.CodeReference{
					Name: token,
					Kind: symbols.RefPossible,
					Line: line,
				})
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	// Content of a section runs from the line after its heading to the line
	// of the next heading at any level.
	for i := range headings {
		start := headings[i].line + 1
		end := len(lineStarts)
		if i+1 < len(headings) {
			end = headings[i+1].line
		}
		headings[i].section.Content = sliceLines(body, lineStarts, start, end)
	}

	// Stack-based nesting: pop ancestors whose level is >= the incoming
	// heading's level before attaching.
	var stack []*symbols.SectionSymbol
	for _, h := range headings {
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.section.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			out.Sections = append(out.Sections, h.section)
		} else {
			parent := stack[len(stack)-1]
			parent.Subsections = append(parent.Subsections, h.section)
		}
		stack = append(stack, h.section)

		if out.Metadata.Title == "" && h.section.Level == 1 {
			out.Metadata.Title = h.section.Title
		}
	}

	return result, nil
}

// splitFrontMatter detaches a leading YAML front matter block. Returns the
// decoded mapping (nil when absent), the remaining body, and the number of
// source lines consumed.
func splitFrontMatter(source []byte) (map[string]any, []byte, int) {
	if !bytes.HasPrefix(source, []byte("---\n")) && !bytes.HasPrefix(source, []byte("---\r\n")) {
		return nil, source, 0
	}

	rest := source[bytes.IndexByte(source, '\n')+1:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, source, 0
	}
	block := rest[:end]

	bodyStart := end + 1
	if nl := bytes.IndexByte(rest[bodyStart:], '\n'); nl >= 0 {
		bodyStart += nl + 1
	} else {
		bodyStart = len(rest)
	}

	var fm map[string]any
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, source, 0
	}

	consumed := bytes.Count(source[:len(source)-len(rest)+bodyStart], []byte("\n"))
	return fm, rest[bodyStart:], consumed
}

func classifyLink(url string) symbols.LinkKind {
	switch {
	case url == "":
		return symbols.LinkInternal
	case strings.HasPrefix(url, "#"),
		strings.HasPrefix(url, "/"),
		strings.HasPrefix(url, "./"),
		strings.HasPrefix(url, "../"):
		return symbols.LinkInternal
	case strings.HasPrefix(url, "mailto:"), strings.Contains(url, "://"):
		return symbols.LinkExternal
	}
	return symbols.LinkInternal
}

// classifyCodeSpan maps an inline code span to a typed code reference:
// name() is a function, Object.method() a method, a leading-capital
// identifier a class, and any other bare identifier a type reference.
// Inside a code span a single-hump name like Repository is already an
// explicit reference, so the class check is looser than the prose-side
// multi-hump mdPascalRe.
func classifyCodeSpan(span string) (symbols.CodeReference, bool) {
	span = strings.TrimSpace(span)
	switch {
	case mdMethodRefRe.MatchString(span):
		return symbols.CodeReference{Name: span, Kind: symbols.RefMethod}, true
	case mdFuncRefRe.MatchString(span):
		return symbols.CodeReference{Name: strings.TrimSuffix(span, "()"), Kind: symbols.RefFunction}, true
	case mdClassRefRe.MatchString(span):
		return symbols.CodeReference{Name: span, Kind: symbols.RefClass}, true
	case mdIdentRe.MatchString(span):
		return symbols.CodeReference{Name: span, Kind: symbols.RefType}, true
	}
	return symbols.CodeReference{}, false
}

// isPossibleCodeReference flags camelCase/PascalCase prose tokens as weak
// code-reference signals, skipping all-caps tokens and the acronym stoplist.
func isPossibleCodeReference(token string) bool {
	if proseStoplist[token] || token == strings.ToUpper(token) {
		return false
	}
	return mdCamelRe.MatchString(token) || mdPascalRe.MatchString(token)
}

func insideCodeSpan(n ast.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == ast.KindCodeSpan {
			return true
		}
	}
	return false
}

func lineStartOffsets(source []byte) []int {
	offsets := []int{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// nodeLine returns the 0-based line of a node, walking up to the nearest
// ancestor that carries line segments when the node itself has none.
func nodeLine(n ast.Node, source []byte) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if t, ok := cur.(*ast.Text); ok {
			return bytes.Count(source[:t.Segment.Start], []byte("\n"))
		}
		if cur.Type() == ast.TypeBlock && cur.Lines().Len() > 0 {
			seg := cur.Lines().At(0)
			return bytes.Count(source[:seg.Start], []byte("\n"))
		}
	}
	return 0
}

func sliceLines(source []byte, lineStarts []int, startLine, endLine int) string {
	if startLine >= len(lineStarts) {
		return ""
	}
	start := lineStarts[startLine]
	end := len(source)
	if endLine < len(lineStarts) {
		end = lineStarts[endLine]
	}
	return strings.TrimSpace(string(source[start:end]))
}
