// # internal/scanner/markdown_test.go
package scanner

import (
	"context"
	"strings"
	"testing"

	"docwatch/internal/symbols"
)

const markdownFixture = `---
title: API Guide
version: 2
---

# Overview

Call ` + "`getUser()`" + ` before ` + "`UserService.refresh()`" + ` and keep the userCache warm.

## Installation

See [the setup notes](./setup.md) and [upstream docs](https://example.com/docs).

` + "```ts\nconst x = 1;\n```" + `

## Usage

### Advanced

Internals live in ` + "`Repository`" + `.

## FAQ

Jump to [overview](#overview).
`

func scanMarkdown(t *testing.T, source string) *symbols.MarkdownScanResult {
	t.Helper()
	result, err := NewMarkdownScanner().ScanSource(context.Background(), "guide.md", []byte(source))
	if err != nil {
		t.Fatalf("ScanSource: %v", err)
	}
	return result.Markdown
}

func TestMarkdownSectionHierarchy(t *testing.T) {
	md := scanMarkdown(t, markdownFixture)

	if got := len(md.Sections); got != 1 {
		t.Fatalf("got %d top-level sections, want 1", got)
	}
	overview := md.Sections[0]
	if overview.Level != 1 || overview.Title != "Overview" {
		t.Fatalf("root section = %+v", overview)
	}

	var titles []string
	for _, sub := range overview.Subsections {
		titles = append(titles, sub.Title)
	}
	if strings.Join(titles, ",") != "Installation,Usage,FAQ" {
		t.Fatalf("h2 sequence = %v", titles)
	}

	usage := overview.Subsections[1]
	if len(usage.Subsections) != 1 || usage.Subsections[0].Title != "Advanced" {
		t.Errorf("Advanced should nest under Usage, got %+v", usage.Subsections)
	}

	install := overview.Subsections[0]
	if !strings.Contains(install.Content, "setup notes") {
		t.Errorf("Installation content not sliced: %q", install.Content)
	}
	if strings.Contains(install.Content, "Advanced") {
		t.Error("section content must stop at the next heading")
	}
}

func TestMarkdownFrontMatter(t *testing.T) {
	md := scanMarkdown(t, markdownFixture)

	if md.Metadata.Title != "API Guide" {
		t.Errorf("title = %q, want front matter title", md.Metadata.Title)
	}
	if v, ok := md.Metadata.FrontMatter["version"]; !ok || v != 2 {
		t.Errorf("front matter version = %v", v)
	}
}

func TestMarkdownTitleFallsBackToFirstHeading(t *testing.T) {
	md := scanMarkdown(t, "# Fallback Title\n\nBody.\n")
	if md.Metadata.Title != "Fallback Title" {
		t.Errorf("title = %q", md.Metadata.Title)
	}
}

func TestMarkdownLinks(t *testing.T) {
	md := scanMarkdown(t, markdownFixture)

	kinds := map[string]symbols.LinkKind{}
	for _, link := range md.Links {
		kinds[link.URL] = link.Kind
	}
	if kinds["./setup.md"] != symbols.LinkInternal {
		t.Error("relative link should be internal")
	}
	if kinds["https://example.com/docs"] != symbols.LinkExternal {
		t.Error("https link should be external")
	}
	if kinds["#overview"] != symbols.LinkInternal {
		t.Error("anchor link should be internal")
	}
}

func TestMarkdownCodeBlocks(t *testing.T) {
	md := scanMarkdown(t, markdownFixture)

	if got := len(md.CodeBlocks); got != 1 {
		t.Fatalf("got %d code blocks, want 1", got)
	}
	block := md.CodeBlocks[0]
	if block.Language != "ts" {
		t.Errorf("block language = %q", block.Language)
	}
	if !strings.Contains(block.Text, "const x = 1;") {
		t.Errorf("block text = %q", block.Text)
	}
}

func TestMarkdownCodeReferences(t *testing.T) {
	md := scanMarkdown(t, markdownFixture)

	byName := map[string]symbols.ReferenceKind{}
	for _, ref := range md.CodeReferences {
		byName[ref.Name] = ref.Kind
	}

	if byName["getUser"] != symbols.RefFunction {
		t.Errorf("getUser kind = %s, want function", byName["getUser"])
	}
	if byName["UserService.refresh()"] != symbols.RefMethod {
		t.Errorf("UserService.refresh() kind = %s, want method", byName["UserService.refresh()"])
	}
	if byName["Repository"] != symbols.RefClass {
		t.Errorf("Repository kind = %s, want class", byName["Repository"])
	}
	if byName["userCache"] != symbols.RefPossible {
		t.Errorf("camelCase prose token should be a possible reference, got %s", byName["userCache"])
	}
	if _, ok := byName["FAQ"]; ok {
		t.Error("all-caps prose tokens must not be flagged")
	}
}

func TestClassifyCodeSpan(t *testing.T) {
	tests := []struct {
		span string
		name string
		kind symbols.ReferenceKind
	}{
		{"Repository", "Repository", symbols.RefClass},
		{"UserService", "UserService", symbols.RefClass},
		{"getUser()", "getUser", symbols.RefFunction},
		{"cache.get()", "cache.get()", symbols.RefMethod},
		{"userCache", "userCache", symbols.RefType},
		{"retry_count", "retry_count", symbols.RefType},
	}
	for _, tt := range tests {
		ref, ok := classifyCodeSpan(tt.span)
		if !ok {
			t.Errorf("classifyCodeSpan(%q) not recognized", tt.span)
			continue
		}
		if ref.Name != tt.name || ref.Kind != tt.kind {
			t.Errorf("classifyCodeSpan(%q) = %s/%s, want %s/%s", tt.span, ref.Name, ref.Kind, tt.name, tt.kind)
		}
	}

	if _, ok := classifyCodeSpan("not an identifier"); ok {
		t.Error("spans with spaces must not classify")
	}

	// The looser class rule applies only inside code spans. A capitalized
	// prose word still needs a second hump to count as a possible reference.
	if isPossibleCodeReference("However") {
		t.Error("single-hump prose words must not be flagged")
	}
	if !isPossibleCodeReference("UserService") {
		t.Error("multi-hump prose tokens should stay flagged")
	}
}

func TestMarkdownNoFrontMatter(t *testing.T) {
	md := scanMarkdown(t, "# Plain\n\nNo metadata here.\n")
	if md.Metadata.FrontMatter != nil {
		t.Errorf("front matter = %v, want nil", md.Metadata.FrontMatter)
	}
}
