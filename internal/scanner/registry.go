// # internal/scanner/registry.go
package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"docwatch/internal/shared/observability"
	"docwatch/internal/symbols"
)

// Registration binds a set of file extensions to one scanner instance.
type Registration struct {
	Extensions []string
	Scanner    Scanner
}

// Registry maps normalized lowercase file extensions to scanner instances.
// It is an explicit value passed through the call chain, not process-global
// state; tests build isolated registries via WithRegistrations.
type Registry struct {
	byExt map[string]Scanner
}

func NewRegistry(regs ...Registration) *Registry {
	r := &Registry{byExt: make(map[string]Scanner)}
	return r.WithRegistrations(regs...)
}

// DefaultRegistry wires the three production scanners: tree-sitter for
// TypeScript/JavaScript, the line-based Python scanner, and the markdown
// prose scanner.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Registration{Extensions: []string{".ts", ".tsx", ".js", ".jsx"}, Scanner: NewCodeScanner()},
		Registration{Extensions: []string{".py"}, Scanner: NewPythonScanner()},
		Registration{Extensions: []string{".md"}, Scanner: NewMarkdownScanner()},
	)
}

// WithRegistrations returns a copy of the registry with the given bindings
// added. Later registrations win on extension conflicts.
func (r *Registry) WithRegistrations(regs ...Registration) *Registry {
	next := &Registry{byExt: make(map[string]Scanner, len(r.byExt)+len(regs))}
	for ext, sc := range r.byExt {
		next.byExt[ext] = sc
	}
	for _, reg := range regs {
		for _, ext := range reg.Extensions {
			ext = normalizeExt(ext)
			if ext == "" {
				continue
			}
			next.byExt[ext] = reg.Scanner
		}
	}
	return next
}

// ScannerFor returns the scanner owning the path's extension, or nil when the
// extension is unknown. It never fails.
func (r *Registry) ScannerFor(path string) Scanner {
	return r.byExt[normalizeExt(filepath.Ext(path))]
}

func (r *Registry) IsSupported(path string) bool {
	return r.ScannerFor(path) != nil
}

// ScanFile dispatches to the scanner owning the path's extension and records
// per-language scan metrics.
func (r *Registry) ScanFile(ctx context.Context, path string) (*symbols.ScanResult, error) {
	sc := r.ScannerFor(path)
	if sc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	start := time.Now()
	result, err := sc.ScanFile(ctx, path)
	if err != nil {
		return nil, err
	}
	observability.ScanDuration.WithLabelValues(string(result.Language)).Observe(time.Since(start).Seconds())
	observability.FilesScannedTotal.Inc()
	return result, nil
}

func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(strings.ToLower(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
