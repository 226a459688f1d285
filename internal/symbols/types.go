// # internal/symbols/types.go
package symbols

import "time"

type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangMarkdown   Language = "markdown"
)

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
	VisibilityInternal  Visibility = "internal"
)

type FunctionKind string

const (
	KindFunction FunctionKind = "function"
	KindMethod   FunctionKind = "method"
	KindArrow    FunctionKind = "arrow"
)

type Location struct {
	File      string
	StartLine int
	EndLine   int
}

type Complexity struct {
	LinesOfCode int
	Cyclomatic  int
}

type ParameterSymbol struct {
	Name             string
	DeclaredType     string // free-form annotation text, "unknown" when absent
	Optional         bool
	DefaultValueText string
}

type FunctionSymbol struct {
	Name             string
	Kind             FunctionKind
	Parameters       []ParameterSymbol // positional order preserved from source
	ReturnType       string
	HasDocumentation bool
	Documentation    string
	Exported         bool
	Async            bool
	Visibility       Visibility
	Location         Location
	Complexity       Complexity
}

type PropertySymbol struct {
	Name         string
	DeclaredType string
	Visibility   Visibility
	Line         int
}

type ClassSymbol struct {
	Name             string
	Methods          []FunctionSymbol
	Properties       []PropertySymbol
	HasDocumentation bool
	Documentation    string
	Exported         bool
	Location         Location
}

// SectionSymbol is a markdown heading with its nested subsections. The tree is
// reconstructed from the flat heading sequence by stack-based nesting on level.
type SectionSymbol struct {
	Level       int // 1-6
	Title       string
	Content     string
	Line        int
	Subsections []*SectionSymbol
}

type LinkKind string

const (
	LinkInternal LinkKind = "internal"
	LinkExternal LinkKind = "external"
)

type Link struct {
	Text string
	URL  string
	Kind LinkKind
	Line int
}

type CodeBlock struct {
	Language string
	Text     string
	Line     int
}

type ReferenceKind string

const (
	RefFunction ReferenceKind = "function"
	RefMethod   ReferenceKind = "method"
	RefClass    ReferenceKind = "class"
	RefType     ReferenceKind = "type"
	RefPossible ReferenceKind = "possible"
)

type CodeReference struct {
	Name string
	Kind ReferenceKind
	Line int
}

type DocumentMetadata struct {
	Title       string
	FrontMatter map[string]any
}

type CodeScanResult struct {
	Functions []FunctionSymbol
	Classes   []ClassSymbol
}

type MarkdownScanResult struct {
	Sections       []*SectionSymbol
	Links          []Link
	CodeBlocks     []CodeBlock
	CodeReferences []CodeReference
	Metadata       DocumentMetadata
}

// ScanResult is a discriminated union over Language: Code is set for
// typescript/javascript/python, Markdown for markdown. Consumers branch on
// Language, never on which pointer happens to be non-nil.
type ScanResult struct {
	File     string
	Language Language
	Code     *CodeScanResult
	Markdown *MarkdownScanResult
}

func (r *ScanResult) IsCode() bool {
	switch r.Language {
	case LangTypeScript, LangJavaScript, LangPython:
		return true
	}
	return false
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type DebtIssue struct {
	File         string
	FunctionName string
	Severity     Severity
	Priority     int // 0-100
	Reason       string
	Suggestion   string
}

type ChangeType string

const (
	ChangeParameterAdded        ChangeType = "parameter_added"
	ChangeParameterRemoved      ChangeType = "parameter_removed"
	ChangeParameterTypeChanged  ChangeType = "parameter_type_changed"
	ChangeParameterRenamed      ChangeType = "parameter_renamed"
	ChangeParameterMadeOptional ChangeType = "parameter_made_optional"
	ChangeParameterMadeRequired ChangeType = "parameter_made_required"
	ChangeReturnTypeChanged     ChangeType = "return_type_changed"
	ChangeMadeAsync             ChangeType = "made_async"
	ChangeMadeSync              ChangeType = "made_sync"
)

type SemanticChange struct {
	Type        ChangeType
	Description string
	Impact      string
	Severity    Severity
	Breaking    bool
}

type DriftReport struct {
	File           string
	FunctionName   string
	DriftScore     float64 // clamped to [0, 10]
	LastCodeChange time.Time
	LastDocUpdate  time.Time
	Changes        []SemanticChange
	Recommendation string
}

type HealthReport struct {
	OverallScore   int
	Coverage       float64
	Freshness      float64
	Accuracy       float64
	Completeness   float64
	TotalFunctions int
	Documented     int
	Issues         []DebtIssue
	Drift          []DriftReport
	GeneratedAt    time.Time
	RunID          string
}
