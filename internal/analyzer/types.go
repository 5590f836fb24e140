package analyzer

// ArgKind classifies how a parameter is passed.
type ArgKind string

const (
	ArgPositional        ArgKind = "positional"
	ArgVariadicPositional ArgKind = "variadic_positional"
	ArgKeywordOnly       ArgKind = "keyword_only"
	ArgVariadicKeyword   ArgKind = "variadic_keyword"
)

// ArgumentSpec describes one parameter of a callable.
type ArgumentSpec struct {
	Name string
	// Type is the textual rendering of the declared annotation.
	// Empty string means the parameter is unannotated.
	Type string
	Kind ArgKind
}

// CallableSignature is the normalized description of a function or method.
// Instances are immutable after extraction.
type CallableSignature struct {
	Name       string
	Arguments  []ArgumentSpec
	ReturnType string // empty if undeclared
	Docstring  string // empty if absent
	StartLine  int
	EndLine    int
	IsAsync    bool
}

// ClassSignature describes a class definition and its direct-body methods.
// Nested classes keep their own methods; nothing is flattened upward.
type ClassSignature struct {
	Name      string
	BaseNames []string // declared parents in order, rendered to text, not resolved
	Docstring string
	Methods   []CallableSignature
	StartLine int
	EndLine   int
}

// AnalysisResult is the root output of Extract. Ordering of both slices
// follows pre-order discovery in the source file.
type AnalysisResult struct {
	Functions []CallableSignature
	Classes   []ClassSignature
}
