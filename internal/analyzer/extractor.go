// Package analyzer extracts normalized function and class signatures from
// Python source files using tree-sitter.
package analyzer

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Extractor parses Python source text and produces AnalysisResults.
// It holds no per-call state, so a single Extractor is safe for
// concurrent use from multiple goroutines.
type Extractor struct {
	language *sitter.Language
}

// NewExtractor creates an Extractor backed by the tree-sitter Python grammar.
func NewExtractor() *Extractor {
	return &Extractor{
		language: sitter.NewLanguage(python.Language()),
	}
}

// Extract parses source and returns every module-level function and every
// class (with its direct-body methods). identifier is used only in error
// messages; Extract itself performs no I/O.
//
// Discovery order is a pre-order walk of the syntax tree, so both result
// slices follow source order. A parse failure returns *ParseError and no
// partial result.
func (e *Extractor) Extract(source []byte, identifier string) (*AnalysisResult, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Identifier: identifier, Line: 1, Message: "cannot parse source"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, msg := firstSyntaxError(root)
		return nil, &ParseError{Identifier: identifier, Line: line, Message: msg}
	}

	result := &AnalysisResult{
		Functions: []CallableSignature{},
		Classes:   []ClassSignature{},
	}

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			if !enclosedByClass(n) {
				result.Functions = append(result.Functions, extractCallable(n, source))
			}
		case "class_definition":
			result.Classes = append(result.Classes, extractClass(n, source))
		}
		return true
	})

	return result, nil
}

// enclosedByClass reports whether the function's immediate syntactic home is
// a class body. Decorated definitions are unwrapped first so the decorator
// node does not hide the class. Anything deeper than a direct class-body
// slot (a conditional block, another function) does not count.
func enclosedByClass(n *sitter.Node) bool {
	parent := n.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Kind() != "block" {
		return false
	}
	grand := parent.Parent()
	return grand != nil && grand.Kind() == "class_definition"
}

// extractClass builds a ClassSignature. Methods come from a direct-body scan
// only: a closure nested inside a method is not recorded anywhere.
func extractClass(n *sitter.Node, source []byte) ClassSignature {
	cls := ClassSignature{
		Name:      nodeText(n.ChildByFieldName("name"), source),
		BaseNames: []string{},
		Methods:   []CallableSignature{},
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}

	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.NamedChildCount(); i++ {
			base := supers.NamedChild(i)
			// keyword arguments (metaclass=...) are not base classes
			if base.Kind() == "keyword_argument" || base.Kind() == "comment" {
				continue
			}
			cls.BaseNames = append(cls.BaseNames, nodeText(base, source))
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	cls.Docstring = extractDocstring(body, source)

	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child.Kind() == "decorated_definition" {
			if def := child.ChildByFieldName("definition"); def != nil {
				child = def
			}
		}
		if child.Kind() == "function_definition" {
			cls.Methods = append(cls.Methods, extractCallable(child, source))
		}
	}

	return cls
}

// extractCallable normalizes one function-like node. Shared by module-level
// functions and class methods.
func extractCallable(n *sitter.Node, source []byte) CallableSignature {
	sig := CallableSignature{
		Name:      nodeText(n.ChildByFieldName("name"), source),
		Arguments: []ArgumentSpec{},
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
		IsAsync:   isAsync(n),
	}

	if ret := n.ChildByFieldName("return_type"); ret != nil {
		sig.ReturnType = nodeText(ret, source)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		sig.Docstring = extractDocstring(body, source)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		sig.Arguments = extractArguments(params, source)
	}

	return sig
}

// extractArguments scans a parameters node in declaration order. The grammar
// already enforces positional < *args < keyword-only < **kwargs ordering, so
// appending in scan order preserves the ArgumentSpec sequence invariant.
func extractArguments(params *sitter.Node, source []byte) []ArgumentSpec {
	args := []ArgumentSpec{}
	seenStar := false

	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "identifier":
			args = append(args, ArgumentSpec{Name: nodeText(p, source), Kind: namedKind(seenStar)})
		case "typed_parameter":
			spec := typedParameter(p, source, seenStar)
			if spec.Kind == ArgVariadicPositional {
				seenStar = true
			}
			args = append(args, spec)
		case "default_parameter":
			args = append(args, ArgumentSpec{
				Name: nodeText(p.ChildByFieldName("name"), source),
				Kind: namedKind(seenStar),
			})
		case "typed_default_parameter":
			args = append(args, ArgumentSpec{
				Name: nodeText(p.ChildByFieldName("name"), source),
				Type: nodeText(p.ChildByFieldName("type"), source),
				Kind: namedKind(seenStar),
			})
		case "list_splat_pattern":
			seenStar = true
			args = append(args, ArgumentSpec{
				Name: splatName(p, source),
				Kind: ArgVariadicPositional,
			})
		case "dictionary_splat_pattern":
			args = append(args, ArgumentSpec{
				Name: splatName(p, source),
				Kind: ArgVariadicKeyword,
			})
		case "keyword_separator":
			// bare *: everything after is keyword-only, but * itself is no argument
			seenStar = true
		case "positional_separator", "comment":
			// / marker carries no argument of its own
		}
	}

	return args
}

// typedParameter handles `name: T` in all its splat flavors
// (`*args: T`, `**kwargs: T`).
func typedParameter(p *sitter.Node, source []byte, seenStar bool) ArgumentSpec {
	spec := ArgumentSpec{
		Type: nodeText(p.ChildByFieldName("type"), source),
		Kind: namedKind(seenStar),
	}
	for i := uint(0); i < p.NamedChildCount(); i++ {
		child := p.NamedChild(i)
		switch child.Kind() {
		case "identifier":
			spec.Name = nodeText(child, source)
			return spec
		case "list_splat_pattern":
			spec.Name = splatName(child, source)
			spec.Kind = ArgVariadicPositional
			return spec
		case "dictionary_splat_pattern":
			spec.Name = splatName(child, source)
			spec.Kind = ArgVariadicKeyword
			return spec
		}
	}
	return spec
}

func namedKind(seenStar bool) ArgKind {
	if seenStar {
		return ArgKeywordOnly
	}
	return ArgPositional
}

// splatName returns the identifier inside *args / **kwargs patterns.
func splatName(p *sitter.Node, source []byte) string {
	for i := uint(0); i < p.NamedChildCount(); i++ {
		if child := p.NamedChild(i); child.Kind() == "identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

// extractDocstring returns the content of a bare string literal sitting as
// the first statement of a body, or "" when there is none. The text is the
// literal content with quote delimiters removed and nothing else normalized.
func extractDocstring(body *sitter.Node, source []byte) string {
	if body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Kind() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Kind() != "string" {
		return ""
	}

	content := ""
	for i := uint(0); i < str.ChildCount(); i++ {
		child := str.Child(i)
		switch child.Kind() {
		case "string_content", "escape_sequence":
			content += nodeText(child, source)
		}
	}
	return content
}

// isAsync reports whether the definition carries the async keyword.
func isAsync(n *sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.Kind() == "async" {
			return true
		}
		if child.Kind() == "def" {
			break
		}
	}
	return false
}

// firstSyntaxError locates the first error or missing node for reporting.
func firstSyntaxError(root *sitter.Node) (line int, msg string) {
	line, msg = int(root.StartPosition().Row)+1, "invalid syntax"
	found := false
	walkTree(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.IsError() {
			line, msg = int(n.StartPosition().Row)+1, "invalid syntax"
			found = true
			return false
		}
		if n.IsMissing() {
			line, msg = int(n.StartPosition().Row)+1, "missing "+n.Kind()
			found = true
			return false
		}
		return true
	})
	return line, msg
}

// walkTree visits every node pre-order. Returning false from the visitor
// prunes that node's subtree.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// nodeText renders a node's source span as text.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
