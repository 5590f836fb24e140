// Package validator runs a fixed battery of independent static checks over a
// candidate test snippet and aggregates findings into a pass/fail verdict.
// The validator never raises for malformed candidate content: every
// detectable problem becomes a finding.
package validator

import (
	"regexp"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"testforge/internal/analyzer"
)

// battery is the fixed check order. Every check runs regardless of earlier
// outcomes, so one verdict can surface errors from several checks at once.
var battery = []check{
	checkSyntax,
	checkForbidden,
	checkFramework,
	checkNaming,
	checkAssertions,
	checkMocking,
	checkDependencies,
}

// Validator applies the check battery. Construction compiles the rule
// patterns once; Validate itself builds fresh per-call state, so a single
// Validator is safe for concurrent use.
type Validator struct {
	rules    RuleSet
	resolver ModuleResolver
	language *sitter.Language

	dangerous         map[string]bool
	risky             map[string]bool
	textPatterns      []*regexp.Regexp
	assertionPatterns []*regexp.Regexp
	mockPatterns      []*regexp.Regexp
}

// New builds a Validator from the given rule tables and resolver oracle.
// Malformed rule patterns are an error: the tables are configuration, and a
// bad table should fail loudly at startup rather than mid-run.
func New(rules RuleSet, resolver ModuleResolver) (*Validator, error) {
	v := &Validator{
		rules:    rules,
		resolver: resolver,
		language: sitter.NewLanguage(python.Language()),
		dangerous: make(map[string]bool, len(rules.DangerousCalls)),
		risky:     make(map[string]bool, len(rules.RiskyImports)),
	}

	for _, name := range rules.DangerousCalls {
		v.dangerous[name] = true
	}
	for _, name := range rules.RiskyImports {
		v.risky[name] = true
	}

	for _, rule := range rules.TextPatterns {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		v.textPatterns = append(v.textPatterns, re)
	}
	for _, pattern := range rules.AssertionPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		v.assertionPatterns = append(v.assertionPatterns, re)
	}
	for _, pattern := range rules.MockPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		v.mockPatterns = append(v.mockPatterns, re)
	}

	return v, nil
}

// Validate runs every check over candidate and returns the aggregate verdict.
// context, when supplied, is the signature the candidate was generated for
// and only influences the mock-usage check. The verdict is a value; Validate
// has no fault channel.
func (v *Validator) Validate(candidate string, context *analyzer.CallableSignature) Verdict {
	in := &checkInput{
		candidate: candidate,
		source:    []byte(candidate),
		context:   context,
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(v.language)

	tree := parser.Parse(in.source, nil)
	if tree != nil {
		defer tree.Close()
		root := tree.RootNode()
		if root.HasError() {
			in.syntaxErrLine, in.syntaxErrMsg = firstSyntaxError(root)
		} else {
			in.root = root
		}
	} else {
		in.syntaxErrLine, in.syntaxErrMsg = 1, "cannot parse candidate"
	}

	verdict := Verdict{Findings: []Finding{}}
	for _, c := range battery {
		verdict.Findings = append(verdict.Findings, c(v, in)...)
	}

	verdict.IsValid = true
	for _, f := range verdict.Findings {
		if f.Severity == SeverityError {
			verdict.IsValid = false
			break
		}
	}
	return verdict
}

// firstSyntaxError locates the first error or missing node for the syntax
// finding's line and description.
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

// walkTree visits every node pre-order; returning false prunes the subtree.
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
