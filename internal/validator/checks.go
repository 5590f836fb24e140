package validator

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"testforge/internal/analyzer"
)

// checkInput carries everything a single check may inspect. root is nil when
// the candidate did not parse; checks that need the tree must then emit
// nothing (the dependency check being the documented exception).
type checkInput struct {
	candidate string
	source    []byte
	root      *sitter.Node
	context   *analyzer.CallableSignature

	// populated when the candidate failed to parse
	syntaxErrLine int
	syntaxErrMsg  string
}

// A check is a pure function from input to findings. The battery is an
// ordered list of checks applied independently; new checks are added by
// appending, never by branching inside existing ones.
type check func(v *Validator, in *checkInput) []Finding

// checkSyntax verifies the candidate parses into a well-formed tree.
// Its failure never stops the rest of the battery.
func checkSyntax(v *Validator, in *checkInput) []Finding {
	if in.root != nil {
		return nil
	}
	return []Finding{errorf(fmt.Sprintf("syntax error at line %d: %s", in.syntaxErrLine, in.syntaxErrMsg))}
}

// checkForbidden flags dynamic-execution and shell primitives. Two detection
// techniques run unconditionally: tree-based call-target matching and textual
// pattern matching. Duplicate findings from both are intentional, keeping the
// detection conservative when either technique under- or over-matches.
func checkForbidden(v *Validator, in *checkInput) []Finding {
	var findings []Finding

	if in.root != nil {
		walkTree(in.root, func(n *sitter.Node) bool {
			switch n.Kind() {
			case "call":
				target := nodeText(n.ChildByFieldName("function"), in.source)
				if v.dangerous[target] {
					findings = append(findings, errorf("dangerous function call: "+target))
				}
			case "import_statement":
				for _, name := range importedNames(n, in.source) {
					if v.risky[name] {
						findings = append(findings, warning("potentially risky import: "+name))
					}
				}
			}
			return true
		})
	}

	for i, re := range v.textPatterns {
		if re.MatchString(in.candidate) {
			rule := v.rules.TextPatterns[i]
			findings = append(findings, Finding{Severity: rule.Severity, Message: rule.Message})
		}
	}

	return findings
}

// checkFramework wants to see a recognized testing-framework or mock name
// somewhere in the candidate text. Advisory only.
func checkFramework(v *Validator, in *checkInput) []Finding {
	for _, name := range v.rules.Frameworks {
		if strings.Contains(in.candidate, name) {
			return nil
		}
	}
	return []Finding{warning("missing " + strings.Join(v.rules.Frameworks, " or ") + " imports")}
}

// checkNaming requires at least one top-level function named with the test
// prefix. This is the only fatal structural gate.
func checkNaming(v *Validator, in *checkInput) []Finding {
	if in.root == nil {
		return nil
	}
	for i := uint(0); i < in.root.NamedChildCount(); i++ {
		child := in.root.NamedChild(i)
		if child.Kind() == "decorated_definition" {
			if def := child.ChildByFieldName("definition"); def != nil {
				child = def
			}
		}
		if child.Kind() != "function_definition" {
			continue
		}
		name := nodeText(child.ChildByFieldName("name"), in.source)
		if strings.HasPrefix(name, v.rules.TestPrefix) {
			return nil
		}
	}
	return []Finding{errorf(fmt.Sprintf("no test functions found (missing %q prefix)", v.rules.TestPrefix))}
}

// checkAssertions wants at least one assertion-shaped pattern in the text.
func checkAssertions(v *Validator, in *checkInput) []Finding {
	for _, re := range v.assertionPatterns {
		if re.MatchString(in.candidate) {
			return nil
		}
	}
	return []Finding{errorf("no valid assertions found in test code")}
}

// checkMocking activates only when the originating signature takes a
// callable-typed argument; it then wants some mocking construct in the text.
func checkMocking(v *Validator, in *checkInput) []Finding {
	if in.context == nil || !hasCallableArgument(in.context, v.rules.CallableTypeNames) {
		return nil
	}
	for _, re := range v.mockPatterns {
		if re.MatchString(in.candidate) {
			return nil
		}
	}
	return []Finding{warning("callable argument detected but no mocks found")}
}

// checkDependencies resolves every imported module through the resolver
// oracle. An unparseable candidate is reported here as this check's own
// error rather than silently skipped or propagated as a fault.
func checkDependencies(v *Validator, in *checkInput) []Finding {
	if in.root == nil {
		return []Finding{errorf("dependency check failed: candidate code does not parse")}
	}

	var findings []Finding
	walkTree(in.root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			for _, name := range importedNames(n, in.source) {
				if !v.resolver.Resolves(name) {
					findings = append(findings, errorf("missing dependency: "+name))
				}
			}
		case "import_from_statement":
			module := n.ChildByFieldName("module_name")
			// relative imports resolve against the package under test, not
			// the environment; the oracle has nothing to say about them
			if module == nil || module.Kind() != "dotted_name" {
				return true
			}
			name := nodeText(module, in.source)
			if !v.resolver.Resolves(name) {
				findings = append(findings, errorf("missing dependency: "+name))
			}
		}
		return true
	})
	return findings
}

// importedNames returns the module names referenced by an import statement,
// unwrapping aliases.
func importedNames(n *sitter.Node, source []byte) []string {
	var names []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "dotted_name":
			names = append(names, nodeText(child, source))
		case "aliased_import":
			names = append(names, nodeText(child.ChildByFieldName("name"), source))
		}
	}
	return names
}

// hasCallableArgument reports whether any argument annotation names a
// callable type, either exactly or as a parameterized head like Callable[...].
func hasCallableArgument(sig *analyzer.CallableSignature, callableNames []string) bool {
	for _, arg := range sig.Arguments {
		if arg.Type == "" {
			continue
		}
		for _, name := range callableNames {
			if arg.Type == name || strings.HasPrefix(arg.Type, name+"[") {
				return true
			}
		}
	}
	return false
}
