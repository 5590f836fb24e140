package validator

// PatternRule is one textual detection pattern with its verdict contribution.
type PatternRule struct {
	Pattern  string
	Message  string
	Severity Severity
}

// RuleSet holds every name and pattern table the check battery consults.
// The tables are configuration data, not embedded literals, so the validator
// can be retargeted to a different testing ecosystem without code changes.
type RuleSet struct {
	// Frameworks are testing/mocking import names the structural check looks for.
	Frameworks []string

	// TestPrefix is the conventional name prefix for test functions.
	TestPrefix string

	// DangerousCalls are call targets flagged as errors by the tree-based
	// forbidden-construct detection (dotted attribute targets included).
	DangerousCalls []string

	// RiskyImports are module names whose import draws a warning.
	RiskyImports []string

	// TextPatterns are the textual forbidden-construct detections. They run
	// in addition to the tree-based detection, never instead of it.
	TextPatterns []PatternRule

	// AssertionPatterns are textual patterns any one of which satisfies the
	// assertion-presence check.
	AssertionPatterns []string

	// MockPatterns are textual patterns any one of which satisfies the
	// mock-usage check.
	MockPatterns []string

	// CallableTypeNames are annotation heads treated as callable types when
	// deciding whether the mock-usage check applies.
	CallableTypeNames []string
}

// DefaultRules targets the pytest ecosystem.
func DefaultRules() RuleSet {
	return RuleSet{
		Frameworks: []string{"pytest", "unittest.mock", "mock"},
		TestPrefix: "test_",
		DangerousCalls: []string{
			"eval", "exec", "__import__",
			"os.system", "subprocess.run", "subprocess.call", "subprocess.Popen",
		},
		RiskyImports: []string{"os", "subprocess", "sys"},
		TextPatterns: []PatternRule{
			{
				Pattern:  `(os\.system|subprocess\.run|eval|exec)\s*\(`,
				Message:  "dangerous system call detected",
				Severity: SeverityError,
			},
			{
				Pattern:  `__import__\s*\(`,
				Message:  "unsafe import detected",
				Severity: SeverityError,
			},
			{
				Pattern:  `\b(open|file)\s*\(`,
				Message:  "file operation detected",
				Severity: SeverityWarning,
			},
		},
		AssertionPatterns: []string{
			`assert\s+`,
			`pytest\.raises\(\)`,
			`unittest\.TestCase\.assert`,
		},
		MockPatterns: []string{
			`@patch\b`,
			`Mock\(`,
			`mocker\.patch\b`,
		},
		CallableTypeNames: []string{"Callable", "typing.Callable", "collections.abc.Callable"},
	}
}
