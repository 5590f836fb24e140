package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testforge/internal/analyzer"
)

// Test Plan for Validator:
// - Well-formed minimal test passes with zero errors
// - Syntax failure is an ERROR finding, never a fault, and the battery
//   still runs (dependency check contributes its own ERROR)
// - Naming check is fatal when no test_-prefixed top-level function exists
// - Forbidden constructs surface from BOTH the tree-based and the textual
//   technique, duplicates kept
// - File-open and risky imports are warnings only
// - Assertion-presence check fails independently of naming success
// - Mock check activates only with a callable-typed context argument
// - Dependency check flags every unresolved module by name
// - Warnings never flip IsValid
// - Findings follow check-execution order

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(DefaultRules(), NewStaticResolver(DefaultKnownModules()))
	require.NoError(t, err)
	return v
}

func TestValidate_MinimalPassingTest(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("def test_x():\n    assert 1 == 1", nil)

	assert.True(t, verdict.IsValid)
	assert.Empty(t, verdict.Errors())
}

func TestValidate_SyntaxErrorIsFindingNotFault(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("def test_x():\n    assert 1 +", nil)

	assert.False(t, verdict.IsValid)
	require.NotEmpty(t, verdict.Errors())
	assert.Contains(t, verdict.Findings[0].Message, "syntax error")
	assert.Equal(t, SeverityError, verdict.Findings[0].Severity)
}

func TestValidate_SyntaxFailureStillRunsDependencyCheck(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("import pytest\ndef test_x(:\n    assert True", nil)

	var hasSyntax, hasDependency bool
	for _, f := range verdict.Errors() {
		if f.Message == "dependency check failed: candidate code does not parse" {
			hasDependency = true
		}
		if len(f.Message) >= 12 && f.Message[:12] == "syntax error" {
			hasSyntax = true
		}
	}
	assert.True(t, hasSyntax, "syntax check must report")
	assert.True(t, hasDependency, "dependency check reports its own error on unparseable input")
}

func TestValidate_NamingCheckIsFatal(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("def helper():\n    assert True", nil)

	assert.False(t, verdict.IsValid)
	assertHasFinding(t, verdict, SeverityError, `no test functions found (missing "test_" prefix)`)
}

func TestValidate_DecoratedTestFunctionSatisfiesNaming(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("import pytest\n\n@pytest.mark.slow\ndef test_y():\n    assert True", nil)

	assert.True(t, verdict.IsValid)
}

func TestValidate_DangerousCallDetectedByBothTechniques(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("def test_x():\n    eval('1+1')", nil)

	assert.False(t, verdict.IsValid)
	assertHasFinding(t, verdict, SeverityError, "dangerous function call: eval")
	assertHasFinding(t, verdict, SeverityError, "dangerous system call detected")
}

func TestValidate_AttributeCallTarget(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("import os\n\ndef test_x():\n    os.system('ls')\n    assert True", nil)

	assert.False(t, verdict.IsValid)
	assertHasFinding(t, verdict, SeverityError, "dangerous function call: os.system")
	assertHasFinding(t, verdict, SeverityError, "dangerous system call detected")
	assertHasFinding(t, verdict, SeverityWarning, "potentially risky import: os")
}

func TestValidate_FileOpenIsWarningOnly(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("def test_x():\n    data = open('fixture.json')\n    assert data", nil)

	assert.True(t, verdict.IsValid, "file operations are legitimate in test code")
	assertHasFinding(t, verdict, SeverityWarning, "file operation detected")
}

func TestValidate_MissingAssertionsIndependentOfNaming(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("def test_x():\n    pass", nil)

	assert.False(t, verdict.IsValid)
	assertHasFinding(t, verdict, SeverityError, "no valid assertions found in test code")
	for _, f := range verdict.Findings {
		assert.NotContains(t, f.Message, "no test functions found")
	}
}

func TestValidate_FrameworkReferenceWarning(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	with := v.Validate("import pytest\n\ndef test_x():\n    assert True", nil)
	without := v.Validate("def test_x():\n    assert True", nil)

	assert.Empty(t, with.Warnings())
	require.Len(t, without.Warnings(), 1)
	assert.Contains(t, without.Warnings()[0].Message, "pytest")
	assert.True(t, without.IsValid, "framework reference is advisory")
}

func TestValidate_MockCheckNeedsCallableContext(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	withCallable := &analyzer.CallableSignature{
		Name: "apply",
		Arguments: []analyzer.ArgumentSpec{
			{Name: "value", Type: "int", Kind: analyzer.ArgPositional},
			{Name: "fn", Type: "Callable[[int], int]", Kind: analyzer.ArgPositional},
		},
	}
	plain := &analyzer.CallableSignature{
		Name: "add",
		Arguments: []analyzer.ArgumentSpec{
			{Name: "a", Type: "int", Kind: analyzer.ArgPositional},
		},
	}
	code := "def test_apply():\n    assert apply(1, lambda x: x) == 1"

	verdict := v.Validate(code, withCallable)
	assertHasFinding(t, verdict, SeverityWarning, "callable argument detected but no mocks found")
	assert.True(t, verdict.IsValid, "mock usage is advisory")

	mocked := v.Validate("from unittest.mock import Mock\n\ndef test_apply():\n    assert apply(1, Mock()) == 1", withCallable)
	for _, f := range mocked.Findings {
		assert.NotContains(t, f.Message, "no mocks found")
	}

	inactive := v.Validate(code, plain)
	for _, f := range inactive.Findings {
		assert.NotContains(t, f.Message, "no mocks found")
	}

	noContext := v.Validate(code, nil)
	for _, f := range noContext.Findings {
		assert.NotContains(t, f.Message, "no mocks found")
	}
}

func TestValidate_UnresolvedDependencies(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	code := "import numpy\nimport unittest.mock\nfrom nonexistent_pkg import thing\n\ndef test_x():\n    assert True"
	verdict := v.Validate(code, nil)

	assert.False(t, verdict.IsValid)
	assertHasFinding(t, verdict, SeverityError, "missing dependency: numpy")
	assertHasFinding(t, verdict, SeverityError, "missing dependency: nonexistent_pkg")
	for _, f := range verdict.Findings {
		assert.NotContains(t, f.Message, "unittest.mock", "dotted stdlib names resolve via their head")
	}
}

func TestValidate_RelativeImportsSkipResolution(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("from . import helpers\n\ndef test_x():\n    assert helpers", nil)

	assert.Empty(t, verdict.Errors())
}

func TestValidate_AliasedImportResolved(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	verdict := v.Validate("import collections.abc as cabc\n\ndef test_x():\n    assert cabc", nil)

	assert.Empty(t, verdict.Errors())
}

func TestValidate_FindingsFollowCheckOrder(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	// helper() trips naming; missing assertions trips check 5; numpy trips check 7
	verdict := v.Validate("import numpy\n\ndef helper():\n    pass", nil)

	var order []string
	for _, f := range verdict.Errors() {
		order = append(order, f.Message)
	}
	require.Len(t, order, 3)
	assert.Contains(t, order[0], "no test functions found")
	assert.Contains(t, order[1], "no valid assertions")
	assert.Contains(t, order[2], "missing dependency: numpy")
}

func TestValidate_FreshStatePerCall(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	bad := v.Validate("def helper():\n    pass", nil)
	good := v.Validate("def test_x():\n    assert True", nil)

	assert.False(t, bad.IsValid)
	assert.True(t, good.IsValid)
	assert.Empty(t, good.Errors(), "findings never leak across calls")
}

func assertHasFinding(t *testing.T, verdict Verdict, severity Severity, message string) {
	t.Helper()
	for _, f := range verdict.Findings {
		if f.Severity == severity && f.Message == message {
			return
		}
	}
	t.Errorf("finding %q (%s) not present in %+v", message, severity, verdict.Findings)
}
