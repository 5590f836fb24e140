package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testforge/internal/analyzer"
)

// Test Plan for generator:
// - CleanResponse strips python fences, bare fences, and <think> spans
// - Generate surfaces client errors and rejects empty cleaned output
// - TestFileName: prefix, short hash, stable per content
// - WriteTest creates the directory and persists the code
// - PromptBuilder renders unit/integration/ui prompts with fallbacks
// - FormatArguments covers all four argument kinds

type fakeClient struct {
	response string
	err      error
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func (f *fakeClient) Name() string { return "fake" }

func TestCleanResponse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "assert True",
		CleanResponse("```python\nassert True\n```"))
	assert.Equal(t, "assert True",
		CleanResponse("```\nassert True\n```"))
	assert.Equal(t, "def test_a():\n    assert True",
		CleanResponse("<think>planning the test</think>\ndef test_a():\n    assert True"))
	assert.Equal(t, "x = 1", CleanResponse("  x = 1  \n"))
	// A two-line fence has no body lines to unwrap and passes through as-is.
	assert.Equal(t, "```python\n```", CleanResponse("```python\n```"))
	assert.Equal(t, "", CleanResponse("```python\n\n```"))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	g := New(&fakeClient{response: "```python\ndef test_a():\n    assert True\n```"})
	code, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "def test_a():\n    assert True", code)

	g = New(&fakeClient{err: errors.New("quota exceeded")})
	_, err = g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake")

	g = New(&fakeClient{response: "```python\n\n```"})
	_, err = g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestTestFileName(t *testing.T) {
	t.Parallel()

	a := TestFileName("add", "assert add(1, 2) == 3")
	b := TestFileName("add", "assert add(1, 2) == 3")
	c := TestFileName("add", "assert add(0, 0) == 0")

	assert.Equal(t, a, b, "same content hashes the same")
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "test_add_"))
	assert.True(t, strings.HasSuffix(a, ".py"))
	assert.Len(t, a, len("test_add_")+6+len(".py"))
}

func TestWriteTest(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "tests", "unit")
	path, err := WriteTest(dir, "greet", "def test_greet():\n    assert True\n")

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_greet")
}

func TestPromptBuilder_Unit(t *testing.T) {
	t.Parallel()

	b, err := NewPromptBuilder()
	require.NoError(t, err)

	sig := &analyzer.CallableSignature{
		Name: "add",
		Arguments: []analyzer.ArgumentSpec{
			{Name: "a", Type: "int", Kind: analyzer.ArgPositional},
			{Name: "b", Type: "int", Kind: analyzer.ArgPositional},
		},
		ReturnType: "int",
		Docstring:  "Add two numbers",
	}

	prompt, err := b.Unit(sig)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Function name: add")
	assert.Contains(t, prompt, "a: int, b: int")
	assert.Contains(t, prompt, "Return type: int")
	assert.Contains(t, prompt, "Add two numbers")
}

func TestPromptBuilder_UnitFallbacks(t *testing.T) {
	t.Parallel()

	b, err := NewPromptBuilder()
	require.NoError(t, err)

	prompt, err := b.Unit(&analyzer.CallableSignature{Name: "run"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Arguments: none")
	assert.Contains(t, prompt, "Return type: unspecified")
	assert.Contains(t, prompt, "No docstring available.")
}

func TestPromptBuilder_Integration(t *testing.T) {
	t.Parallel()

	b, err := NewPromptBuilder()
	require.NoError(t, err)

	sig := &analyzer.CallableSignature{Name: "sync"}
	prompt, err := b.Integration(sig, []string{"database", "external_service"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "database, external_service")
	assert.Contains(t, prompt, "unittest.mock")
}

func TestPromptBuilder_UI(t *testing.T) {
	t.Parallel()

	b, err := NewPromptBuilder()
	require.NoError(t, err)

	prompt, err := b.UI(UIElement{Name: "login_button", ID: "login"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Element id: login")
	assert.Contains(t, prompt, "Element xpath: N/A")
	assert.Contains(t, prompt, "Dependencies: None")
}

func TestFormatArguments(t *testing.T) {
	t.Parallel()

	args := []analyzer.ArgumentSpec{
		{Name: "data", Type: "list", Kind: analyzer.ArgPositional},
		{Name: "args", Type: "str", Kind: analyzer.ArgVariadicPositional},
		{Name: "timeout", Type: "float", Kind: analyzer.ArgKeywordOnly},
		{Name: "kwargs", Kind: analyzer.ArgVariadicKeyword},
	}

	rendered := FormatArguments(args)
	assert.Contains(t, rendered, "data: list")
	assert.Contains(t, rendered, "*args: str (variable-length arguments)")
	assert.Contains(t, rendered, "timeout: float (keyword-only)")
	assert.Contains(t, rendered, "**kwargs (keyword arguments)")
}
