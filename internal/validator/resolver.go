package validator

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// ModuleResolver answers whether an imported module name can be satisfied in
// the target environment. The validator treats it as an opaque oracle: no
// caching or retry behavior is assumed, and a single failed resolution is a
// terminal error finding, not a reason to abort the verdict.
type ModuleResolver interface {
	Resolves(name string) bool
}

// StaticResolver resolves against a fixed table of known module names.
// A dotted name resolves when the full name or its top-level segment is known.
type StaticResolver struct {
	known map[string]bool
}

// NewStaticResolver builds a resolver over the given module names.
func NewStaticResolver(modules []string) *StaticResolver {
	known := make(map[string]bool, len(modules))
	for _, m := range modules {
		known[m] = true
	}
	return &StaticResolver{known: known}
}

func (r *StaticResolver) Resolves(name string) bool {
	if r.known[name] {
		return true
	}
	if head, _, ok := strings.Cut(name, "."); ok {
		return r.known[head]
	}
	return false
}

// DefaultKnownModules lists the standard-library and testing modules the
// static resolver accepts out of the box. Config may extend it.
func DefaultKnownModules() []string {
	return []string{
		"pytest", "unittest", "mock", "selenium",
		"abc", "asyncio", "collections", "contextlib", "copy", "dataclasses",
		"datetime", "enum", "functools", "hashlib", "importlib", "inspect",
		"io", "itertools", "json", "logging", "math", "os", "pathlib",
		"random", "re", "shutil", "string", "subprocess", "sys", "tempfile",
		"time", "types", "typing", "uuid", "warnings",
	}
}

// InterpreterResolver asks a Python interpreter whether a module spec can be
// found. This matches what an import in the generated test would actually do,
// at the cost of one process spawn per module.
type InterpreterResolver struct {
	// Python is the interpreter binary, e.g. "python3".
	Python string
	// Timeout bounds a single probe. Zero means 5 seconds.
	Timeout time.Duration
}

const findSpecProbe = `import importlib.util, sys
sys.exit(0 if importlib.util.find_spec(sys.argv[1]) else 1)`

func (r *InterpreterResolver) Resolves(name string) bool {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Python, "-c", findSpecProbe, name)
	return cmd.Run() == nil
}
