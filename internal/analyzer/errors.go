package analyzer

import "fmt"

// ParseError reports source text that could not be parsed into a syntax tree.
// No partial AnalysisResult accompanies it.
type ParseError struct {
	Identifier string
	Line       int
	Message    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error in %s at line %d: %s", e.Identifier, e.Line, e.Message)
}

// NotFoundError reports a source identifier that could not be opened.
// It is raised by the I/O layer (runner), never by Extract itself.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Identifier)
}
