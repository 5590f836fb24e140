package generator

import "context"

// TextClient produces candidate test code from a prompt. Implementations
// wrap a hosted model; the rest of the pipeline treats them as opaque.
type TextClient interface {
	// Generate returns the raw model response for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the backing provider/model for logging.
	Name() string
}
