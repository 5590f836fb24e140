package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	genai "google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no usable candidate.
var ErrEmptyResponse = errors.New("generator: empty response from model")

const systemInstruction = "You are a helpful assistant that generates Python unit tests."

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	retries     int
}

// GeminiOptions tune a GeminiClient.
type GeminiOptions struct {
	Temperature float64
	MaxTokens   int
	Retries     int // attempts per prompt, minimum 1
}

// NewGeminiClient builds a Gemini-backed TextClient.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts GeminiOptions) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generator: API key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("generator: failed to create genai client: %w", err)
	}

	retries := opts.Retries
	if retries < 1 {
		retries = 1
	}
	return &GeminiClient{
		cli:         cli,
		model:       model,
		temperature: float32(opts.Temperature),
		maxTokens:   int32(opts.MaxTokens),
		retries:     retries,
	}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

// Generate asks the model for candidate code, retrying transient failures
// with exponential backoff.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = g.maxTokens
	}

	var lastErr error
	for attempt := 0; attempt < g.retries; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
			cfg,
		)
		switch {
		case err != nil:
			lastErr = err
		case len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0:
			lastErr = ErrEmptyResponse
		default:
			return resp.Candidates[0].Content.Parts[0].Text, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return "", lastErr
}
